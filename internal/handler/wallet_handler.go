package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"ajopay/internal/middleware"
	"ajopay/internal/repository"
	"ajopay/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type WalletHandler struct {
	walletRepo  *repository.WalletRepository
	txRepo      *repository.TransactionRepository
	transferSvc *service.TransferService
}

func NewWalletHandler(walletRepo *repository.WalletRepository, txRepo *repository.TransactionRepository, transferSvc *service.TransferService) *WalletHandler {
	return &WalletHandler{walletRepo: walletRepo, txRepo: txRepo, transferSvc: transferSvc}
}

func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	w, err := h.walletRepo.GetOrCreate(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": w})
}

func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	list, err := h.txRepo.ListByUserID(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list, "count": len(list)})
}

type SendMoneyRequest struct {
	AmountKobo  int64  `json:"amount_kobo" binding:"required"`
	Recipient   string `json:"recipient" binding:"required"`
	Description string `json:"description"`
	WalletType  string `json:"wallet_type"`
}

// Send is POST /wallet/send. Validation failures come back as 4xx with a
// machine-readable code; a committed transfer always returns the new
// balance and the shared reference.
func (h *WalletHandler) Send(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req SendMoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
		return
	}
	if req.WalletType == "" {
		req.WalletType = "ngn"
	}

	result, err := h.transferSvc.Send(userID, service.SendRequest{
		AmountKobo:  req.AmountKobo,
		Recipient:   req.Recipient,
		Description: req.Description,
		WalletType:  req.WalletType,
	})
	if err != nil {
		status, code := transferErrorStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("[wallet] send failed: user=%d amount=%d err=%v", userID, req.AmountKobo, err)
			c.JSON(status, gin.H{"error": "transfer failed", "code": code})
			return
		}
		c.JSON(status, gin.H{"error": err.Error(), "code": code})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Transfer completed",
		"reference":   result.Reference,
		"newBalance":  result.NewBalanceKobo,
		"transaction": result.Transaction,
		"recipient": gin.H{
			"id":        result.Recipient.ID,
			"full_name": result.Recipient.FullName,
			"email":     result.Recipient.Email,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func transferErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrAmountOutOfRange):
		return http.StatusBadRequest, "AMOUNT_OUT_OF_RANGE"
	case errors.Is(err, service.ErrInvalidRecipient):
		return http.StatusBadRequest, "INVALID_RECIPIENT"
	case errors.Is(err, service.ErrInvalidWalletType):
		return http.StatusBadRequest, "INVALID_WALLET_TYPE"
	case errors.Is(err, service.ErrSelfTransfer):
		return http.StatusBadRequest, "SELF_TRANSFER"
	case errors.Is(err, service.ErrRecipientNotFound):
		return http.StatusNotFound, "RECIPIENT_NOT_FOUND"
	case errors.Is(err, repository.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE"
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}
