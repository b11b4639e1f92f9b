package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"ajopay/internal/domain"
	"ajopay/internal/middleware"
	"ajopay/internal/models"
	"ajopay/internal/repository"
	"ajopay/internal/service"
	"ajopay/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WithdrawalHandler moves money out. Requesting a withdrawal debits the
// wallet up front inside one transaction, so a pending payout can never
// be double-spent; a failed payout refunds the debit.
type WithdrawalHandler struct {
	db             *gorm.DB
	withdrawalRepo *repository.WithdrawalRepository
	walletRepo     *repository.WalletRepository
	txRepo         *repository.TransactionRepository
	notifSvc       *service.NotificationService
	hub            *ws.Hub
}

func NewWithdrawalHandler(
	db *gorm.DB,
	withdrawalRepo *repository.WithdrawalRepository,
	walletRepo *repository.WalletRepository,
	txRepo *repository.TransactionRepository,
	notifSvc *service.NotificationService,
	hub *ws.Hub,
) *WithdrawalHandler {
	return &WithdrawalHandler{
		db:             db,
		withdrawalRepo: withdrawalRepo,
		walletRepo:     walletRepo,
		txRepo:         txRepo,
		notifSvc:       notifSvc,
		hub:            hub,
	}
}

type WithdrawRequest struct {
	AmountKobo int64  `json:"amount_kobo" binding:"required,min=100"`
	BankCode   string `json:"bank_code" binding:"required"`
	AccountNo  string `json:"account_no" binding:"required,min=10,max=10"`
}

// Request is POST /withdrawals.
func (h *WithdrawalHandler) Request(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.walletRepo.GetOrCreate(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet"})
		return
	}

	reference := "WDL-" + uuid.New().String()
	withdrawal := &models.Withdrawal{
		UserID:     userID,
		Reference:  reference,
		AmountKobo: req.AmountKobo,
		BankCode:   req.BankCode,
		AccountNo:  req.AccountNo,
		Source:     "WALLET",
		Status:     domain.WithdrawalStatusPending,
	}
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := h.walletRepo.WithTx(tx).TryDebit(userID, req.AmountKobo); err != nil {
			return err
		}
		if err := h.withdrawalRepo.WithTx(tx).Create(withdrawal); err != nil {
			return err
		}
		entry := &models.Transaction{
			UserID:     userID,
			Type:       domain.TxTypeWithdrawal,
			AmountKobo: -req.AmountKobo,
			Reference:  reference,
			Status:     domain.TxStatusPending,
		}
		return h.txRepo.WithTx(tx).Create(entry)
	})
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "INSUFFICIENT_BALANCE"})
			return
		}
		log.Printf("[withdrawal] request user=%d amount=%d: %v", userID, req.AmountKobo, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to request withdrawal"})
		return
	}

	if err := h.notifSvc.NotifyWithdrawal(userID, req.AmountKobo, domain.WithdrawalStatusPending, reference); err != nil {
		log.Printf("[withdrawal] notify user %d: %v", userID, err)
	}
	if h.hub != nil {
		if w, err := h.walletRepo.GetByUserID(userID); err == nil {
			h.hub.BroadcastToUser(userID, ws.Event{Type: "wallet.updated", Table: "wallets", Row: w})
		}
	}
	c.JSON(http.StatusCreated, gin.H{"withdrawal": withdrawal})
}

// List is GET /withdrawals.
func (h *WithdrawalHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	list, err := h.withdrawalRepo.ListByUserID(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list, "count": len(list)})
}

// Settle is PATCH /admin/withdrawals/:id, body {"status":"COMPLETED"} or
// {"status":"FAILED"}. Completing flips the ledger entry to COMPLETED;
// failing refunds the up-front debit and marks the ledger entry FAILED.
func (h *WithdrawalHandler) Settle(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid withdrawal id"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,oneof=COMPLETED FAILED"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	withdrawal, err := h.withdrawalRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load withdrawal"})
		return
	}
	if withdrawal.Status != domain.WithdrawalStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "withdrawal already settled", "status": withdrawal.Status})
		return
	}

	now := time.Now()
	err = h.db.Transaction(func(tx *gorm.DB) error {
		withdrawal.Status = req.Status
		if req.Status == domain.WithdrawalStatusCompleted {
			withdrawal.CompletedAt = &now
		}
		if err := h.withdrawalRepo.WithTx(tx).Update(withdrawal); err != nil {
			return err
		}
		txStatus := domain.TxStatusCompleted
		if req.Status == domain.WithdrawalStatusFailed {
			txStatus = domain.TxStatusFailed
			if err := h.walletRepo.WithTx(tx).Refund(withdrawal.UserID, withdrawal.AmountKobo); err != nil {
				return err
			}
		}
		return tx.Model(&models.Transaction{}).
			Where("reference = ? AND user_id = ?", withdrawal.Reference, withdrawal.UserID).
			Update("status", txStatus).Error
	})
	if err != nil {
		log.Printf("[withdrawal] settle id=%d status=%s: %v", withdrawal.ID, req.Status, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to settle withdrawal"})
		return
	}

	if err := h.notifSvc.NotifyWithdrawal(withdrawal.UserID, withdrawal.AmountKobo, req.Status, withdrawal.Reference); err != nil {
		log.Printf("[withdrawal] notify user %d: %v", withdrawal.UserID, err)
	}
	if h.hub != nil {
		h.hub.BroadcastToUser(withdrawal.UserID, ws.Event{Type: "withdrawal.updated", Table: "withdrawals", Row: withdrawal})
		if req.Status == domain.WithdrawalStatusFailed {
			if w, err := h.walletRepo.GetByUserID(withdrawal.UserID); err == nil {
				h.hub.BroadcastToUser(withdrawal.UserID, ws.Event{Type: "wallet.updated", Table: "wallets", Row: w})
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": withdrawal})
}

// ListPending is GET /admin/withdrawals, oldest first so the queue
// drains in order.
func (h *WithdrawalHandler) ListPending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	status := c.DefaultQuery("status", domain.WithdrawalStatusPending)
	list, err := h.withdrawalRepo.ListByStatus(status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list, "count": len(list)})
}
