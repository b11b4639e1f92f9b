package handler

import (
	"errors"
	"fmt"
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
	"ajopay/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContributionHandler covers both sides of the savings ledger: customers
// marking their own days from the wallet, and agents recording the cash
// they collected in the field.
type ContributionHandler struct {
	db            *gorm.DB
	contribRepo   *repository.ContributionRepository
	walletRepo    *repository.WalletRepository
	txRepo        *repository.TransactionRepository
	userRepo      *repository.UserRepository
	commissionSvc *service.CommissionService
	notifSvc      *service.NotificationService
	cloud         cloudinary.Client
	hub           *ws.Hub
}

func NewContributionHandler(
	db *gorm.DB,
	contribRepo *repository.ContributionRepository,
	walletRepo *repository.WalletRepository,
	txRepo *repository.TransactionRepository,
	userRepo *repository.UserRepository,
	commissionSvc *service.CommissionService,
	notifSvc *service.NotificationService,
	cloud cloudinary.Client,
	hub *ws.Hub,
) *ContributionHandler {
	return &ContributionHandler{
		db:            db,
		contribRepo:   contribRepo,
		walletRepo:    walletRepo,
		txRepo:        txRepo,
		userRepo:      userRepo,
		commissionSvc: commissionSvc,
		notifSvc:      notifSvc,
		cloud:         cloud,
		hub:           hub,
	}
}

type MarkContributionRequest struct {
	AmountKobo int64 `json:"amount_kobo" binding:"required,min=1"`
}

// Mark is POST /contributions: the customer saves today's amount out of
// their wallet. The debit, ledger entry and contribution row commit
// together.
func (h *ContributionHandler) Mark(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req MarkContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.walletRepo.GetOrCreate(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet"})
		return
	}

	now := time.Now()
	reference := fmt.Sprintf("SAVE-%s-%s", now.Format("20060102"), uuid.New().String()[:8])
	contribution := &models.Contribution{
		UserID:        userID,
		AmountKobo:    req.AmountKobo,
		Method:        domain.ContributionMethodWallet,
		Status:        domain.ContributionStatusConfirmed,
		Reference:     reference,
		ContributedAt: now,
	}
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := h.walletRepo.WithTx(tx).TryDebit(userID, req.AmountKobo); err != nil {
			return err
		}
		entry := &models.Transaction{
			UserID:     userID,
			Type:       domain.TxTypeWithdrawal,
			AmountKobo: -req.AmountKobo,
			Reference:  reference,
			Status:     domain.TxStatusCompleted,
		}
		if err := h.txRepo.WithTx(tx).Create(entry); err != nil {
			return err
		}
		return h.contribRepo.WithTx(tx).Create(contribution)
	})
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "INSUFFICIENT_BALANCE"})
			return
		}
		log.Printf("[contrib] mark failed: user=%d amount=%d err=%v", userID, req.AmountKobo, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record contribution"})
		return
	}

	if h.hub != nil {
		h.hub.BroadcastToUser(userID, ws.Event{Type: "contribution.created", Table: "contributions", Row: contribution})
		if w, err := h.walletRepo.GetByUserID(userID); err == nil {
			h.hub.BroadcastToUser(userID, ws.Event{Type: "wallet.updated", Table: "wallets", Row: w})
		}
	}
	c.JSON(http.StatusCreated, gin.H{"contribution": contribution})
}

// List is GET /contributions, newest first. Optional ?from= and ?to=
// (YYYY-MM-DD) narrow the range; to is exclusive.
func (h *ContributionHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return
		}
		to = &t
	}
	list, err := h.contribRepo.ListByUserBetween(userID, from, to, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load contributions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contributions": list, "count": len(list)})
}

// RecordCash is POST /agent/collections (multipart). The agent names the
// customer by email or phone, attaches an optional receipt photo, and
// commission accrues on the recorded amount. Cash never touches the
// customer's wallet balance; it stays with the agent until remitted.
func (h *ContributionHandler) RecordCash(c *gin.Context) {
	agentID := middleware.GetUserID(c)
	customerHandle := c.PostForm("customer")
	amountStr := c.PostForm("amount_kobo")
	amountKobo, err := strconv.ParseInt(amountStr, 10, 64)
	if err != nil || amountKobo <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_kobo must be a positive integer"})
		return
	}
	if !service.ValidRecipientHandle(customerHandle) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customer must be an email or Nigerian phone number"})
		return
	}
	customer, err := h.userRepo.GetByEmailOrPhone(customerHandle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if customer.ID == agentID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot record a collection for yourself"})
		return
	}

	now := time.Now()
	reference := fmt.Sprintf("CASH-%s-%s", now.Format("20060102"), uuid.New().String()[:8])

	receiptURL := ""
	if file, header, err := c.Request.FormFile("receipt"); err == nil && h.cloud != nil {
		defer file.Close()
		url, _, upErr := h.cloud.UploadImage(c.Request.Context(), file, "receipts", reference)
		if upErr != nil {
			log.Printf("[contrib] receipt upload agent=%d file=%s: %v", agentID, header.Filename, upErr)
		} else {
			receiptURL = url
		}
	}

	contribution := &models.Contribution{
		UserID:        customer.ID,
		AgentID:       &agentID,
		AmountKobo:    amountKobo,
		Method:        domain.ContributionMethodCash,
		Status:        domain.ContributionStatusConfirmed,
		Reference:     reference,
		ReceiptURL:    receiptURL,
		ContributedAt: now,
	}
	if err := h.contribRepo.Create(contribution); err != nil {
		log.Printf("[contrib] record cash agent=%d customer=%d: %v", agentID, customer.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record collection"})
		return
	}

	commission, err := h.commissionSvc.AccrueForContribution(contribution)
	if err != nil {
		log.Printf("[contrib] commission accrual agent=%d contribution=%d: %v", agentID, contribution.ID, err)
	}

	agent, agentErr := h.userRepo.GetByID(agentID)
	agentName := "Your agent"
	if agentErr == nil {
		agentName = agent.FullName
	}
	if err := h.notifSvc.NotifyCashRecorded(customer.ID, amountKobo, agentName); err != nil {
		log.Printf("[contrib] notify customer %d: %v", customer.ID, err)
	}
	if h.hub != nil {
		h.hub.BroadcastToUser(customer.ID, ws.Event{Type: "contribution.created", Table: "contributions", Row: contribution})
	}

	c.JSON(http.StatusCreated, gin.H{
		"contribution": contribution,
		"commission":   commission,
	})
}

// ListCollections is GET /agent/collections.
func (h *ContributionHandler) ListCollections(c *gin.Context) {
	agentID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	list, err := h.contribRepo.ListByAgentID(agentID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load collections"})
		return
	}
	total, err := h.contribRepo.SumCollectedByAgent(agentID)
	if err != nil {
		total = 0
	}
	c.JSON(http.StatusOK, gin.H{
		"collections":          list,
		"count":                len(list),
		"total_collected_kobo": total,
	})
}
