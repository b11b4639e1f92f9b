package service

import (
	"encoding/json"
	"errors"
	"log"
	"regexp"

	"ajopay/config"
	"ajopay/internal/domain"
	"ajopay/internal/models"
	"ajopay/internal/repository"
	"ajopay/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAmountOutOfRange  = errors.New("amount must be between NGN 1 and NGN 1,000,000")
	ErrInvalidRecipient  = errors.New("recipient must be an email or Nigerian phone number")
	ErrInvalidWalletType = errors.New("wallet type must be ngn or crypto")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrSelfTransfer      = errors.New("cannot send money to yourself")
)

var (
	emailRe         = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nigerianPhoneRe = regexp.MustCompile(`^(\+234|234|0)[789][01]\d{8}$`)
)

// ValidRecipientHandle reports whether s looks like an email address or
// a Nigerian phone number.
func ValidRecipientHandle(s string) bool {
	return emailRe.MatchString(s) || nigerianPhoneRe.MatchString(s)
}

// TransferService moves money between wallets. The whole mutation runs
// in one database transaction with a guarded debit, so a failed step
// leaves nothing behind and concurrent sends cannot overdraw.
type TransferService struct {
	db         *gorm.DB
	cfg        *config.SavingsConfig
	userRepo   *repository.UserRepository
	walletRepo *repository.WalletRepository
	txRepo     *repository.TransactionRepository
	notifSvc   *NotificationService
	hub        *ws.Hub
}

func NewTransferService(
	db *gorm.DB,
	cfg *config.SavingsConfig,
	userRepo *repository.UserRepository,
	walletRepo *repository.WalletRepository,
	txRepo *repository.TransactionRepository,
	notifSvc *NotificationService,
	hub *ws.Hub,
) *TransferService {
	return &TransferService{
		db:         db,
		cfg:        cfg,
		userRepo:   userRepo,
		walletRepo: walletRepo,
		txRepo:     txRepo,
		notifSvc:   notifSvc,
		hub:        hub,
	}
}

type SendRequest struct {
	AmountKobo  int64
	Recipient   string // email or phone
	Description string
	WalletType  string // ngn | crypto
}

type SendResult struct {
	Reference      string
	NewBalanceKobo int64
	Transaction    *models.Transaction
	Recipient      *models.User
}

func (s *TransferService) Send(senderID uint, req SendRequest) (*SendResult, error) {
	if req.AmountKobo < s.cfg.MinTransferKobo || req.AmountKobo > s.cfg.MaxTransferKobo {
		return nil, ErrAmountOutOfRange
	}
	if req.WalletType != domain.WalletTypeNGN && req.WalletType != domain.WalletTypeCrypto {
		return nil, ErrInvalidWalletType
	}
	if !ValidRecipientHandle(req.Recipient) {
		return nil, ErrInvalidRecipient
	}

	recipient, err := s.userRepo.GetByEmailOrPhone(req.Recipient)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}
	if recipient.ID == senderID {
		return nil, ErrSelfTransfer
	}

	// Lazily create both wallets before the money moves.
	if _, err := s.walletRepo.GetOrCreate(senderID); err != nil {
		return nil, err
	}
	if _, err := s.walletRepo.GetOrCreate(recipient.ID); err != nil {
		return nil, err
	}

	reference := "TRF-" + uuid.New().String()
	meta, _ := json.Marshal(map[string]interface{}{
		"description": req.Description,
		"wallet_type": req.WalletType,
		"sender_id":   senderID,
		"recipient":   recipient.ID,
	})

	var debit *models.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		wallets := s.walletRepo.WithTx(tx)
		// Lock the two wallet rows in user-id order so a pair of
		// opposite transfers cannot deadlock.
		debitSender := func() error { return wallets.TryDebit(senderID, req.AmountKobo) }
		creditRecipient := func() error { return wallets.Credit(recipient.ID, req.AmountKobo) }
		first, second := debitSender, creditRecipient
		if recipient.ID < senderID {
			first, second = creditRecipient, debitSender
		}
		if err := first(); err != nil {
			return err
		}
		if err := second(); err != nil {
			return err
		}
		ledger := s.txRepo.WithTx(tx)
		debit = &models.Transaction{
			UserID:     senderID,
			Type:       domain.TxTypeSend,
			AmountKobo: -req.AmountKobo,
			Reference:  reference,
			Status:     domain.TxStatusCompleted,
			Metadata:   string(meta),
		}
		if err := ledger.Create(debit); err != nil {
			return err
		}
		credit := &models.Transaction{
			UserID:     recipient.ID,
			Type:       domain.TxTypeReceive,
			AmountKobo: req.AmountKobo,
			Reference:  reference,
			Status:     domain.TxStatusCompleted,
			Metadata:   string(meta),
		}
		return ledger.Create(credit)
	})
	if err != nil {
		return nil, err
	}

	// Post-commit side effects are best-effort: a failure here must never
	// undo a committed transfer.
	sender, senderErr := s.userRepo.GetByID(senderID)
	senderName := "Someone"
	if senderErr == nil {
		senderName = sender.FullName
	}
	if err := s.notifSvc.NotifyTransferSent(senderID, req.AmountKobo, recipient.FullName, reference); err != nil {
		log.Printf("[transfer] notify sender %d: %v", senderID, err)
	}
	if err := s.notifSvc.NotifyTransferReceived(recipient.ID, req.AmountKobo, senderName, reference); err != nil {
		log.Printf("[transfer] notify recipient %d: %v", recipient.ID, err)
	}
	if s.hub != nil {
		if w, err := s.walletRepo.GetByUserID(recipient.ID); err == nil {
			s.hub.BroadcastToUser(recipient.ID, ws.Event{Type: "wallet.updated", Table: "wallets", Row: w})
		}
	}

	newBalance := int64(0)
	if w, err := s.walletRepo.GetByUserID(senderID); err == nil {
		newBalance = w.BalanceKobo
		if s.hub != nil {
			s.hub.BroadcastToUser(senderID, ws.Event{Type: "wallet.updated", Table: "wallets", Row: w})
		}
	}

	return &SendResult{
		Reference:      reference,
		NewBalanceKobo: newBalance,
		Transaction:    debit,
		Recipient:      recipient,
	}, nil
}
