package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"ajopay/config"
	"ajopay/internal/domain"
	"ajopay/internal/models"
	"ajopay/internal/repository"
	"ajopay/internal/ws"
	"ajopay/pkg/paystack"

	"gorm.io/gorm"
)

var (
	ErrUnknownPaymentUser = errors.New("cannot resolve user for payment")
)

// TopupService records confirmed card charges from the payment provider.
// The money-recording rows (topup, wallet credit, ledger entry, mirrored
// contribution) are written in a single transaction keyed by the
// provider reference, so webhook replays are no-ops.
type TopupService struct {
	db          *gorm.DB
	cfg         *config.SavingsConfig
	userRepo    *repository.UserRepository
	walletRepo  *repository.WalletRepository
	txRepo      *repository.TransactionRepository
	topupRepo   *repository.TopupRepository
	contribRepo *repository.ContributionRepository
	subRepo     *repository.SubscriptionRepository
	notifSvc    *NotificationService
	hub         *ws.Hub
}

func NewTopupService(
	db *gorm.DB,
	cfg *config.SavingsConfig,
	userRepo *repository.UserRepository,
	walletRepo *repository.WalletRepository,
	txRepo *repository.TransactionRepository,
	topupRepo *repository.TopupRepository,
	contribRepo *repository.ContributionRepository,
	subRepo *repository.SubscriptionRepository,
	notifSvc *NotificationService,
	hub *ws.Hub,
) *TopupService {
	return &TopupService{
		db:          db,
		cfg:         cfg,
		userRepo:    userRepo,
		walletRepo:  walletRepo,
		txRepo:      txRepo,
		topupRepo:   topupRepo,
		contribRepo: contribRepo,
		subRepo:     subRepo,
		notifSvc:    notifSvc,
		hub:         hub,
	}
}

// ProcessChargeSuccess applies a charge.success event. The replay return
// is true when this reference was already recorded.
func (s *TopupService) ProcessChargeSuccess(data *paystack.EventData) (*models.WalletTopup, bool, error) {
	user, err := s.resolveUser(data)
	if err != nil {
		return nil, false, err
	}
	if existing, err := s.topupRepo.GetByProviderRef(data.Reference); err == nil {
		return existing, true, nil
	}
	if _, err := s.walletRepo.GetOrCreate(user.ID); err != nil {
		return nil, false, err
	}

	paidAt := time.Now()
	if data.PaidAt != "" {
		if t, err := time.Parse(time.RFC3339, data.PaidAt); err == nil {
			paidAt = t
		}
	}

	topup := &models.WalletTopup{
		UserID:      user.ID,
		AmountKobo:  data.Amount,
		Provider:    "paystack",
		ProviderRef: data.Reference,
		Channel:     data.Channel,
		PaidAt:      &paidAt,
	}
	var entry *models.Transaction
	var contribution *models.Contribution
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.topupRepo.WithTx(tx).Create(topup); err != nil {
			return err
		}
		if err := s.walletRepo.WithTx(tx).Credit(user.ID, data.Amount); err != nil {
			return err
		}
		meta, _ := json.Marshal(map[string]interface{}{"channel": data.Channel, "provider": "paystack"})
		entry = &models.Transaction{
			UserID:     user.ID,
			Type:       domain.TxTypeDeposit,
			AmountKobo: data.Amount,
			Reference:  data.Reference,
			Status:     domain.TxStatusCompleted,
			Metadata:   string(meta),
		}
		if err := s.txRepo.WithTx(tx).Create(entry); err != nil {
			return err
		}
		contribution = &models.Contribution{
			UserID:        user.ID,
			AmountKobo:    data.Amount,
			Method:        domain.ContributionMethodCard,
			Status:        domain.ContributionStatusConfirmed,
			Reference:     data.Reference,
			ContributedAt: paidAt,
		}
		return s.contribRepo.WithTx(tx).Create(contribution)
	})
	if err != nil {
		return nil, false, err
	}

	// Post-commit side effects: each failure is logged and the rest
	// still run.
	if err := s.notifSvc.NotifyTopup(user.ID, data.Amount, data.Reference); err != nil {
		log.Printf("[paystack] notify topup user=%d: %v", user.ID, err)
	}
	s.maybeActivateSubscription(user.ID, data.Amount)
	s.maybeAutoSave(user)
	if s.hub != nil {
		s.hub.BroadcastToUser(user.ID, ws.Event{Type: "transaction.created", Table: "transactions", Row: entry})
		s.hub.BroadcastToUser(user.ID, ws.Event{Type: "contribution.created", Table: "contributions", Row: contribution})
		if w, err := s.walletRepo.GetByUserID(user.ID); err == nil {
			s.hub.BroadcastToUser(user.ID, ws.Event{Type: "wallet.updated", Table: "wallets", Row: w})
		}
	}
	return topup, false, nil
}

func (s *TopupService) resolveUser(data *paystack.EventData) (*models.User, error) {
	if id, ok := data.UserID(); ok {
		if u, err := s.userRepo.GetByID(id); err == nil {
			return u, nil
		}
	}
	if data.Customer.Email != "" {
		if u, err := s.userRepo.GetByEmail(data.Customer.Email); err == nil {
			return u, nil
		}
	}
	return nil, ErrUnknownPaymentUser
}

// maybeActivateSubscription converts a trial to active when the charge
// matches the plan price.
func (s *TopupService) maybeActivateSubscription(userID uint, amountKobo int64) {
	if s.subRepo == nil || amountKobo != s.cfg.PlanPriceKobo {
		return
	}
	until := time.Now().AddDate(0, 1, 0)
	activated, err := s.subRepo.ActivateTrial(userID, until)
	if err != nil {
		log.Printf("[paystack] activate subscription user=%d: %v", userID, err)
		return
	}
	if activated {
		log.Printf("[paystack] subscription activated user=%d until=%s", userID, until.Format("2006-01-02"))
	}
}

// maybeAutoSave marks today's savings from the fresh wallet balance
// when the user has auto_save_daily enabled and today is unmarked. The
// debit is guarded, so an underfunded wallet just skips the day.
func (s *TopupService) maybeAutoSave(user *models.User) {
	if s.cfg.DailySaveKobo <= 0 || !autoSaveEnabled(user.Settings) {
		return
	}
	today := time.Now()
	marked, err := s.contribRepo.ExistsForDay(user.ID, today)
	if err != nil || marked {
		return
	}
	if err := s.walletRepo.TryDebit(user.ID, s.cfg.DailySaveKobo); err != nil {
		if !errors.Is(err, repository.ErrInsufficientBalance) {
			log.Printf("[paystack] auto-save debit user=%d: %v", user.ID, err)
		}
		return
	}
	reference := fmt.Sprintf("AUTOSAVE-%s-%d", today.Format("20060102"), user.ID)
	_ = s.txRepo.Create(&models.Transaction{
		UserID:     user.ID,
		Type:       domain.TxTypeWithdrawal,
		AmountKobo: -s.cfg.DailySaveKobo,
		Reference:  reference,
		Status:     domain.TxStatusCompleted,
	})
	_ = s.contribRepo.Create(&models.Contribution{
		UserID:        user.ID,
		AmountKobo:    s.cfg.DailySaveKobo,
		Method:        domain.ContributionMethodWallet,
		Status:        domain.ContributionStatusConfirmed,
		Reference:     reference,
		ContributedAt: today,
	})
}

func autoSaveEnabled(settingsJSON string) bool {
	if settingsJSON == "" {
		return false
	}
	var settings struct {
		AutoSaveDaily bool `json:"auto_save_daily"`
	}
	if err := json.Unmarshal([]byte(settingsJSON), &settings); err != nil {
		return false
	}
	return settings.AutoSaveDaily
}
