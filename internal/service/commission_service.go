package service

import (
	"errors"
	"math"
	"strconv"
	"time"

	"ajopay/config"
	"ajopay/internal/domain"
	"ajopay/internal/models"
	"ajopay/internal/repository"

	"gorm.io/gorm"
)

var ErrNothingToPayout = errors.New("no pending commission to pay out")

// CommissionService accrues agent commission on cash collections and
// converts accruals into wallet credits on payout.
type CommissionService struct {
	db             *gorm.DB
	cfg            *config.SavingsConfig
	settingRepo    *repository.SettingRepository
	commissionRepo *repository.CommissionRepository
	walletRepo     *repository.WalletRepository
	txRepo         *repository.TransactionRepository
	notifSvc       *NotificationService
}

func NewCommissionService(
	db *gorm.DB,
	cfg *config.SavingsConfig,
	settingRepo *repository.SettingRepository,
	commissionRepo *repository.CommissionRepository,
	walletRepo *repository.WalletRepository,
	txRepo *repository.TransactionRepository,
	notifSvc *NotificationService,
) *CommissionService {
	return &CommissionService{
		db:             db,
		cfg:            cfg,
		settingRepo:    settingRepo,
		commissionRepo: commissionRepo,
		walletRepo:     walletRepo,
		txRepo:         txRepo,
		notifSvc:       notifSvc,
	}
}

// Rate returns the commission percent, preferring the runtime system
// setting over the config default.
func (s *CommissionService) Rate() float64 {
	if s.settingRepo != nil {
		if v, err := s.settingRepo.Get(domain.SettingAgentCommissionPct); err == nil {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
				return f
			}
		}
	}
	return s.cfg.AgentCommissionPct
}

// CommissionKobo computes the accrual for a collected amount, rounded
// half away from zero to the nearest kobo.
func CommissionKobo(amountKobo int64, percent float64) int64 {
	return int64(math.Round(float64(amountKobo) * percent / 100))
}

// AccrueForContribution writes the commission row for an agent-recorded
// cash contribution.
func (s *CommissionService) AccrueForContribution(contribution *models.Contribution) (*models.Commission, error) {
	if contribution.AgentID == nil {
		return nil, nil
	}
	pct := s.Rate()
	commission := &models.Commission{
		AgentID:        *contribution.AgentID,
		ContributionID: contribution.ID,
		AmountKobo:     CommissionKobo(contribution.AmountKobo, pct),
		Percent:        pct,
		Status:         domain.CommissionStatusPending,
	}
	if err := s.commissionRepo.Create(commission); err != nil {
		return nil, err
	}
	return commission, nil
}

// Payout moves all PENDING accruals for an agent into their wallet:
// accruals flip to PAID, the wallet is credited, and a COMMISSION
// ledger row records the credit. All-or-nothing.
func (s *CommissionService) Payout(agentID uint) (int64, error) {
	if _, err := s.walletRepo.GetOrCreate(agentID); err != nil {
		return 0, err
	}
	var total int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		commissions := s.commissionRepo.WithTx(tx)
		sum, err := commissions.SumByAgentStatus(agentID, domain.CommissionStatusPending)
		if err != nil {
			return err
		}
		if sum <= 0 {
			return ErrNothingToPayout
		}
		now := time.Now()
		if err := commissions.MarkPendingPaid(agentID, now); err != nil {
			return err
		}
		if err := s.walletRepo.WithTx(tx).Credit(agentID, sum); err != nil {
			return err
		}
		entry := &models.Transaction{
			UserID:     agentID,
			Type:       domain.TxTypeCommission,
			AmountKobo: sum,
			Reference:  "COM-" + now.Format("20060102150405"),
			Status:     domain.TxStatusCompleted,
		}
		if err := s.txRepo.WithTx(tx).Create(entry); err != nil {
			return err
		}
		total = sum
		return nil
	})
	if err != nil {
		return 0, err
	}
	_ = s.notifSvc.NotifyCommissionPaid(agentID, total)
	return total, nil
}
