package service

import (
	"log"

	"ajopay/internal/domain"
	"ajopay/internal/repository"
)

// ReconciliationService compares each wallet balance against the ledger
// total the balance should reflect: COMPLETED entries plus PENDING debit
// legs (a requested withdrawal debits the wallet before its ledger entry
// settles). Mismatches are reported to admins, not auto-corrected: a
// drifted balance needs a human decision.
type ReconciliationService struct {
	walletRepo *repository.WalletRepository
	txRepo     *repository.TransactionRepository
	userRepo   *repository.UserRepository
	notifSvc   *NotificationService
}

func NewReconciliationService(
	walletRepo *repository.WalletRepository,
	txRepo *repository.TransactionRepository,
	userRepo *repository.UserRepository,
	notifSvc *NotificationService,
) *ReconciliationService {
	return &ReconciliationService{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		userRepo:   userRepo,
		notifSvc:   notifSvc,
	}
}

// Run checks every wallet and returns the number of mismatches found.
func (s *ReconciliationService) Run() (int, error) {
	wallets, err := s.walletRepo.ListAll()
	if err != nil {
		return 0, err
	}
	admins, err := s.userRepo.ListByRole(domain.RoleAdmin)
	if err != nil {
		log.Printf("[reconcile] list admins: %v", err)
	}
	mismatches := 0
	for _, w := range wallets {
		ledger, err := s.txRepo.SumExpectedBalanceByUser(w.UserID)
		if err != nil {
			log.Printf("[reconcile] ledger sum for user %d: %v", w.UserID, err)
			continue
		}
		if ledger == w.BalanceKobo {
			continue
		}
		mismatches++
		log.Printf("[reconcile] mismatch user=%d balance=%d ledger=%d", w.UserID, w.BalanceKobo, ledger)
		for _, admin := range admins {
			_ = s.notifSvc.NotifyBalanceMismatch(admin.ID, w.UserID, w.BalanceKobo, ledger)
		}
	}
	log.Printf("[reconcile] checked %d wallets, %d mismatches", len(wallets), mismatches)
	return mismatches, nil
}
