package service

import (
	"testing"

	"ajopay/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestReconciliationService(db *gorm.DB) *ReconciliationService {
	walletRepo := repository.NewWalletRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	userRepo := repository.NewUserRepository(db)
	notifSvc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	return NewReconciliationService(walletRepo, txRepo, userRepo, notifSvc)
}

func TestReconcileIgnoresPendingWithdrawalDebit(t *testing.T) {
	db, mock := newTestDB(t)
	svc := newTestReconciliationService(db)

	// A requested withdrawal debits the wallet before its ledger entry
	// settles: balance 0 against a COMPLETED +5000 deposit and a
	// PENDING -5000 withdrawal leg is consistent, not drift.
	mock.ExpectQuery("SELECT \\* FROM `wallets`").
		WillReturnRows(walletRow(10, 1, 0))
	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "role"}))
	mock.ExpectQuery("SELECT SUM\\(amount_kobo\\) FROM `transactions`").
		WithArgs(1, "COMPLETED", "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"SUM(amount_kobo)"}).AddRow(0))

	n, err := svc.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileFlagsDriftedBalance(t *testing.T) {
	db, mock := newTestDB(t)
	svc := newTestReconciliationService(db)

	mock.ExpectQuery("SELECT \\* FROM `wallets`").
		WillReturnRows(walletRow(10, 1, 10_000))
	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "role"}).
			AddRow(99, "Seed Admin", "ADMIN"))
	mock.ExpectQuery("SELECT SUM\\(amount_kobo\\) FROM `transactions`").
		WithArgs(1, "COMPLETED", "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"SUM(amount_kobo)"}).AddRow(4000))
	mock.ExpectExec("INSERT INTO `notifications`").
		WillReturnResult(sqlmock.NewResult(1, 1))

	n, err := svc.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
