package service

import (
	"testing"

	"ajopay/config"
	"ajopay/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func testSavingsConfig() *config.SavingsConfig {
	return &config.SavingsConfig{
		MinTransferKobo: 100,
		MaxTransferKobo: 100_000_000,
	}
}

func newTestTransferService(db *gorm.DB) *TransferService {
	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	notifSvc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	return NewTransferService(db, testSavingsConfig(), userRepo, walletRepo, txRepo, notifSvc, nil)
}

func userRow(id uint, fullName, email string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "full_name", "email", "role"}).
		AddRow(id, fullName, email, "CUSTOMER")
}

func walletRow(id, userID uint, balanceKobo int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "balance_kobo", "total_contributed_kobo", "total_withdrawn_kobo", "currency"}).
		AddRow(id, userID, balanceKobo, 0, 0, "NGN")
}

func TestSendHappyPath(t *testing.T) {
	db, mock := newTestDB(t)
	svc := newTestTransferService(db)

	// Recipient lookup, then both wallets.
	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(userRow(2, "Bola Ahmed", "bola@example.com"))
	mock.ExpectQuery("SELECT \\* FROM `wallets`").
		WillReturnRows(walletRow(10, 1, 500_000))
	mock.ExpectQuery("SELECT \\* FROM `wallets`").
		WillReturnRows(walletRow(11, 2, 0))

	// The money movement is one transaction.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `wallets` SET").
		WillReturnResult(sqlmock.NewResult(0, 1)) // guarded debit
	mock.ExpectExec("UPDATE `wallets` SET").
		WillReturnResult(sqlmock.NewResult(0, 1)) // credit
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(100, 1)) // SEND leg
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(101, 1)) // RECEIVE leg
	mock.ExpectCommit()

	// Post-commit: sender name, two notifications, fresh balance.
	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(userRow(1, "Ada Obi", "ada@example.com"))
	mock.ExpectExec("INSERT INTO `notifications`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `notifications`").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectQuery("SELECT \\* FROM `wallets`").
		WillReturnRows(walletRow(10, 1, 490_000))

	result, err := svc.Send(1, SendRequest{
		AmountKobo: 10_000,
		Recipient:  "bola@example.com",
		WalletType: "ngn",
	})
	require.NoError(t, err)
	assert.Contains(t, result.Reference, "TRF-")
	assert.Equal(t, int64(490_000), result.NewBalanceKobo)
	assert.Equal(t, int64(-10_000), result.Transaction.AmountKobo)
	assert.Equal(t, uint(2), result.Recipient.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendLocksWalletsInUserIDOrder(t *testing.T) {
	db, mock := newTestDB(t)
	svc := newTestTransferService(db)

	// Recipient id 2 is lower than sender id 5, so the recipient row
	// must be locked first or two opposite sends can deadlock.
	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(userRow(2, "Bola Ahmed", "bola@example.com"))
	mock.ExpectQuery("SELECT \\* FROM `wallets`").
		WillReturnRows(walletRow(10, 5, 500_000))
	mock.ExpectQuery("SELECT \\* FROM `wallets`").
		WillReturnRows(walletRow(11, 2, 0))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `wallets` SET .*total_contributed_kobo").
		WillReturnResult(sqlmock.NewResult(0, 1)) // credit to user 2 first
	mock.ExpectExec("UPDATE `wallets` SET .*total_withdrawn_kobo").
		WillReturnResult(sqlmock.NewResult(0, 1)) // then guarded debit of user 5
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(101, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(userRow(5, "Ada Obi", "ada@example.com"))
	mock.ExpectExec("INSERT INTO `notifications`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `notifications`").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectQuery("SELECT \\* FROM `wallets`").
		WillReturnRows(walletRow(10, 5, 490_000))

	result, err := svc.Send(5, SendRequest{
		AmountKobo: 10_000,
		Recipient:  "bola@example.com",
		WalletType: "ngn",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(490_000), result.NewBalanceKobo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendInsufficientBalanceRollsBack(t *testing.T) {
	db, mock := newTestDB(t)
	svc := newTestTransferService(db)

	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(userRow(2, "Bola Ahmed", "bola@example.com"))
	mock.ExpectQuery("SELECT \\* FROM `wallets`").
		WillReturnRows(walletRow(10, 1, 50))
	mock.ExpectQuery("SELECT \\* FROM `wallets`").
		WillReturnRows(walletRow(11, 2, 0))

	mock.ExpectBegin()
	// No row matches the balance guard.
	mock.ExpectExec("UPDATE `wallets` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.Send(1, SendRequest{
		AmountKobo: 10_000,
		Recipient:  "bola@example.com",
		WalletType: "ngn",
	})
	assert.ErrorIs(t, err, repository.ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendRecipientNotFound(t *testing.T) {
	db, mock := newTestDB(t)
	svc := newTestTransferService(db)

	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Send(1, SendRequest{
		AmountKobo: 10_000,
		Recipient:  "ghost@example.com",
		WalletType: "ngn",
	})
	assert.ErrorIs(t, err, ErrRecipientNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendSelfTransferRejected(t *testing.T) {
	db, mock := newTestDB(t)
	svc := newTestTransferService(db)

	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(userRow(1, "Ada Obi", "ada@example.com"))

	_, err := svc.Send(1, SendRequest{
		AmountKobo: 10_000,
		Recipient:  "ada@example.com",
		WalletType: "ngn",
	})
	assert.ErrorIs(t, err, ErrSelfTransfer)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendValidation(t *testing.T) {
	db, _ := newTestDB(t)
	svc := newTestTransferService(db)

	cases := []struct {
		name string
		req  SendRequest
		want error
	}{
		{"below minimum", SendRequest{AmountKobo: 50, Recipient: "a@b.co", WalletType: "ngn"}, ErrAmountOutOfRange},
		{"above maximum", SendRequest{AmountKobo: 200_000_000, Recipient: "a@b.co", WalletType: "ngn"}, ErrAmountOutOfRange},
		{"bad wallet type", SendRequest{AmountKobo: 1000, Recipient: "a@b.co", WalletType: "usd"}, ErrInvalidWalletType},
		{"bad handle", SendRequest{AmountKobo: 1000, Recipient: "not-a-handle", WalletType: "ngn"}, ErrInvalidRecipient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Send(1, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
