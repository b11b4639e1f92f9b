package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"ajopay/config"
	"ajopay/internal/repository"
	"ajopay/internal/service"
	"ajopay/pkg/paystack"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const webhookSecret = "sk_test_webhook"

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

func newWebhookRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.SavingsConfig{PlanPriceKobo: 50000}
	topupSvc := service.NewTopupService(
		db, cfg,
		repository.NewUserRepository(db),
		repository.NewWalletRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewTopupRepository(db),
		repository.NewContributionRepository(db),
		nil,
		service.NewNotificationService(repository.NewNotificationRepository(db), nil),
		nil,
	)
	h := NewPaystackWebhookHandler(webhookSecret, topupSvc)
	r := gin.New()
	r.POST("/payments/webhook", h.Handle)
	return r
}

func postWebhook(r *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(paystack.SignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	db, mock := newTestDB(t)
	r := newWebhookRouter(db)
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1","amount":10000}}`)

	w := postWebhook(r, body, "not-the-signature")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	// No database activity at all on a rejected delivery.
	assert.NoError(t, mock.ExpectationsWereMet())

	w = postWebhook(r, body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookAcknowledgesUnknownEvent(t *testing.T) {
	db, mock := newTestDB(t)
	r := newWebhookRouter(db)
	body := []byte(`{"event":"transfer.failed","data":{"reference":"ref-2"}}`)

	w := postWebhook(r, body, paystack.Sign(webhookSecret, body))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookIgnoresUnattributableCharge(t *testing.T) {
	db, mock := newTestDB(t)
	r := newWebhookRouter(db)

	// No metadata user_id and an unknown customer email.
	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	body := []byte(`{"event":"charge.success","data":{"reference":"ref-3","amount":10000,"customer":{"email":"ghost@example.com"}}}`)
	w := postWebhook(r, body, paystack.Sign(webhookSecret, body))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookChargeSuccessCreditsWallet(t *testing.T) {
	db, mock := newTestDB(t)
	r := newWebhookRouter(db)

	userRows := sqlmock.NewRows([]string{"id", "full_name", "email", "role", "settings"}).
		AddRow(1, "Ada Obi", "ada@example.com", "CUSTOMER", "")
	mock.ExpectQuery("SELECT \\* FROM `users`").WillReturnRows(userRows)
	// Fresh reference: no prior topup.
	mock.ExpectQuery("SELECT \\* FROM `wallet_topups`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT \\* FROM `wallets`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance_kobo"}).AddRow(10, 1, 0))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `wallet_topups`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE `wallets` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `contributions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectExec("INSERT INTO `notifications`").
		WillReturnResult(sqlmock.NewResult(1, 1))

	body := []byte(`{"event":"charge.success","data":{"reference":"ref-4","amount":10000,"channel":"card","customer":{"email":"ada@example.com"}}}`)
	w := postWebhook(r, body, paystack.Sign(webhookSecret, body))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookReplayIsNoOp(t *testing.T) {
	db, mock := newTestDB(t)
	r := newWebhookRouter(db)

	userRows := sqlmock.NewRows([]string{"id", "email", "settings"}).
		AddRow(1, "ada@example.com", "")
	mock.ExpectQuery("SELECT \\* FROM `users`").WillReturnRows(userRows)
	// Reference already recorded: nothing else happens.
	mock.ExpectQuery("SELECT \\* FROM `wallet_topups`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount_kobo", "provider_ref"}).
			AddRow(7, 1, 10000, "ref-4"))

	body := []byte(`{"event":"charge.success","data":{"reference":"ref-4","amount":10000,"customer":{"email":"ada@example.com"}}}`)
	w := postWebhook(r, body, paystack.Sign(webhookSecret, body))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
