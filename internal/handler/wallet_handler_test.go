package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ajopay/config"
	"ajopay/internal/repository"
	"ajopay/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newWalletRouter(db *gorm.DB, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.SavingsConfig{MinTransferKobo: 100, MaxTransferKobo: 100_000_000}
	walletRepo := repository.NewWalletRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	transferSvc := service.NewTransferService(
		db, cfg,
		repository.NewUserRepository(db),
		walletRepo, txRepo,
		service.NewNotificationService(repository.NewNotificationRepository(db), nil),
		nil,
	)
	h := NewWalletHandler(walletRepo, txRepo, transferSvc)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	r.POST("/wallet/send", h.Send)
	r.GET("/wallet", h.GetBalance)
	return r
}

func sendJSON(r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSendRejectsAmountOutOfRange(t *testing.T) {
	db, mock := newTestDB(t)
	r := newWalletRouter(db, 1)

	w := sendJSON(r, http.MethodPost, "/wallet/send", gin.H{
		"amount_kobo": 50,
		"recipient":   "bola@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "AMOUNT_OUT_OF_RANGE")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendRejectsBadRecipientHandle(t *testing.T) {
	db, mock := newTestDB(t)
	r := newWalletRouter(db, 1)

	w := sendJSON(r, http.MethodPost, "/wallet/send", gin.H{
		"amount_kobo": 5000,
		"recipient":   "not a handle",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_RECIPIENT")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendUnknownRecipientIs404(t *testing.T) {
	db, mock := newTestDB(t)
	r := newWalletRouter(db, 1)

	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := sendJSON(r, http.MethodPost, "/wallet/send", gin.H{
		"amount_kobo": 5000,
		"recipient":   "ghost@example.com",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "RECIPIENT_NOT_FOUND")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendInsufficientBalanceIs422(t *testing.T) {
	db, mock := newTestDB(t)
	r := newWalletRouter(db, 1)

	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email"}).
			AddRow(2, "Bola Ahmed", "bola@example.com"))
	mock.ExpectQuery("SELECT \\* FROM `wallets`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance_kobo"}).AddRow(10, 1, 100))
	mock.ExpectQuery("SELECT \\* FROM `wallets`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance_kobo"}).AddRow(11, 2, 0))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `wallets` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	w := sendJSON(r, http.MethodPost, "/wallet/send", gin.H{
		"amount_kobo": 5000,
		"recipient":   "bola@example.com",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "INSUFFICIENT_BALANCE")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendSuccessResponseShape(t *testing.T) {
	db, mock := newTestDB(t)
	r := newWalletRouter(db, 1)

	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email"}).
			AddRow(2, "Bola Ahmed", "bola@example.com"))
	mock.ExpectQuery("SELECT \\* FROM `wallets`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance_kobo"}).AddRow(10, 1, 500_000))
	mock.ExpectQuery("SELECT \\* FROM `wallets`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance_kobo"}).AddRow(11, 2, 0))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `wallets` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `wallets` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `transactions`").WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectExec("INSERT INTO `transactions`").WillReturnResult(sqlmock.NewResult(101, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email"}).
			AddRow(1, "Ada Obi", "ada@example.com"))
	mock.ExpectExec("INSERT INTO `notifications`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `notifications`").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectQuery("SELECT \\* FROM `wallets`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance_kobo"}).AddRow(10, 1, 495_000))

	w := sendJSON(r, http.MethodPost, "/wallet/send", gin.H{
		"amount_kobo": 5000,
		"recipient":   "bola@example.com",
		"description": "lunch",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success    bool   `json:"success"`
		Reference  string `json:"reference"`
		NewBalance int64  `json:"newBalance"`
		Timestamp  string `json:"timestamp"`
		Recipient  struct {
			ID       uint   `json:"id"`
			FullName string `json:"full_name"`
		} `json:"recipient"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Reference, "TRF-")
	assert.Equal(t, int64(495_000), resp.NewBalance)
	assert.NotEmpty(t, resp.Timestamp)
	assert.Equal(t, uint(2), resp.Recipient.ID)
	assert.Equal(t, "Bola Ahmed", resp.Recipient.FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
