package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ajopay/config"
	"ajopay/internal/repository"
	"ajopay/internal/service"
	"ajopay/pkg/paystack"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newVerifyRouter(db *gorm.DB, userID uint, providerURL string) *gin.Engine {
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
	h := NewPaymentVerifyHandler(paystack.NewClient(providerURL, "sk_test_verify"), topupSvc)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	r.POST("/payments/verify", h.Verify)
	return r
}

func postVerify(r *gin.Engine, reference string) *httptest.ResponseRecorder {
	body := fmt.Sprintf(`{"reference":%q}`, reference)
	req := httptest.NewRequest(http.MethodPost, "/payments/verify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVerifyReplayedChargeReturnsTopup(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref-9", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_verify", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"status":true,"message":"Verification successful","data":{"reference":"ref-9","amount":10000,"status":"success","customer":{"email":"ada@example.com"},"metadata":{"user_id":1}}}`)
	}))
	defer provider.Close()

	db, mock := newTestDB(t)
	r := newVerifyRouter(db, 1, provider.URL)

	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "settings"}).
			AddRow(1, "ada@example.com", ""))
	// Webhook already landed: the reference is recorded, nothing new.
	mock.ExpectQuery("SELECT \\* FROM `wallet_topups`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount_kobo", "provider_ref"}).
			AddRow(7, 1, 10000, "ref-9"))

	w := postVerify(r, "ref-9")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"replay":true`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyRejectsUnsuccessfulCharge(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":true,"message":"Verification successful","data":{"reference":"ref-10","amount":10000,"status":"abandoned"}}`)
	}))
	defer provider.Close()

	db, mock := newTestDB(t)
	r := newVerifyRouter(db, 1, provider.URL)

	w := postVerify(r, "ref-10")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CHARGE_NOT_SUCCESSFUL")
	// An unsettled charge touches nothing.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyProviderErrorIsBadGateway(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer provider.Close()

	db, mock := newTestDB(t)
	r := newVerifyRouter(db, 1, provider.URL)

	w := postVerify(r, "ref-11")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyForeignReferenceIsHidden(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":true,"message":"Verification successful","data":{"reference":"ref-12","amount":10000,"status":"success","customer":{"email":"bola@example.com"},"metadata":{"user_id":2}}}`)
	}))
	defer provider.Close()

	db, mock := newTestDB(t)
	// Caller is user 1 but the charge belongs to user 2.
	r := newVerifyRouter(db, 1, provider.URL)

	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "settings"}).
			AddRow(2, "bola@example.com", ""))
	mock.ExpectQuery("SELECT \\* FROM `wallet_topups`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount_kobo", "provider_ref"}).
			AddRow(8, 2, 10000, "ref-12"))

	w := postVerify(r, "ref-12")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
