package handler

import (
	"errors"
	"log"
	"net/http"

	"ajopay/internal/middleware"
	"ajopay/internal/service"
	"ajopay/pkg/paystack"

	"github.com/gin-gonic/gin"
)

// PaymentVerifyHandler lets a client that finished checkout confirm the
// charge directly with the provider instead of waiting for the webhook.
// Both paths funnel into the same topup processing, so whichever lands
// first wins and the other is a replay.
type PaymentVerifyHandler struct {
	client   *paystack.Client
	topupSvc *service.TopupService
}

func NewPaymentVerifyHandler(client *paystack.Client, topupSvc *service.TopupService) *PaymentVerifyHandler {
	return &PaymentVerifyHandler{client: client, topupSvc: topupSvc}
}

type verifyPaymentRequest struct {
	Reference string `json:"reference" binding:"required"`
}

// Verify is POST /payments/verify.
func (h *PaymentVerifyHandler) Verify(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
		return
	}

	data, err := h.client.VerifyTransaction(c.Request.Context(), req.Reference)
	if err != nil {
		log.Printf("[paystack] verify ref=%s: %v", req.Reference, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "verification failed", "code": "PROVIDER_ERROR"})
		return
	}
	if data.Status != "success" {
		c.JSON(http.StatusConflict, gin.H{"error": "charge not successful", "code": "CHARGE_NOT_SUCCESSFUL", "status": data.Status})
		return
	}

	topup, replay, err := h.topupSvc.ProcessChargeSuccess(data)
	if err != nil {
		if errors.Is(err, service.ErrUnknownPaymentUser) {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not linked to any account", "code": "UNKNOWN_PAYMENT_USER"})
			return
		}
		log.Printf("[paystack] verify processing ref=%s: %v", req.Reference, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed", "code": "INTERNAL"})
		return
	}
	// The credit always lands on the charge's owner; a caller probing
	// someone else's reference learns nothing beyond "not yours".
	if topup.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "reference not found", "code": "NOT_FOUND"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"topup":  topup,
		"replay": replay,
	})
}
