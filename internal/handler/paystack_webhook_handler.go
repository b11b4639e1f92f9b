package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"ajopay/internal/service"
	"ajopay/pkg/paystack"

	"github.com/gin-gonic/gin"
)

// PaystackWebhookHandler receives provider callbacks. The signature is
// checked against the raw body before anything is parsed; a bad
// signature produces no side effects at all.
type PaystackWebhookHandler struct {
	secret   string
	topupSvc *service.TopupService
}

func NewPaystackWebhookHandler(secret string, topupSvc *service.TopupService) *PaystackWebhookHandler {
	return &PaystackWebhookHandler{secret: secret, topupSvc: topupSvc}
}

func (h *PaystackWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	signature := c.GetHeader(paystack.SignatureHeader)
	if !paystack.VerifySignature(h.secret, body, signature) {
		log.Printf("[paystack] rejected webhook: bad signature from %s", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	var event paystack.Event
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	switch event.Event {
	case "charge.success":
		topup, replay, err := h.topupSvc.ProcessChargeSuccess(&event.Data)
		if err != nil {
			if errors.Is(err, service.ErrUnknownPaymentUser) {
				// Acknowledge so the provider stops retrying a payment we
				// can never attribute; the log line is the paper trail.
				log.Printf("[paystack] unattributable charge ref=%s email=%s", event.Data.Reference, event.Data.Customer.Email)
				c.JSON(http.StatusOK, gin.H{"status": "ignored"})
				return
			}
			log.Printf("[paystack] charge.success ref=%s: %v", event.Data.Reference, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
			return
		}
		if replay {
			log.Printf("[paystack] replayed charge ref=%s", event.Data.Reference)
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "topup_id": topup.ID})
	default:
		// Unknown events are acknowledged without action.
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}
