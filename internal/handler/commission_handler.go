package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"ajopay/internal/domain"
	"ajopay/internal/middleware"
	"ajopay/internal/repository"
	"ajopay/internal/service"

	"github.com/gin-gonic/gin"
)

type CommissionHandler struct {
	commRepo *repository.CommissionRepository
	commSvc  *service.CommissionService
}

func NewCommissionHandler(commRepo *repository.CommissionRepository, commSvc *service.CommissionService) *CommissionHandler {
	return &CommissionHandler{commRepo: commRepo, commSvc: commSvc}
}

// Summary is GET /agent/commissions: recent accruals plus the pending
// and paid totals at the current rate.
func (h *CommissionHandler) Summary(c *gin.Context) {
	agentID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	list, err := h.commRepo.ListByAgent(agentID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load commissions"})
		return
	}
	pending, _ := h.commRepo.SumByAgentStatus(agentID, domain.CommissionStatusPending)
	paid, _ := h.commRepo.SumByAgentStatus(agentID, domain.CommissionStatusPaid)
	c.JSON(http.StatusOK, gin.H{
		"commissions":  list,
		"pending_kobo": pending,
		"paid_kobo":    paid,
		"rate_percent": h.commSvc.Rate(),
	})
}

// Payout is POST /agent/commissions/payout: flips all pending accruals
// to paid and credits the agent wallet in one transaction.
func (h *CommissionHandler) Payout(c *gin.Context) {
	agentID := middleware.GetUserID(c)
	total, err := h.commSvc.Payout(agentID)
	if err != nil {
		if errors.Is(err, service.ErrNothingToPayout) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "NOTHING_TO_PAYOUT"})
			return
		}
		log.Printf("[commission] payout agent=%d: %v", agentID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"paid_kobo": total})
}
