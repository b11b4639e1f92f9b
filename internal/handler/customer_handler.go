package handler

import (
	"net/http"
	"time"

	"ajopay/internal/middleware"
	"ajopay/internal/repository"
	"ajopay/internal/service"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	walletRepo  *repository.WalletRepository
	contribRepo *repository.ContributionRepository
	subRepo     *repository.SubscriptionRepository
}

func NewCustomerHandler(walletRepo *repository.WalletRepository, contribRepo *repository.ContributionRepository, subRepo *repository.SubscriptionRepository) *CustomerHandler {
	return &CustomerHandler{walletRepo: walletRepo, contribRepo: contribRepo, subRepo: subRepo}
}

// Overview is GET /customer/overview: wallet totals, weekly deltas, the
// 14-day sparkline and the saving streak, all from real rows.
func (h *CustomerHandler) Overview(c *gin.Context) {
	userID := middleware.GetUserID(c)
	wallet, err := h.walletRepo.GetOrCreate(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet"})
		return
	}
	now := time.Now()
	// A year of history is enough for any streak worth bragging about.
	contributions, err := h.contribRepo.ListConfirmedSince(userID, now.AddDate(-1, 0, 0))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load contributions"})
		return
	}
	stats := service.BuildOverview(wallet, contributions, now)

	resp := gin.H{"overview": stats}
	if h.subRepo != nil {
		if sub, err := h.subRepo.GetByUserID(userID); err == nil {
			resp["subscription"] = sub
		}
	}
	c.JSON(http.StatusOK, resp)
}
