package handler

import (
	"log"
	"net/http"
	"strconv"

	"ajopay/internal/models"
	"ajopay/internal/repository"
	"ajopay/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	userRepo     *repository.UserRepository
	auditRepo    *repository.AuditLogRepository
	settingRepo  *repository.SettingRepository
	reconcileSvc *service.ReconciliationService
}

func NewAdminHandler(
	userRepo *repository.UserRepository,
	auditRepo *repository.AuditLogRepository,
	settingRepo *repository.SettingRepository,
	reconcileSvc *service.ReconciliationService,
) *AdminHandler {
	return &AdminHandler{
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		settingRepo:  settingRepo,
		reconcileSvc: reconcileSvc,
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	role := c.Query("role")
	users, err := h.userRepo.ListPage(role, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}
	total, _ := h.userRepo.CountByRole(role)
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	var (
		logs []models.AuditLog
		err  error
	)
	if userIDStr := c.Query("user_id"); userIDStr != "" {
		userID, perr := strconv.ParseUint(userIDStr, 10, 32)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		logs, err = h.auditRepo.ListByUserID(uint(userID), limit, offset)
	} else {
		logs, err = h.auditRepo.List(limit, offset)
	}
	if err != nil {
		log.Printf("[admin] audit logs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h *AdminHandler) GetSettings(c *gin.Context) {
	list, err := h.settingRepo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": list})
}

// UpdateSettings is PUT /admin/settings: upserts the submitted keys.
// These override config defaults at runtime (e.g. the commission rate).
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no settings provided"})
		return
	}
	for k, v := range req {
		if err := h.settingRepo.Set(k, v); err != nil {
			log.Printf("[admin] set setting %s: %v", k, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
			return
		}
	}
	list, _ := h.settingRepo.GetAll()
	c.JSON(http.StatusOK, gin.H{"settings": list})
}

// Reconcile is POST /admin/reconcile: runs the wallet-vs-ledger check on
// demand in addition to the nightly schedule.
func (h *AdminHandler) Reconcile(c *gin.Context) {
	mismatches, err := h.reconcileSvc.Run()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mismatches": mismatches})
}
