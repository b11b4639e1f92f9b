package handler

import (
	"log"
	"net/http"

	"ajopay/internal/domain"
	"ajopay/internal/middleware"
	"ajopay/internal/models"
	"ajopay/internal/repository"
	"ajopay/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc          *service.AuthService
	walletRepo   *repository.WalletRepository
	referralRepo *repository.ReferralRepository
	referralSvc  *service.ReferralService
	subRepo      *repository.SubscriptionRepository
	auditRepo    *repository.AuditLogRepository
}

func NewAuthHandler(
	svc *service.AuthService,
	walletRepo *repository.WalletRepository,
	referralRepo *repository.ReferralRepository,
	referralSvc *service.ReferralService,
	subRepo *repository.SubscriptionRepository,
	auditRepo *repository.AuditLogRepository,
) *AuthHandler {
	return &AuthHandler{
		svc:          svc,
		walletRepo:   walletRepo,
		referralRepo: referralRepo,
		referralSvc:  referralSvc,
		subRepo:      subRepo,
		auditRepo:    auditRepo,
	}
}

type RegisterRequest struct {
	FullName     string `json:"full_name" binding:"required,min=2,max=128"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone"`
	Password     string `json:"password" binding:"required,min=8"`
	Role         string `json:"role" binding:"required,oneof=CUSTOMER AGENT"`
	ReferralCode string `json:"referral_code"` // optional: referrer's code
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, access, refresh, err := h.svc.Register(req.FullName, req.Email, req.Phone, req.Password, req.Role)
	if err != nil {
		switch err {
		case service.ErrEmailExists, service.ErrPhoneExists:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			log.Printf("[auth] register failed: role=%s email=%s err=%v", req.Role, req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}
	h.provisionAccount(u, req.ReferralCode)
	h.auditLog(u.ID, "register", c)

	c.JSON(http.StatusCreated, gin.H{
		"user":          u,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// provisionAccount lazily creates the wallet, referral code and trial
// subscription for a fresh signup. All best-effort: the account works
// without them and each is recreated on first use.
func (h *AuthHandler) provisionAccount(u *models.User, referralCode string) {
	if _, err := h.walletRepo.GetOrCreate(u.ID); err != nil {
		log.Printf("[auth] wallet for user %d: %v", u.ID, err)
	}
	if _, err := h.referralRepo.GetOrCreateCode(u.ID); err != nil {
		log.Printf("[auth] referral code for user %d: %v", u.ID, err)
	}
	if u.Role == domain.RoleCustomer && h.subRepo != nil {
		if _, err := h.subRepo.GetOrCreateTrial(u.ID); err != nil {
			log.Printf("[auth] trial for user %d: %v", u.ID, err)
		}
	}
	if h.referralSvc != nil {
		h.referralSvc.ProcessReferralCode(referralCode, u)
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, access, refresh, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		if err == service.ErrInvalidCreds {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	h.auditLog(u.ID, "login", c)
	c.JSON(http.StatusOK, gin.H{
		"user":          u,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID != 0 {
		h.auditLog(userID, "logout", c)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		if err == service.ErrInvalidCreds {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.auditLog(userID, "change_password", c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	access, refresh, err := h.svc.RefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AuthHandler) auditLog(userID uint, action string, c *gin.Context) {
	if h.auditRepo == nil {
		return
	}
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:    &userID,
		Action:    action,
		Resource:  "auth",
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
}
