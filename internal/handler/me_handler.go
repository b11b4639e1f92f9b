package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"ajopay/internal/middleware"
	"ajopay/internal/repository"
	"ajopay/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MeHandler serves the authenticated user's own profile and settings.
type MeHandler struct {
	userRepo     *repository.UserRepository
	referralRepo *repository.ReferralRepository
	cloud        cloudinary.Client
}

func NewMeHandler(userRepo *repository.UserRepository, referralRepo *repository.ReferralRepository, cloud cloudinary.Client) *MeHandler {
	return &MeHandler{userRepo: userRepo, referralRepo: referralRepo, cloud: cloud}
}

func (h *MeHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	resp := gin.H{"user": u}
	if h.referralRepo != nil {
		if code, err := h.referralRepo.GetOrCreateCode(userID); err == nil {
			n, _ := h.referralRepo.CountByReferrer(userID)
			resp["referral_code"] = code.Code
			resp["referral_count"] = n
		}
	}
	c.JSON(http.StatusOK, resp)
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
}

func (h *MeHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	if req.FullName != nil && *req.FullName != "" {
		u.FullName = *req.FullName
	}
	if req.Phone != nil {
		if *req.Phone == "" {
			u.Phone = nil
		} else {
			if other, err := h.userRepo.GetByPhone(*req.Phone); err == nil && other.ID != userID {
				c.JSON(http.StatusConflict, gin.H{"error": "phone number already registered"})
				return
			}
			u.Phone = req.Phone
		}
	}
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// UpdateSettings is PATCH /me/settings: merges the submitted keys into
// the stored settings JSON instead of replacing it wholesale.
func (h *MeHandler) UpdateSettings(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	settings := map[string]interface{}{}
	if u.Settings != "" {
		if err := json.Unmarshal([]byte(u.Settings), &settings); err != nil {
			log.Printf("[me] corrupt settings for user %d, resetting: %v", userID, err)
			settings = map[string]interface{}{}
		}
	}
	for k, v := range patch {
		if v == nil {
			delete(settings, k)
		} else {
			settings[k] = v
		}
	}
	merged, err := json.Marshal(settings)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "settings not serializable"})
		return
	}
	u.Settings = string(merged)
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UploadAvatar is POST /me/avatar (multipart field "avatar").
func (h *MeHandler) UploadAvatar(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image uploads not configured"})
		return
	}
	file, _, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file required"})
		return
	}
	defer file.Close()
	url, _, err := h.cloud.UploadImage(c.Request.Context(), file, "avatars", fmt.Sprintf("user-%d", userID))
	if err != nil {
		log.Printf("[me] avatar upload user=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	u.AvatarURL = url
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save avatar"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}
