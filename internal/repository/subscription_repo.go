package repository

import (
	"time"

	"ajopay/internal/domain"
	"ajopay/internal/models"

	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) GetByUserID(userID uint) (*models.Subscription, error) {
	var s models.Subscription
	if err := r.db.Where("user_id = ?", userID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// GetOrCreateTrial starts a 14-day trial on first access.
func (r *SubscriptionRepository) GetOrCreateTrial(userID uint) (*models.Subscription, error) {
	s, err := r.GetByUserID(userID)
	if err == nil {
		return s, nil
	}
	expires := time.Now().Add(14 * 24 * time.Hour)
	s = &models.Subscription{UserID: userID, Status: domain.SubscriptionStatusTrial, ExpiresAt: &expires}
	if err := r.db.Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// ActivateTrial converts a TRIAL subscription to ACTIVE for one plan
// period. No-op when the user has no trial.
func (r *SubscriptionRepository) ActivateTrial(userID uint, until time.Time) (bool, error) {
	res := r.db.Model(&models.Subscription{}).
		Where("user_id = ? AND status = ?", userID, domain.SubscriptionStatusTrial).
		Updates(map[string]interface{}{"status": domain.SubscriptionStatusActive, "expires_at": until})
	return res.RowsAffected > 0, res.Error
}
