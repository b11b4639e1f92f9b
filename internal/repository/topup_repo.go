package repository

import (
	"ajopay/internal/models"

	"gorm.io/gorm"
)

type TopupRepository struct {
	db *gorm.DB
}

func NewTopupRepository(db *gorm.DB) *TopupRepository {
	return &TopupRepository{db: db}
}

func (r *TopupRepository) WithTx(tx *gorm.DB) *TopupRepository {
	return &TopupRepository{db: tx}
}

func (r *TopupRepository) Create(t *models.WalletTopup) error {
	return r.db.Create(t).Error
}

func (r *TopupRepository) GetByProviderRef(ref string) (*models.WalletTopup, error) {
	var t models.WalletTopup
	if err := r.db.Where("provider_ref = ?", ref).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TopupRepository) ListByUserID(userID uint, limit, offset int) ([]models.WalletTopup, error) {
	var list []models.WalletTopup
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
