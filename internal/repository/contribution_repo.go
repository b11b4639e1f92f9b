package repository

import (
	"time"

	"ajopay/internal/models"

	"gorm.io/gorm"
)

type ContributionRepository struct {
	db *gorm.DB
}

func NewContributionRepository(db *gorm.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

func (r *ContributionRepository) WithTx(tx *gorm.DB) *ContributionRepository {
	return &ContributionRepository{db: tx}
}

func (r *ContributionRepository) Create(c *models.Contribution) error {
	return r.db.Create(c).Error
}

func (r *ContributionRepository) GetByID(id uint) (*models.Contribution, error) {
	var c models.Contribution
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContributionRepository) ListByUserID(userID uint, limit, offset int) ([]models.Contribution, error) {
	var list []models.Contribution
	err := r.db.Where("user_id = ?", userID).Order("contributed_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// ListByUserBetween narrows the listing to a date range. Nil bounds are
// open-ended.
func (r *ContributionRepository) ListByUserBetween(userID uint, from, to *time.Time, limit, offset int) ([]models.Contribution, error) {
	q := r.db.Where("user_id = ?", userID)
	if from != nil {
		q = q.Where("contributed_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("contributed_at < ?", *to)
	}
	var list []models.Contribution
	err := q.Order("contributed_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *ContributionRepository) ListByAgentID(agentID uint, limit, offset int) ([]models.Contribution, error) {
	var list []models.Contribution
	err := r.db.Where("agent_id = ?", agentID).Order("contributed_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// ListConfirmedSince returns confirmed contributions on or after the
// cutoff, newest first. Streaks and sparklines are computed from these.
func (r *ContributionRepository) ListConfirmedSince(userID uint, since time.Time) ([]models.Contribution, error) {
	var list []models.Contribution
	err := r.db.Where("user_id = ? AND status = ? AND contributed_at >= ?", userID, "CONFIRMED", since).
		Order("contributed_at DESC").Find(&list).Error
	return list, err
}

func (r *ContributionRepository) SumConfirmedByUser(userID uint) (int64, error) {
	var sum *int64
	err := r.db.Model(&models.Contribution{}).
		Select("SUM(amount_kobo)").
		Where("user_id = ? AND status = ?", userID, "CONFIRMED").
		Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}

// ExistsForDay reports whether the user already marked the given savings
// day. Used by the webhook auto-mark so replays don't double-mark.
func (r *ContributionRepository) ExistsForDay(userID uint, day time.Time) (bool, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)
	var count int64
	err := r.db.Model(&models.Contribution{}).
		Where("user_id = ? AND status = ? AND contributed_at >= ? AND contributed_at < ?", userID, "CONFIRMED", start, end).
		Count(&count).Error
	return count > 0, err
}

// SumCollectedByAgent totals cash collections recorded by an agent.
func (r *ContributionRepository) SumCollectedByAgent(agentID uint) (int64, error) {
	var sum *int64
	err := r.db.Model(&models.Contribution{}).
		Select("SUM(amount_kobo)").
		Where("agent_id = ? AND status = ?", agentID, "CONFIRMED").
		Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}
