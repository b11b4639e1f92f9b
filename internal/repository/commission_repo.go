package repository

import (
	"time"

	"ajopay/internal/models"

	"gorm.io/gorm"
)

type CommissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: db}
}

func (r *CommissionRepository) WithTx(tx *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: tx}
}

func (r *CommissionRepository) Create(c *models.Commission) error {
	return r.db.Create(c).Error
}

func (r *CommissionRepository) ListByAgent(agentID uint, limit, offset int) ([]models.Commission, error) {
	var list []models.Commission
	err := r.db.Where("agent_id = ?", agentID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *CommissionRepository) SumByAgentStatus(agentID uint, status string) (int64, error) {
	var sum *int64
	err := r.db.Model(&models.Commission{}).
		Select("SUM(amount_kobo)").
		Where("agent_id = ? AND status = ?", agentID, status).
		Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}

// MarkPendingPaid flips all PENDING accruals for an agent to PAID.
// Callers run it inside the payout transaction after summing.
func (r *CommissionRepository) MarkPendingPaid(agentID uint, paidAt time.Time) error {
	return r.db.Model(&models.Commission{}).
		Where("agent_id = ? AND status = ?", agentID, "PENDING").
		Updates(map[string]interface{}{"status": "PAID", "paid_at": paidAt}).Error
}
