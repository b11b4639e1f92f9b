package models

import (
	"time"

	"gorm.io/gorm"
)

// Commission accrues for agents on cash collections they record. Rows are
// independent of the wallet ledger until paid out via the withdrawal flow.
type Commission struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	AgentID        uint           `gorm:"not null;index" json:"agent_id"`
	ContributionID uint           `gorm:"not null;index" json:"contribution_id"`
	AmountKobo     int64          `gorm:"not null" json:"amount_kobo"`
	Percent        float64        `gorm:"not null" json:"percent"`
	Status         string         `gorm:"size:20;not null;index" json:"status"` // PENDING, PAID
	PaidAt         *time.Time     `json:"paid_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Agent        User         `gorm:"foreignKey:AgentID" json:"-"`
	Contribution Contribution `gorm:"foreignKey:ContributionID" json:"-"`
}

func (Commission) TableName() string {
	return "commissions"
}
