package models

import (
	"time"

	"gorm.io/gorm"
)

// Contribution is an append-only savings record. AgentID is set for cash
// entries collected in the field; card topups arriving via the payment
// webhook are mirrored here so contribution history stays complete.
type Contribution struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	AgentID       *uint          `gorm:"index" json:"agent_id"`
	AmountKobo    int64          `gorm:"not null" json:"amount_kobo"`
	Method        string         `gorm:"size:20;not null;index" json:"method"` // CASH, CARD, TRANSFER, WALLET
	Status        string         `gorm:"size:20;not null;index" json:"status"` // PENDING, CONFIRMED, REJECTED
	Reference     string         `gorm:"size:128;index" json:"reference"`
	ReceiptURL    string         `gorm:"size:512" json:"receipt_url"`
	ContributedAt time.Time      `gorm:"not null;index" json:"contributed_at"` // savings day being marked
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User  User  `gorm:"foreignKey:UserID" json:"-"`
	Agent *User `gorm:"foreignKey:AgentID" json:"-"`
}

func (Contribution) TableName() string {
	return "contributions"
}
