package models

import (
	"time"

	"gorm.io/gorm"
)

// WalletTopup records a confirmed card payment from the provider webhook.
// ProviderRef is unique so replayed webhook deliveries are no-ops.
type WalletTopup struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	AmountKobo  int64          `gorm:"not null" json:"amount_kobo"`
	Provider    string         `gorm:"size:50;not null;default:'paystack'" json:"provider"`
	ProviderRef string         `gorm:"size:255;uniqueIndex;not null" json:"provider_ref"`
	Channel     string         `gorm:"size:30" json:"channel"` // card, bank, ussd
	PaidAt      *time.Time     `json:"paid_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (WalletTopup) TableName() string {
	return "wallet_topups"
}
