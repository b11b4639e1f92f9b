package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet is the single mutable balance per user. Balance changes go
// through guarded conditional updates so it can never be driven negative
// by concurrent sends.
type Wallet struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	UserID               uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	BalanceKobo          int64          `gorm:"not null;default:0" json:"balance_kobo"`
	TotalContributedKobo int64          `gorm:"not null;default:0" json:"total_contributed_kobo"`
	TotalWithdrawnKobo   int64          `gorm:"not null;default:0" json:"total_withdrawn_kobo"`
	Currency             string         `gorm:"size:3;default:'NGN'" json:"currency"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Wallet) TableName() string {
	return "wallets"
}
