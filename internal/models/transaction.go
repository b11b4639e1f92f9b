package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is the wallet ledger entry. Peer transfers create two rows
// (negative SEND, positive RECEIVE) sharing one reference.
type Transaction struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	Type       string         `gorm:"size:30;not null;index" json:"type"` // SEND, RECEIVE, DEPOSIT, WITHDRAWAL, COMMISSION, REFERRAL_BONUS
	AmountKobo int64          `gorm:"not null" json:"amount_kobo"`        // positive = credit, negative = debit
	Reference  string         `gorm:"size:128;not null;index" json:"reference"`
	Status     string         `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, FAILED
	Metadata   string         `gorm:"type:text" json:"metadata"`            // JSON: description, counterparty, wallet_type
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}
