package models

import (
	"time"

	"gorm.io/gorm"
)

type Subscription struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Plan      string         `gorm:"size:30;not null;default:'standard'" json:"plan"`
	Status    string         `gorm:"size:20;not null;index" json:"status"` // TRIAL, ACTIVE, EXPIRED, CANCELED
	ExpiresAt *time.Time     `json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
