package models

import (
	"time"

	"ajopay/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	FullName        string         `gorm:"size:128;not null;default:''" json:"full_name"`
	Email           string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone           *string        `gorm:"uniqueIndex;size:20" json:"phone"` // nil when not set (avoids duplicate '' on unique index)
	PasswordHash    string         `gorm:"size:255" json:"-"`
	Role            string         `gorm:"size:20;not null;index" json:"role"` // CUSTOMER | AGENT | ADMIN
	ClusterID       *uint          `gorm:"index" json:"cluster_id"`
	GoogleID        *string        `gorm:"uniqueIndex;size:255" json:"-"`
	AvatarURL       string         `gorm:"size:512" json:"avatar_url"`
	EmailVerifiedAt *time.Time     `json:"email_verified_at"`
	Settings        string         `gorm:"type:text" json:"settings"` // free-form JSON, e.g. {"auto_save_daily":true}
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Cluster *Cluster `gorm:"foreignKey:ClusterID" json:"cluster,omitempty"`
}

func (u *User) IsAgent() bool    { return u.Role == domain.RoleAgent }
func (u *User) IsCustomer() bool { return u.Role == domain.RoleCustomer }
