package models

import (
	"time"

	"gorm.io/gorm"
)

// Cluster groups customers under an agent. Customers join with the code;
// membership lives on users.cluster_id.
type Cluster struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	AgentID   uint           `gorm:"not null;index" json:"agent_id"`
	Name      string         `gorm:"size:128;not null" json:"name"`
	JoinCode  string         `gorm:"uniqueIndex;size:20;not null" json:"join_code"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Agent User `gorm:"foreignKey:AgentID" json:"-"`
}

func (Cluster) TableName() string {
	return "clusters"
}
