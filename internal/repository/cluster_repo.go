package repository

import (
	"crypto/rand"
	"fmt"

	"ajopay/internal/models"

	"gorm.io/gorm"
)

type ClusterRepository struct {
	db *gorm.DB
}

func NewClusterRepository(db *gorm.DB) *ClusterRepository {
	return &ClusterRepository{db: db}
}

// join codes use an unambiguous alphabet (no O/0/I/1 lookalikes).
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateJoinCode() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = joinCodeAlphabet[int(b[i])%len(joinCodeAlphabet)]
	}
	return string(b), nil
}

// Create persists a cluster, generating a unique join code.
func (r *ClusterRepository) Create(agentID uint, name string) (*models.Cluster, error) {
	for i := 0; i < 10; i++ {
		code, err := generateJoinCode()
		if err != nil {
			return nil, err
		}
		c := &models.Cluster{AgentID: agentID, Name: name, JoinCode: code}
		if err := r.db.Create(c).Error; err == nil {
			return c, nil
		}
		// Collision: retry with new code
	}
	return nil, fmt.Errorf("failed to generate a unique join code after retries")
}

func (r *ClusterRepository) GetByID(id uint) (*models.Cluster, error) {
	var c models.Cluster
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClusterRepository) GetByJoinCode(code string) (*models.Cluster, error) {
	var c models.Cluster
	if err := r.db.Where("join_code = ?", code).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClusterRepository) ListByAgent(agentID uint) ([]models.Cluster, error) {
	var list []models.Cluster
	err := r.db.Where("agent_id = ?", agentID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *ClusterRepository) MemberCount(clusterID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.User{}).Where("cluster_id = ?", clusterID).Count(&n).Error
	return n, err
}
