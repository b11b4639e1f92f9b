package repository

import (
	"ajopay/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	err := r.db.First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByPhone(phone string) (*models.User, error) {
	var u models.User
	err := r.db.Where("phone = ?", phone).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmailOrPhone resolves a transfer recipient handle.
func (r *UserRepository) GetByEmailOrPhone(handle string) (*models.User, error) {
	var u models.User
	err := r.db.Where("email = ? OR phone = ?", handle, handle).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByGoogleID(googleID string) (*models.User, error) {
	var u models.User
	err := r.db.Where("google_id = ?", googleID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Update(u *models.User) error {
	return r.db.Save(u).Error
}

// ListPage returns one page of users, optionally filtered by role.
func (r *UserRepository) ListPage(role string, limit, offset int) ([]models.User, error) {
	q := r.db.Order("created_at DESC").Limit(limit).Offset(offset)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var list []models.User
	err := q.Find(&list).Error
	return list, err
}

func (r *UserRepository) ListByCluster(clusterID uint) ([]models.User, error) {
	var list []models.User
	err := r.db.Where("cluster_id = ?", clusterID).Order("full_name ASC").Find(&list).Error
	return list, err
}

func (r *UserRepository) ListByRole(role string) ([]models.User, error) {
	var list []models.User
	err := r.db.Where("role = ?", role).Find(&list).Error
	return list, err
}

// CountByRole counts users; an empty role counts everyone.
func (r *UserRepository) CountByRole(role string) (int64, error) {
	q := r.db.Model(&models.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}
