package repository

import (
	"errors"

	"ajopay/internal/models"

	"gorm.io/gorm"
)

var ErrInsufficientBalance = errors.New("insufficient wallet balance")

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// WithTx returns a copy bound to the given transaction so balance
// mutations can join a larger unit of work.
func (r *WalletRepository) WithTx(tx *gorm.DB) *WalletRepository {
	return &WalletRepository{db: tx}
}

func (r *WalletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.Where("user_id = ?", userID).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetOrCreate lazily creates the wallet on first access.
func (r *WalletRepository) GetOrCreate(userID uint) (*models.Wallet, error) {
	w, err := r.GetByUserID(userID)
	if err == nil {
		return w, nil
	}
	w = &models.Wallet{UserID: userID, Currency: "NGN"}
	if err := r.db.Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

// TryDebit subtracts amountKobo only when the balance covers it. The
// guard runs inside the UPDATE itself, so two concurrent sends cannot
// both pass a stale sufficiency check. Returns ErrInsufficientBalance
// when no row matched.
func (r *WalletRepository) TryDebit(userID uint, amountKobo int64) error {
	res := r.db.Model(&models.Wallet{}).
		Where("user_id = ? AND balance_kobo >= ?", userID, amountKobo).
		Updates(map[string]interface{}{
			"balance_kobo":         gorm.Expr("balance_kobo - ?", amountKobo),
			"total_withdrawn_kobo": gorm.Expr("total_withdrawn_kobo + ?", amountKobo),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

// Credit adds amountKobo to the balance and running contribution total.
func (r *WalletRepository) Credit(userID uint, amountKobo int64) error {
	res := r.db.Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance_kobo":           gorm.Expr("balance_kobo + ?", amountKobo),
			"total_contributed_kobo": gorm.Expr("total_contributed_kobo + ?", amountKobo),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Refund reverses a debit after a failed withdrawal: balance comes back
// and the withdrawn total is reduced.
func (r *WalletRepository) Refund(userID uint, amountKobo int64) error {
	res := r.db.Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance_kobo":         gorm.Expr("balance_kobo + ?", amountKobo),
			"total_withdrawn_kobo": gorm.Expr("total_withdrawn_kobo - ?", amountKobo),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *WalletRepository) ListAll() ([]models.Wallet, error) {
	var list []models.Wallet
	err := r.db.Find(&list).Error
	return list, err
}
