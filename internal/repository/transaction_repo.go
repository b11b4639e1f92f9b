package repository

import (
	"ajopay/internal/models"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) WithTx(tx *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: tx}
}

func (r *TransactionRepository) Create(t *models.Transaction) error {
	return r.db.Create(t).Error
}

func (r *TransactionRepository) ListByUserID(userID uint, limit, offset int) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *TransactionRepository) GetByReference(reference string) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.Where("reference = ?", reference).Find(&list).Error
	return list, err
}

// SumExpectedBalanceByUser returns what wallet.balance_kobo should hold:
// all COMPLETED entries plus PENDING debit legs, since a withdrawal
// debits the wallet at request time while its ledger entry stays
// PENDING until settlement.
func (r *TransactionRepository) SumExpectedBalanceByUser(userID uint) (int64, error) {
	var sum *int64
	err := r.db.Model(&models.Transaction{}).
		Select("SUM(amount_kobo)").
		Where("user_id = ? AND (status = ? OR (status = ? AND amount_kobo < 0))", userID, "COMPLETED", "PENDING").
		Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}
