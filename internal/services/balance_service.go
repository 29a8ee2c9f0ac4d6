package services

import (
	"aibot-backend/config"
	"aibot-backend/internal/database"
	"aibot-backend/internal/models"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// TransactionMetadata carries audit fields for a balance movement.
type TransactionMetadata struct {
	Operator      string
	OperatorID    uint
	Type          models.TransactionType
	UsageRecordID uint
}

// AdjustBalance moves billing tokens on a user balance. Negative amounts
// debit. The movement and its transaction row commit together.
func AdjustBalance(userID uint, amount int64, reason string, meta TransactionMetadata) (*models.Transaction, error) {
	var trans *models.Transaction
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		t, err := adjustBalanceTx(tx, userID, amount, reason, meta)
		trans = t
		return err
	})
	if err != nil {
		return nil, err
	}
	InvalidateUserCache(userID)
	return trans, nil
}

// adjustBalanceTx applies a balance movement inside an existing
// transaction. The balance change is a single guarded UPDATE, so
// concurrent debits cannot lose updates: the WHERE clause enforces the
// credit limit and the decrement is computed in the database.
func adjustBalanceTx(tx *gorm.DB, userID uint, amount int64, reason string, meta TransactionMetadata) (*models.Transaction, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"balance": gorm.Expr("balance + ?", amount),
		"version": gorm.Expr("version + 1"),
	}
	if amount < 0 {
		updates["total_consumed"] = gorm.Expr("total_consumed + ?", -amount)
	}

	result := tx.Model(&models.User{}).
		Where("id = ? AND balance + credit_limit + ? >= 0", userID, amount).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrInsufficientBalance
	}

	// Re-read for the audit row; still inside the same transaction.
	var updated models.User
	if err := tx.First(&updated, userID).Error; err != nil {
		return nil, err
	}

	operator := meta.Operator
	if operator == "" {
		operator = "system"
	}
	transType := meta.Type
	if transType == "" {
		transType = models.TransactionTypeSystemAuto
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	trans := &models.Transaction{
		CreatedAt:     time.Now(),
		UserID:        userID,
		Amount:        amount,
		BalanceBefore: updated.Balance - amount,
		BalanceAfter:  updated.Balance,
		Reason:        reason,
		Operator:      operator,
		OperatorID:    meta.OperatorID,
		Type:          transType,
		UsageRecordID: meta.UsageRecordID,
	}
	trans.Hash = trans.GenerateHash(cfg.LedgerSecret)

	if err := tx.Create(trans).Error; err != nil {
		return nil, err
	}
	return trans, nil
}
