package services

import (
	"aibot-backend/internal/database"
	"aibot-backend/internal/models"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var errRecordFinalized = errors.New("usage record is not pending")

// LogParams describes one generation attempt to record. A zero
// TokensCost means "resolve the catalog price at write time", so price
// changes apply to in-flight operations.
type LogParams struct {
	UserID            uint
	ModelID           string
	Category          models.OperationCategory
	TokensCost        int64
	Prompt            string
	Status            models.UsageStatus
	ResponseFilePath  string
	ProcessingSeconds float64
	InputData         map[string]interface{}
}

// LogOperation writes a usage record and, when the record lands in
// completed state, debits the user in the same transaction. A failure
// anywhere is swallowed: the warning goes to the log and nil comes
// back, so a broken ledger can never break the generation flow.
func LogOperation(p LogParams) *uint {
	cost := p.TokensCost
	if cost <= 0 {
		resolved, err := GetModelTokenCost(p.ModelID)
		if err != nil {
			zap.L().Warn("usage record dropped: cost lookup failed",
				zap.String("model_id", p.ModelID),
				zap.Error(err))
			return nil
		}
		cost = resolved
	}

	status := p.Status
	if status == "" {
		status = models.UsageStatusPending
	}

	var inputJSON datatypes.JSON
	if p.InputData != nil {
		raw, err := json.Marshal(p.InputData)
		if err != nil {
			zap.L().Warn("usage record dropped: bad input data", zap.Error(err))
			return nil
		}
		inputJSON = datatypes.JSON(raw)
	}

	record := models.UsageRecord{
		UserID:            p.UserID,
		ModelID:           p.ModelID,
		Category:          p.Category,
		TokensCost:        cost,
		PromptExcerpt:     models.TruncatePrompt(p.Prompt),
		Status:            status,
		ResponseFilePath:  p.ResponseFilePath,
		ProcessingSeconds: p.ProcessingSeconds,
		InputData:         inputJSON,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if status == models.UsageStatusCompleted {
			_, err := adjustBalanceTx(tx, p.UserID, -cost,
				fmt.Sprintf("Generation with %s", p.ModelID),
				TransactionMetadata{Type: models.TransactionTypeUserConsume, UsageRecordID: record.ID})
			return err
		}
		return nil
	})
	if err != nil {
		zap.L().Warn("usage record write failed",
			zap.Uint("user_id", p.UserID),
			zap.String("model_id", p.ModelID),
			zap.Error(err))
		return nil
	}

	if status == models.UsageStatusCompleted {
		InvalidateUserCache(p.UserID)
	}
	return &record.ID
}

// LogOperationBackground issues the ledger write on its own goroutine.
// The caller returns to the user immediately; a failed write is only
// observable in the diagnostic log.
func LogOperationBackground(p LogParams) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("background usage record panic", zap.Any("panic", r))
			}
		}()
		LogOperation(p)
	}()
}

// UpdateOperationStatus applies the single allowed pending -> completed
// or pending -> failed transition. Completion debits the user inside
// the same transaction as the status flip. Targeting a record that is
// not pending is a reported no-op.
func UpdateOperationStatus(id uint, status models.UsageStatus, responseFilePath string, processingSeconds float64) bool {
	if status != models.UsageStatusCompleted && status != models.UsageStatusFailed {
		zap.L().Warn("invalid usage status transition", zap.Uint("record_id", id), zap.String("status", string(status)))
		return false
	}

	var debitedUserID uint
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var record models.UsageRecord
		if err := tx.First(&record, id).Error; err != nil {
			return err
		}
		debitedUserID = record.UserID
		if record.Status != models.UsageStatusPending {
			return fmt.Errorf("%w: record %d is %s", errRecordFinalized, id, record.Status)
		}

		updates := map[string]interface{}{"status": status}
		if responseFilePath != "" {
			updates["response_file_path"] = responseFilePath
		}
		if processingSeconds > 0 {
			updates["processing_seconds"] = processingSeconds
		}

		// Guarded update so two concurrent transitions cannot both win.
		result := tx.Model(&models.UsageRecord{}).
			Where("id = ? AND status = ?", id, models.UsageStatusPending).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: record %d", errRecordFinalized, id)
		}

		if status == models.UsageStatusCompleted {
			_, err := adjustBalanceTx(tx, record.UserID, -record.TokensCost,
				fmt.Sprintf("Generation with %s", record.ModelID),
				TransactionMetadata{Type: models.TransactionTypeUserConsume, UsageRecordID: id})
			return err
		}
		return nil
	})
	if err != nil {
		zap.L().Warn("usage status update failed", zap.Uint("record_id", id), zap.Error(err))
		return false
	}
	if status == models.UsageStatusCompleted {
		InvalidateUserCache(debitedUserID)
	}
	return true
}

// UsageFilter defines criteria for listing usage records.
type UsageFilter struct {
	UserID  *uint
	ModelID string
	Status  *models.UsageStatus
	Page    int
	Limit   int
}

// FindUsageRecords retrieves a paginated list of usage records.
func FindUsageRecords(filter UsageFilter) ([]models.UsageRecord, int64, error) {
	var records []models.UsageRecord
	var total int64

	query := database.DB.Model(&models.UsageRecord{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ModelID != "" {
		query = query.Where("model_id = ?", filter.ModelID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Limit(filter.Limit).Offset(offset).Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// GetUsageRecordByID retrieves a single usage record.
func GetUsageRecordByID(id uint) (*models.UsageRecord, error) {
	var record models.UsageRecord
	if err := database.DB.First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}
