package models

import (
	"time"

	"gorm.io/datatypes"
)

// UsageStatus is the lifecycle state of a usage record.
type UsageStatus string

const (
	UsageStatusPending   UsageStatus = "pending"
	UsageStatusCompleted UsageStatus = "completed"
	UsageStatusFailed    UsageStatus = "failed"
)

// PromptExcerptLimit bounds how much of a prompt is kept on the record.
const PromptExcerptLimit = 500

// UsageRecord is one ledger row per generation attempt. Rows are
// append-only: the single allowed mutation is the pending -> completed
// or pending -> failed transition.
type UsageRecord struct {
	ID                uint              `gorm:"primarykey" json:"id"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	UserID            uint              `gorm:"index;not null" json:"user_id"`
	ModelID           string            `gorm:"index;not null" json:"model_id"`
	Category          OperationCategory `gorm:"index" json:"category"`
	TokensCost        int64             `gorm:"not null;default:0" json:"tokens_cost"`
	PromptExcerpt     string            `gorm:"type:varchar(500)" json:"prompt_excerpt"`
	Status            UsageStatus       `gorm:"index;not null;default:'pending'" json:"status"`
	ResponseFilePath  string            `json:"response_file_path"`
	ProcessingSeconds float64           `json:"processing_time_seconds"`
	InputData         datatypes.JSON    `gorm:"type:jsonb" json:"input_data" swaggertype:"object"`
}

// TableName overrides the table name
func (UsageRecord) TableName() string {
	return "usage_records"
}

// TruncatePrompt trims a prompt to the excerpt limit kept on records.
func TruncatePrompt(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= PromptExcerptLimit {
		return prompt
	}
	return string(runes[:PromptExcerptLimit])
}
