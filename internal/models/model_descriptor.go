package models

import "time"

// ProviderKind identifies the vendor integration backing a model.
type ProviderKind string

const (
	ProviderOpenAI    ProviderKind = "openai"
	ProviderAnthropic ProviderKind = "anthropic"
	ProviderGoogle    ProviderKind = "google"
	ProviderDeepSeek  ProviderKind = "deepseek"
	ProviderMock      ProviderKind = "mock"
)

// OperationCategory classifies what a model produces. It drives the
// per-call timeout and whether a request runs synchronously or through
// the background queue.
type OperationCategory string

const (
	CategoryText          OperationCategory = "text"
	CategoryTextWithImage OperationCategory = "text_with_image"
	CategoryImageGen      OperationCategory = "image_gen"
	CategoryImageEdit     OperationCategory = "image_edit"
	CategoryVideoGen      OperationCategory = "video_gen"
	CategoryAudioGen      OperationCategory = "audio_gen"
	CategoryTranscription OperationCategory = "transcription"
	CategoryTTS           OperationCategory = "tts"
)

type DescriptorStatus string

const (
	DescriptorStatusOpen   DescriptorStatus = "open"
	DescriptorStatusClosed DescriptorStatus = "closed"
	DescriptorStatusDraft  DescriptorStatus = "draft"
)

// ModelDescriptor is one row of the model catalog. TokenCost is the flat
// per-request price in internal billing tokens; the ledger treats it as
// authoritative regardless of what the vendor reports.
type ModelDescriptor struct {
	ID           uint              `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	ModelID      string            `gorm:"uniqueIndex;not null" json:"model_id"`
	DisplayName  string            `json:"display_name"`
	ProviderKind ProviderKind      `gorm:"index;not null" json:"provider_kind"`
	Category     OperationCategory `gorm:"index;not null" json:"category"`
	TokenCost    int64             `gorm:"not null" json:"token_cost"`
	Status       DescriptorStatus  `gorm:"index;not null;default:'draft'" json:"status"`
	Parameters   JSON              `gorm:"type:jsonb;not null;default:'{}'" json:"parameters"`
}

// TableName overrides the table name
func (ModelDescriptor) TableName() string {
	return "model_costs"
}
