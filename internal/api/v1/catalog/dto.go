package catalog

import (
	"aibot-backend/internal/models"
	"time"
)

type DescriptorListItem struct {
	ID          uint                     `json:"id"`
	ModelID     string                   `json:"model_id"`
	DisplayName string                   `json:"display_name"`
	Provider    models.ProviderKind      `json:"provider"`
	Category    models.OperationCategory `json:"category"`
	TokenCost   int64                    `json:"token_cost"`
	Status      models.DescriptorStatus  `json:"status"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

type DescriptorListResponse struct {
	Models []DescriptorListItem `json:"models"`
	Total  int64                `json:"total"`
	Page   int                  `json:"page"`
	Limit  int                  `json:"limit"`
}

type UpdateStatusRequest struct {
	Status models.DescriptorStatus `json:"status" binding:"required,oneof=open closed draft"`
}

type CreateDescriptorRequest struct {
	ModelID     string                   `json:"model_id" binding:"required"`
	DisplayName string                   `json:"display_name" binding:"required"`
	Provider    models.ProviderKind      `json:"provider" binding:"required,oneof=openai anthropic google deepseek mock"`
	Category    models.OperationCategory `json:"category" binding:"required,oneof=text text_with_image image_gen image_edit video_gen audio_gen transcription tts"`
	TokenCost   int64                    `json:"token_cost" binding:"required,gt=0"`
	Status      models.DescriptorStatus  `json:"status" binding:"required,oneof=open closed draft"`
	Parameters  models.JSON              `json:"parameters"`
}

type UpdateDescriptorRequest struct {
	DisplayName string                   `json:"display_name"`
	Provider    models.ProviderKind      `json:"provider" binding:"omitempty,oneof=openai anthropic google deepseek mock"`
	Category    models.OperationCategory `json:"category" binding:"omitempty,oneof=text text_with_image image_gen image_edit video_gen audio_gen transcription tts"`
	TokenCost   int64                    `json:"token_cost" binding:"omitempty,gt=0"`
	Parameters  models.JSON              `json:"parameters"`
}
