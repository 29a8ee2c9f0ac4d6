package generation

import "aibot-backend/internal/models"

// GenerateRequest is the body of a generation call.
type GenerateRequest struct {
	ModelID    string                 `json:"model_id" binding:"required"`
	Prompt     string                 `json:"prompt" binding:"required"`
	Parameters map[string]interface{} `json:"parameters"`
	UseMock    bool                   `json:"use_mock"`
}

// QueuedResponse is returned for long-running categories. The record ID
// can be polled on /generations/{id}.
type QueuedResponse struct {
	RecordID uint   `json:"record_id"`
	Status   string `json:"status"`
}

// UsageListResponse wraps a page of usage records.
type UsageListResponse struct {
	Total int64                `json:"total"`
	Items []models.UsageRecord `json:"items"`
}
