package providers

import (
	"aibot-backend/internal/models"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

var mockExtensions = map[models.OperationCategory]string{
	models.CategoryImageGen:  ".png",
	models.CategoryImageEdit: ".png",
	models.CategoryVideoGen:  ".mp4",
	models.CategoryAudioGen:  ".mp3",
	models.CategoryTTS:       ".mp3",
}

// MockProvider produces deterministic offline responses. It never fails,
// completes immediately, and reports zero vendor tokens; billing always
// uses the catalog price, not what a provider reports.
type MockProvider struct{}

func NewMockProvider() MockProvider { return MockProvider{} }

func (MockProvider) Kind() models.ProviderKind { return models.ProviderMock }

func (MockProvider) Generate(ctx context.Context, req Request) *GenerationResponse {
	sum := sha256.Sum256([]byte(req.ModelID + "\x00" + req.Prompt))
	ref := hex.EncodeToString(sum[:6])

	resp := &GenerationResponse{
		Success:    true,
		TokensUsed: 0,
		Metadata: models.JSON{
			"mock":     true,
			"model_id": req.ModelID,
			"ref":      ref,
		},
	}

	switch req.Category {
	case models.CategoryText, models.CategoryTextWithImage:
		resp.Content = fmt.Sprintf("Simulated %s response [%s]: %s", req.ModelID, ref, req.Prompt)
	case models.CategoryTranscription:
		resp.Content = fmt.Sprintf("Simulated transcript [%s]", ref)
	default:
		ext := mockExtensions[req.Category]
		resp.FilePath = fmt.Sprintf("mock://%s/%s%s", req.Category, ref, ext)
	}

	return resp
}
