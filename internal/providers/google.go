package providers

import (
	"aibot-backend/internal/models"
	"aibot-backend/internal/utils"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const googleBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GoogleProvider handles Gemini text generation.
type GoogleProvider struct {
	creds  CredentialStore
	client *http.Client
}

func NewGoogleProvider(creds CredentialStore) *GoogleProvider {
	return &GoogleProvider{
		creds:  creds,
		client: utils.NewHTTPClient(5 * time.Minute),
	}
}

func (p *GoogleProvider) Kind() models.ProviderKind { return models.ProviderGoogle }

func (p *GoogleProvider) Generate(ctx context.Context, req Request) *GenerationResponse {
	key := p.creds.Get(models.ProviderGoogle)
	if key == "" {
		return Failure(ErrCodeCredentialMissing, "no Google credential configured")
	}

	if req.Category != models.CategoryText && req.Category != models.CategoryTextWithImage {
		return unsupported(models.ProviderGoogle, req.Category)
	}

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]interface{}{{"text": req.Prompt}}},
		},
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", googleBaseURL, url.PathEscape(req.ModelID), url.QueryEscape(key))
	respData, failure := doJSONRequest(ctx, p.client, "POST", endpoint, nil, payload)
	if failure != nil {
		return failure
	}

	content := ""
	if candidates, ok := respData["candidates"].([]interface{}); ok && len(candidates) > 0 {
		if candidate, ok := candidates[0].(map[string]interface{}); ok {
			if c, ok := candidate["content"].(map[string]interface{}); ok {
				if parts, ok := c["parts"].([]interface{}); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]interface{}); ok {
						content, _ = part["text"].(string)
					}
				}
			}
		}
	}
	if content == "" {
		return Failure(ErrCodeVendorRequestFailed, "no candidate content in response")
	}

	var tokens int64
	if usage, ok := respData["usageMetadata"].(map[string]interface{}); ok {
		if total, ok := usage["totalTokenCount"].(float64); ok {
			tokens = int64(total)
		}
	}

	return &GenerationResponse{
		Success:    true,
		Content:    content,
		TokensUsed: tokens,
		Metadata:   models.JSON{"mock": false},
	}
}
