package providers

import (
	"aibot-backend/internal/models"
	"aibot-backend/internal/utils"
	"context"
	"net/http"
	"time"
)

const deepSeekChatURL = "https://api.deepseek.com/chat/completions"

// DeepSeekProvider handles text generation. The API is OpenAI-compatible.
type DeepSeekProvider struct {
	creds  CredentialStore
	client *http.Client
}

func NewDeepSeekProvider(creds CredentialStore) *DeepSeekProvider {
	return &DeepSeekProvider{
		creds:  creds,
		client: utils.NewHTTPClient(5 * time.Minute),
	}
}

func (p *DeepSeekProvider) Kind() models.ProviderKind { return models.ProviderDeepSeek }

func (p *DeepSeekProvider) Generate(ctx context.Context, req Request) *GenerationResponse {
	key := p.creds.Get(models.ProviderDeepSeek)
	if key == "" {
		return Failure(ErrCodeCredentialMissing, "no DeepSeek credential configured")
	}

	if req.Category != models.CategoryText {
		return unsupported(models.ProviderDeepSeek, req.Category)
	}

	payload := map[string]interface{}{
		"model": req.ModelID,
		"messages": []map[string]interface{}{
			{"role": "user", "content": req.Prompt},
		},
	}
	for k, v := range req.Parameters {
		payload[k] = v
	}

	respData, failure := doJSONRequest(ctx, p.client, "POST", deepSeekChatURL, bearerHeader(key), payload)
	if failure != nil {
		return failure
	}

	content := ""
	if choices, ok := respData["choices"].([]interface{}); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]interface{}); ok {
			if message, ok := choice["message"].(map[string]interface{}); ok {
				content, _ = message["content"].(string)
			}
		}
	}
	if content == "" {
		return Failure(ErrCodeVendorRequestFailed, "no completion content in response")
	}

	return &GenerationResponse{
		Success:    true,
		Content:    content,
		TokensUsed: vendorTokens(respData),
		Metadata:   models.JSON{"mock": false},
	}
}
