package providers

import (
	"aibot-backend/internal/models"
	"aibot-backend/internal/utils"
	"context"
	"net/http"
	"time"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
)

// AnthropicProvider handles text generation via the Messages API.
type AnthropicProvider struct {
	creds  CredentialStore
	client *http.Client
}

func NewAnthropicProvider(creds CredentialStore) *AnthropicProvider {
	return &AnthropicProvider{
		creds:  creds,
		client: utils.NewHTTPClient(5 * time.Minute),
	}
}

func (p *AnthropicProvider) Kind() models.ProviderKind { return models.ProviderAnthropic }

func (p *AnthropicProvider) Generate(ctx context.Context, req Request) *GenerationResponse {
	key := p.creds.Get(models.ProviderAnthropic)
	if key == "" {
		return Failure(ErrCodeCredentialMissing, "no Anthropic credential configured")
	}

	if req.Category != models.CategoryText && req.Category != models.CategoryTextWithImage {
		return unsupported(models.ProviderAnthropic, req.Category)
	}

	maxTokens := 1024
	if v, ok := req.Parameters["max_tokens"].(float64); ok && v > 0 {
		maxTokens = int(v)
	}

	payload := map[string]interface{}{
		"model":      req.ModelID,
		"max_tokens": maxTokens,
		"messages": []map[string]interface{}{
			{"role": "user", "content": req.Prompt},
		},
	}

	headers := map[string]string{
		"x-api-key":         key,
		"anthropic-version": anthropicVersion,
	}

	respData, failure := doJSONRequest(ctx, p.client, "POST", anthropicMessagesURL, headers, payload)
	if failure != nil {
		return failure
	}

	content := ""
	if blocks, ok := respData["content"].([]interface{}); ok && len(blocks) > 0 {
		if block, ok := blocks[0].(map[string]interface{}); ok {
			content, _ = block["text"].(string)
		}
	}
	if content == "" {
		return Failure(ErrCodeVendorRequestFailed, "no message content in response")
	}

	var tokens int64
	if usage, ok := respData["usage"].(map[string]interface{}); ok {
		if in, ok := usage["input_tokens"].(float64); ok {
			tokens += int64(in)
		}
		if out, ok := usage["output_tokens"].(float64); ok {
			tokens += int64(out)
		}
	}

	return &GenerationResponse{
		Success:    true,
		Content:    content,
		TokensUsed: tokens,
		Metadata:   models.JSON{"mock": false},
	}
}
