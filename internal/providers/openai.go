package providers

import (
	"aibot-backend/internal/models"
	"aibot-backend/internal/utils"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const openAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider covers text, image generation and the audio endpoints.
type OpenAIProvider struct {
	creds  CredentialStore
	client *http.Client
}

func NewOpenAIProvider(creds CredentialStore) *OpenAIProvider {
	return &OpenAIProvider{
		creds:  creds,
		client: utils.NewHTTPClient(15 * time.Minute),
	}
}

func (p *OpenAIProvider) Kind() models.ProviderKind { return models.ProviderOpenAI }

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) *GenerationResponse {
	key := p.creds.Get(models.ProviderOpenAI)
	if key == "" {
		return Failure(ErrCodeCredentialMissing, "no OpenAI credential configured")
	}

	switch req.Category {
	case models.CategoryText, models.CategoryTextWithImage:
		return p.chatCompletion(ctx, req, key)
	case models.CategoryImageGen, models.CategoryImageEdit:
		return p.imageGeneration(ctx, req, key)
	case models.CategoryTTS:
		return p.speech(ctx, req, key)
	case models.CategoryTranscription:
		return p.transcription(ctx, req, key)
	default:
		return unsupported(models.ProviderOpenAI, req.Category)
	}
}

func (p *OpenAIProvider) chatCompletion(ctx context.Context, req Request, key string) *GenerationResponse {
	payload := map[string]interface{}{
		"model": req.ModelID,
		"messages": []map[string]interface{}{
			{"role": "user", "content": req.Prompt},
		},
	}
	for k, v := range req.Parameters {
		payload[k] = v
	}

	respData, failure := doJSONRequest(ctx, p.client, "POST", openAIBaseURL+"/chat/completions", bearerHeader(key), payload)
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

func (p *OpenAIProvider) imageGeneration(ctx context.Context, req Request, key string) *GenerationResponse {
	payload := map[string]interface{}{
		"model":  req.ModelID,
		"prompt": req.Prompt,
		"size":   stringParam(req.Parameters, "size", "1024x1024"),
	}

	respData, failure := doJSONRequest(ctx, p.client, "POST", openAIBaseURL+"/images/generations", bearerHeader(key), payload)
	if failure != nil {
		return failure
	}

	var url string
	if data, ok := respData["data"].([]interface{}); ok && len(data) > 0 {
		if item, ok := data[0].(map[string]interface{}); ok {
			url, _ = item["url"].(string)
		}
	}
	if url == "" {
		return Failure(ErrCodeVendorRequestFailed, "no image url in response")
	}

	return &GenerationResponse{
		Success:  true,
		FilePath: url,
		Metadata: models.JSON{"mock": false},
	}
}

// speech returns raw audio bytes, so it bypasses doJSONRequest and
// writes the result to a temp file for the caller to pick up.
func (p *OpenAIProvider) speech(ctx context.Context, req Request, key string) *GenerationResponse {
	payload := map[string]interface{}{
		"model": req.ModelID,
		"input": req.Prompt,
		"voice": stringParam(req.Parameters, "voice", "alloy"),
	}
	payloadBytes, _ := json.Marshal(payload)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", openAIBaseURL+"/audio/speech", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return Failure(ErrCodeVendorRequestFailed, "failed to create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+key)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Failure(ErrCodeTimeout, "vendor call exceeded deadline")
		}
		return Failure(ErrCodeVendorRequestFailed, "request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return classifyStatus(resp.StatusCode, body)
	}

	tmpName := filepath.Join(os.TempDir(), fmt.Sprintf("tts_%s.mp3", uuid.New().String()))
	out, err := os.Create(tmpName)
	if err != nil {
		return Failure(ErrCodeVendorRequestFailed, "failed to create audio file: %v", err)
	}
	_, err = io.Copy(out, resp.Body)
	out.Close()
	if err != nil {
		os.Remove(tmpName)
		return Failure(ErrCodeVendorRequestFailed, "failed to write audio file: %v", err)
	}

	return &GenerationResponse{
		Success:  true,
		FilePath: tmpName,
		Metadata: models.JSON{"mock": false},
	}
}

func (p *OpenAIProvider) transcription(ctx context.Context, req Request, key string) *GenerationResponse {
	fileURL := stringParam(req.Parameters, "file_url", "")
	if fileURL == "" {
		return Failure(ErrCodeVendorRejected, "transcription requires a file_url parameter")
	}

	audioReq, err := http.NewRequestWithContext(ctx, "GET", fileURL, nil)
	if err != nil {
		return Failure(ErrCodeVendorRequestFailed, "failed to create download request: %v", err)
	}
	audioResp, err := p.client.Do(audioReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Failure(ErrCodeTimeout, "vendor call exceeded deadline")
		}
		return Failure(ErrCodeVendorRequestFailed, "failed to download audio: %v", err)
	}
	defer audioResp.Body.Close()
	if audioResp.StatusCode >= 400 {
		return Failure(ErrCodeVendorRequestFailed, "audio download returned status %d", audioResp.StatusCode)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(fileURL))
	if err != nil {
		return Failure(ErrCodeVendorRequestFailed, "failed to build upload: %v", err)
	}
	if _, err := io.Copy(part, audioResp.Body); err != nil {
		return Failure(ErrCodeVendorRequestFailed, "failed to buffer audio: %v", err)
	}
	writer.WriteField("model", req.ModelID)
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, "POST", openAIBaseURL+"/audio/transcriptions", body)
	if err != nil {
		return Failure(ErrCodeVendorRequestFailed, "failed to create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+key)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Failure(ErrCodeTimeout, "vendor call exceeded deadline")
		}
		return Failure(ErrCodeVendorRequestFailed, "request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return classifyStatus(resp.StatusCode, respBody)
	}

	var respData map[string]interface{}
	if err := json.Unmarshal(respBody, &respData); err != nil {
		return Failure(ErrCodeVendorRequestFailed, "failed to decode response: %v", err)
	}
	text, _ := respData["text"].(string)

	return &GenerationResponse{
		Success:  true,
		Content:  text,
		Metadata: models.JSON{"mock": false},
	}
}

func bearerHeader(key string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + key}
}

// vendorTokens pulls the vendor-reported usage figure. Informational
// only; billing uses the catalog price.
func vendorTokens(respData map[string]interface{}) int64 {
	if usage, ok := respData["usage"].(map[string]interface{}); ok {
		if total, ok := usage["total_tokens"].(float64); ok {
			return int64(total)
		}
	}
	return 0
}
