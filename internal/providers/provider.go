package providers

import (
	"aibot-backend/internal/models"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ErrorCode classifies why a generation attempt failed. Ordinary vendor
// failures are carried on the response, never as Go errors, so callers
// have a single success check.
type ErrorCode string

const (
	ErrCodeCredentialMissing   ErrorCode = "credential_missing"
	ErrCodeVendorRequestFailed ErrorCode = "vendor_request_failed"
	ErrCodeVendorRejected      ErrorCode = "vendor_rejected"
	ErrCodeTimeout             ErrorCode = "timeout"
)

// GenerationRequest is what callers hand to the dispatcher.
type GenerationRequest struct {
	UserID     uint                   `json:"user_id"`
	ModelID    string                 `json:"model_id"`
	Prompt     string                 `json:"prompt"`
	Parameters map[string]interface{} `json:"parameters"`
	UseMock    bool                   `json:"use_mock"`
}

// Request is the resolved form passed to a concrete provider.
type Request struct {
	ModelID    string
	Category   models.OperationCategory
	Prompt     string
	Parameters map[string]interface{}
}

// GenerationResponse is the uniform result shape for every provider,
// real or mock. Metadata always carries a "mock" flag so callers can
// tell simulated output from real output.
type GenerationResponse struct {
	Success           bool        `json:"success"`
	Content           string      `json:"content,omitempty"`
	FilePath          string      `json:"file_path_or_url,omitempty"`
	ErrorCode         ErrorCode   `json:"error_code,omitempty"`
	Error             string      `json:"error,omitempty"`
	TokensUsed        int64       `json:"tokens_used"`
	ProcessingSeconds float64     `json:"processing_time_seconds"`
	Metadata          models.JSON `json:"metadata"`
}

// Provider is implemented by each vendor integration and the mock.
type Provider interface {
	Kind() models.ProviderKind
	Generate(ctx context.Context, req Request) *GenerationResponse
}

// Failure builds a failed response with the given code.
func Failure(code ErrorCode, format string, args ...interface{}) *GenerationResponse {
	return &GenerationResponse{
		Success:   false,
		ErrorCode: code,
		Error:     fmt.Sprintf(format, args...),
		Metadata:  models.JSON{"mock": false},
	}
}

// unsupported reports an operation a provider does not implement. A
// descriptor routing such a category here is a catalog defect.
func unsupported(kind models.ProviderKind, category models.OperationCategory) *GenerationResponse {
	return Failure(ErrCodeVendorRejected, "operation %s is not supported by the %s provider", category, kind)
}

// doJSONRequest sends a JSON payload and decodes a JSON body. On failure
// it returns a classified response: context deadline -> timeout,
// transport error -> vendor_request_failed, vendor-side validation
// statuses -> vendor_rejected.
func doJSONRequest(ctx context.Context, client *http.Client, method, url string, headers map[string]string, payload map[string]interface{}) (map[string]interface{}, *GenerationResponse) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, Failure(ErrCodeVendorRequestFailed, "failed to encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, Failure(ErrCodeVendorRequestFailed, "failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, Failure(ErrCodeTimeout, "vendor call exceeded deadline")
		}
		return nil, Failure(ErrCodeVendorRequestFailed, "request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, classifyStatus(resp.StatusCode, body)
	}

	var respData map[string]interface{}
	if err := json.Unmarshal(body, &respData); err != nil {
		return nil, Failure(ErrCodeVendorRequestFailed, "failed to decode response: %v", err)
	}
	return respData, nil
}

func classifyStatus(status int, body []byte) *GenerationResponse {
	excerpt := string(body)
	if len(excerpt) > 500 {
		excerpt = excerpt[:500]
	}
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusUnavailableForLegalReasons:
		return Failure(ErrCodeVendorRejected, "vendor rejected request (status %d): %s", status, excerpt)
	default:
		return Failure(ErrCodeVendorRequestFailed, "vendor returned error status %d: %s", status, excerpt)
	}
}

// stringParam reads a string knob from the open parameters map.
func stringParam(params map[string]interface{}, key, fallback string) string {
	if params != nil {
		if v, ok := params[key].(string); ok && v != "" {
			return v
		}
	}
	return fallback
}
