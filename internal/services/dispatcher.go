package services

import (
	"aibot-backend/internal/database"
	"aibot-backend/internal/models"
	"aibot-backend/internal/providers"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const GenerationQueueKey = "generation_queue"

// categoryTimeouts bounds each vendor call by operation class: seconds
// for text, minutes for media generation.
var categoryTimeouts = map[models.OperationCategory]time.Duration{
	models.CategoryText:          60 * time.Second,
	models.CategoryTextWithImage: 90 * time.Second,
	models.CategoryImageGen:      2 * time.Minute,
	models.CategoryImageEdit:     2 * time.Minute,
	models.CategoryTTS:           2 * time.Minute,
	models.CategoryTranscription: 5 * time.Minute,
	models.CategoryAudioGen:      5 * time.Minute,
	models.CategoryVideoGen:      10 * time.Minute,
}

// OperationTimeout returns the deadline for an operation class.
func OperationTimeout(category models.OperationCategory) time.Duration {
	if d, ok := categoryTimeouts[category]; ok {
		return d
	}
	return 60 * time.Second
}

// asyncCategories run through the background queue instead of blocking
// the request.
var asyncCategories = map[models.OperationCategory]bool{
	models.CategoryVideoGen: true,
	models.CategoryAudioGen: true,
}

// IsAsyncCategory reports whether a category is handled by the worker.
func IsAsyncCategory(category models.OperationCategory) bool {
	return asyncCategories[category]
}

// Dispatcher resolves models to providers, invokes them under an
// operation-class deadline and records every attempt in the ledger. It
// never retries; a vendor failure comes back as a failed response.
type Dispatcher struct {
	registry *providers.Registry
}

// DefaultDispatcher is the process-wide dispatcher, set during startup.
var DefaultDispatcher *Dispatcher

func NewDispatcher(registry *providers.Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// InitDispatcher wires the process-wide dispatcher.
func InitDispatcher(registry *providers.Registry) {
	DefaultDispatcher = NewDispatcher(registry)
}

// Registry exposes the underlying registry for catalog reloads.
func (d *Dispatcher) Registry() *providers.Registry {
	return d.registry
}

// Dispatch runs one generation synchronously. The ledger write happens
// on a background goroutine so the response path never waits on it.
// The only error return is an unknown model; every vendor failure is
// inside the response.
func (d *Dispatcher) Dispatch(ctx context.Context, req providers.GenerationRequest) (*providers.GenerationResponse, error) {
	resp, desc, err := d.invoke(ctx, req)
	if err != nil {
		return nil, err
	}

	status := models.UsageStatusFailed
	if resp.Success {
		status = models.UsageStatusCompleted
	}
	LogOperationBackground(LogParams{
		UserID:            req.UserID,
		ModelID:           req.ModelID,
		Category:          desc.Category,
		Prompt:            req.Prompt,
		Status:            status,
		ResponseFilePath:  resp.FilePath,
		ProcessingSeconds: resp.ProcessingSeconds,
		InputData:         req.Parameters,
	})

	return resp, nil
}

func (d *Dispatcher) invoke(ctx context.Context, req providers.GenerationRequest) (*providers.GenerationResponse, *models.ModelDescriptor, error) {
	provider, desc, err := d.registry.Resolve(req.ModelID, req.UseMock)
	if err != nil {
		return nil, nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, OperationTimeout(desc.Category))
	defer cancel()

	start := time.Now()
	resp := provider.Generate(callCtx, providers.Request{
		ModelID:    desc.ModelID,
		Category:   desc.Category,
		Prompt:     req.Prompt,
		Parameters: req.Parameters,
	})
	resp.ProcessingSeconds = time.Since(start).Seconds()
	if resp.Metadata == nil {
		resp.Metadata = models.JSON{"mock": provider.Kind() == models.ProviderMock}
	}

	return resp, desc, nil
}

// Enqueue records a pending generation and queues it for the worker.
// Returns the usage record ID callers can poll.
func (d *Dispatcher) Enqueue(req providers.GenerationRequest) (uint, error) {
	desc, ok := d.registry.Descriptor(req.ModelID)
	if !ok {
		return 0, fmt.Errorf("%w: %q", providers.ErrUnknownModel, req.ModelID)
	}

	input := map[string]interface{}{
		"prompt":     req.Prompt,
		"parameters": req.Parameters,
		"use_mock":   req.UseMock,
	}
	id := LogOperation(LogParams{
		UserID:    req.UserID,
		ModelID:   req.ModelID,
		Category:  desc.Category,
		Prompt:    req.Prompt,
		Status:    models.UsageStatusPending,
		InputData: input,
	})
	if id == nil {
		return 0, errors.New("failed to record pending generation")
	}

	if err := database.RedisClient.RPush(database.Ctx, GenerationQueueKey, *id).Err(); err != nil {
		return *id, fmt.Errorf("generation recorded but failed to queue: %v", err)
	}
	return *id, nil
}

// StartWorker consumes the generation queue. Each popped record runs on
// its own goroutine so a slow video job does not block the queue.
func (d *Dispatcher) StartWorker() {
	zap.L().Info("generation worker started")
	for {
		result, err := database.RedisClient.BLPop(context.Background(), 0*time.Second, GenerationQueueKey).Result()
		if err != nil {
			zap.L().Warn("generation queue pop failed", zap.Error(err))
			time.Sleep(1 * time.Second) // Prevent tight loop on error
			continue
		}

		// result[0] is the key, result[1] is the value
		recordID, err := strconv.Atoi(result[1])
		if err != nil {
			zap.L().Warn("invalid record id on queue", zap.String("value", result[1]))
			continue
		}

		go d.ProcessRecord(uint(recordID))
	}
}

// ProcessRecord executes one queued generation and finalizes its record.
func (d *Dispatcher) ProcessRecord(recordID uint) {
	var record models.UsageRecord
	if err := database.DB.First(&record, recordID).Error; err != nil {
		zap.L().Warn("queued record not found", zap.Uint("record_id", recordID), zap.Error(err))
		return
	}
	if record.Status != models.UsageStatusPending {
		zap.L().Warn("queued record already finalized", zap.Uint("record_id", recordID), zap.String("status", string(record.Status)))
		return
	}

	var input map[string]interface{}
	if err := json.Unmarshal(record.InputData, &input); err != nil {
		zap.L().Warn("queued record has bad input data", zap.Uint("record_id", recordID), zap.Error(err))
		UpdateOperationStatus(recordID, models.UsageStatusFailed, "", 0)
		return
	}
	prompt, _ := input["prompt"].(string)
	params, _ := input["parameters"].(map[string]interface{})
	useMock, _ := input["use_mock"].(bool)

	resp, _, err := d.invoke(context.Background(), providers.GenerationRequest{
		UserID:     record.UserID,
		ModelID:    record.ModelID,
		Prompt:     prompt,
		Parameters: params,
		UseMock:    useMock,
	})
	if err != nil {
		// Model vanished from the snapshot between enqueue and execution.
		zap.L().Warn("queued record dispatch failed", zap.Uint("record_id", recordID), zap.Error(err))
		UpdateOperationStatus(recordID, models.UsageStatusFailed, "", 0)
		return
	}

	if !resp.Success {
		zap.L().Warn("queued generation failed",
			zap.Uint("record_id", recordID),
			zap.String("error_code", string(resp.ErrorCode)),
			zap.String("error", resp.Error))
		UpdateOperationStatus(recordID, models.UsageStatusFailed, "", resp.ProcessingSeconds)
		return
	}

	filePath := resp.FilePath
	if stored, err := StoreArtifact(filePath); err != nil {
		zap.L().Warn("artifact re-hosting failed, keeping vendor url",
			zap.Uint("record_id", recordID), zap.Error(err))
	} else {
		filePath = stored
	}

	UpdateOperationStatus(recordID, models.UsageStatusCompleted, filePath, resp.ProcessingSeconds)
}
