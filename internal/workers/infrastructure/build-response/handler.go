// internal/workers/infrastructure/build-response/handler.go
package buildresponse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"pitchmatch-workers/internal/common/logger"
	"pitchmatch-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

const TaskType = "build-response"

var (
	ErrActivityNotFound        = errors.New("ACTIVITY_NOT_FOUND")
	ErrPayloadValidationFailed = errors.New("VALIDATION_ERROR")
)

type registryCacheEntry struct {
	registry *registry.ActivityRegistry
	loadedAt time.Time
}

type Handler struct {
	config *Config
	logger logger.Logger
	cache  *registryCacheEntry
	mu     sync.RWMutex
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		errorCode := "RESPONSE_BUILD_ERROR"
		if errors.Is(err, ErrActivityNotFound) {
			errorCode = "ACTIVITY_NOT_FOUND"
		} else if errors.Is(err, ErrPayloadValidationFailed) {
			errorCode = "VALIDATION_ERROR"
		}
		h.failJob(client, job, errorCode, err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	activity, err := h.lookupActivity(input.ActivityID)
	if err != nil {
		return nil, err
	}

	if err := h.validatePayload(activity.OutputSchema, input.Data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadValidationFailed, err)
	}

	requestID := input.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	payload := ResponsePayload{
		RequestID: requestID,
		Status:    "success",
		Activity:  activity.ID,
		Data:      input.Data,
		Metadata: ResponseMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   h.config.AppVersion,
		},
	}

	return &Output{Response: payload}, nil
}

func (h *Handler) lookupActivity(id string) (*registry.Activity, error) {
	reg, err := h.loadRegistry()
	if err != nil {
		return nil, err
	}

	activity, ok := reg.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActivityNotFound, id)
	}
	return activity, nil
}

func (h *Handler) loadRegistry() (*registry.ActivityRegistry, error) {
	h.mu.RLock()
	if h.cache != nil && time.Since(h.cache.loadedAt) < h.config.CacheTTL {
		reg := h.cache.registry
		h.mu.RUnlock()
		return reg, nil
	}
	h.mu.RUnlock()

	reg, err := registry.LoadRegistry(h.config.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}

	h.mu.Lock()
	h.cache = &registryCacheEntry{registry: reg, loadedAt: time.Now()}
	h.mu.Unlock()
	return reg, nil
}

func (h *Handler) validatePayload(schemaMap, data map[string]interface{}) error {
	if len(schemaMap) == 0 {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(schemaMap)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("payload validation failed: %v", errs)
	}

	return nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, _ int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{"error": err})
	}
}
