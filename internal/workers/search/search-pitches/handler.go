// internal/workers/search/search-pitches/handler.go
package searchpitches

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pitchmatch-workers/internal/common/logger"
	"pitchmatch-workers/internal/common/metrics"
	"pitchmatch-workers/internal/models"
	"pitchmatch-workers/internal/search"
	"pitchmatch-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "search-pitches"
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
	fusion *search.Fusion
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		fusion: search.NewFusion(store.New(db), log),
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

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "SEARCH_FAILED"
		if errors.Is(err, search.ErrQueryTooShort) {
			errorCode = "VALIDATION_ERROR"
		}
		h.failJob(client, job, errorCode, err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	parsed := input.ParsedQuery
	if parsed == nil {
		var err error
		parsed, err = search.Parse(input.Query)
		if err != nil {
			return nil, err
		}
	}

	limit := input.Limit
	if limit <= 0 {
		limit = h.config.DefaultLimit
	}
	if !input.Authenticated && h.config.AnonymousCap > 0 && limit > h.config.AnonymousCap {
		limit = h.config.AnonymousCap
	}

	mode := models.SearchMode(input.Mode)
	resp, err := h.fusion.Search(ctx, parsed, search.Options{
		Filters:       input.Filters,
		Mode:          mode,
		Limit:         limit,
		Offset:        input.Offset,
		Authenticated: input.Authenticated,
	})
	if err != nil {
		return nil, err
	}

	if mode == "" {
		mode = models.ModeHybrid
	}
	metrics.SearchQueriesExecuted.WithLabelValues(string(mode)).Inc()

	h.logger.Info("search executed", map[string]interface{}{
		"intent":  string(parsed.Intent),
		"mode":    string(mode),
		"results": len(resp.Results),
	})

	return &Output{
		Results:     resp.Results,
		Suggestions: resp.Suggestions,
		Count:       len(resp.Results),
		Intent:      parsed.Intent,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
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
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
