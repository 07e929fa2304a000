// internal/workers/matching/recommend-investors/handler.go
package recommendinvestors

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pitchmatch-workers/internal/common/logger"
	"pitchmatch-workers/internal/common/metrics"
	"pitchmatch-workers/internal/profile"
	"pitchmatch-workers/internal/recommend"
	"pitchmatch-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "recommend-investors"
)

var (
	ErrMissingTarget = errors.New("VALIDATION_ERROR")
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
	ranker *recommend.Ranker
}

func NewHandler(config *Config, db *sql.DB, rdb *redis.Client, log logger.Logger) *Handler {
	st := store.New(db)
	profiles := profile.NewService(st, rdb, log, config.CacheTTL)
	return &Handler{
		config: config,
		db:     db,
		redis:  rdb,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		ranker: recommend.NewRanker(st, profiles, log),
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
		h.failJob(client, job, errorCodeFor(err), err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.CreatorID == "" && input.PitchID == "" {
		return nil, fmt.Errorf("%w: creatorId or pitchId is required", ErrMissingTarget)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = h.config.DefaultLimit
	}

	recs, err := h.ranker.RecommendInvestors(ctx, input.CreatorID, input.PitchID, limit)
	if err != nil {
		return nil, err
	}

	metrics.RecommendationsServed.WithLabelValues("investor").Inc()

	h.logger.Info("investors recommended", map[string]interface{}{
		"creatorId": input.CreatorID,
		"pitchId":   input.PitchID,
		"count":     len(recs),
	})

	return &Output{
		Recommendations: recs,
		Count:           len(recs),
	}, nil
}

func errorCodeFor(err error) string {
	switch {
	case errors.Is(err, ErrMissingTarget):
		return "VALIDATION_ERROR"
	case errors.Is(err, store.ErrPitchNotFound):
		return "PITCH_NOT_FOUND"
	default:
		return "RECOMMENDATION_FAILED"
	}
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
