// internal/workers/matching/score-match/handler.go
package scorematch

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pitchmatch-workers/internal/common/logger"
	"pitchmatch-workers/internal/common/metrics"
	"pitchmatch-workers/internal/matching"
	"pitchmatch-workers/internal/profile"
	"pitchmatch-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "score-match"
)

var (
	ErrInvalidEntityType = errors.New("VALIDATION_ERROR")
)

var validEntityTypes = map[string]bool{
	"pitch":      true,
	"creator":    true,
	"investor":   true,
	"production": true,
}

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
	scorer *matching.Scorer
}

func NewHandler(config *Config, db *sql.DB, rdb *redis.Client, log logger.Logger) *Handler {
	st := store.New(db)
	profiles := profile.NewService(st, rdb, log, config.CacheTTL)
	return &Handler{
		config: config,
		db:     db,
		redis:  rdb,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		scorer: matching.NewScorer(st, profiles, log),
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
	if err := validate(input); err != nil {
		return nil, err
	}

	result, err := h.scorer.Score(ctx, input.Entity1ID, input.Entity1Type, input.Entity2ID, input.Entity2Type)
	if err != nil {
		return nil, err
	}

	metrics.MatchScoresComputed.WithLabelValues(input.Entity1Type + "-" + input.Entity2Type).Inc()

	h.logger.Info("match scored", map[string]interface{}{
		"entity1": input.Entity1ID,
		"entity2": input.Entity2ID,
		"score":   result.Score,
		"tier":    string(result.Recommendation),
	})

	return &Output{
		Score:          result.Score,
		Breakdown:      result.Breakdown,
		Strengths:      result.Strengths,
		Considerations: result.Considerations,
		Recommendation: result.Recommendation,
		Explanation:    result.Explanation,
	}, nil
}

func validate(input *Input) error {
	if input.Entity1ID == "" || input.Entity2ID == "" {
		return fmt.Errorf("%w: entity ids are required", ErrInvalidEntityType)
	}
	if !validEntityTypes[input.Entity1Type] {
		return fmt.Errorf("%w: unknown entity type %q", ErrInvalidEntityType, input.Entity1Type)
	}
	if !validEntityTypes[input.Entity2Type] {
		return fmt.Errorf("%w: unknown entity type %q", ErrInvalidEntityType, input.Entity2Type)
	}
	return nil
}

func errorCodeFor(err error) string {
	switch {
	case errors.Is(err, ErrInvalidEntityType):
		return "VALIDATION_ERROR"
	case errors.Is(err, store.ErrPitchNotFound):
		return "PITCH_NOT_FOUND"
	case errors.Is(err, store.ErrParticipantNotFound):
		return "PARTICIPANT_NOT_FOUND"
	default:
		return "MATCH_SCORE_FAILED"
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
