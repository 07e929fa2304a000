// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"pitchmatch-workers/internal/common/errors"
)

// HandlerFunc is the job handler signature shared by all workers.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// CamundaWorker owns one open job subscription.
type CamundaWorker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// NewWorker opens a job subscription for taskType. Panics inside the handler
// are recovered and surfaced to the broker through the standard error
// taxonomy so a broken job never takes the poller down with it.
func NewWorker(
	client zbc.Client,
	taskType string,
	maxJobsActive int,
	timeout time.Duration,
	handler HandlerFunc,
	logger *zap.Logger,
) *CamundaWorker {
	errHandler := errors.NewErrorHandler(zapFieldLogger{logger})

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(func(client worker.JobClient, job entities.Job) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("handler panicked",
						zap.String("taskType", taskType),
						zap.Int64("jobKey", job.Key),
						zap.Any("panic", r),
					)
					errHandler.HandleJobError(context.Background(), client, job,
						fmt.Errorf("handler panic: %v", r))
				}
			}()
			handler(client, job)
		}).
		MaxJobsActive(maxJobsActive).
		Timeout(timeout).
		Open()

	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobsActive),
		zap.Duration("timeout", timeout),
	)

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   logger,
		taskType: taskType,
	}
}

// Stop closes the job subscription. The shared Zeebe client stays open;
// the caller owns it.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
}

// zapFieldLogger adapts zap to the error handler's map-field logger.
type zapFieldLogger struct {
	log *zap.Logger
}

func (l zapFieldLogger) Error(msg string, fields map[string]interface{}) {
	zapFields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	l.log.Error(msg, zapFields...)
}
