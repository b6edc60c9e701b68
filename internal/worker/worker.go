// Package worker implements background task handling for export generation.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"converterservice/internal/service"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NewExportHandler returns a function to handle export generation tasks.
func NewExportHandler(svc service.ConverterServiceInterface, logger *zap.SugaredLogger) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload service.ExportTaskPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Errorw("Invalid task payload", "type", t.Type(), "error", err)
			return nil
		}

		if err := svc.ProcessExport(ctx, payload.ExportID); err != nil {
			logger.Errorw("Task processing failed", "export_id", payload.ExportID, "error", err)
			return err
		}

		logger.Infow("Task completed", "export_id", payload.ExportID)
		return nil
	}
}

// AsynqEnqueuer enqueues tasks to an Asynq queue with configured retry and
// timeout settings.
type AsynqEnqueuer struct {
	client   *asynq.Client
	maxRetry int
	timeout  time.Duration
}

// NewAsynqEnqueuer creates a new AsynqEnqueuer with the given client, retry limit, and task timeout duration.
func NewAsynqEnqueuer(client *asynq.Client, maxRetry int, timeout time.Duration) *AsynqEnqueuer {
	return &AsynqEnqueuer{
		client:   client,
		maxRetry: maxRetry,
		timeout:  timeout,
	}
}

var _ service.TaskEnqueuer = (*AsynqEnqueuer)(nil)

// EnqueueExportTask enqueues an export generation task with the specified payload.
func (e *AsynqEnqueuer) EnqueueExportTask(ctx context.Context, payload service.ExportTaskPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(service.TaskTypeGenerateExport, data,
		asynq.MaxRetry(e.maxRetry),
		asynq.Timeout(e.timeout),
	)

	_, err = e.client.EnqueueContext(ctx, task)
	return err
}
