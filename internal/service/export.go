package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"converterservice/internal/export"
	"converterservice/internal/repository"
)

// TaskTypeGenerateExport is the Asynq task type for export generation jobs.
const TaskTypeGenerateExport = "export:generate"

// ExportTaskPayload is the payload structure for export generation Asynq tasks.
type ExportTaskPayload struct {
	ExportID string `json:"export_id"`
}

// TaskEnqueuer enqueues background export tasks.
type TaskEnqueuer interface {
	EnqueueExportTask(ctx context.Context, payload ExportTaskPayload) error
}

// RequestExport creates a new export job and enqueues its generation.
func (s *ConverterService) RequestExport(ctx context.Context) (string, error) {
	id := uuid.New().String()

	if err := s.repo.Create(ctx, id); err != nil {
		s.log.Errorw("Failed to create export job", "error", err)
		return "", ErrInternal
	}

	if err := s.enqueuer.EnqueueExportTask(ctx, ExportTaskPayload{ExportID: id}); err != nil {
		s.log.Errorw("Failed to enqueue export task", "export_id", id, "error", err)
		s.markFailed(ctx, id, "enqueue error")
		return "", ErrInternalQueue
	}

	s.log.Infow("Enqueued export task", "export_id", id)
	return id, nil
}

// GetExport retrieves the status of an export job.
func (s *ConverterService) GetExport(ctx context.Context, exportID string) (*ExportResult, error) {
	if _, err := uuid.Parse(exportID); err != nil {
		return nil, ErrInvalidExportID
	}

	job, err := s.repo.GetByID(ctx, exportID)
	if err != nil {
		s.log.Errorw("Store error fetching export job", "export_id", exportID, "error", err)
		return nil, ErrInternal
	}
	if job == nil {
		return nil, ErrNotFound
	}

	return exportResultFromRepo(job), nil
}

// GetExportFile returns the workbook bytes for a completed export.
func (s *ConverterService) GetExportFile(ctx context.Context, exportID string) ([]byte, error) {
	if _, err := uuid.Parse(exportID); err != nil {
		return nil, ErrInvalidExportID
	}

	job, err := s.repo.GetByID(ctx, exportID)
	if err != nil {
		s.log.Errorw("Store error fetching export job", "export_id", exportID, "error", err)
		return nil, ErrInternal
	}
	if job == nil {
		return nil, ErrNotFound
	}
	if job.Status != repository.StatusSuccess {
		return nil, ErrExportNotReady
	}

	data, err := s.repo.GetArtifact(ctx, exportID)
	if err != nil {
		s.log.Errorw("Store error fetching export artifact", "export_id", exportID, "error", err)
		return nil, ErrInternal
	}
	if data == nil {
		return nil, ErrNotFound
	}
	return data, nil
}

// ProcessExport fetches a USD rate for every listed currency, builds the
// workbook and stores it (called by the background worker). Currencies whose
// rate cannot be fetched are skipped; the job fails only when nothing at all
// could be fetched.
func (s *ConverterService) ProcessExport(ctx context.Context, exportID string) error {
	s.log.Infow("Processing export", "export_id", exportID)
	s.markRunning(ctx, exportID)

	symbols, err := s.live.ListSymbols(ctx)
	if err != nil {
		s.completeFailure(ctx, exportID, err)
		return err
	}

	rows := make([]export.RateRow, 0, len(symbols))
	for _, code := range symbols {
		if code == "USD" {
			rows = append(rows, export.RateRow{Currency: code, Rate: 1})
			continue
		}
		rate, err := s.live.GetRate(ctx, "USD", code)
		if err != nil {
			s.log.Warnw("Skipping currency in export", "currency", code, "error", err)
			continue
		}
		rows = append(rows, export.RateRow{Currency: code, Rate: rate})
	}

	data, err := export.BuildRatesWorkbook(rows)
	if err != nil {
		s.completeFailure(ctx, exportID, err)
		return err
	}

	if err := s.repo.StoreArtifact(ctx, exportID, data); err != nil {
		s.log.Errorw("Store error on export artifact", "export_id", exportID, "error", err)
		s.markFailed(ctx, exportID, "artifact store error")
		return err
	}
	if err := s.repo.MarkCompleted(ctx, exportID, repository.StatusSuccess, nil); err != nil {
		s.log.Errorw("Store error on export success", "export_id", exportID, "error", err)
		return err
	}

	s.log.Infow("Export success", "export_id", exportID, "rows", len(rows))
	return nil
}

func (s *ConverterService) markRunning(ctx context.Context, exportID string) {
	if err := s.repo.MarkRunning(ctx, exportID); err != nil {
		s.log.Warnw("Failed to mark export as RUNNING", "export_id", exportID, "error", err)
	}
}

func (s *ConverterService) markFailed(ctx context.Context, exportID, reason string) {
	if err := s.repo.MarkCompleted(ctx, exportID, repository.StatusFailed, strPtr(reason)); err != nil {
		s.log.Warnw("Failed to mark export as FAILED", "export_id", exportID, "error", err)
	}
}

func (s *ConverterService) completeFailure(ctx context.Context, exportID string, cause error) {
	s.log.Errorw("Export generation failed", "export_id", exportID, "error", cause)
	msg := cause.Error()
	if err := s.repo.MarkCompleted(ctx, exportID, repository.StatusFailed, &msg); err != nil {
		s.log.Warnw("Failed to mark export as FAILED after error", "export_id", exportID, "error", err)
	}
}

func exportResultFromRepo(job *repository.ExportJob) *ExportResult {
	r := &ExportResult{
		ID:     job.ID,
		Status: string(job.Status),
	}

	switch job.Status {
	case repository.StatusSuccess:
		if job.UpdatedAt != nil {
			ts := job.UpdatedAt.Format(time.RFC3339)
			r.UpdatedAt = &ts
		}
	case repository.StatusFailed:
		r.ErrorMsg = job.ErrorMsg
	}

	return r
}

func strPtr(s string) *string { return &s }
