// Package repository implements storage for export job state and artifacts.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Status represents the state of an export job.
type Status string

// Status values for the export job lifecycle.
const (
	StatusPending Status = "PENDING"
	StatusRunning Status = "RUNNING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// ExportJob represents an export job record.
type ExportJob struct {
	ID          string
	Status      Status
	ErrorMsg    *string
	RequestedAt time.Time
	UpdatedAt   *time.Time
}

// ExportRepository defines storage operations for export jobs.
type ExportRepository interface {
	Create(ctx context.Context, id string) error
	MarkRunning(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, status Status, errorMsg *string) error
	GetByID(ctx context.Context, id string) (*ExportJob, error)
	StoreArtifact(ctx context.Context, id string, data []byte) error
	GetArtifact(ctx context.Context, id string) ([]byte, error)
}

// RedisExportRepository stores export jobs in Redis. Jobs are transient by
// design (no persistence layer) and expire with the configured TTL.
type RedisExportRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisExportRepository creates a new RedisExportRepository.
func NewRedisExportRepository(rdb *redis.Client, ttl time.Duration) *RedisExportRepository {
	return &RedisExportRepository{rdb: rdb, ttl: ttl}
}

var _ ExportRepository = (*RedisExportRepository)(nil)

func jobKey(id string) string      { return "export:{" + id + "}" }
func artifactKey(id string) string { return "export:{" + id + "}:file" }

// Create inserts a new export job in PENDING state.
func (r *RedisExportRepository) Create(ctx context.Context, id string) error {
	key := jobKey(id)

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key,
		"status", string(StatusPending),
		"requested_at", time.Now().UTC().Format(time.RFC3339),
	)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create export job: %w", err)
	}
	return nil
}

// MarkRunning transitions a job to RUNNING.
func (r *RedisExportRepository) MarkRunning(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, StatusRunning, nil)
}

// MarkCompleted transitions a job to a terminal status with an optional error message.
func (r *RedisExportRepository) MarkCompleted(ctx context.Context, id string, status Status, errorMsg *string) error {
	return r.setStatus(ctx, id, status, errorMsg)
}

func (r *RedisExportRepository) setStatus(ctx context.Context, id string, status Status, errorMsg *string) error {
	key := jobKey(id)

	exists, err := r.rdb.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("export job %s not found", id)
	}

	fields := []any{
		"status", string(status),
		"updated_at", time.Now().UTC().Format(time.RFC3339),
	}
	if errorMsg != nil {
		fields = append(fields, "error", *errorMsg)
	}

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, fields...)
	pipe.Expire(ctx, key, r.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// GetByID retrieves a job by ID, returning (nil, nil) when it does not exist
// or has expired.
func (r *RedisExportRepository) GetByID(ctx context.Context, id string) (*ExportJob, error) {
	vals, err := r.rdb.HGetAll(ctx, jobKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}

	job := &ExportJob{
		ID:     id,
		Status: Status(vals["status"]),
	}
	if v, ok := vals["requested_at"]; ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			job.RequestedAt = t
		}
	}
	if v, ok := vals["updated_at"]; ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			job.UpdatedAt = &t
		}
	}
	if v, ok := vals["error"]; ok && v != "" {
		job.ErrorMsg = &v
	}
	return job, nil
}

// StoreArtifact saves the generated workbook bytes with the job TTL.
func (r *RedisExportRepository) StoreArtifact(ctx context.Context, id string, data []byte) error {
	if err := r.rdb.Set(ctx, artifactKey(id), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store export artifact: %w", err)
	}
	return nil
}

// GetArtifact loads the workbook bytes, returning (nil, nil) when absent.
func (r *RedisExportRepository) GetArtifact(ctx context.Context, id string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, artifactKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}
