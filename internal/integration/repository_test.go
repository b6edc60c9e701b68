//go:build integration

package integration

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"converterservice/internal/repository"
)

func TestExportRepository_FullLifecycle(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)

	repo := repository.NewRedisExportRepository(testRDB, time.Hour)
	id := uuid.New().String()

	if err := repo.Create(ctx, id); err != nil {
		t.Fatalf("Create: %v", err)
	}

	job, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job == nil {
		t.Fatal("expected job, got nil")
	}
	if job.Status != repository.StatusPending {
		t.Fatalf("expected PENDING, got %s", job.Status)
	}

	if err := repo.MarkRunning(ctx, id); err != nil {
		t.Fatalf("MarkRunning: %v", err)
	}
	if err := repo.StoreArtifact(ctx, id, []byte("workbook")); err != nil {
		t.Fatalf("StoreArtifact: %v", err)
	}
	if err := repo.MarkCompleted(ctx, id, repository.StatusSuccess, nil); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	job, err = repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID after completion: %v", err)
	}
	if job.Status != repository.StatusSuccess {
		t.Fatalf("expected SUCCESS, got %s", job.Status)
	}
	if job.UpdatedAt == nil {
		t.Fatal("expected updated_at to be set")
	}

	data, err := repo.GetArtifact(ctx, id)
	if err != nil {
		t.Fatalf("GetArtifact: %v", err)
	}
	if string(data) != "workbook" {
		t.Fatalf("unexpected artifact content: %q", data)
	}
}

func TestExportRepository_MissingJob(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)

	repo := repository.NewRedisExportRepository(testRDB, time.Hour)

	job, err := repo.GetByID(ctx, uuid.New().String())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil job, got %+v", job)
	}

	if err := repo.MarkRunning(ctx, uuid.New().String()); err == nil {
		t.Fatal("expected error when marking unknown job")
	}
}
