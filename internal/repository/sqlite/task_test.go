package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/study-zen/internal/domain"
	"github.com/msomdec/study-zen/internal/repository/sqlite"
)

func TestTaskRepository_CRUD(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewTaskRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "tasks@example.com")

	task := &domain.Task{UserID: user.ID, Title: "Read chapter 3"}
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("expected task ID to be set")
	}

	task.Completed = true
	task.Title = "Read chapter 3 and 4"
	if err := repo.Update(ctx, task); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Completed || got.Title != "Read chapter 3 and 4" {
		t.Fatalf("unexpected task %+v", got)
	}

	tasks, err := repo.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}

	if err := repo.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, task.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestTaskRepository_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewTaskRepository(db)
	ctx := context.Background()

	if err := repo.Update(ctx, &domain.Task{ID: 999, Title: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
	if err := repo.Delete(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
}
