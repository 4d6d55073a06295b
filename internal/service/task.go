package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/msomdec/study-zen/internal/domain"
)

const maxTaskTitleLength = 200

// TaskFilter selects which planner tasks to list.
type TaskFilter string

const (
	TaskFilterAll       TaskFilter = "all"
	TaskFilterActive    TaskFilter = "active"
	TaskFilterCompleted TaskFilter = "completed"
)

// ParseTaskFilter parses a filter name; the empty string means all tasks.
func ParseTaskFilter(s string) (TaskFilter, error) {
	switch TaskFilter(s) {
	case "", TaskFilterAll:
		return TaskFilterAll, nil
	case TaskFilterActive, TaskFilterCompleted:
		return TaskFilter(s), nil
	}
	return "", fmt.Errorf("%w: unknown task filter %q", domain.ErrInvalidInput, s)
}

// TaskService manages study planner tasks.
type TaskService struct {
	tasks domain.TaskRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks domain.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// Create adds a new, not yet completed task for the user.
func (s *TaskService) Create(ctx context.Context, userID int64, title string) (*domain.Task, error) {
	title, err := validateTitle(title)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{UserID: userID, Title: title}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// List returns the user's tasks matching filter.
func (s *TaskService) List(ctx context.Context, userID int64, filter TaskFilter) ([]domain.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if filter == TaskFilterAll || filter == "" {
		return tasks, nil
	}

	wantCompleted := filter == TaskFilterCompleted
	filtered := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed == wantCompleted {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// Get returns one of the user's tasks. Tasks owned by someone else are
// reported as not found.
func (s *TaskService) Get(ctx context.Context, userID, taskID int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return task, nil
}

// Rename changes a task's title.
func (s *TaskService) Rename(ctx context.Context, userID, taskID int64, title string) (*domain.Task, error) {
	title, err := validateTitle(title)
	if err != nil {
		return nil, err
	}

	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	task.Title = title
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("rename task: %w", err)
	}
	return task, nil
}

// SetCompleted marks a task done or not done.
func (s *TaskService) SetCompleted(ctx context.Context, userID, taskID int64, completed bool) (*domain.Task, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	task.Completed = completed
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Delete removes one of the user's tasks.
func (s *TaskService) Delete(ctx context.Context, userID, taskID int64) error {
	if _, err := s.Get(ctx, userID, taskID); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, taskID)
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > maxTaskTitleLength {
		return "", fmt.Errorf("%w: title must be at most %d characters", domain.ErrInvalidInput, maxTaskTitleLength)
	}
	return title, nil
}
