package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	dom "github.com/JCROMO11/task-manager-api/internal/domain"
	"github.com/JCROMO11/task-manager-api/internal/repo"
	"github.com/JCROMO11/task-manager-api/internal/utils"

	"github.com/jackc/pgx/v5"
)

// TaskInput carries the mutable task fields. A nil DueDate means "no due
// date" on create and "keep the current one" on update.
type TaskInput struct {
	Title       string
	Description *string
	Completed   bool
	DueDate     *time.Time
}

type TaskService struct {
	repo repo.TaskRepo
}

func NewTaskService(r repo.TaskRepo) *TaskService {
	return &TaskService{repo: r}
}

// Create stores a task for ownerID. The caller guarantees the owner exists;
// an owner removed in the meantime surfaces as ErrUserNotFound.
func (s *TaskService) Create(ctx context.Context, ownerID int64, in TaskInput) (dom.Task, error) {
	title, err := cleanTitle(in.Title)
	if err != nil {
		return dom.Task{}, err
	}
	t, err := s.repo.Create(ctx, dom.Task{
		UserID:      ownerID,
		Title:       title,
		Description: in.Description,
		Completed:   in.Completed,
		DueDate:     in.DueDate,
	})
	if err != nil {
		if utils.IsPGForeignKeyViolation(err) {
			return dom.Task{}, ErrUserNotFound
		}
		return dom.Task{}, err
	}
	return t, nil
}

func (s *TaskService) GetByID(ctx context.Context, id int64) (dom.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	return t, nil
}

func (s *TaskService) ListByOwner(ctx context.Context, ownerID int64) ([]dom.Task, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *TaskService) List(ctx context.Context) ([]dom.Task, error) {
	return s.repo.List(ctx)
}

// Update overwrites title, description and completed, and the due date
// when one is given. Owner, id and creation time are left untouched.
func (s *TaskService) Update(ctx context.Context, id int64, in TaskInput) (dom.Task, error) {
	title, err := cleanTitle(in.Title)
	if err != nil {
		return dom.Task{}, err
	}
	t, err := s.repo.Update(ctx, id, func(t *dom.Task) {
		t.Title = title
		t.Description = in.Description
		t.Completed = in.Completed
		if in.DueDate != nil {
			t.DueDate = in.DueDate
		}
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	return t, nil
}

// Delete reports whether the task existed. Deleting twice returns false.
func (s *TaskService) Delete(ctx context.Context, id int64) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func cleanTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLen {
		return "", ErrInvalidTitle
	}
	return title, nil
}
