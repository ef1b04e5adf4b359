package repo

import (
	"context"
	"fmt"

	dom "github.com/JCROMO11/task-manager-api/internal/domain"

	"github.com/jackc/pgx/v5"
)

// TaskRepo provides task persistence. Lookups return pgx.ErrNoRows on a miss.
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, id int64) (dom.Task, error)
	ListByOwner(ctx context.Context, userID int64) ([]dom.Task, error)
	List(ctx context.Context) ([]dom.Task, error)
	// Update loads the task, lets apply mutate it and persists the result
	// in one transaction. ID, UserID and CreatedAt are never written.
	Update(ctx context.Context, id int64, apply func(*dom.Task)) (dom.Task, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)
}

const taskColumns = `id, user_id, title, description, completed, due_date, created_at`

type PGTaskRepo struct {
	db DB
}

func NewPGTaskRepo(db DB) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		INSERT INTO tasks (user_id, title, description, completed, due_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + taskColumns
	var out dom.Task
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		out, err = scanTask(tx.QueryRow(ctx, query, t.UserID, t.Title, t.Description, t.Completed, t.DueDate))
		return err
	})
	if err != nil {
		return dom.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return out, nil
}

func (r *PGTaskRepo) GetByID(ctx context.Context, id int64) (dom.Task, error) {
	return scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
}

func (r *PGTaskRepo) ListByOwner(ctx context.Context, userID int64) ([]dom.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *PGTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
}

func (r *PGTaskRepo) Update(ctx context.Context, id int64, apply func(*dom.Task)) (dom.Task, error) {
	var out dom.Task
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		cur, err := scanTask(tx.QueryRow(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		next := cur
		apply(&next)
		query := `
			UPDATE tasks SET title = $2, description = $3, completed = $4, due_date = $5
			WHERE id = $1
			RETURNING ` + taskColumns
		out, err = scanTask(tx.QueryRow(ctx, query, cur.ID, next.Title, next.Description, next.Completed, next.DueDate))
		return err
	})
	if err != nil {
		return dom.Task{}, err
	}
	return out, nil
}

func (r *PGTaskRepo) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return deleted, nil
}

func (r *PGTaskRepo) list(ctx context.Context, query string, args ...any) ([]dom.Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []dom.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTask(row rowScanner) (dom.Task, error) {
	var t dom.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.DueDate, &t.CreatedAt)
	return t, err
}
