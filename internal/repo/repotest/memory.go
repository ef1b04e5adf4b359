// Package repotest provides in-memory implementations of the repo
// interfaces for tests of the service and handler layers. They follow the
// Postgres contracts: pgx.ErrNoRows on a miss, a *pgconn.PgError with code
// 23505 and the real constraint name on a duplicate username or email.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	dom "github.com/JCROMO11/task-manager-api/internal/domain"
	"github.com/JCROMO11/task-manager-api/internal/repo"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	_ repo.UserRepo = (*UserRepo)(nil)
	_ repo.TaskRepo = (*TaskRepo)(nil)
)

// Store is shared by a UserRepo and a TaskRepo so ownership and id
// sequences behave like one database.
type Store struct {
	mu         sync.Mutex
	now        func() time.Time
	users      map[int64]dom.User
	tasks      map[int64]dom.Task
	nextUserID int64
	nextTaskID int64

	// Err, when set, is returned by every call.
	Err error
}

func NewStore() *Store {
	return &Store{
		now:   func() time.Time { return time.Now().UTC() },
		users: map[int64]dom.User{},
		tasks: map[int64]dom.Task{},
	}
}

func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }
func (s *Store) Tasks() *TaskRepo { return &TaskRepo{s: s} }

// TaskCount returns the number of stored tasks.
func (s *Store) TaskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, username, email, passwordHash string) (dom.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return dom.User{}, s.Err
	}
	for _, u := range s.users {
		if u.Username == username {
			return dom.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
		}
		if u.Email == email {
			return dom.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}
	s.nextUserID++
	u := dom.User{ID: s.nextUserID, Username: username, Email: email, PasswordHash: passwordHash, CreatedAt: s.now()}
	s.users[u.ID] = u
	return u, nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (dom.User, error) {
	return r.find(func(u dom.User) bool { return u.ID == id })
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (dom.User, error) {
	return r.find(func(u dom.User) bool { return u.Email == email })
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (dom.User, error) {
	return r.find(func(u dom.User) bool { return u.Username == username })
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return exists(r.GetByEmail(ctx, email))
}

func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return exists(r.GetByUsername(ctx, username))
}

func (r *UserRepo) List(context.Context) ([]dom.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]dom.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepo) find(match func(dom.User) bool) (dom.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return dom.User{}, s.Err
	}
	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

type TaskRepo struct{ s *Store }

func (r *TaskRepo) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return dom.Task{}, s.Err
	}
	if _, ok := s.users[t.UserID]; !ok {
		return dom.Task{}, &pgconn.PgError{Code: "23503", ConstraintName: "tasks_user_id_fkey"}
	}
	s.nextTaskID++
	t.ID = s.nextTaskID
	t.CreatedAt = s.now()
	t.Description = cloneString(t.Description)
	t.DueDate = cloneTime(t.DueDate)
	s.tasks[t.ID] = t
	return t, nil
}

func (r *TaskRepo) GetByID(_ context.Context, id int64) (dom.Task, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return dom.Task{}, s.Err
	}
	t, ok := s.tasks[id]
	if !ok {
		return dom.Task{}, pgx.ErrNoRows
	}
	return t, nil
}

func (r *TaskRepo) ListByOwner(_ context.Context, userID int64) ([]dom.Task, error) {
	return r.filter(func(t dom.Task) bool { return t.UserID == userID })
}

func (r *TaskRepo) List(context.Context) ([]dom.Task, error) {
	return r.filter(func(dom.Task) bool { return true })
}

func (r *TaskRepo) Update(_ context.Context, id int64, apply func(*dom.Task)) (dom.Task, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return dom.Task{}, s.Err
	}
	cur, ok := s.tasks[id]
	if !ok {
		return dom.Task{}, pgx.ErrNoRows
	}
	next := cur
	apply(&next)
	cur.Title = next.Title
	cur.Description = cloneString(next.Description)
	cur.Completed = next.Completed
	cur.DueDate = cloneTime(next.DueDate)
	s.tasks[id] = cur
	return cur, nil
}

func (r *TaskRepo) Delete(_ context.Context, id int64) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	if _, ok := s.tasks[id]; !ok {
		return false, nil
	}
	delete(s.tasks, id)
	return true, nil
}

func (r *TaskRepo) filter(keep func(dom.Task) bool) ([]dom.Task, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []dom.Task{}
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func exists(_ dom.User, err error) (bool, error) {
	if err == pgx.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
