package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	dom "github.com/JCROMO11/task-manager-api/internal/domain"
	"github.com/JCROMO11/task-manager-api/internal/repo/repotest"
)

func newTaskFixture(t *testing.T) (*UserService, *TaskService, *repotest.Store) {
	t.Helper()
	users, store := newUserService(t)
	return users, NewTaskService(store.Tasks()), store
}

func ptr[T any](v T) *T { return &v }

func TestTaskLifecycle(t *testing.T) {
	users, tasks, _ := newTaskFixture(t)
	ctx := context.Background()

	alice, err := users.Register(ctx, "alice", "alice@example.com", "secret1")
	if err != nil || alice.ID != 1 {
		t.Fatalf("Register = %+v, %v", alice, err)
	}

	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	created, err := tasks.Create(ctx, alice.ID, TaskInput{Title: "Buy milk", DueDate: &due})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != 1 || created.Completed || created.UserID != 1 || created.CreatedAt.IsZero() {
		t.Fatalf("unexpected created task %+v", created)
	}

	fetched, err := tasks.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !reflect.DeepEqual(fetched, created) {
		t.Fatalf("GetByID after Create differs:\n got %+v\nwant %+v", fetched, created)
	}

	updated, err := tasks.Update(ctx, 1, TaskInput{Title: "Buy milk and eggs", Completed: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Buy milk and eggs" || !updated.Completed {
		t.Fatalf("fields not overwritten: %+v", updated)
	}
	if updated.ID != 1 || updated.UserID != 1 || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("immutable fields changed: %+v", updated)
	}
	if updated.DueDate == nil || !updated.DueDate.Equal(due) {
		t.Fatalf("absent due date must keep the stored one, got %v", updated.DueDate)
	}

	if ok, err := tasks.Delete(ctx, 1); err != nil || !ok {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
	if _, err := tasks.GetByID(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID after delete: want ErrNotFound, got %v", err)
	}
	if ok, err := tasks.Delete(ctx, 1); err != nil || ok {
		t.Fatalf("second Delete = %v, %v", ok, err)
	}
}

func TestUpdateOverwritesEveryMutableField(t *testing.T) {
	users, tasks, _ := newTaskFixture(t)
	ctx := context.Background()
	u, _ := users.Register(ctx, "alice", "alice@example.com", "secret1")
	orig, _ := tasks.Create(ctx, u.ID, TaskInput{Title: "a", Description: ptr("old"), Completed: true})

	newDue := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	got, err := tasks.Update(ctx, orig.ID, TaskInput{Title: " b ", Description: nil, Completed: false, DueDate: &newDue})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := dom.Task{ID: orig.ID, UserID: u.ID, Title: "b", Completed: false, DueDate: &newDue, CreatedAt: orig.CreatedAt}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Update:\n got %+v\nwant %+v", got, want)
	}
}

func TestUpdateMissingTaskChangesNothing(t *testing.T) {
	users, tasks, store := newTaskFixture(t)
	ctx := context.Background()
	u, _ := users.Register(ctx, "alice", "alice@example.com", "secret1")
	existing, _ := tasks.Create(ctx, u.ID, TaskInput{Title: "keep"})

	if _, err := tasks.Update(ctx, 999, TaskInput{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	after, _ := tasks.GetByID(ctx, existing.ID)
	if !reflect.DeepEqual(after, existing) || store.TaskCount() != 1 {
		t.Fatalf("store mutated by failed update: %+v", after)
	}
}

func TestListByOwnerIsolatesUsers(t *testing.T) {
	users, tasks, _ := newTaskFixture(t)
	ctx := context.Background()
	alice, _ := users.Register(ctx, "alice", "alice@example.com", "secret1")
	bob, _ := users.Register(ctx, "bob", "bob@example.com", "secret1")

	want := map[int64]bool{}
	for _, title := range []string{"a1", "a2", "a3"} {
		tk, _ := tasks.Create(ctx, alice.ID, TaskInput{Title: title})
		want[tk.ID] = true
	}
	_, _ = tasks.Create(ctx, bob.ID, TaskInput{Title: "b1"})

	got, err := tasks.ListByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(got), len(want))
	}
	for _, tk := range got {
		if !want[tk.ID] || tk.UserID != alice.ID {
			t.Fatalf("unexpected task %+v", tk)
		}
	}

	all, _ := tasks.List(ctx)
	if len(all) != 4 {
		t.Fatalf("List = %d tasks", len(all))
	}
	none, err := tasks.ListByOwner(ctx, 77)
	if err != nil || len(none) != 0 {
		t.Fatalf("ListByOwner(unknown) = %v, %v", none, err)
	}
}

func TestCompletedToggles(t *testing.T) {
	users, tasks, _ := newTaskFixture(t)
	ctx := context.Background()
	u, _ := users.Register(ctx, "alice", "alice@example.com", "secret1")
	tk, _ := tasks.Create(ctx, u.ID, TaskInput{Title: "t"})

	for _, done := range []bool{true, false, true} {
		got, err := tasks.Update(ctx, tk.ID, TaskInput{Title: "t", Completed: done})
		if err != nil || got.Completed != done {
			t.Fatalf("toggle to %v: %+v, %v", done, got, err)
		}
	}
}

func TestCreateForMissingOwner(t *testing.T) {
	_, tasks, store := newTaskFixture(t)
	if _, err := tasks.Create(context.Background(), 5, TaskInput{Title: "orphan"}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
	if store.TaskCount() != 0 {
		t.Fatal("orphan task stored")
	}
}

func TestBlankTitleRejected(t *testing.T) {
	users, tasks, store := newTaskFixture(t)
	ctx := context.Background()
	u, _ := users.Register(ctx, "alice", "alice@example.com", "secret1")

	for _, title := range []string{"", "   ", "\t\n"} {
		if _, err := tasks.Create(ctx, u.ID, TaskInput{Title: title}); !errors.Is(err, ErrInvalidTitle) {
			t.Errorf("Create(%q): want ErrInvalidTitle, got %v", title, err)
		}
	}
	if store.TaskCount() != 0 {
		t.Fatal("blank title stored")
	}

	existing, _ := tasks.Create(ctx, u.ID, TaskInput{Title: "keep"})
	if _, err := tasks.Update(ctx, existing.ID, TaskInput{Title: "   ", Completed: true}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Update blank title: want ErrInvalidInput, got %v", err)
	}
	after, _ := tasks.GetByID(ctx, existing.ID)
	if !reflect.DeepEqual(after, existing) {
		t.Fatalf("rejected update changed the task: %+v", after)
	}
}
