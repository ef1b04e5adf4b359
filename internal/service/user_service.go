package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/JCROMO11/task-manager-api/internal/auth"
	dom "github.com/JCROMO11/task-manager-api/internal/domain"
	"github.com/JCROMO11/task-manager-api/internal/repo"
	"github.com/JCROMO11/task-manager-api/internal/utils"

	"github.com/jackc/pgx/v5"
)

// UserService registers and authenticates users.
type UserService struct {
	repo   repo.UserRepo
	hasher *auth.Hasher
}

// NewUserService returns a new UserService.
func NewUserService(repo repo.UserRepo, hasher *auth.Hasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

// Register hashes password and stores a new user. Callers wanting a
// friendly message check ExistsByEmail/ExistsByUsername first; a duplicate
// that reaches the table's unique constraints still yields ErrUsernameTaken
// or ErrEmailTaken.
func (s *UserService) Register(ctx context.Context, username, email, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		return dom.User{}, ErrInvalidUsername
	}
	email = normalizeEmail(email)

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return dom.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.repo.Create(ctx, username, email, hash)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			if strings.Contains(utils.PGConstraint(err), "email") {
				return dom.User{}, ErrEmailTaken
			}
			return dom.User{}, ErrUsernameTaken
		}
		return dom.User{}, err
	}
	return u, nil
}

// Authenticate returns the user whose email and password match. Unknown
// email and wrong password both yield ErrInvalidCredentials after the same
// amount of hashing work.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (dom.User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.hasher.Burn(password)
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, normalizeEmail(email))
}

func (s *UserService) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.repo.ExistsByUsername(ctx, strings.TrimSpace(username))
}

func (s *UserService) GetByID(ctx context.Context, id int64) (dom.User, error) {
	return userOrNotFound(s.repo.GetByID(ctx, id))
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	return userOrNotFound(s.repo.GetByEmail(ctx, normalizeEmail(email)))
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	return userOrNotFound(s.repo.GetByUsername(ctx, strings.TrimSpace(username)))
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]dom.User, error) {
	return s.repo.List(ctx)
}

func userOrNotFound(u dom.User, err error) (dom.User, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrUserNotFound
		}
		return dom.User{}, err
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
