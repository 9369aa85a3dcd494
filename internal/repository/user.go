package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/coffeelog/coffee/internal/auth"
	"github.com/coffeelog/coffee/internal/model"
)

// Common errors for user store operations.
var (
	ErrUnknownKey   = errors.New("unknown API key")
	ErrUserNotFound = errors.New("user not found")
	ErrUserDisabled = errors.New("user is disabled")
	// ErrKeyConflict means the derived key is already bound to a different email.
	ErrKeyConflict = errors.New("API key already issued to another email")
)

// UserStore maps emails to users and API keys to user identities.
type UserStore struct {
	repo *Repository
	keys auth.KeyGenerator
}

// NewUserStore creates a UserStore that derives keys with the given generator.
func NewUserStore(repo *Repository, keys auth.KeyGenerator) *UserStore {
	return &UserStore{repo: repo, keys: keys}
}

// RegisterUser returns the user for email, creating it on first registration.
//
// The insert and the uniqueness check are one statement: concurrent callers
// for the same new email race on the unique index, exactly one row is
// inserted and every caller gets that row back. An existing user's key is
// never rotated.
func (s *UserStore) RegisterUser(ctx context.Context, email string) (*model.User, error) {
	email = auth.NormalizeEmail(email)

	candidate := &model.User{
		ID:        ulid.Make().String(),
		Email:     email,
		APIKey:    s.keys.DeriveKey(email),
		Enabled:   true,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO users (id, email, api_key, enabled, created_at)
		VALUES ($1, $2, $3, TRUE, $4)
		ON CONFLICT DO NOTHING
		RETURNING id, email, api_key, enabled, created_at
	`

	created, err := scanUser(s.repo.pool.QueryRow(ctx, query,
		candidate.ID,
		candidate.Email,
		candidate.APIKey,
		candidate.CreatedAt,
	))
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		if isUniqueViolation(err) {
			return nil, ErrKeyConflict
		}
		return nil, unavailable("insert user", err)
	}

	// Nothing inserted: the email (or the key) is already taken.
	existing, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrKeyConflict
		}
		return nil, err
	}
	if !existing.IsEnabled() {
		return nil, ErrUserDisabled
	}

	return existing, nil
}

// GetUserByEmail retrieves a user by their (normalized) email address.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, email, api_key, enabled, created_at
		FROM users
		WHERE email = $1
	`

	user, err := scanUser(s.repo.pool.QueryRow(ctx, query, auth.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, unavailable("get user by email", err)
	}

	return user, nil
}

// ResolveAPIKey returns the internal identity of the enabled user owning key.
// This is the only authorization gate for coffee operations.
func (s *UserStore) ResolveAPIKey(ctx context.Context, key string) (string, error) {
	query := `
		SELECT id
		FROM users
		WHERE api_key = $1 AND enabled = TRUE
	`

	var id string
	if err := s.repo.pool.QueryRow(ctx, query, key).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUnknownKey
		}
		return "", unavailable("resolve API key", err)
	}

	return id, nil
}

// scanUser scans a single row into a User model.
func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.APIKey,
		&user.Enabled,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
