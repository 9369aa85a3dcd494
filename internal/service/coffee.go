// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coffeelog/coffee/internal/auth"
	"github.com/coffeelog/coffee/internal/cache"
	"github.com/coffeelog/coffee/internal/metrics"
	"github.com/coffeelog/coffee/internal/model"
	"github.com/coffeelog/coffee/internal/repository"
)

// Service errors.
var (
	ErrUnauthenticated = errors.New("unknown API key")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("account is disabled")
	ErrInternal        = errors.New("internal error")
)

// UserStore maps emails to users and API keys to owners.
type UserStore interface {
	RegisterUser(ctx context.Context, email string) (*model.User, error)
	ResolveAPIKey(ctx context.Context, key string) (string, error)
}

// CoffeeStore records and lists coffee events per owner.
type CoffeeStore interface {
	AddEvent(ctx context.Context, ownerID string, utcTime int64, shots int32) (*model.CoffeeEvent, error)
	ListEvents(ctx context.Context, ownerID string) ([]*model.CoffeeEvent, error)
}

// KeyCache caches successful key resolutions by key hash.
type KeyCache interface {
	GetOwner(ctx context.Context, keyHash string) (string, error)
	SetOwner(ctx context.Context, keyHash, ownerID string) error
}

// RegisterResult is the outcome of Register.
type RegisterResult struct {
	Success bool
	APIKey  string
}

// AddCoffeeResult is the outcome of AddCoffee.
type AddCoffeeResult struct {
	Success bool
}

// CoffeeService handles registration and the per-key coffee log.
type CoffeeService struct {
	users   UserStore
	coffees CoffeeStore
	cache   KeyCache
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewCoffeeService creates a new CoffeeService. keyCache may be nil.
func NewCoffeeService(users UserStore, coffees CoffeeStore, keyCache KeyCache, recorder metrics.Recorder, logger *slog.Logger) *CoffeeService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CoffeeService{
		users:   users,
		coffees: coffees,
		cache:   keyCache,
		metrics: recorder,
		logger:  logger,
	}
}

// Register returns the API key for email, creating the user on first call.
// Repeated calls with the same email return the same key.
func (s *CoffeeService) Register(ctx context.Context, email string) (*RegisterResult, error) {
	start := time.Now()
	user, err := s.users.RegisterUser(ctx, email)
	s.metrics.ObserveStoreDuration("register_user", time.Since(start))
	if err != nil {
		s.metrics.IncRegistration(metrics.OutcomeFailed)
		if errors.Is(err, repository.ErrUserDisabled) {
			return &RegisterResult{Success: false}, ErrForbidden
		}
		s.logger.Error("registration failed", "error", err)
		return &RegisterResult{Success: false}, fmt.Errorf("%w: register: %w", ErrInternal, err)
	}

	s.metrics.IncRegistration(metrics.OutcomeSuccess)
	s.logger.Info("user_registered", "user_id", user.ID)

	return &RegisterResult{Success: true, APIKey: user.APIKey}, nil
}

// AddCoffee records one event for the owner of apiKey.
// The key is checked before shots, so an unknown key always yields ErrUnauthenticated.
func (s *CoffeeService) AddCoffee(ctx context.Context, apiKey string, utcTime int64, shots int32) (*AddCoffeeResult, error) {
	ownerID, err := s.resolve(ctx, apiKey)
	if err != nil {
		return &AddCoffeeResult{Success: false}, err
	}

	if shots <= 0 {
		s.metrics.IncCoffeeRejected()
		return &AddCoffeeResult{Success: false}, fmt.Errorf("%w: shots must be positive, got %d", ErrInvalidArgument, shots)
	}

	start := time.Now()
	event, err := s.coffees.AddEvent(ctx, ownerID, utcTime, shots)
	s.metrics.ObserveStoreDuration("add_event", time.Since(start))
	if err != nil {
		s.logger.Error("add coffee failed", "user_id", ownerID, "error", err)
		return &AddCoffeeResult{Success: false}, fmt.Errorf("%w: add coffee: %w", ErrInternal, err)
	}

	s.metrics.IncCoffeeAdded()
	s.logger.Info("coffee_added", "user_id", ownerID, "event_id", event.ID, "shots", shots)

	return &AddCoffeeResult{Success: true}, nil
}

// ListCoffee returns every event recorded for the owner of apiKey.
// The result is never nil; order is not guaranteed.
func (s *CoffeeService) ListCoffee(ctx context.Context, apiKey string) ([]model.CoffeeItem, error) {
	ownerID, err := s.resolve(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	events, err := s.coffees.ListEvents(ctx, ownerID)
	s.metrics.ObserveStoreDuration("list_events", time.Since(start))
	if err != nil {
		s.logger.Error("list coffee failed", "user_id", ownerID, "error", err)
		return nil, fmt.Errorf("%w: list coffee: %w", ErrInternal, err)
	}

	items := make([]model.CoffeeItem, 0, len(events))
	for _, e := range events {
		items = append(items, e.Item())
	}

	s.metrics.IncCoffeeListed()
	return items, nil
}

// resolve maps apiKey to its owner, consulting the key cache first.
// Cache failures are treated as misses.
func (s *CoffeeService) resolve(ctx context.Context, apiKey string) (string, error) {
	if apiKey == "" {
		s.metrics.IncAuthFailure(metrics.ReasonMissingKey)
		return "", ErrUnauthenticated
	}

	keyHash := auth.QuickHash(apiKey)

	if s.cache != nil {
		ownerID, err := s.cache.GetOwner(ctx, keyHash)
		if err == nil {
			s.metrics.IncKeyCacheHit()
			return ownerID, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("key cache lookup failed", "error", err)
		}
		s.metrics.IncKeyCacheMiss()
	}

	start := time.Now()
	ownerID, err := s.users.ResolveAPIKey(ctx, apiKey)
	s.metrics.ObserveStoreDuration("resolve_key", time.Since(start))
	if err != nil {
		if errors.Is(err, repository.ErrUnknownKey) {
			s.metrics.IncAuthFailure(metrics.ReasonUnknownKey)
			return "", ErrUnauthenticated
		}
		s.logger.Error("key resolution failed", "error", err)
		return "", fmt.Errorf("%w: resolve key: %w", ErrInternal, err)
	}

	if s.cache != nil {
		if err := s.cache.SetOwner(ctx, keyHash, ownerID); err != nil {
			s.logger.Warn("key cache store failed", "error", err)
		}
	}

	return ownerID, nil
}
