package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/coffeelog/coffee/internal/auth"
	"github.com/coffeelog/coffee/internal/cache"
	"github.com/coffeelog/coffee/internal/model"
	"github.com/coffeelog/coffee/internal/repository"
)

// MemStore is an in-memory user and coffee store with the same observable
// behavior as the PostgreSQL stores. Safe for concurrent use.
type MemStore struct {
	keys auth.KeyGenerator

	mu      sync.Mutex
	byEmail map[string]*model.User
	byKey   map[string]*model.User
	byID    map[string]*model.User
	events  map[string][]*model.CoffeeEvent
	fail    error
	inserts int
}

// NewMemStore creates an empty store deriving keys with keys.
func NewMemStore(keys auth.KeyGenerator) *MemStore {
	return &MemStore{
		keys:    keys,
		byEmail: make(map[string]*model.User),
		byKey:   make(map[string]*model.User),
		byID:    make(map[string]*model.User),
		events:  make(map[string][]*model.CoffeeEvent),
	}
}

// FailWith makes every subsequent call return err wrapped as a store fault.
// Pass nil to recover.
func (s *MemStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// RegisterUser returns the user for email, creating it on first registration.
func (s *MemStore) RegisterUser(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.faultLocked("insert user"); err != nil {
		return nil, err
	}

	email = auth.NormalizeEmail(email)
	if existing, ok := s.byEmail[email]; ok {
		if !existing.IsEnabled() {
			return nil, repository.ErrUserDisabled
		}
		return cloneUser(existing), nil
	}

	key := s.keys.DeriveKey(email)
	if _, ok := s.byKey[key]; ok {
		return nil, repository.ErrKeyConflict
	}

	user := &model.User{
		ID:        ulid.Make().String(),
		Email:     email,
		APIKey:    key,
		Enabled:   true,
		CreatedAt: time.Now().UTC(),
	}
	s.byEmail[email] = user
	s.byKey[key] = user
	s.byID[user.ID] = user
	s.inserts++

	return cloneUser(user), nil
}

// ResolveAPIKey returns the id of the enabled user owning key.
func (s *MemStore) ResolveAPIKey(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.faultLocked("resolve API key"); err != nil {
		return "", err
	}

	user, ok := s.byKey[key]
	if !ok || !user.IsEnabled() {
		return "", repository.ErrUnknownKey
	}
	return user.ID, nil
}

// AddEvent records one event for ownerID.
func (s *MemStore) AddEvent(ctx context.Context, ownerID string, utcTime int64, shots int32) (*model.CoffeeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.faultLocked("insert coffee event"); err != nil {
		return nil, err
	}
	if _, ok := s.byID[ownerID]; !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrUnknownOwner, ownerID)
	}

	event := &model.CoffeeEvent{
		ID:      ulid.Make().String(),
		OwnerID: ownerID,
		UTCTime: utcTime,
		Shots:   shots,
	}
	s.events[ownerID] = append(s.events[ownerID], event)

	copied := *event
	return &copied, nil
}

// ListEvents returns every event recorded for ownerID.
func (s *MemStore) ListEvents(ctx context.Context, ownerID string) ([]*model.CoffeeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.faultLocked("list coffee events"); err != nil {
		return nil, err
	}

	out := make([]*model.CoffeeEvent, 0, len(s.events[ownerID]))
	for _, e := range s.events[ownerID] {
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

// Disable marks the user registered under email as disabled.
func (s *MemStore) Disable(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byEmail[auth.NormalizeEmail(email)]
	if !ok {
		return false
	}
	user.Enabled = false
	return true
}

// UserCount returns the number of stored users.
func (s *MemStore) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byEmail)
}

// EventCount returns the total number of stored events across all users.
func (s *MemStore) EventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, events := range s.events {
		n += len(events)
	}
	return n
}

// Inserts returns how many user rows were created.
func (s *MemStore) Inserts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts
}

func (s *MemStore) faultLocked(op string) error {
	if s.fail == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", repository.ErrStoreUnavailable, op, s.fail)
}

func cloneUser(u *model.User) *model.User {
	copied := *u
	return &copied
}

// MemCache is an in-memory key cache. Safe for concurrent use.
type MemCache struct {
	mu     sync.Mutex
	owners map[string]string
	fail   error
}

// NewMemCache creates an empty cache.
func NewMemCache() *MemCache {
	return &MemCache{owners: make(map[string]string)}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (c *MemCache) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = err
}

// GetOwner returns the owner cached under keyHash or cache.ErrCacheMiss.
func (c *MemCache) GetOwner(ctx context.Context, keyHash string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fail != nil {
		return "", c.fail
	}
	owner, ok := c.owners[keyHash]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return owner, nil
}

// SetOwner caches ownerID under keyHash.
func (c *MemCache) SetOwner(ctx context.Context, keyHash, ownerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fail != nil {
		return c.fail
	}
	c.owners[keyHash] = ownerID
	return nil
}

// Len returns the number of cached entries.
func (c *MemCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.owners)
}
