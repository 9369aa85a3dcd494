package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/coffeelog/coffee/internal/model"
)

// ErrUnknownOwner means an event referenced a user that does not exist.
// Unreachable when the owner came from ResolveAPIKey.
var ErrUnknownOwner = errors.New("unknown owner")

// CoffeeStore provides append-only access to coffee events.
type CoffeeStore struct {
	repo *Repository
}

// NewCoffeeStore creates a new CoffeeStore.
func NewCoffeeStore(repo *Repository) *CoffeeStore {
	return &CoffeeStore{repo: repo}
}

// AddEvent records one event for ownerID. Any int32 shot count is stored;
// rejecting non-positive counts is the service's job.
func (s *CoffeeStore) AddEvent(ctx context.Context, ownerID string, utcTime int64, shots int32) (*model.CoffeeEvent, error) {
	event := &model.CoffeeEvent{
		ID:      ulid.Make().String(),
		OwnerID: ownerID,
		UTCTime: utcTime,
		Shots:   shots,
	}

	query := `
		INSERT INTO coffee (id, user_id, utc_time, shots, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	_, err := s.repo.pool.Exec(ctx, query,
		event.ID,
		event.OwnerID,
		event.UTCTime,
		event.Shots,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOwner, ownerID)
		}
		return nil, unavailable("insert coffee event", err)
	}

	return event, nil
}

// ListEvents returns every event recorded for ownerID, in no particular order.
func (s *CoffeeStore) ListEvents(ctx context.Context, ownerID string) ([]*model.CoffeeEvent, error) {
	query := `
		SELECT id, user_id, utc_time, shots
		FROM coffee
		WHERE user_id = $1
	`

	rows, err := s.repo.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, unavailable("list coffee events", err)
	}
	defer rows.Close()

	events := make([]*model.CoffeeEvent, 0)
	for rows.Next() {
		var e model.CoffeeEvent
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.UTCTime, &e.Shots); err != nil {
			return nil, unavailable("scan coffee event", err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate coffee events", err)
	}

	return events, nil
}
