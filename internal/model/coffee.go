package model

import "time"

// CoffeeEvent is one recorded consumption, bound to its owner.
// Events are append-only.
type CoffeeEvent struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	UTCTime int64  `json:"utc_time"` // Seconds since the Unix epoch
	Shots   int32  `json:"shots"`
}

// CoffeeItem is the owner-less view of an event returned to callers.
type CoffeeItem struct {
	UTCTime int64 `json:"utc_time"`
	Shots   int32 `json:"shots"`
}

// Item strips the identities from the event.
func (e *CoffeeEvent) Item() CoffeeItem {
	return CoffeeItem{UTCTime: e.UTCTime, Shots: e.Shots}
}

// Time returns the event timestamp as a UTC time.
func (i CoffeeItem) Time() time.Time {
	return time.Unix(i.UTCTime, 0).UTC()
}

// TotalShots sums the shots of the given items.
func TotalShots(items []CoffeeItem) int64 {
	var total int64
	for _, it := range items {
		total += int64(it.Shots)
	}
	return total
}
