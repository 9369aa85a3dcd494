// Package model defines domain entities for the application.
package model

import "time"

// User is the owner of an API key and of every coffee event recorded with it.
// Email is stored normalized and never changes once set.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	APIKey    string    `json:"-"` // Never serialize
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// IsEnabled reports whether the user's key may be used.
func (u *User) IsEnabled() bool {
	return u != nil && u.Enabled
}
