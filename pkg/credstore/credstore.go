// Package credstore holds the single cached carrier session of a process.
//
// A store has exactly one slot. Writing replaces whatever was there; there
// is no keying by configuration. Callers decide whether the stored session
// still matches their configuration and serialise that decision themselves.
package credstore

import (
	"context"
	"time"
)

// Session is an authenticated carrier login together with the settings that
// produced it. The credential secret is never part of it.
type Session struct {
	DelisID     string    `json:"delisId"`
	Server      int       `json:"server"`
	TimeLogging bool      `json:"timeLogging"`
	Endpoint    string    `json:"endpoint"`
	Token       string    `json:"token"`
	Depot       string    `json:"depot,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store is a single-slot session cache.
type Store interface {
	// Get returns the cached session, or nil when the slot is empty.
	Get(ctx context.Context) (*Session, error)

	// Put overwrites the slot.
	Put(ctx context.Context, s *Session) error

	// Clear empties the slot.
	Clear(ctx context.Context) error
}
