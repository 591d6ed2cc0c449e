// Package repository persists search sessions.
package repository

import (
	"context"

	"github.com/okian/jobscout/internal/domain/session"
)

// Store provides read/write access to session snapshots. Implementations
// store copies: mutating a saved or returned session never changes the
// stored one.
type Store interface {
	// Save inserts or replaces the snapshot of s.
	Save(ctx context.Context, s *session.Session) error

	// Get returns the snapshot of a session.
	// Returns ErrNotFound if the session is unknown or expired.
	Get(ctx context.Context, id string) (*session.Session, error)

	// List returns up to limit sessions, newest first.
	List(ctx context.Context, limit int) ([]*session.Session, error)

	// Count returns the number of stored sessions.
	Count(ctx context.Context) int
}
