// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/ashureev/offertalk/internal/domain"
)

// Repository defines the interface for persisting negotiation sessions.
// Records are read and written whole; there are no field-level updates.
type Repository interface {
	// Get retrieves a session by id. A missing session returns (nil, nil).
	Get(ctx context.Context, sessionID string) (*domain.Session, error)

	// Save persists the full session record, creating or replacing it.
	Save(ctx context.Context, session *domain.Session) error

	// Ping verifies database connectivity and returns an error if the
	// database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
