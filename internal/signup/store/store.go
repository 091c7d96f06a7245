package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/firststore/internal/signup/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it.
// Sessions only live for the duration of a signup flow, so the default driver
// configuration is an in-memory database.
type Store interface {
	Sessions() Sessions

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Sessions interface {
	// CreateSession inserts a new session (id is provided by the caller as a ULID).
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSession returns a session by id.
	GetSession(ctx context.Context, id string) (domain.Session, error)

	// UpdateSession overwrites every mutable column of an existing session.
	UpdateSession(ctx context.Context, s domain.Session) error

	// DeleteSession removes a session once its flow has exited.
	DeleteSession(ctx context.Context, id string) error

	// ListCountingDown returns the ids of sessions in OTP verification whose
	// resend countdown has not reached zero.
	ListCountingDown(ctx context.Context) ([]string, error)

	// DeleteIdleSessions removes sessions not updated since before and
	// returns how many were removed.
	DeleteIdleSessions(ctx context.Context, before time.Time) (int64, error)
}
