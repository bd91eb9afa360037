// Package repository declares the storage interfaces the services depend
// on. The concrete implementation lives in repository/sqlite; tests use
// in-memory fakes.
package repository

import (
	"context"
	"time"

	"github.com/sakif/detox-companion/internal/model"
)

// UserRepository is the per-user document store: account records plus the
// streak/coin counters mutated on login and on session completion.
type UserRepository interface {
	// Create inserts a new user. Returns apperror.ErrConflict if the
	// email is already registered.
	Create(ctx context.Context, user *model.User) error

	// GetByID returns apperror.ErrNotFound if no such user exists.
	GetByID(ctx context.Context, id string) (*model.User, error)

	// GetByEmail returns apperror.ErrNotFound if no such user exists.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// UpsertGitHub inserts or updates a user keyed by their GitHub ID,
	// populating user.ID with the canonical internal id.
	UpsertGitHub(ctx context.Context, user *model.User) error

	// RecordLogin persists the streak computed for this login and sets
	// lastLogin unconditionally — even when the streak didn't change.
	RecordLogin(ctx context.Context, id string, streak int, lastLogin time.Time) error

	// SetStreak overwrites the streak counter (administrative override)
	// and returns the stored value.
	SetStreak(ctx context.Context, id string, streak int) (int, error)

	// AddCoins credits coins to the user's balance and returns the new
	// balance. Missing users are a hard error (apperror.ErrNotFound).
	AddCoins(ctx context.Context, id string, coins int) (int, error)
}

// UsageRepository stores daily screen-time snapshots (one per user per
// UTC date, last write wins) and the append-only analysis history.
type UsageRepository interface {
	// UpsertDaily creates the (user, date) snapshot or fully replaces
	// its apps and totalTime.
	UpsertDaily(ctx context.Context, snapshot *model.DailyUsage) error

	// GetDaily returns apperror.ErrNotFound when no snapshot exists for
	// that day; callers treat that as an empty default, not a failure.
	GetDaily(ctx context.Context, userID, date string) (*model.DailyUsage, error)

	// AppendEvent appends one analysis result to the user's history.
	AppendEvent(ctx context.Context, event *model.UsageEvent) error

	// ListEvents returns the user's history in chronological order.
	ListEvents(ctx context.Context, userID string) ([]model.UsageEvent, error)
}
