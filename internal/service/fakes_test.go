package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/detox-companion/internal/apperror"
	"github.com/sakif/detox-companion/internal/model"
)

// testLogger discards output; tests assert behavior, not log lines.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserRepo is an in-memory UserRepository. It mirrors the SQLite
// implementation's contract (conflict on duplicate email, not-found on
// unknown ids) without touching a database.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperror.Conflict("user", user.Email)
		}
	}
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (r *fakeUserRepo) UpsertGitHub(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.GitHubID == user.GitHubID {
			u.Name = user.Name
			u.Email = user.Email
			*user = *u
			return nil
		}
	}
	user.ID = xid.New().String()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) RecordLogin(_ context.Context, id string, streak int, lastLogin time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.Streak = streak
	t := lastLogin
	u.LastLogin = &t
	return nil
}

func (r *fakeUserRepo) SetStreak(_ context.Context, id string, streak int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return 0, apperror.NotFound("user", id)
	}
	u.Streak = streak
	return u.Streak, nil
}

func (r *fakeUserRepo) AddCoins(_ context.Context, id string, coins int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return 0, apperror.NotFound("user", id)
	}
	u.Coins += coins
	return u.Coins, nil
}

// fakeUsageRepo is an in-memory UsageRepository keyed the same way the
// SQLite table is: one snapshot per (user, date), append-only events.
type fakeUsageRepo struct {
	mu     sync.Mutex
	daily  map[string]*model.DailyUsage // key: userID + "|" + date
	events []model.UsageEvent

	appendErr error // when set, AppendEvent fails with it
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{daily: make(map[string]*model.DailyUsage)}
}

func (r *fakeUsageRepo) UpsertDaily(_ context.Context, snapshot *model.DailyUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := snapshot.UserID + "|" + snapshot.Date
	if existing, ok := r.daily[key]; ok {
		snapshot.ID = existing.ID
		snapshot.CreatedAt = existing.CreatedAt
	} else {
		snapshot.ID = xid.New().String()
		snapshot.CreatedAt = time.Now()
	}
	snapshot.UpdatedAt = time.Now()
	clone := *snapshot
	r.daily[key] = &clone
	return nil
}

func (r *fakeUsageRepo) GetDaily(_ context.Context, userID, date string) (*model.DailyUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.daily[userID+"|"+date]
	if !ok {
		return nil, apperror.NotFound("daily usage", date)
	}
	clone := *d
	return &clone, nil
}

func (r *fakeUsageRepo) AppendEvent(_ context.Context, event *model.UsageEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	event.ID = xid.New().String()
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeUsageRepo) ListEvents(_ context.Context, userID string) ([]model.UsageEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.UsageEvent, 0)
	for _, e := range r.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}
