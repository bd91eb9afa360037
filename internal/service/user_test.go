package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/detox-companion/internal/apperror"
	"github.com/sakif/detox-companion/internal/model"
)

func newTestUserService(t *testing.T) (*UserService, *model.User) {
	t.Helper()
	users := newFakeUserRepo()
	u := &model.User{Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, users.Create(context.Background(), u))
	return NewUserService(users, testLogger()), u
}

func TestProgress(t *testing.T) {
	svc, u := newTestUserService(t)

	got, err := svc.Progress(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, 0, got.Streak)
	assert.Equal(t, 0, got.Coins)
}

func TestProgress_UnknownUser(t *testing.T) {
	svc, _ := newTestUserService(t)
	_, err := svc.Progress(context.Background(), "no-such-user")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAddCoins(t *testing.T) {
	svc, u := newTestUserService(t)

	balance, err := svc.AddCoins(context.Background(), u.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, balance)

	balance, err = svc.AddCoins(context.Background(), u.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, balance)
}

func TestAddCoins_RejectsNonPositive(t *testing.T) {
	svc, u := newTestUserService(t)

	_, err := svc.AddCoins(context.Background(), u.ID, 0)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.AddCoins(context.Background(), u.ID, -3)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestAddCoins_UnknownUser(t *testing.T) {
	svc, _ := newTestUserService(t)
	_, err := svc.AddCoins(context.Background(), "no-such-user", 5)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateStreak(t *testing.T) {
	svc, u := newTestUserService(t)

	streak, err := svc.UpdateStreak(context.Background(), u.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, streak)

	// Zero is a legal value — the client may sync a broken streak.
	streak, err = svc.UpdateStreak(context.Background(), u.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}

func TestUpdateStreak_RejectsNegative(t *testing.T) {
	svc, u := newTestUserService(t)
	_, err := svc.UpdateStreak(context.Background(), u.ID, -1)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
