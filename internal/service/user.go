package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/detox-companion/internal/apperror"
	"github.com/sakif/detox-companion/internal/model"
	"github.com/sakif/detox-companion/internal/repository"
)

// UserService exposes the progress counters: coin balance, streak, and
// the direct-credit paths the reward flow and the client use.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Progress returns the user's current record (streak, coins, lastLogin).
func (s *UserService) Progress(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/user: fetching user %s: %w", userID, err)
	}
	return user, nil
}

// AddCoins credits coins to the user's balance and returns the new
// total. The amount must be positive — debits are not a thing here.
func (s *UserService) AddCoins(ctx context.Context, userID string, coins int) (int, error) {
	if coins <= 0 {
		return 0, apperror.ValidationFailed("coins", "coins must be a positive number")
	}

	balance, err := s.users.AddCoins(ctx, userID, coins)
	if err != nil {
		return 0, fmt.Errorf("service/user: adding %d coins to user %s: %w", coins, userID, err)
	}

	s.logger.Info("coins credited",
		slog.String("userID", userID),
		slog.Int("coins", coins),
		slog.Int("balance", balance),
	)
	return balance, nil
}

// UpdateStreak overwrites the user's streak counter and returns the
// stored value. It exists for the client's explicit streak sync; normal
// streak advancement happens inside login.
func (s *UserService) UpdateStreak(ctx context.Context, userID string, streak int) (int, error) {
	if streak < 0 {
		return 0, apperror.ValidationFailed("streak", "streak must not be negative")
	}

	stored, err := s.users.SetStreak(ctx, userID, streak)
	if err != nil {
		return 0, fmt.Errorf("service/user: setting streak for user %s: %w", userID, err)
	}

	s.logger.Info("streak updated",
		slog.String("userID", userID),
		slog.Int("streak", stored),
	)
	return stored, nil
}
