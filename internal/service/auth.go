// Package service contains the business logic layer.
//
// Services sit between the HTTP handlers and the repositories:
//
//	Handler (HTTP) → Service (rules, orchestration) → Repository (SQLite)
//	              ↘ TokenService / PasswordService / analysis.Client
//
// Services accept primitives and return domain errors from apperror —
// they know nothing about HTTP, which is what makes them testable with
// plain function calls and fake repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/detox-companion/internal/apperror"
	"github.com/sakif/detox-companion/internal/auth"
	"github.com/sakif/detox-companion/internal/model"
	"github.com/sakif/detox-companion/internal/repository"
	"github.com/sakif/detox-companion/internal/streak"
)

// AuthService orchestrates registration and login: credentials via the
// user store, tokens via TokenService, and the login-streak update via
// the streak engine.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger

	// now is swappable in tests so streak day-boundary cases are
	// deterministic.
	now func() time.Time
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
		now:       time.Now,
	}
}

// AuthResult bundles the user record and the issued JWT so the handler
// can respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a new account and issues a short-lived (7-day) token.
// The account starts with streak 0, coins 0 and no last login — the
// first real login starts the streak.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "email is not valid")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	// Friendly pre-check; the unique email constraint in the store still
	// catches a racing duplicate.
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, apperror.Conflict("user", email)
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking email %s: %w", email, err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	token, err := s.tokens.Generate(user.ID, auth.TokenTTLRegister)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials, advances the login streak, and issues a
// 30-day token.
//
// Unknown email and wrong password collapse into the same generic error
// on purpose — a different answer for each would let an attacker probe
// which emails have accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("service/auth: fetching user by email: %w", err)
	}

	// OAuth-only accounts have no password hash; password login is a
	// mismatch for them, reported with the same generic error.
	if user.PasswordHash == "" || s.passwords.Verify(user.PasswordHash, password) != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	return s.completeLogin(ctx, user)
}

// LoginWithGitHub completes an OAuth sign-in: upserts the account by
// GitHub ID and then runs the same streak-on-login path as password
// login. An OAuth login is a login — it counts toward the streak.
func (s *AuthService) LoginWithGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	name := ghUser.Name
	if name == "" {
		name = ghUser.Login
	}

	user := &model.User{
		Name:     name,
		Email:    strings.ToLower(ghUser.Email),
		GitHubID: ghUser.ID,
	}
	if err := s.users.UpsertGitHub(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	return s.completeLogin(ctx, user)
}

// completeLogin runs the post-verification half of every login flow:
// compute the next streak, persist it together with lastLogin = now
// (unconditionally, even when the streak didn't move), and issue the
// long-lived token.
func (s *AuthService) completeLogin(ctx context.Context, user *model.User) (*AuthResult, error) {
	now := s.now()
	next := streak.Next(now, user.LastLogin, user.Streak)

	if err := s.users.RecordLogin(ctx, user.ID, next, now); err != nil {
		return nil, fmt.Errorf("service/auth: recording login for user %s: %w", user.ID, err)
	}
	user.Streak = next
	user.LastLogin = &now

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.Int("streak", next),
	)

	token, err := s.tokens.Generate(user.ID, auth.TokenTTLLogin)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}
