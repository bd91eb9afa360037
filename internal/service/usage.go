package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/detox-companion/internal/apperror"
	"github.com/sakif/detox-companion/internal/model"
	"github.com/sakif/detox-companion/internal/repository"
	"github.com/sakif/detox-companion/internal/streak"
)

// UsageService reconciles the client's daily usage snapshots. Each user
// has at most one snapshot per UTC day; logging again the same day
// replaces the previous snapshot wholesale — the client always sends the
// full picture, never a delta.
type UsageService struct {
	usage  repository.UsageRepository
	logger *slog.Logger

	now func() time.Time
}

// NewUsageService creates a UsageService.
func NewUsageService(usage repository.UsageRepository, logger *slog.Logger) *UsageService {
	return &UsageService{usage: usage, logger: logger, now: time.Now}
}

// Log stores today's usage snapshot for the user, replacing any earlier
// snapshot for the same day. An empty totalTime defaults to "0m"; the
// string itself is opaque to the server and stored as the client sent
// it.
func (s *UsageService) Log(ctx context.Context, userID string, apps []model.AppUsage, totalTime string) (*model.DailyUsage, error) {
	if apps == nil {
		return nil, apperror.ValidationFailed("apps", "apps must be an array")
	}
	for i, app := range apps {
		if app.ID == "" {
			return nil, apperror.ValidationFailed(fmt.Sprintf("apps[%d].id", i), "app id is required")
		}
		if app.Label == "" {
			return nil, apperror.ValidationFailed(fmt.Sprintf("apps[%d].label", i), "app label is required")
		}
		if app.Pct < 0 || app.Pct > 100 {
			return nil, apperror.ValidationFailed(fmt.Sprintf("apps[%d].pct", i), "pct must be between 0 and 100")
		}
	}
	if totalTime == "" {
		totalTime = "0m"
	}

	daily := &model.DailyUsage{
		UserID:    userID,
		Date:      streak.Day(s.now()),
		Apps:      apps,
		TotalTime: totalTime,
	}
	if err := s.usage.UpsertDaily(ctx, daily); err != nil {
		return nil, fmt.Errorf("service/usage: upserting snapshot for user %s: %w", userID, err)
	}

	s.logger.Info("usage snapshot logged",
		slog.String("userID", userID),
		slog.String("date", daily.Date),
		slog.Int("apps", len(apps)),
	)
	return daily, nil
}

// Today returns the user's snapshot for the current UTC day. A day with
// no snapshot yet is not an error — it reads as the zero snapshot
// (no apps, "0m" total).
func (s *UsageService) Today(ctx context.Context, userID string) (*model.DailyUsage, error) {
	date := streak.Day(s.now())

	daily, err := s.usage.GetDaily(ctx, userID, date)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return &model.DailyUsage{
				UserID:    userID,
				Date:      date,
				Apps:      []model.AppUsage{},
				TotalTime: "0m",
			}, nil
		}
		return nil, fmt.Errorf("service/usage: fetching snapshot for user %s: %w", userID, err)
	}
	return daily, nil
}

// Apps returns just the per-app breakdown of today's snapshot, empty
// when nothing has been logged yet.
func (s *UsageService) Apps(ctx context.Context, userID string) ([]model.AppUsage, error) {
	daily, err := s.Today(ctx, userID)
	if err != nil {
		return nil, err
	}
	return daily.Apps, nil
}
