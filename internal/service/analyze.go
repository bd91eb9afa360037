package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/detox-companion/internal/analysis"
	"github.com/sakif/detox-companion/internal/apperror"
	"github.com/sakif/detox-companion/internal/model"
	"github.com/sakif/detox-companion/internal/repository"
)

// AnalyzeService orchestrates usage analysis: validate the feature
// vector, call the external classifier, and record the event with the
// classifier's verdict for the history view.
type AnalyzeService struct {
	analyzer analysis.Analyzer
	usage    repository.UsageRepository
	logger   *slog.Logger

	now func() time.Time
}

// NewAnalyzeService creates an AnalyzeService.
func NewAnalyzeService(analyzer analysis.Analyzer, usage repository.UsageRepository, logger *slog.Logger) *AnalyzeService {
	return &AnalyzeService{analyzer: analyzer, usage: usage, logger: logger, now: time.Now}
}

// Analyze submits a usage feature vector to the classifier and appends
// the resulting event to the user's history. The vector must have
// exactly four elements: screen time, session duration, app switches,
// night activity. Nothing is recorded when the classifier call fails —
// the caller can simply resubmit.
func (s *AnalyzeService) Analyze(ctx context.Context, userID string, usage []float64) (*analysis.Result, error) {
	if len(usage) != model.UsageVectorLen {
		return nil, apperror.ValidationFailed("usage",
			fmt.Sprintf("usage must contain exactly %d numbers: screen time, session duration, app switches, night activity", model.UsageVectorLen))
	}

	result, err := s.analyzer.Analyze(ctx, usage)
	if err != nil {
		s.logger.Error("analysis call failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	event := &model.UsageEvent{
		UserID:          userID,
		OccurredAt:      s.now(),
		Usage:           usage,
		Cluster:         result.Cluster,
		Prediction:      result.Prediction,
		Recommendations: result.Recommendations,
	}
	if err := s.usage.AppendEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("service/analyze: recording usage event for user %s: %w", userID, err)
	}

	s.logger.Info("usage analyzed",
		slog.String("userID", userID),
		slog.String("eventID", event.ID),
	)
	return result, nil
}

// History returns the user's analyzed usage events in chronological
// order, each with the classifier payload exactly as it was received.
func (s *AnalyzeService) History(ctx context.Context, userID string) ([]model.UsageEvent, error) {
	events, err := s.usage.ListEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/analyze: listing events for user %s: %w", userID, err)
	}
	return events, nil
}
