package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/detox-companion/internal/analysis"
	"github.com/sakif/detox-companion/internal/apperror"
)

// fakeAnalyzer returns a canned result or error and records the last
// vector it was asked about.
type fakeAnalyzer struct {
	result   *analysis.Result
	err      error
	lastSeen []float64
}

func (f *fakeAnalyzer) Analyze(_ context.Context, usage []float64) (*analysis.Result, error) {
	f.lastSeen = usage
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func cannedResult() *analysis.Result {
	return &analysis.Result{
		Cluster:         json.RawMessage(`2`),
		Prediction:      json.RawMessage(`"high_risk"`),
		Recommendations: json.RawMessage(`["take a break","disable notifications"]`),
	}
}

func TestAnalyze(t *testing.T) {
	analyzer := &fakeAnalyzer{result: cannedResult()}
	usage := newFakeUsageRepo()
	svc := NewAnalyzeService(analyzer, usage, testLogger())

	vector := []float64{360, 45, 120, 30}
	result, err := svc.Analyze(context.Background(), "u1", vector)
	require.NoError(t, err)

	assert.Equal(t, vector, analyzer.lastSeen)
	assert.JSONEq(t, `"high_risk"`, string(result.Prediction))

	// The classifier's verdict lands in history verbatim.
	events, err := svc.History(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, vector, events[0].Usage)
	assert.JSONEq(t, `2`, string(events[0].Cluster))
	assert.JSONEq(t, `["take a break","disable notifications"]`, string(events[0].Recommendations))
	assert.False(t, events[0].OccurredAt.IsZero())
}

func TestAnalyze_VectorArity(t *testing.T) {
	svc := NewAnalyzeService(&fakeAnalyzer{result: cannedResult()}, newFakeUsageRepo(), testLogger())

	for _, vector := range [][]float64{nil, {}, {1, 2, 3}, {1, 2, 3, 4, 5}} {
		_, err := svc.Analyze(context.Background(), "u1", vector)
		assert.ErrorIs(t, err, apperror.ErrValidation, "vector of length %d must be rejected", len(vector))
	}
}

func TestAnalyze_ClassifierDownRecordsNothing(t *testing.T) {
	analyzer := &fakeAnalyzer{err: apperror.Dependency("analysis", "connection refused")}
	usage := newFakeUsageRepo()
	svc := NewAnalyzeService(analyzer, usage, testLogger())

	_, err := svc.Analyze(context.Background(), "u1", []float64{1, 2, 3, 4})
	require.ErrorIs(t, err, apperror.ErrDependency)

	events, err := svc.History(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, events, "a failed call must not leave an event behind")
}

func TestAnalyze_AppendFailureSurfaces(t *testing.T) {
	usage := newFakeUsageRepo()
	usage.appendErr = assert.AnError
	svc := NewAnalyzeService(&fakeAnalyzer{result: cannedResult()}, usage, testLogger())

	_, err := svc.Analyze(context.Background(), "u1", []float64{1, 2, 3, 4})
	assert.ErrorIs(t, err, assert.AnError, "a lost event must not be silently swallowed")
}

func TestHistory_IsPerUser(t *testing.T) {
	svc := NewAnalyzeService(&fakeAnalyzer{result: cannedResult()}, newFakeUsageRepo(), testLogger())

	_, err := svc.Analyze(context.Background(), "u1", []float64{1, 2, 3, 4})
	require.NoError(t, err)
	_, err = svc.Analyze(context.Background(), "u2", []float64{5, 6, 7, 8})
	require.NoError(t, err)

	events, err := svc.History(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, []float64{1, 2, 3, 4}, events[0].Usage)
}
