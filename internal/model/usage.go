package model

import (
	"encoding/json"
	"time"
)

// UsageVectorLen is the fixed arity of the usage vector sent to the
// analysis service: [screen_time, session_duration, app_switches,
// night_activity], always in that order. Any other length is a
// request-validation failure, never forwarded.
const UsageVectorLen = 4

// AppUsage is one per-app entry in a day's screen-time breakdown.
// Time is an opaque display string ("1h 20m") supplied by the client —
// the server stores and echoes it, it never parses it.
type AppUsage struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Time    string  `json:"time"`
	Pct     float64 `json:"pct"`
	IconURL string  `json:"iconUrl,omitempty"`
}

// DailyUsage is the screen-time snapshot for one user on one UTC calendar
// day. There is at most one row per (user, date); logging usage again on
// the same day replaces Apps and TotalTime in place.
type DailyUsage struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Date      string     `json:"date"` // UTC calendar date, "2006-01-02"
	Apps      []AppUsage `json:"apps"`
	TotalTime string     `json:"totalTime"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// UsageEvent is one analysis result appended to a user's history.
//
// Cluster, Prediction and Recommendations are whatever the analysis
// service returned — we keep them as raw JSON and pass them through
// verbatim rather than imposing a schema on a collaborator we don't own.
// Events are immutable once appended; insertion order is chronological.
type UsageEvent struct {
	ID              string          `json:"id"`
	UserID          string          `json:"-"`
	OccurredAt      time.Time       `json:"date"`
	Usage           []float64       `json:"usage"`
	Cluster         json.RawMessage `json:"cluster"`
	Prediction      json.RawMessage `json:"prediction"`
	Recommendations json.RawMessage `json:"recommendations"`
}
