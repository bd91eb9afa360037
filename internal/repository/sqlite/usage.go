package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/detox-companion/internal/apperror"
	"github.com/sakif/detox-companion/internal/model"
	"github.com/sakif/detox-companion/internal/repository"
)

// compile-time check that *DB implements repository.UsageRepository
var _ repository.UsageRepository = (*DB)(nil)

// UpsertDaily creates the (user, date) snapshot or fully replaces its
// apps and totalTime. Last write wins — individual app entries are never
// merged across submissions.
func (db *DB) UpsertDaily(ctx context.Context, snapshot *model.DailyUsage) error {
	apps, err := json.Marshal(snapshot.Apps)
	if err != nil {
		return fmt.Errorf("sqlite: encoding apps: %w", err)
	}

	var existingID string
	err = db.conn.QueryRowContext(ctx,
		`SELECT id FROM daily_usage WHERE user_id = ? AND date = ?`,
		snapshot.UserID, snapshot.Date,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up daily usage: %w", err)
	}

	if existingID != "" {
		snapshot.ID = existingID
		snapshot.UpdatedAt = time.Now()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE daily_usage SET apps = ?, total_time = ?, updated_at = ? WHERE id = ?`,
			string(apps), snapshot.TotalTime, snapshot.UpdatedAt, snapshot.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating daily usage %s: %w", snapshot.ID, err)
		}
		return nil
	}

	snapshot.ID = xid.New().String()
	now := time.Now()
	snapshot.CreatedAt = now
	snapshot.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO daily_usage (id, user_id, date, apps, total_time, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snapshot.ID,
		snapshot.UserID,
		snapshot.Date,
		string(apps),
		snapshot.TotalTime,
		snapshot.CreatedAt,
		snapshot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting daily usage: %w", err)
	}
	return nil
}

// GetDaily retrieves the snapshot for one user and one UTC date.
// Returns apperror.ErrNotFound when no usage was logged that day.
func (db *DB) GetDaily(ctx context.Context, userID, date string) (*model.DailyUsage, error) {
	var snap model.DailyUsage
	var apps string

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, date, apps, total_time, created_at, updated_at
		 FROM daily_usage WHERE user_id = ? AND date = ?`,
		userID, date,
	).Scan(
		&snap.ID,
		&snap.UserID,
		&snap.Date,
		&apps,
		&snap.TotalTime,
		&snap.CreatedAt,
		&snap.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("daily usage", userID+"/"+date)
		}
		return nil, fmt.Errorf("sqlite: getting daily usage: %w", err)
	}

	if err := json.Unmarshal([]byte(apps), &snap.Apps); err != nil {
		return nil, fmt.Errorf("sqlite: decoding apps for daily usage %s: %w", snap.ID, err)
	}
	return &snap, nil
}

// AppendEvent appends one analysis result to the user's history. Events
// are immutable — there is no update or delete path.
func (db *DB) AppendEvent(ctx context.Context, event *model.UsageEvent) error {
	usage, err := json.Marshal(event.Usage)
	if err != nil {
		return fmt.Errorf("sqlite: encoding usage vector: %w", err)
	}

	event.ID = xid.New().String()
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO usage_events (id, user_id, occurred_at, usage, cluster, prediction, recommendations)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.UserID,
		event.OccurredAt,
		string(usage),
		rawOrNull(event.Cluster),
		rawOrNull(event.Prediction),
		rawOrNull(event.Recommendations),
	)
	if err != nil {
		return fmt.Errorf("sqlite: appending usage event: %w", err)
	}
	return nil
}

// ListEvents returns the user's analysis history, oldest first.
func (db *DB) ListEvents(ctx context.Context, userID string) ([]model.UsageEvent, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, occurred_at, usage, cluster, prediction, recommendations
		 FROM usage_events WHERE user_id = ? ORDER BY occurred_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing usage events: %w", err)
	}
	defer rows.Close()

	events := []model.UsageEvent{}
	for rows.Next() {
		var ev model.UsageEvent
		var usage, cluster, prediction, recommendations string

		err := rows.Scan(
			&ev.ID,
			&ev.UserID,
			&ev.OccurredAt,
			&usage,
			&cluster,
			&prediction,
			&recommendations,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning usage event: %w", err)
		}
		if err := json.Unmarshal([]byte(usage), &ev.Usage); err != nil {
			return nil, fmt.Errorf("sqlite: decoding usage vector for event %s: %w", ev.ID, err)
		}
		ev.Cluster = json.RawMessage(cluster)
		ev.Prediction = json.RawMessage(prediction)
		ev.Recommendations = json.RawMessage(recommendations)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating usage events: %w", err)
	}

	return events, nil
}

// rawOrNull stores raw JSON as text, normalizing empty payloads to the
// JSON literal null so reads always produce valid JSON.
func rawOrNull(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}
