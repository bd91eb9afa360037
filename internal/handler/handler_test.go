package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sakif/detox-companion/internal/auth"
	"github.com/sakif/detox-companion/internal/model"
	sqliteRepo "github.com/sakif/detox-companion/internal/repository/sqlite"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestDB opens an in-memory SQLite database that is torn down with
// the test.
func newTestDB(t *testing.T) *sqliteRepo.DB {
	t.Helper()
	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// seedUser inserts an account and returns its ID, since the usage and
// event tables reference users by foreign key.
func seedUser(t *testing.T, db *sqliteRepo.DB) string {
	t.Helper()
	u := &model.User{Name: "Test User", Email: "test@example.com"}
	require.NoError(t, db.Create(context.Background(), u))
	return u.ID
}

// authedRequest builds a request that looks like it already passed
// RequireAuth: the userID sits in the context, no token needed.
func authedRequest(method, target, userID string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	return req.WithContext(auth.ContextWithUserID(req.Context(), userID))
}

// decodeBody unmarshals the recorded response body into a map for
// loose-shape assertions.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}
