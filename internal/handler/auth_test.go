package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/detox-companion/internal/auth"
	"github.com/sakif/detox-companion/internal/service"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	db := newTestDB(t)
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)
	svc := service.NewAuthService(db, tokens, auth.NewPasswordServiceForTest(4), testLogger())
	return NewAuthHandler(svc, nil, testLogger())
}

func postJSON(h http.HandlerFunc, target string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		panic(err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestRegister(t *testing.T) {
	h := newAuthHandler(t)

	rec := postJSON(h.HandleRegister, "/api/auth/register", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "s3cret",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "Alice", body["name"])
	assert.EqualValues(t, 0, body["streak"])
	assert.EqualValues(t, 0, body["coins"])
}

func TestRegister_MissingField(t *testing.T) {
	h := newAuthHandler(t)

	rec := postJSON(h.HandleRegister, "/api/auth/register", map[string]string{
		"name": "Alice", "password": "s3cret",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "validation_error", body["error"])
	assert.Equal(t, "email", body["field"])
}

func TestRegister_MalformedBody(t *testing.T) {
	h := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.HandleRegister(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decodeBody(t, rec)["error"])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h := newAuthHandler(t)
	creds := map[string]string{"name": "Alice", "email": "alice@example.com", "password": "pw"}

	require.Equal(t, http.StatusCreated, postJSON(h.HandleRegister, "/api/auth/register", creds).Code)

	rec := postJSON(h.HandleRegister, "/api/auth/register", creds)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeBody(t, rec)["error"])
}

func TestLogin(t *testing.T) {
	h := newAuthHandler(t)
	require.Equal(t, http.StatusCreated, postJSON(h.HandleRegister, "/api/auth/register", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "pw",
	}).Code)

	rec := postJSON(h.HandleLogin, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "pw",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["token"])
	assert.EqualValues(t, 1, body["streak"], "first login starts the streak")
}

func TestLogin_BadCredentials(t *testing.T) {
	h := newAuthHandler(t)
	require.Equal(t, http.StatusCreated, postJSON(h.HandleRegister, "/api/auth/register", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "pw",
	}).Code)

	unknown := postJSON(h.HandleLogin, "/api/auth/login", map[string]string{
		"email": "nobody@example.com", "password": "pw",
	})
	wrongPw := postJSON(h.HandleLogin, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})

	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	// Identical bodies: the response must not reveal which half was wrong.
	assert.Equal(t, unknown.Body.String(), wrongPw.Body.String())
}

func TestGitHubRoutes_NotConfigured(t *testing.T) {
	h := newAuthHandler(t) // github == nil

	rec := httptest.NewRecorder()
	h.HandleGitHubLogin(rec, httptest.NewRequest(http.MethodGet, "/auth/github/login", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
