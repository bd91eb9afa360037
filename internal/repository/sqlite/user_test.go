package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/detox-companion/internal/apperror"
	"github.com/sakif/detox-companion/internal/model"
)

// newTestDB returns a DB backed by a throwaway in-memory database.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, name, email string) *model.User {
	t.Helper()
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$04$fakehashfortesting",
	}
	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: "$2a$04$fakehash",
	}
	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}

	stored, err := db.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Streak != 0 || stored.Coins != 0 {
		t.Errorf("new user counters = (streak %d, coins %d), want (0, 0)", stored.Streak, stored.Coins)
	}
	if stored.LastLogin != nil {
		t.Errorf("new user LastLogin = %v, want nil", stored.LastLogin)
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "First", "dup@example.com")

	second := &model.User{Name: "Second", Email: "dup@example.com", PasswordHash: "x"}
	err := db.Create(context.Background(), second)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Create() with duplicate email error = %v, want conflict", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "Alice", "alice@example.com")

	stored, err := db.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if stored.ID != created.ID {
		t.Errorf("GetByEmail() id = %q, want %q", stored.ID, created.ID)
	}

	_, err = db.GetByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail() for unknown email error = %v, want not found", err)
	}
}

func TestRecordLogin(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "Alice", "alice@example.com")

	loginAt := time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)
	if err := db.RecordLogin(context.Background(), user.ID, 5, loginAt); err != nil {
		t.Fatalf("RecordLogin() error = %v", err)
	}

	stored, err := db.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Streak != 5 {
		t.Errorf("streak = %d, want 5", stored.Streak)
	}
	if stored.LastLogin == nil || !stored.LastLogin.Equal(loginAt) {
		t.Errorf("lastLogin = %v, want %v", stored.LastLogin, loginAt)
	}
}

func TestRecordLoginUnknownUser(t *testing.T) {
	db := newTestDB(t)
	err := db.RecordLogin(context.Background(), "no-such-id", 1, time.Now())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("RecordLogin() for unknown user error = %v, want not found", err)
	}
}

func TestAddCoins(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "Alice", "alice@example.com")

	balance, err := db.AddCoins(context.Background(), user.ID, 2)
	if err != nil {
		t.Fatalf("AddCoins() error = %v", err)
	}
	if balance != 2 {
		t.Errorf("balance = %d, want 2", balance)
	}

	// Credits accumulate.
	balance, err = db.AddCoins(context.Background(), user.ID, 3)
	if err != nil {
		t.Fatalf("AddCoins() second credit error = %v", err)
	}
	if balance != 5 {
		t.Errorf("balance = %d, want 5", balance)
	}
}

func TestAddCoinsUnknownUser(t *testing.T) {
	db := newTestDB(t)
	_, err := db.AddCoins(context.Background(), "no-such-id", 2)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("AddCoins() for unknown user error = %v, want not found", err)
	}
}

func TestSetStreak(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "Alice", "alice@example.com")

	got, err := db.SetStreak(context.Background(), user.ID, 12)
	if err != nil {
		t.Fatalf("SetStreak() error = %v", err)
	}
	if got != 12 {
		t.Errorf("SetStreak() = %d, want 12", got)
	}

	stored, _ := db.GetByID(context.Background(), user.ID)
	if stored.Streak != 12 {
		t.Errorf("stored streak = %d, want 12", stored.Streak)
	}
}

func TestUpsertGitHub(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{Name: "octo", Email: "octo@example.com", GitHubID: 12345}
	if err := db.UpsertGitHub(context.Background(), user); err != nil {
		t.Fatalf("UpsertGitHub() insert error = %v", err)
	}
	firstID := user.ID

	// Accrue some state, then log in again with a changed GitHub profile.
	if _, err := db.AddCoins(context.Background(), firstID, 4); err != nil {
		t.Fatalf("AddCoins() error = %v", err)
	}

	again := &model.User{Name: "octocat", Email: "new@example.com", GitHubID: 12345}
	if err := db.UpsertGitHub(context.Background(), again); err != nil {
		t.Fatalf("UpsertGitHub() update error = %v", err)
	}

	if again.ID != firstID {
		t.Errorf("second OAuth login produced a new internal ID %q, want %q", again.ID, firstID)
	}
	if again.Coins != 4 {
		t.Errorf("coins after upsert = %d, want 4 — counters must survive profile refresh", again.Coins)
	}
	if again.Name != "octocat" || again.Email != "new@example.com" {
		t.Errorf("profile not refreshed: name %q email %q", again.Name, again.Email)
	}
}
