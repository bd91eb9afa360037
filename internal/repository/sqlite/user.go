package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/detox-companion/internal/apperror"
	"github.com/sakif/detox-companion/internal/model"
	"github.com/sakif/detox-companion/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, name, email, password_hash, github_id, streak, coins, last_login, created_at, updated_at`

// Create inserts a new user with fresh counters (streak 0, coins 0, no
// last login). The unique email constraint is the conflict check — the
// service pre-checks for a friendlier error, but the constraint is what
// actually prevents a racing duplicate registration.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, github_id, streak, coins, last_login, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.GitHubID,
		user.Streak,
		user.Coins,
		nullableTime(user.LastLogin),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email.
// Returns apperror.ErrNotFound if the email is unknown.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return user, nil
}

// UpsertGitHub inserts or updates a user keyed by GitHub ID. First OAuth
// login inserts; later logins refresh name/email in case the user changed
// them on GitHub, keeping the existing internal ID and counters.
func (db *DB) UpsertGitHub(ctx context.Context, user *model.User) error {
	var existingID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, user.GitHubID,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	if existingID != "" {
		user.ID = existingID
		user.UpdatedAt = time.Now()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?`,
			user.Name, user.Email, user.UpdatedAt, user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}

		// Refresh the counters so the caller sees the stored streak/coins.
		stored, err := db.GetByID(ctx, user.ID)
		if err != nil {
			return err
		}
		*user = *stored
		return nil
	}

	return db.Create(ctx, user)
}

// RecordLogin persists the outcome of a successful login: the streak the
// engine computed and lastLogin = now, unconditionally — lastLogin moves
// on every login even when the streak is unchanged.
func (db *DB) RecordLogin(ctx context.Context, id string, streakValue int, lastLogin time.Time) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET streak = ?, last_login = ?, updated_at = ? WHERE id = ?`,
		streakValue, lastLogin, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: recording login for user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

// SetStreak overwrites the streak counter and returns the stored value.
func (db *DB) SetStreak(ctx context.Context, id string, streakValue int) (int, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET streak = ?, updated_at = ? WHERE id = ?`,
		streakValue, time.Now(), id,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: setting streak for user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, apperror.NotFound("user", id)
	}
	return streakValue, nil
}

// AddCoins credits coins atomically (coins = coins + ?) and returns the
// new balance. A missing user is a hard error — an update against an
// absent record is never treated as an empty default.
func (db *DB) AddCoins(ctx context.Context, id string, coins int) (int, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET coins = coins + ?, updated_at = ? WHERE id = ?`,
		coins, time.Now(), id,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: adding coins for user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, apperror.NotFound("user", id)
	}

	var balance int
	err = db.conn.QueryRowContext(ctx,
		`SELECT coins FROM users WHERE id = ?`, id,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("sqlite: reading coin balance for user %s: %w", id, err)
	}
	return balance, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	var lastLogin sql.NullTime

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.GitHubID,
		&u.Streak,
		&u.Coins,
		&lastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return &u, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
