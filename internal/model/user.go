// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Users sign up with email + password (the hash is bcrypt, managed by
// auth.PasswordService) or via GitHub OAuth, in which case GitHubID is set
// and PasswordHash stays empty. Either way we generate our own internal
// string ID (xid) so primary keys are never tied to a third party's
// numbering scheme.
//
// WHY LastLogin *time.Time (not time.Time)?
// A user who registered but never logged in has no last login. The streak
// engine treats nil as "first-ever login" and starts the streak at 1, so
// the distinction between "never" and "zero time" matters here.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never serialized
	GitHubID     int64      `json:"-"` // 0 unless the account came from OAuth
	Streak       int        `json:"streak"`
	Coins        int        `json:"coins"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
