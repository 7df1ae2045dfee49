package models

import "time"

// PasswordResetToken is the single-use bearer credential for a password
// change. Used flips false -> true exactly once; rows are never deleted.
type PasswordResetToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt *time.Time
	Used      bool
	CreatedAt time.Time
}
