package repository

import (
	"context"
	"database/sql"
	"errors"

	"iklan/internal/models"
)

// ErrResetTokenNotFound covers every unusable token: absent, already used, or
// expired. Callers must not distinguish between these cases.
var ErrResetTokenNotFound = errors.New("reset token not found")

type PasswordResetRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	Consume(ctx context.Context, tokenID string, userID string, passwordHash string) error
}

type passwordResetRepository struct {
	db *sql.DB
}

func NewPasswordResetRepository(db *sql.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (id, token, user_id, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query, token.ID, token.Token, token.UserID, token.ExpiresAt, token.CreatedAt).
		Scan(&token.CreatedAt)
	return err
}

func (r *passwordResetRepository) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	query := `
		SELECT id, token, user_id, expires_at, used, created_at
		FROM password_reset_tokens
		WHERE token = $1
		AND used = FALSE
		AND (expires_at IS NULL OR expires_at > (NOW() AT TIME ZONE 'UTC'))
		LIMIT 1
	`

	var t models.PasswordResetToken
	var expiresAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, token).Scan(&t.ID, &t.Token, &t.UserID, &expiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrResetTokenNotFound
		}
		return nil, err
	}
	if expiresAt.Valid {
		t.ExpiresAt = &expiresAt.Time
	}
	return &t, nil
}

// Consume updates the owning user's password hash and flips the token's used
// flag in a single transaction. The used = FALSE guard makes concurrent
// consumers of the same token lose: exactly one commit flips the flag.
func (r *passwordResetRepository) Consume(ctx context.Context, tokenID string, userID string, passwordHash string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used = TRUE WHERE id = $1 AND used = FALSE`, tokenID)
	if err != nil {
		tx.Rollback()
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return err
	}
	if n == 0 {
		tx.Rollback()
		return ErrResetTokenNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, userID); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
