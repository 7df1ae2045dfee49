package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"iklan/internal/auth"
	"iklan/internal/config"
	"iklan/internal/models"
	"iklan/internal/repository"
)

// AuthService orchestrates registration, login and the password reset flow.
type AuthService struct {
	users  repository.UserRepository
	resets repository.PasswordResetRepository
	tokens *auth.TokenCodec
	mailer EmailSender
	cfg    *config.Config
}

func NewAuthService(db *sql.DB, cfg *config.Config, tokens *auth.TokenCodec, mailer EmailSender) *AuthService {
	return &AuthService{
		users:  repository.NewUserRepository(db),
		resets: repository.NewPasswordResetRepository(db),
		tokens: tokens,
		mailer: mailer,
		cfg:    cfg,
	}
}

func (s *AuthService) Register(ctx context.Context, email string, password string, name string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, u); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return u, nil
}

// Login returns a signed session token. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email string, password string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(u.ID, u.Email)
}

// ResetInitiation is the outcome of a forgot-password request. Token is only
// populated in testing mode (no frontend URL configured); otherwise the token
// travels out-of-band by email.
type ResetInitiation struct {
	Token string
}

// ForgotPassword always succeeds from the caller's point of view, whether or
// not the email is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*ResetInitiation, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return &ResetInitiation{}, nil
	}

	rawToken, err := generateResetToken()
	if err != nil {
		return nil, err
	}

	prt := &models.PasswordResetToken{
		ID:        uuid.NewString(),
		Token:     rawToken,
		UserID:    u.ID,
		CreatedAt: time.Now().UTC(),
	}
	if ttl := s.cfg.ResetTokenTTLMinutes; ttl > 0 {
		expiresAt := time.Now().UTC().Add(time.Duration(ttl) * time.Minute)
		prt.ExpiresAt = &expiresAt
	}

	if err := s.resets.Create(ctx, prt); err != nil {
		return nil, err
	}

	if s.cfg.FrontendURL != "" {
		link := strings.TrimRight(s.cfg.FrontendURL, "/") + "/reset-password?token=" + rawToken
		body := "A password reset was requested for your account.\n\n" +
			"Open this link to choose a new password:\n\n" + link
		if err := s.mailer.Send(u.Email, "Reset your password", body); err != nil {
			log.Printf("Failed to send reset email to %s: %v", u.Email, err)
		}
		return &ResetInitiation{}, nil
	}

	return &ResetInitiation{Token: rawToken}, nil
}

// ResetPassword consumes a reset token and installs the new password. The
// password update and the used-flag flip commit together or not at all.
func (s *AuthService) ResetPassword(ctx context.Context, token string, newPassword string) error {
	prt, err := s.resets.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.resets.Consume(ctx, prt.ID, prt.UserID, string(hash)); err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	return nil
}

func generateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
