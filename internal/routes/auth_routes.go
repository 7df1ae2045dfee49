package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	"iklan/internal/auth"
	"iklan/internal/config"
	"iklan/internal/handlers"
	"iklan/internal/middleware"
	"iklan/internal/services"
)

func RegisterAuthRoutes(router chi.Router, db *sql.DB, cfg *config.Config, codec *auth.TokenCodec) {
	mailer := &services.SMTPSender{
		Host:   cfg.SMTPHost,
		Port:   cfg.SMTPPort,
		User:   cfg.SMTPUser,
		Pass:   cfg.SMTPPassword,
		From:   cfg.SMTPFrom,
		UseTLS: cfg.SMTPUseTLS,
	}
	authHandler := handlers.NewAuthHandler(db, cfg, codec, mailer)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password", authHandler.ResetPassword)

		r.With(middleware.JWTAuth(codec)).Get("/me", authHandler.Me)
	})
}
