// internal/routes/routes.go
package routes

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"iklan/internal/auth"
	"iklan/internal/config"
)

func SetupRoutes(db *sql.DB, cfg *config.Config, s3Config *config.S3Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	codec := auth.NewTokenCodec(cfg.JWTSecret, time.Duration(cfg.JWTExpiresInSeconds)*time.Second)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "iklan API"})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		dbStatus := map[string]any{"status": "ok"}
		status := http.StatusOK
		if err := db.PingContext(r.Context()); err != nil {
			// Ping detail stays in the server log; clients only see "down".
			log.Printf("Health check: database ping failed: %v", err)
			dbStatus = map[string]any{"status": "down"}
			status = http.StatusServiceUnavailable
		}

		w.WriteHeader(status)
		body := "ok"
		if status != http.StatusOK {
			body = "degraded"
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": body, "db": dbStatus})
	})

	RegisterAuthRoutes(r, db, cfg, codec)
	RegisterListingRoutes(r, db, s3Config, codec)
	RegisterSwaggerRoutes(r)

	return r
}
