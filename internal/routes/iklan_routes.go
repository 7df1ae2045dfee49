package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	"iklan/internal/auth"
	"iklan/internal/config"
	"iklan/internal/handlers"
	"iklan/internal/middleware"
	"iklan/internal/repository"
)

// RegisterListingRoutes mounts /iklan. Reads are public; writes go through
// the bearer-token gate.
func RegisterListingRoutes(router chi.Router, db *sql.DB, s3Config *config.S3Config, codec *auth.TokenCodec) {
	listingRepo := repository.NewListingRepository(db)
	listingHandler := handlers.NewListingHandler(listingRepo, s3Config)

	router.Route("/iklan", func(r chi.Router) {
		r.Get("/", listingHandler.ListListings)
		r.With(middleware.JWTAuth(codec)).Post("/", listingHandler.CreateListing)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", listingHandler.GetListing)

			r.Group(func(r chi.Router) {
				r.Use(middleware.JWTAuth(codec))
				r.Put("/", listingHandler.UpdateListing)
				r.Delete("/", listingHandler.DeleteListing)
				r.Post("/photos", listingHandler.UploadPhotos)
			})
		})
	})
}
