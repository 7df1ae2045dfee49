package interfaces

import (
	"context"

	"iklan/internal/models"
)

// ListingFilter narrows a listing search. Zero values mean "no constraint".
type ListingFilter struct {
	City         string
	Province     string
	PropertyType string
	MinPrice     int64
	MaxPrice     int64
	Bedrooms     int
	Query        string
	Limit        int
	Offset       int
}

type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	List(ctx context.Context, filter ListingFilter) ([]*models.Listing, error)
	Count(ctx context.Context, filter ListingFilter) (int, error)
	Update(ctx context.Context, id string, listing *models.Listing) error
	AppendPhotos(ctx context.Context, id string, photos []string) error
	Delete(ctx context.Context, id string) error
}
