package models

import "time"

type PropertyType string

const (
	PropertyTypeRumah     PropertyType = "rumah"
	PropertyTypeApartemen PropertyType = "apartemen"
	PropertyTypeTanah     PropertyType = "tanah"
	PropertyTypeRuko      PropertyType = "ruko"
)

type Listing struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Price        int64        `json:"price"`
	PropertyType PropertyType `json:"property_type"`
	City         string       `json:"city"`
	Province     string       `json:"province,omitempty"`
	Address      string       `json:"address,omitempty"`
	Bedrooms     int          `json:"bedrooms"`
	Bathrooms    int          `json:"bathrooms"`
	LandArea     int          `json:"land_area"`
	BuildingArea int          `json:"building_area"`
	Photos       []string     `json:"photos"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type CreateListingRequest struct {
	Title        string `json:"title" validate:"required,min=3"`
	Description  string `json:"description"`
	Price        int64  `json:"price" validate:"required,gt=0"`
	PropertyType string `json:"property_type" validate:"required,oneof=rumah apartemen tanah ruko"`
	City         string `json:"city" validate:"required"`
	Province     string `json:"province"`
	Address      string `json:"address"`
	Bedrooms     int    `json:"bedrooms" validate:"gte=0"`
	Bathrooms    int    `json:"bathrooms" validate:"gte=0"`
	LandArea     int    `json:"land_area" validate:"gte=0"`
	BuildingArea int    `json:"building_area" validate:"gte=0"`
}

type UpdateListingRequest struct {
	Title        *string `json:"title,omitempty" validate:"omitempty,min=3"`
	Description  *string `json:"description,omitempty"`
	Price        *int64  `json:"price,omitempty" validate:"omitempty,gt=0"`
	PropertyType *string `json:"property_type,omitempty" validate:"omitempty,oneof=rumah apartemen tanah ruko"`
	City         *string `json:"city,omitempty"`
	Province     *string `json:"province,omitempty"`
	Address      *string `json:"address,omitempty"`
	Bedrooms     *int    `json:"bedrooms,omitempty" validate:"omitempty,gte=0"`
	Bathrooms    *int    `json:"bathrooms,omitempty" validate:"omitempty,gte=0"`
	LandArea     *int    `json:"land_area,omitempty" validate:"omitempty,gte=0"`
	BuildingArea *int    `json:"building_area,omitempty" validate:"omitempty,gte=0"`
}

type ListingPage struct {
	Data  []*Listing `json:"data"`
	Total int        `json:"total"`
}
