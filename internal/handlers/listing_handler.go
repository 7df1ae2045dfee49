package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"iklan/internal/config"
	"iklan/internal/interfaces"
	"iklan/internal/middleware"
	"iklan/internal/models"
)

type ListingHandler struct {
	repo interfaces.ListingRepository
	s3   *config.S3Config
	v    *validator.Validate
}

func NewListingHandler(repo interfaces.ListingRepository, s3Config *config.S3Config) *ListingHandler {
	return &ListingHandler{
		repo: repo,
		s3:   s3Config,
		v:    newValidator(),
	}
}

// CreateListing handles POST /iklan
// @Tags Listings
// @Summary Create a listing
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.CreateListingRequest true "Listing payload"
// @Success 201 {object} models.Listing
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /iklan [post]
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req models.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	listing := &models.Listing{
		ID:           uuid.NewString(),
		UserID:       middleware.UserIDFromContext(r.Context()),
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		PropertyType: models.PropertyType(req.PropertyType),
		City:         req.City,
		Province:     req.Province,
		Address:      req.Address,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		LandArea:     req.LandArea,
		BuildingArea: req.BuildingArea,
		Photos:       []string{},
	}

	if err := h.repo.Create(r.Context(), listing); err != nil {
		log.Printf("Failed to create listing: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "create_listing_failed", "Failed to create listing")
		return
	}

	writeJSON(w, http.StatusCreated, listing)
}

// GetListing handles GET /iklan/{id}
// @Tags Listings
// @Summary Get a listing
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} models.Listing
// @Failure 404 {object} map[string]interface{}
// @Router /iklan/{id} [get]
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	listing, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONError(w, http.StatusNotFound, "not_found", "Listing not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "get_listing_failed", "Failed to fetch listing")
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

func parseListingFilter(r *http.Request) interfaces.ListingFilter {
	q := r.URL.Query()

	atoi := func(key string) int {
		n, _ := strconv.Atoi(q.Get(key))
		return n
	}
	atoi64 := func(key string) int64 {
		n, _ := strconv.ParseInt(q.Get(key), 10, 64)
		return n
	}

	limit := atoi("limit")
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return interfaces.ListingFilter{
		City:         q.Get("city"),
		Province:     q.Get("province"),
		PropertyType: q.Get("type"),
		MinPrice:     atoi64("min_price"),
		MaxPrice:     atoi64("max_price"),
		Bedrooms:     atoi("bedrooms"),
		Query:        q.Get("q"),
		Limit:        limit,
		Offset:       atoi("offset"),
	}
}

// ListListings handles GET /iklan
// @Tags Listings
// @Summary Search listings
// @Produce json
// @Param city query string false "City"
// @Param province query string false "Province"
// @Param type query string false "Property type"
// @Param min_price query int false "Minimum price"
// @Param max_price query int false "Maximum price"
// @Param bedrooms query int false "Minimum bedrooms"
// @Param q query string false "Title search"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} models.ListingPage
// @Router /iklan [get]
func (h *ListingHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	filter := parseListingFilter(r)

	listings, err := h.repo.List(r.Context(), filter)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "list_listings_failed", "Failed to list listings")
		return
	}
	total, err := h.repo.Count(r.Context(), filter)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "list_listings_failed", "Failed to list listings")
		return
	}

	if listings == nil {
		listings = []*models.Listing{}
	}

	writeJSON(w, http.StatusOK, models.ListingPage{Data: listings, Total: total})
}

// getOwnedListing loads a listing and enforces that the authenticated user
// owns it, writing the error response itself when not.
func (h *ListingHandler) getOwnedListing(w http.ResponseWriter, r *http.Request) *models.Listing {
	id := chi.URLParam(r, "id")

	listing, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONError(w, http.StatusNotFound, "not_found", "Listing not found")
			return nil
		}
		writeJSONError(w, http.StatusInternalServerError, "get_listing_failed", "Failed to fetch listing")
		return nil
	}

	if listing.UserID != middleware.UserIDFromContext(r.Context()) {
		writeJSONError(w, http.StatusForbidden, "forbidden", "You do not own this listing")
		return nil
	}

	return listing
}

// UpdateListing handles PUT /iklan/{id}
// @Tags Listings
// @Summary Update a listing
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Listing ID"
// @Param body body models.UpdateListingRequest true "Fields to update"
// @Success 200 {object} models.Listing
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /iklan/{id} [put]
func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	listing := h.getOwnedListing(w, r)
	if listing == nil {
		return
	}

	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Price != nil {
		listing.Price = *req.Price
	}
	if req.PropertyType != nil {
		listing.PropertyType = models.PropertyType(*req.PropertyType)
	}
	if req.City != nil {
		listing.City = *req.City
	}
	if req.Province != nil {
		listing.Province = *req.Province
	}
	if req.Address != nil {
		listing.Address = *req.Address
	}
	if req.Bedrooms != nil {
		listing.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		listing.Bathrooms = *req.Bathrooms
	}
	if req.LandArea != nil {
		listing.LandArea = *req.LandArea
	}
	if req.BuildingArea != nil {
		listing.BuildingArea = *req.BuildingArea
	}

	if err := h.repo.Update(r.Context(), listing.ID, listing); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "update_listing_failed", "Failed to update listing")
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// DeleteListing handles DELETE /iklan/{id}
// @Tags Listings
// @Summary Delete a listing
// @Security BearerAuth
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /iklan/{id} [delete]
func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	listing := h.getOwnedListing(w, r)
	if listing == nil {
		return
	}

	if err := h.repo.Delete(r.Context(), listing.ID); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "delete_listing_failed", "Failed to delete listing")
		return
	}

	writeJSONMessage(w, http.StatusOK, "listing deleted")
}

// UploadPhotos handles POST /iklan/{id}/photos: multipart uploads to S3.
// @Tags Listings
// @Summary Upload listing photos
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Listing ID"
// @Param photos formData file true "Photo files"
// @Success 201 {object} models.Listing
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /iklan/{id}/photos [post]
func (h *ListingHandler) UploadPhotos(w http.ResponseWriter, r *http.Request) {
	listing := h.getOwnedListing(w, r)
	if listing == nil {
		return
	}

	const maxMemory = 32 << 20
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse form")
		return
	}

	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "No photos uploaded")
		return
	}

	uploader := manager.NewUploader(h.s3.Client)
	var urls []string

	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			log.Printf("Failed to open file %s: %v", fileHeader.Filename, err)
			continue
		}

		key := filepath.Join("listings", listing.ID, uuid.NewString()+filepath.Ext(fileHeader.Filename))
		_, err = uploader.Upload(r.Context(), &s3.PutObjectInput{
			Bucket: aws.String(h.s3.Bucket),
			Key:    aws.String(key),
			Body:   file,
		})
		file.Close()

		if err != nil {
			log.Printf("Failed to upload photo %s to S3: %v", fileHeader.Filename, err)
			continue
		}

		urls = append(urls, strings.TrimRight(h.s3.PublicBaseURL, "/")+"/"+key)
	}

	if len(urls) == 0 {
		writeJSONError(w, http.StatusInternalServerError, "upload_failed", "Failed to upload any photos")
		return
	}

	if err := h.repo.AppendPhotos(r.Context(), listing.ID, urls); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "upload_failed", "Failed to save photos")
		return
	}

	listing.Photos = append(listing.Photos, urls...)
	writeJSON(w, http.StatusCreated, listing)
}
