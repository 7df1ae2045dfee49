package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"iklan/internal/interfaces"
	"iklan/internal/models"
)

type listingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) interfaces.ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	photos := listing.Photos
	if photos == nil {
		photos = []string{}
	}

	query := `
		INSERT INTO listings (
			id, user_id, title, description, price, property_type,
			city, province, address, bedrooms, bathrooms, land_area,
			building_area, photos
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		listing.ID,
		listing.UserID,
		listing.Title,
		listing.Description,
		listing.Price,
		listing.PropertyType,
		listing.City,
		listing.Province,
		listing.Address,
		listing.Bedrooms,
		listing.Bathrooms,
		listing.LandArea,
		listing.BuildingArea,
		pq.Array(photos),
	).Scan(&listing.CreatedAt, &listing.UpdatedAt)
	return err
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	query := `
		SELECT
			id, user_id, title, description, price, property_type,
			city, province, address, bedrooms, bathrooms, land_area,
			building_area, photos, created_at, updated_at
		FROM listings
		WHERE id = $1
	`

	var listing models.Listing
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&listing.ID,
		&listing.UserID,
		&listing.Title,
		&listing.Description,
		&listing.Price,
		&listing.PropertyType,
		&listing.City,
		&listing.Province,
		&listing.Address,
		&listing.Bedrooms,
		&listing.Bathrooms,
		&listing.LandArea,
		&listing.BuildingArea,
		pq.Array(&listing.Photos),
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}

	return &listing, nil
}

func buildListingFilter(filter interfaces.ListingFilter) (string, []any) {
	var conditions []string
	var args []any
	argPos := 1

	add := func(cond string, value any) {
		conditions = append(conditions, fmt.Sprintf(cond, argPos))
		args = append(args, value)
		argPos++
	}

	if filter.City != "" {
		add("city = $%d", filter.City)
	}
	if filter.Province != "" {
		add("province = $%d", filter.Province)
	}
	if filter.PropertyType != "" {
		add("property_type = $%d", filter.PropertyType)
	}
	if filter.MinPrice > 0 {
		add("price >= $%d", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		add("price <= $%d", filter.MaxPrice)
	}
	if filter.Bedrooms > 0 {
		add("bedrooms >= $%d", filter.Bedrooms)
	}
	if filter.Query != "" {
		add("title ILIKE $%d", "%"+filter.Query+"%")
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *listingRepository) List(ctx context.Context, filter interfaces.ListingFilter) ([]*models.Listing, error) {
	where, args := buildListingFilter(filter)

	query := `
		SELECT
			id, user_id, title, description, price, property_type,
			city, province, address, bedrooms, bathrooms, land_area,
			building_area, photos, created_at, updated_at
		FROM listings
	` + where + " ORDER BY created_at DESC"

	argPos := len(args) + 1
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
		argPos++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		var listing models.Listing
		if err := rows.Scan(
			&listing.ID,
			&listing.UserID,
			&listing.Title,
			&listing.Description,
			&listing.Price,
			&listing.PropertyType,
			&listing.City,
			&listing.Province,
			&listing.Address,
			&listing.Bedrooms,
			&listing.Bathrooms,
			&listing.LandArea,
			&listing.BuildingArea,
			pq.Array(&listing.Photos),
			&listing.CreatedAt,
			&listing.UpdatedAt,
		); err != nil {
			return nil, err
		}
		listings = append(listings, &listing)
	}

	return listings, rows.Err()
}

func (r *listingRepository) Count(ctx context.Context, filter interfaces.ListingFilter) (int, error) {
	where, args := buildListingFilter(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM listings"+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *listingRepository) Update(ctx context.Context, id string, listing *models.Listing) error {
	query := `
		UPDATE listings
		SET title = $1, description = $2, price = $3, property_type = $4,
			city = $5, province = $6, address = $7, bedrooms = $8,
			bathrooms = $9, land_area = $10, building_area = $11,
			updated_at = NOW()
		WHERE id = $12
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		listing.Title,
		listing.Description,
		listing.Price,
		listing.PropertyType,
		listing.City,
		listing.Province,
		listing.Address,
		listing.Bedrooms,
		listing.Bathrooms,
		listing.LandArea,
		listing.BuildingArea,
		id,
	).Scan(&listing.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return err
	}
	return nil
}

func (r *listingRepository) AppendPhotos(ctx context.Context, id string, photos []string) error {
	query := `
		UPDATE listings
		SET photos = photos || $1, updated_at = NOW()
		WHERE id = $2
	`
	res, err := r.db.ExecContext(ctx, query, pq.Array(photos), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *listingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
