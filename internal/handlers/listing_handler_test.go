package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"iklan/internal/auth"
	"iklan/internal/config"
	"iklan/internal/middleware"
	"iklan/internal/repository"
)

var testCodec = auth.NewTokenCodec("dev", time.Hour)

// newListingRouter mounts the listing handler the way production routes do:
// public reads, gated writes.
func newListingRouter(t *testing.T, db *sql.DB) *chi.Mux {
	t.Helper()
	h := NewListingHandler(repository.NewListingRepository(db), &config.S3Config{})

	r := chi.NewRouter()
	r.Route("/iklan", func(r chi.Router) {
		r.Get("/", h.ListListings)
		r.With(middleware.JWTAuth(testCodec)).Post("/", h.CreateListing)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetListing)
			r.Group(func(r chi.Router) {
				r.Use(middleware.JWTAuth(testCodec))
				r.Put("/", h.UpdateListing)
				r.Delete("/", h.DeleteListing)
				r.Post("/photos", h.UploadPhotos)
			})
		})
	})
	return r
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	signed, err := testCodec.Issue(userID, userID+"@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return "Bearer " + signed
}

func listingRows(ownerID string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "user_id", "title", "description", "price", "property_type",
		"city", "province", "address", "bedrooms", "bathrooms", "land_area",
		"building_area", "photos", "created_at", "updated_at",
	}).AddRow("l1", ownerID, "Rumah minimalis", "", 850000000, "rumah",
		"Bandung", "Jawa Barat", "", 3, 2, 120, 90, "{}", now, now)
}

func TestCreateListingRequiresToken(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	r := newListingRouter(t, db)

	body, _ := json.Marshal(map[string]any{
		"title": "Rumah minimalis", "price": 850000000,
		"property_type": "rumah", "city": "Bandung",
	})
	req := httptest.NewRequest(http.MethodPost, "/iklan/", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestCreateListingSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("INSERT INTO listings").WillReturnRows(
		sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now().UTC(), time.Now().UTC()),
	)

	r := newListingRouter(t, db)

	body, _ := json.Marshal(map[string]any{
		"title": "Rumah minimalis", "price": 850000000,
		"property_type": "rumah", "city": "Bandung", "bedrooms": 3,
	})
	req := httptest.NewRequest(http.MethodPost, "/iklan/", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerFor(t, "u1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["user_id"] != "u1" {
		t.Fatalf("expected owner u1, got %v", resp["user_id"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateListingValidation(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	r := newListingRouter(t, db)

	body, _ := json.Marshal(map[string]any{
		"title": "ok", "price": 0, "property_type": "kastil", "city": "",
	})
	req := httptest.NewRequest(http.MethodPost, "/iklan/", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerFor(t, "u1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		FieldErrors map[string]string `json:"fieldErrors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, field := range []string{"title", "price", "property_type", "city"} {
		if resp.FieldErrors[field] == "" {
			t.Fatalf("expected field error for %s, got %v", field, resp.FieldErrors)
		}
	}
}

func TestGetListingNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM listings").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	r := newListingRouter(t, db)

	req := httptest.NewRequest(http.MethodGet, "/iklan/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "not_found" {
		t.Fatalf("expected not_found, got %v", resp)
	}
}

func TestListListingsAppliesFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM listings\s+WHERE city = \$1 AND price <= \$2`).
		WithArgs("Bandung", int64(1000000000), 20).
		WillReturnRows(listingRows("u1"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM listings WHERE city = \$1 AND price <= \$2`).
		WithArgs("Bandung", int64(1000000000)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	r := newListingRouter(t, db)

	req := httptest.NewRequest(http.MethodGet, "/iklan/?city=Bandung&max_price=1000000000", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		Data  []map[string]any `json:"data"`
		Total int              `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 1 || resp.Total != 1 {
		t.Fatalf("expected one listing, got %+v", resp)
	}
	if resp.Data[0]["city"] != "Bandung" {
		t.Fatalf("unexpected listing: %v", resp.Data[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateListingForbiddenForNonOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM listings").WithArgs("l1").WillReturnRows(listingRows("u2"))

	r := newListingRouter(t, db)

	body, _ := json.Marshal(map[string]any{"price": 900000000})
	req := httptest.NewRequest(http.MethodPut, "/iklan/l1", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerFor(t, "u1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "forbidden" {
		t.Fatalf("expected forbidden, got %v", resp)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateListingAppliesPartialFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM listings").WithArgs("l1").WillReturnRows(listingRows("u1"))
	mock.ExpectQuery("UPDATE listings").
		WithArgs("Rumah minimalis", "", int64(900000000), "rumah", "Bandung",
			"Jawa Barat", "", 3, 2, 120, 90, "l1").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now().UTC()))

	r := newListingRouter(t, db)

	body, _ := json.Marshal(map[string]any{"price": 900000000})
	req := httptest.NewRequest(http.MethodPut, "/iklan/l1", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerFor(t, "u1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["price"] != float64(900000000) {
		t.Fatalf("expected updated price, got %v", resp["price"])
	}
	if resp["title"] != "Rumah minimalis" {
		t.Fatalf("untouched field changed: %v", resp["title"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteListingSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM listings").WithArgs("l1").WillReturnRows(listingRows("u1"))
	mock.ExpectExec("DELETE FROM listings").WithArgs("l1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := newListingRouter(t, db)

	req := httptest.NewRequest(http.MethodDelete, "/iklan/l1", nil)
	req.Header.Set("Authorization", bearerFor(t, "u1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUploadPhotosRejectsEmptyForm(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM listings").WithArgs("l1").WillReturnRows(listingRows("u1"))

	r := newListingRouter(t, db)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("unused", "x")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/iklan/l1/photos", &buf)
	req.Header.Set("Authorization", bearerFor(t, "u1"))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
