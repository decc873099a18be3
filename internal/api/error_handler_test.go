package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
)

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest},
		{"invalid input", domain.InvalidInputf("quantity must be positive"), http.StatusUnprocessableEntity},
		{"duplicate actor", fmt.Errorf("register: %w", domain.ErrDuplicateActor), http.StatusConflict},
		{"actor not found", domain.ErrActorNotFound, http.StatusNotFound},
		{"listing not found", domain.ErrListingNotFound, http.StatusNotFound},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("create listing: %w", domain.ErrForbidden), http.StatusForbidden},
		{"store timeout on a live request", fmt.Errorf("append order: %w", context.DeadlineExceeded), http.StatusInternalServerError},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	handle := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/orders", nil), rec)

			handle(tt.err, c)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error == "" {
				t.Fatal("expected an error message")
			}
		})
	}
}

func TestHTTPErrorHandler_AbandonedRequest(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"cancelled", fmt.Errorf("place order: %w", context.Canceled)},
		{"deadline", context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			e := echo.New()
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/orders", nil).WithContext(ctx)
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("expected 503, got %d", rec.Code)
			}
		})
	}
}

func TestHTTPErrorHandler_InsufficientQuantity(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/orders", nil), rec)

	err := fmt.Errorf("place order: %w", &domain.InsufficientQuantityError{Requested: 7, Available: 6})
	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Requested == nil || *body.Requested != 7 || body.Available == nil || *body.Available != 6 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHTTPErrorHandler_UnexpectedErrorDoesNotLeak(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/trends", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("pq: password authentication failed"), c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Error != "internal server error" {
		t.Fatalf("leaked error detail: %q", body.Error)
	}
}
