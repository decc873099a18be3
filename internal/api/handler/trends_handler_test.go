package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
)

func TestTrendsHandler_Get(t *testing.T) {
	stub := &stubTrends{trends: map[string]domain.Trend{
		"Tomato": {AveragePrice: decimal.NewFromInt(3), TotalOrderedQuantity: 8},
	}}
	h := NewTrendsHandler(stub)

	c, rec := newContext(http.MethodGet, "/v1/trends", "", nil)
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]trendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	got := resp["Tomato"]
	if !got.AveragePrice.Equal(decimal.NewFromInt(3)) || got.TotalOrderedQuantity != 8 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTrendsHandler_Get_Error(t *testing.T) {
	boom := errors.New("boom")
	h := NewTrendsHandler(&stubTrends{err: boom})

	c, _ := newContext(http.MethodGet, "/v1/trends", "", nil)
	if err := h.Get(c); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
