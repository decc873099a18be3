package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harvestlink/marketplace-api/internal/core/ports"
)

type TrendsHandler struct {
	trends ports.TrendsService
}

func NewTrendsHandler(trends ports.TrendsService) *TrendsHandler {
	return &TrendsHandler{trends: trends}
}

// Get returns average price and total ordered quantity per product name.
//
// @Summary      Market trends
// @Tags         trends
// @Produce      json
// @Success      200  {object}  map[string]trendResponse
// @Router       /v1/trends [get]
func (h *TrendsHandler) Get(c echo.Context) error {
	trends, err := h.trends.ComputeTrends(c.Request().Context())
	if err != nil {
		return err
	}
	out := make(map[string]trendResponse, len(trends))
	for name, t := range trends {
		out[name] = trendResponse{
			AveragePrice:         t.AveragePrice,
			TotalOrderedQuantity: t.TotalOrderedQuantity,
		}
	}
	return c.JSON(http.StatusOK, out)
}
