package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/harvestlink/marketplace-api/internal/core/ports"
)

const headerIdempotencyKey = "Idempotency-Key"

type OrderHandler struct {
	orders ports.OrderService
}

func NewOrderHandler(orders ports.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Place orders a quantity from a listing. A repeated Idempotency-Key for the
// same listing returns the original order with status 200.
//
// @Summary      Place an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string             false  "Client-generated key"
// @Param        body             body      placeOrderRequest  true   "Order"
// @Success      201              {object}  placeOrderResponse
// @Success      200              {object}  placeOrderResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse  "Insufficient quantity"
// @Failure      422              {object}  errorResponse
// @Router       /v1/orders [post]
func (h *OrderHandler) Place(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req placeOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	key := strings.TrimSpace(c.Request().Header.Get(headerIdempotencyKey))
	if len(key) > 255 {
		return echo.NewHTTPError(http.StatusBadRequest, "idempotency key too long")
	}

	res, err := h.orders.PlaceOrder(c.Request().Context(), ports.PlaceOrderInput{
		BuyerID:        actor.ID,
		ListingID:      req.ListingID,
		Quantity:       req.Quantity,
		IdempotencyKey: key,
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if res.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, placeOrderResponse{
		Order:     toOrderResponse(res.Order),
		Remaining: res.Remaining,
	})
}

// List returns the caller's order history: purchases for a consumer, sales
// across their listings for a producer.
//
// @Summary      List my orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   orderResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	views, err := h.orders.ListOrders(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	out := make([]orderResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toOrderViewResponse(v))
	}
	return c.JSON(http.StatusOK, out)
}
