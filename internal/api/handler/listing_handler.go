package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/harvestlink/marketplace-api/internal/core/ports"
)

type ListingHandler struct {
	catalog ports.CatalogService
}

func NewListingHandler(catalog ports.CatalogService) *ListingHandler {
	return &ListingHandler{catalog: catalog}
}

// List returns every listing that still has stock.
//
// @Summary      Browse the catalog
// @Tags         listings
// @Produce      json
// @Success      200  {array}  listingResponse
// @Router       /v1/listings [get]
func (h *ListingHandler) List(c echo.Context) error {
	details, err := h.catalog.ListCatalog(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]listingResponse, 0, len(details))
	for _, d := range details {
		out = append(out, toListingDetailResponse(d))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one listing with its remaining quantity, sold out or not.
//
// @Summary      Get a listing
// @Tags         listings
// @Produce      json
// @Param        id   path      string  true  "Listing ID"
// @Success      200  {object}  listingResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/listings/{id} [get]
func (h *ListingHandler) Get(c echo.Context) error {
	detail, err := h.catalog.GetListing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListingDetailResponse(*detail))
}

// Create publishes a new listing owned by the calling producer.
//
// @Summary      Create a listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createListingRequest  true  "Listing"
// @Success      201   {object}  listingResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/listings [post]
func (h *ListingHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createListingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	listing, err := h.catalog.CreateListing(c.Request().Context(), ports.CreateListingInput{
		OwnerID:       actor.ID,
		Name:          req.Name,
		Description:   req.Description,
		UnitPrice:     req.UnitPrice,
		TotalQuantity: req.TotalQuantity,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toListingResponse(*listing))
}

// Availability reports whether quantity could be ordered right now. The
// answer is advisory; only placing the order reserves stock.
//
// @Summary      Check availability
// @Tags         listings
// @Produce      json
// @Param        id        path      string  true  "Listing ID"
// @Param        quantity  query     int     true  "Requested quantity"
// @Success      200       {object}  availabilityResponse
// @Failure      404       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Router       /v1/listings/{id}/availability [get]
func (h *ListingHandler) Availability(c echo.Context) error {
	qty, err := strconv.ParseInt(c.QueryParam("quantity"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be an integer")
	}

	res, err := h.catalog.CheckAvailability(c.Request().Context(), c.Param("id"), qty)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, availabilityResponse{
		ListingID: res.ListingID,
		Requested: res.Requested,
		Remaining: res.Remaining,
		Available: res.Available,
	})
}
