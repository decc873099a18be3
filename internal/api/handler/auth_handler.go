package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
	"github.com/harvestlink/marketplace-api/internal/core/ports"
)

type AuthHandler struct {
	identity ports.IdentityService
}

func NewAuthHandler(identity ports.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// Register creates a producer or consumer and returns its first session token.
//
// @Summary      Register an actor
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Display name and role"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := h.identity.Register(c.Request().Context(), req.DisplayName, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toSessionResponse(session))
}

// Login rotates the session token of an existing actor. The previous token
// stops working immediately.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Display name and role"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	session, err := h.identity.Authenticate(c.Request().Context(), req.DisplayName, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}
