package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harvestlink/marketplace-api/internal/api/middleware"
	"github.com/harvestlink/marketplace-api/internal/core/domain"
)

// ctxActor returns the actor injected by the Auth middleware. Its absence
// means the route was wired without Auth, which is reported as 401.
func ctxActor(c echo.Context) (domain.Actor, error) {
	actor, ok := c.Get(middleware.ContextActor).(domain.Actor)
	if !ok || actor.ID == "" {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return actor, nil
}
