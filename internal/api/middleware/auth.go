package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
)

// Context keys set by Auth.
const (
	ContextActor = "actor"
	ContextRole  = "role"
)

// TokenResolver maps a bearer token to the actor currently holding it.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*domain.Actor, error)
}

// Auth resolves the bearer token and injects the actor into the context.
// A token that was rotated away is rejected like any other unknown token.
func Auth(resolver TokenResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			actor, err := resolver.ResolveToken(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session token")
			}

			c.Set(ContextActor, *actor)
			c.Set(ContextRole, actor.Role)

			return next(c)
		}
	}
}
