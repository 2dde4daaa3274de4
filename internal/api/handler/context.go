package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medbuddy/second-opinion-api/internal/core/domain"
)

// ctxIdentity extracts the verified identity injected by the Auth middleware
// and fast-fails before any service call: a route wired without the
// middleware must never reach a handler with an empty identity.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if id == "" || role == "" {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	email, _ := c.Get("email").(string)
	return domain.Identity{ID: id, Email: email, Role: role}, nil
}
