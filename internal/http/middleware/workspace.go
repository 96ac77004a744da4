package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequireWorkspace middleware ensures a workspace scope is present on the
// request. All workspace data access below this middleware is scoped by it.
func RequireWorkspace() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			workspaceID := c.Get("workspace_id")
			if workspaceID == nil {
				return echo.NewHTTPError(http.StatusForbidden, "Workspace scope required")
			}
			if id, ok := workspaceID.(uuid.UUID); !ok || id == uuid.Nil {
				return echo.NewHTTPError(http.StatusForbidden, "Invalid workspace scope")
			}
			return next(c)
		}
	}
}
