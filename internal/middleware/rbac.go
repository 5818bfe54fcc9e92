package middleware

import (
	"context"
	"net/http"
	"slices"

	"backoffice/internal/common"
	"backoffice/internal/config"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ModuleChecker interface {
	IsEnabled(ctx context.Context, organizationID uuid.UUID, key string) (bool, error)
}

// RequireRole admits callers whose profile has one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			profile, ok := common.GetProfileFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if !slices.Contains(roles, profile.Role) {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}

// RequireTenant admits callers that belong to an organization.
func RequireTenant() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := common.GetTenantIDFromContext(c.Request().Context()); !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Organization membership required")
			}
			return next(c)
		}
	}
}

// RequireModule admits requests only when the caller's organization has the module enabled.
func RequireModule(modules ModuleChecker, key string) echo.MiddlewareFunc {
	logger := config.GetLogger()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			tenantID, ok := common.GetTenantIDFromContext(ctx)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Organization membership required")
			}

			enabled, err := modules.IsEnabled(ctx, tenantID, key)
			if err != nil {
				config.LogError(logger, "middleware", "RequireModule", "check module", key, err)
				return echo.NewHTTPError(http.StatusInternalServerError, "Error checking module")
			}
			if !enabled {
				return echo.NewHTTPError(http.StatusForbidden, "Module "+key+" is not enabled for this organization")
			}
			return next(c)
		}
	}
}
