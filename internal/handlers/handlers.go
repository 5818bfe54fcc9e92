// Package handlers exposes the services over HTTP.
package handlers

import (
	"net/http"
	"strconv"

	"backoffice/internal/common"
	"backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// bindAndValidate decodes the request body into req and runs the struct validator.
// On failure the error response has already been written.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, common.SendClientError(c, "Invalid request format")
	}
	if err := c.Validate(req); err != nil {
		return false, common.SendValidationError(c, common.ProcessValidationErrors(err))
	}
	return true, nil
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := common.ValidateUUID(c.Param(name), name)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return id, nil
}

// tenant returns the caller's organization and profile. Routes using it sit behind
// RequireTenant.
func tenant(c echo.Context) (uuid.UUID, *models.Profile, error) {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return uuid.Nil, nil, echo.NewHTTPError(http.StatusForbidden, "Organization membership required")
	}
	profile, ok := common.GetProfileFromContext(ctx)
	if !ok {
		return uuid.Nil, nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return tenantID, profile, nil
}

func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}
