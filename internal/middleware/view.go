package middleware

import (
	"errors"
	"net/http"

	"backoffice/internal/common"
	"backoffice/internal/ledger"

	"github.com/labstack/echo/v4"
)

const (
	ViewKey    = "ledger_view"
	ViewHeader = "X-Ledger-View"
)

// ResolveView picks the privacy view from ?view= or the X-Ledger-View header and checks it
// against the caller's capability. Handlers read it with GetView.
func ResolveView() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			profile, ok := common.GetProfileFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}

			requested := c.QueryParam("view")
			if requested == "" {
				requested = c.Request().Header.Get(ViewHeader)
			}
			view, err := ledger.ResolveView(requested, profile.RealViewAllowed())
			switch {
			case errors.Is(err, ledger.ErrRealViewForbidden):
				return echo.NewHTTPError(http.StatusForbidden, err.Error())
			case err != nil:
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}

			c.Set(ViewKey, view)
			c.Response().Header().Set(ViewHeader, string(view.Mode))
			return next(c)
		}
	}
}

// GetView returns the resolved view. Without ResolveView in the chain it is the fiscal view.
func GetView(c echo.Context) ledger.View {
	if view, ok := c.Get(ViewKey).(ledger.View); ok {
		return view
	}
	return ledger.View{Mode: ledger.ModeFiscal}
}
