package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"backoffice/internal/common"
	"backoffice/internal/config"
	"backoffice/internal/identity"
	"backoffice/internal/models"
	"backoffice/internal/repositories"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// ClaimsKey is the echo context key holding the verified *identity.Claims.
const ClaimsKey = "claims"

var (
	errNoProfile      = errors.New("account has no profile")
	errProfileBackend = errors.New("profile lookup failed")
)

type ProfileLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// Authenticate verifies the bearer token and resolves the caller's profile. The profile,
// its account ID and its organization ID are stored on the request context.
func Authenticate(verifier identity.Verifier, profiles ProfileLoader) echo.MiddlewareFunc {
	logger := config.GetLogger()
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: ClaimsKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			claims, err := verifier.Verify(auth)
			if err != nil {
				return nil, err
			}
			accountID, err := claims.AccountID()
			if err != nil {
				return nil, err
			}

			ctx := c.Request().Context()
			profile, err := profiles.GetByID(ctx, accountID)
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, errNoProfile
			}
			if err != nil {
				config.LogError(logger, "middleware", "Authenticate", "load profile", accountID.String(), err)
				return nil, fmt.Errorf("%w: %v", errProfileBackend, err)
			}

			c.SetRequest(c.Request().WithContext(common.WithProfile(ctx, profile)))
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var extractErr *echo.HTTPError
			switch {
			case errors.As(err, &extractErr):
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing or malformed token")
			case errors.Is(err, errNoProfile):
				return echo.NewHTTPError(http.StatusUnauthorized, errNoProfile.Error())
			case errors.Is(err, errProfileBackend):
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load profile")
			default:
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
		},
	})
}

// GetClaims returns the verified token claims of the request.
func GetClaims(c echo.Context) (*identity.Claims, bool) {
	claims, ok := c.Get(ClaimsKey).(*identity.Claims)
	return claims, ok
}
