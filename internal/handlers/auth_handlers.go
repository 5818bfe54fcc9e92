package handlers

import (
	"context"
	"errors"
	"net/http"

	"backoffice/internal/common"
	"backoffice/internal/identity"
	"backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type SignInService interface {
	SignIn(ctx context.Context, email, password string) (*identity.Session, error)
}

type EnabledModules interface {
	ListEnabled(ctx context.Context, organizationID uuid.UUID) ([]*models.OrganizationModule, error)
}

type AuthHandlers struct {
	identity SignInService
	modules  EnabledModules
}

func NewAuthHandlers(identity SignInService, modules EnabledModules) *AuthHandlers {
	return &AuthHandlers{identity: identity, modules: modules}
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignIn godoc
// @Summary      Sign in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      SignInRequest  true  "Credentials"
// @Success      200   {object}  identity.Session
// @Failure      401   {object}  common.ErrorResponse
// @Router       /auth/sign-in [post]
func (h *AuthHandlers) SignIn(c echo.Context) error {
	var req SignInRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	session, err := h.identity.SignIn(c.Request().Context(), req.Email, req.Password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		return common.SendUnauthorizedError(c)
	}
	if err != nil {
		return common.SendServerError(c, "Failed to sign in")
	}
	return c.JSON(http.StatusOK, session)
}

type MeResponse struct {
	Profile *models.Profile `json:"profile"`
	Modules []string        `json:"modules"`
}

// Me godoc
// @Summary      Current profile and enabled modules
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  MeResponse
// @Router       /auth/me [get]
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()
	profile, ok := common.GetProfileFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	resp := MeResponse{Profile: profile, Modules: []string{}}
	if profile.OrganizationID != nil {
		enabled, err := h.modules.ListEnabled(ctx, *profile.OrganizationID)
		if err != nil {
			return common.SendServerError(c, "Failed to load modules")
		}
		for _, m := range enabled {
			resp.Modules = append(resp.Modules, m.Key)
		}
	}
	return c.JSON(http.StatusOK, resp)
}
