package handlers

import (
	"net/http"

	"backoffice/internal/common"
	"backoffice/internal/services"

	"github.com/labstack/echo/v4"
)

const maxLogoUpload = 2 << 20

// OrganizationHandlers serves the superadmin organization console.
type OrganizationHandlers struct {
	organizations services.OrganizationService
	modules       services.ModuleService
}

func NewOrganizationHandlers(organizations services.OrganizationService, modules services.ModuleService) *OrganizationHandlers {
	return &OrganizationHandlers{organizations: organizations, modules: modules}
}

// ListOrganizations godoc
// @Summary   List organizations
// @Tags      organizations
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}  models.Organization
// @Router    /admin/organizations [get]
func (h *OrganizationHandlers) ListOrganizations(c echo.Context) error {
	orgs, err := h.organizations.List(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Failed to list organizations")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"organizations": orgs,
		"total":         len(orgs),
	})
}

// ProvisionOrganization godoc
// @Summary   Provision an organization with its admin account
// @Tags      organizations
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      services.ProvisionOrganizationRequest  true  "Organization"
// @Success   201   {object}  models.Organization
// @Failure   400   {object}  common.ActionResult
// @Router    /admin/organizations [post]
func (h *OrganizationHandlers) ProvisionOrganization(c echo.Context) error {
	var req services.ProvisionOrganizationRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	org, err := h.organizations.Provision(c.Request().Context(), &req)
	if err != nil {
		return c.JSON(common.HTTPError(err).Code, common.Failed(err))
	}
	return c.JSON(http.StatusCreated, org)
}

func (h *OrganizationHandlers) GetOrganization(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	org, err := h.organizations.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusOK, org)
}

func (h *OrganizationHandlers) UpdateOrganization(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req services.UpdateOrganizationRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	org, err := h.organizations.Update(c.Request().Context(), id, &req)
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusOK, org)
}

// UploadLogo godoc
// @Summary   Replace the organization logo
// @Tags      organizations
// @Accept    multipart/form-data
// @Produce   json
// @Security  BearerAuth
// @Param     id    path      string  true  "Organization ID"
// @Param     logo  formData  file    true  "PNG, JPEG, WebP or SVG up to 2 MB"
// @Success   200   {object}  models.Organization
// @Router    /admin/organizations/{id}/logo [post]
func (h *OrganizationHandlers) UploadLogo(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	file, err := c.FormFile("logo")
	if err != nil {
		return common.SendClientError(c, "logo file is required")
	}
	if file.Size > maxLogoUpload {
		return common.SendClientError(c, "logo must be at most 2 MB")
	}
	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read upload")
	}
	defer src.Close()

	org, err := h.organizations.UploadLogo(c.Request().Context(), id, file.Filename, file.Header.Get(echo.HeaderContentType), src, file.Size)
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusOK, org)
}

type SetModulesRequest struct {
	Modules []string `json:"modules"`
}

func (h *OrganizationHandlers) SetModules(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req SetModulesRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if err := h.organizations.SetModules(c.Request().Context(), id, req.Modules); err != nil {
		return c.JSON(common.HTTPError(err).Code, common.Failed(err))
	}
	return c.JSON(http.StatusOK, common.Ok("modules updated"))
}

func (h *OrganizationHandlers) ListModuleCatalog(c echo.Context) error {
	catalog, err := h.modules.ListCatalog(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Failed to list modules")
	}
	return c.JSON(http.StatusOK, catalog)
}

func (h *OrganizationHandlers) ListOrganizationModules(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	enabled, err := h.modules.ListEnabled(c.Request().Context(), id)
	if err != nil {
		return common.SendServerError(c, "Failed to list modules")
	}
	return c.JSON(http.StatusOK, enabled)
}

// DeleteOrganization godoc
// @Summary   Delete an organization and everything it owns
// @Tags      organizations
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      string  true  "Organization ID"
// @Success   200  {object}  deprovision.Result
// @Failure   404  {object}  deprovision.Result
// @Failure   409  {object}  deprovision.Result
// @Failure   500  {object}  deprovision.Result
// @Router    /admin/organizations/{id} [delete]
func (h *OrganizationHandlers) DeleteOrganization(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	result := h.organizations.Deprovision(c.Request().Context(), id)
	if !result.Success {
		status := http.StatusInternalServerError
		if result.Err != nil {
			status = common.HTTPError(result.Err).Code
		}
		return c.JSON(status, result)
	}
	return c.JSON(http.StatusOK, result)
}
