package handlers

import (
	"net/http"

	"backoffice/internal/common"
	"backoffice/internal/services"

	"github.com/labstack/echo/v4"
)

// CatalogHandlers serves categories and payees.
type CatalogHandlers struct {
	catalog services.CatalogService
}

func NewCatalogHandlers(catalog services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

func (h *CatalogHandlers) ListCategories(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	categories, err := h.catalog.ListCategories(c.Request().Context(), orgID)
	if err != nil {
		return common.SendServerError(c, "Failed to list categories")
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandlers) CreateCategory(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	var req services.CategoryRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	category, err := h.catalog.CreateCategory(c.Request().Context(), orgID, &req)
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandlers) UpdateCategory(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req services.CategoryRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	category, err := h.catalog.UpdateCategory(c.Request().Context(), orgID, id, &req)
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusOK, category)
}

func (h *CatalogHandlers) DeleteCategory(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteCategory(c.Request().Context(), orgID, id); err != nil {
		return common.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandlers) ListPayees(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	payees, err := h.catalog.ListPayees(c.Request().Context(), orgID)
	if err != nil {
		return common.SendServerError(c, "Failed to list payees")
	}
	return c.JSON(http.StatusOK, payees)
}

func (h *CatalogHandlers) CreatePayee(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	var req services.PayeeRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	payee, err := h.catalog.CreatePayee(c.Request().Context(), orgID, &req)
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, payee)
}

func (h *CatalogHandlers) UpdatePayee(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req services.PayeeRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	payee, err := h.catalog.UpdatePayee(c.Request().Context(), orgID, id, &req)
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusOK, payee)
}

func (h *CatalogHandlers) DeletePayee(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeletePayee(c.Request().Context(), orgID, id); err != nil {
		return common.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
