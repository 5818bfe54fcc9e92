package handlers

import (
	"net/http"
	"time"

	"backoffice/internal/common"
	"backoffice/internal/middleware"
	"backoffice/internal/models"
	"backoffice/internal/services"

	"github.com/labstack/echo/v4"
)

type TransactionHandlers struct {
	transactions services.TransactionService
	loc          *time.Location
}

func NewTransactionHandlers(transactions services.TransactionService, loc *time.Location) *TransactionHandlers {
	return &TransactionHandlers{transactions: transactions, loc: loc}
}

// ListTransactions godoc
// @Summary   List transactions visible under the privacy view
// @Tags      transactions
// @Produce   json
// @Security  BearerAuth
// @Param     view         query  string  false  "fiscal or real"
// @Param     from         query  string  false  "YYYY-MM-DD"
// @Param     to           query  string  false  "YYYY-MM-DD"
// @Param     currency     query  string  false  "ARS or USD"
// @Param     type         query  string  false  "income or expense"
// @Param     category_id  query  string  false  "Category ID"
// @Param     limit        query  int     false  "Page size"
// @Param     offset       query  int     false  "Offset"
// @Success   200  {object}  map[string]interface{}
// @Router    /transactions [get]
func (h *TransactionHandlers) ListTransactions(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	from, to, err := dateRange(c, h.loc)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return err
	}
	limit, offset, err = common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	filter := models.TransactionFilter{From: from, To: to, Limit: limit, Offset: offset}
	if raw := c.QueryParam("currency"); raw != "" {
		currency := models.Currency(raw)
		filter.Currency = &currency
	}
	if raw := c.QueryParam("type"); raw != "" {
		txType := models.TransactionType(raw)
		filter.Type = &txType
	}
	if raw := c.QueryParam("category_id"); raw != "" {
		categoryID, err := common.ValidateUUID(raw, "category_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filter.CategoryID = &categoryID
	}

	view := middleware.GetView(c)
	txs, err := h.transactions.List(c.Request().Context(), orgID, filter, view)
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"view":         view.Mode,
		"limit":        limit,
		"offset":       offset,
	})
}

func (h *TransactionHandlers) GetTransaction(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	tx, err := h.transactions.Get(c.Request().Context(), orgID, id, middleware.GetView(c))
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusOK, tx)
}

// CreateTransaction godoc
// @Summary   Record a transaction
// @Tags      transactions
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      services.TransactionRequest  true  "Transaction"
// @Success   201   {object}  models.Transaction
// @Failure   403   {object}  common.ErrorResponse
// @Router    /transactions [post]
func (h *TransactionHandlers) CreateTransaction(c echo.Context) error {
	orgID, profile, err := tenant(c)
	if err != nil {
		return err
	}
	var req services.TransactionRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	tx, err := h.transactions.Create(c.Request().Context(), orgID, profile.ID, middleware.GetView(c), &req)
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, tx)
}

func (h *TransactionHandlers) UpdateTransaction(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req services.TransactionRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	tx, err := h.transactions.Update(c.Request().Context(), orgID, id, middleware.GetView(c), &req)
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusOK, tx)
}

func (h *TransactionHandlers) DeleteTransaction(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.transactions.Delete(c.Request().Context(), orgID, id, middleware.GetView(c)); err != nil {
		return common.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
