package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"backoffice/internal/common"
	"backoffice/internal/config"
	"backoffice/internal/ledger"
	"backoffice/internal/middleware"
	"backoffice/internal/models"
	"backoffice/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type LedgerReader interface {
	Totals(ctx context.Context, organizationID uuid.UUID, view ledger.View) ledger.TotalsView
	Dashboard(ctx context.Context, organizationID uuid.UUID, view ledger.View, from, to *time.Time) *ledger.Dashboard
}

type LedgerHandlers struct {
	ledger       LedgerReader
	transactions services.TransactionService
	loc          *time.Location
}

func NewLedgerHandlers(reader LedgerReader, transactions services.TransactionService, loc *time.Location) *LedgerHandlers {
	return &LedgerHandlers{ledger: reader, transactions: transactions, loc: loc}
}

// dateRange reads ?from= and ?to= as calendar days in loc. to is inclusive.
func dateRange(c echo.Context, loc *time.Location) (*time.Time, *time.Time, error) {
	from, err := common.ParseDate(c.QueryParam("from"), "from", loc)
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	to, err := common.ParseDate(c.QueryParam("to"), "to", loc)
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if to != nil {
		end := to.AddDate(0, 0, 1)
		to = &end
	}
	if from != nil && to != nil {
		if err := common.ValidateDateRange(*from, *to); err != nil {
			return nil, nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return from, to, nil
}

// Totals godoc
// @Summary   Balances per currency under the privacy view
// @Tags      ledger
// @Produce   json
// @Security  BearerAuth
// @Param     view  query     string  false  "fiscal or real"
// @Success   200   {object}  ledger.TotalsView
// @Router    /ledger/totals [get]
func (h *LedgerHandlers) Totals(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.ledger.Totals(c.Request().Context(), orgID, middleware.GetView(c)))
}

// Dashboard godoc
// @Summary   Totals, monthly series and latest transactions
// @Tags      ledger
// @Produce   json
// @Security  BearerAuth
// @Param     view  query     string  false  "fiscal or real"
// @Param     from  query     string  false  "YYYY-MM-DD"
// @Param     to    query     string  false  "YYYY-MM-DD"
// @Success   200   {object}  ledger.Dashboard
// @Router    /ledger/dashboard [get]
func (h *LedgerHandlers) Dashboard(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	from, to, err := dateRange(c, h.loc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.ledger.Dashboard(c.Request().Context(), orgID, middleware.GetView(c), from, to))
}

// Export godoc
// @Summary   Download the ledger as an xlsx workbook
// @Tags      ledger
// @Produce   application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security  BearerAuth
// @Param     view  query  string  false  "fiscal or real"
// @Param     from  query  string  false  "YYYY-MM-DD"
// @Param     to    query  string  false  "YYYY-MM-DD"
// @Success   200   {file}  binary
// @Router    /ledger/export [get]
func (h *LedgerHandlers) Export(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	from, to, err := dateRange(c, h.loc)
	if err != nil {
		return err
	}
	view := middleware.GetView(c)
	ctx := c.Request().Context()

	txs, err := h.transactions.List(ctx, orgID, models.TransactionFilter{From: from, To: to}, view)
	if err != nil {
		return common.HTTPError(err)
	}

	var buf bytes.Buffer
	if err := ledger.Export(&buf, txs, ledger.Aggregate(txs).Project(view), view); err != nil {
		config.LogError(config.GetLogger(), "handlers", "Export", "build workbook", orgID.String(), err)
		return common.SendServerError(c, "Failed to build export")
	}

	filename := fmt.Sprintf("movimientos-%s-%s.xlsx", view.Mode, time.Now().In(h.loc).Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
