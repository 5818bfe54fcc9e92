package ledger

import (
	"fmt"
	"io"

	"backoffice/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	movementsSheet = "Movimientos"
	totalsSheet    = "Totales"
)

// Export writes an xlsx workbook with the rows visible under view and the projected totals.
func Export(w io.Writer, txs []*models.Transaction, totals TotalsView, view View) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", movementsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(totalsSheet); err != nil {
		return err
	}

	headers := []any{"Fecha", "Descripción", "Tipo", "Moneda", "Monto"}
	if view.Mode == ModeReal {
		headers = append(headers, "Fiscal")
	}
	if err := f.SetSheetRow(movementsSheet, "A1", &headers); err != nil {
		return err
	}

	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}
	if err := f.SetColStyle(movementsSheet, "E", amountStyle); err != nil {
		return err
	}

	row := 2
	for _, tx := range view.Filter(txs) {
		values := []any{tx.OccurredAt.Format("2006-01-02"), tx.Description, typeLabel(tx.Type), string(tx.Currency)}
		if err := f.SetSheetRow(movementsSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
		// Amounts go in as numeric cells carrying the exact decimal text.
		amountCell := fmt.Sprintf("E%d", row)
		if err := f.SetCellDefault(movementsSheet, amountCell, tx.SignedAmount().StringFixed(2)); err != nil {
			return err
		}
		if err := f.SetCellStyle(movementsSheet, amountCell, amountCell, amountStyle); err != nil {
			return err
		}
		if view.Mode == ModeReal {
			if err := f.SetCellStr(movementsSheet, fmt.Sprintf("F%d", row), fiscalLabel(tx.IsFiscal)); err != nil {
				return err
			}
		}
		row++
	}

	totalsHeaders := []any{"Moneda", "Balance fiscal", "Ingresos", "Egresos"}
	if view.Mode == ModeReal {
		totalsHeaders = append(totalsHeaders, "Balance real")
	}
	if err := f.SetSheetRow(totalsSheet, "A1", &totalsHeaders); err != nil {
		return err
	}
	for i, currency := range models.Currencies {
		ct := totals.ARS
		if currency == models.CurrencyUSD {
			ct = totals.USD
		}
		values := []any{
			string(currency),
			FormatAmount(currency, ct.FiscalBalance),
			FormatAmount(currency, ct.Income),
			FormatAmount(currency, ct.Expense),
		}
		if ct.RealBalance != nil {
			values = append(values, FormatAmount(currency, *ct.RealBalance))
		}
		if err := f.SetSheetRow(totalsSheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func typeLabel(t models.TransactionType) string {
	if t == models.TransactionExpense {
		return "Egreso"
	}
	return "Ingreso"
}

func fiscalLabel(fiscal bool) string {
	if fiscal {
		return "Sí"
	}
	return "No"
}
