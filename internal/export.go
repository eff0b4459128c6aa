package internal

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const ledgerSheet = "Receipts"

// Ledger column headers, also recognized by the xlsx-ledger source
var ledgerHeader = []string{"Order", "Date", "Amount", "File"}

// ExportXLSX writes receipts oldest first to an Excel ledger with a total row.
func ExportXLSX(path string, receipts []Receipt, currency Currency) error {
	ordered := sortedReceipts(receipts)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ledgerSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	if err := f.SetSheetRow(ledgerSheet, "A1", &ledgerHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}
	if err := f.SetRowStyle(ledgerSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: moneyFormat(currency)})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	for i, r := range ordered {
		row := []any{r.ID, r.Date.String(), r.AmountValue(), r.Path}
		if err := f.SetSheetRow(ledgerSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("writing receipt %s: %w", r.ID, err)
		}
	}

	if len(ordered) > 0 {
		last := len(ordered) + 1
		totalRow := last + 1
		if err := f.SetCellValue(ledgerSheet, fmt.Sprintf("B%d", totalRow), "Total"); err != nil {
			return fmt.Errorf("writing total: %w", err)
		}
		if err := f.SetCellFormula(ledgerSheet, fmt.Sprintf("C%d", totalRow), fmt.Sprintf("SUM(C2:C%d)", last)); err != nil {
			return fmt.Errorf("writing total: %w", err)
		}
		if err := f.SetRowStyle(ledgerSheet, totalRow, totalRow, bold); err != nil {
			return fmt.Errorf("styling total: %w", err)
		}
		if err := f.SetCellStyle(ledgerSheet, "C2", fmt.Sprintf("C%d", totalRow), money); err != nil {
			return fmt.Errorf("styling amounts: %w", err)
		}
	}

	for _, w := range []struct {
		from, to string
		width    float64
	}{{"A", "C", 14}, {"D", "D", 60}} {
		if err := f.SetColWidth(ledgerSheet, w.from, w.to, w.width); err != nil {
			return fmt.Errorf("sizing columns: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func moneyFormat(currency Currency) *string {
	decimals := "0"
	if currency.digits > 0 {
		decimals += "." + strings.Repeat("0", currency.digits)
	}
	format := fmt.Sprintf(`#,##%s "%s"`, decimals, currency.Code)
	return &format
}
