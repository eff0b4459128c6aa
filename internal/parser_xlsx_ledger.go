package internal

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const ledgerDecimals = 2

// ParseXLSXLedger reads receipts from an Excel ledger, such as one written by
// ExportXLSX or edited by hand before replaying. The header row must contain
// Order, Date, Amount and File; rows without an order id (the total row) are
// skipped. Relative file paths are resolved against the ledger's directory.
func ParseXLSXLedger(path string) ([]Receipt, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in file")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet: %w", err)
	}

	// Find header row and column indices
	cols := map[string]int{}
	dataStartRow := -1
	for i, row := range rows {
		for j, cell := range row {
			for _, h := range ledgerHeader {
				if strings.EqualFold(strings.TrimSpace(cell), h) {
					cols[h] = j
				}
			}
		}
		if len(cols) == len(ledgerHeader) {
			dataStartRow = i + 1
			break
		}
		clear(cols)
	}
	if dataStartRow < 0 {
		return nil, fmt.Errorf("could not find required columns (%s)", strings.Join(ledgerHeader, ", "))
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	idCol, dateCol, amountCol, fileCol := cols["Order"], cols["Date"], cols["Amount"], cols["File"]
	maxCol := max(idCol, dateCol, amountCol, fileCol)

	var receipts []Receipt
	for i := dataStartRow; i < len(rows); i++ {
		row := rows[i]
		if len(row) <= maxCol {
			continue
		}
		id := strings.TrimSpace(row[idCol])
		if id == "" {
			continue
		}

		amount, err := ledgerAmount(row[amountCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		tx, err := NewTransaction(id, strings.TrimSpace(row[dateCol]), displayDateSep, amount)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		file := strings.TrimSpace(row[fileCol])
		if file == "" {
			return nil, fmt.Errorf("row %d: missing file", i+1)
		}
		if !filepath.IsAbs(file) {
			file = filepath.Join(base, file)
		}
		receipts = append(receipts, Receipt{Transaction: tx, Path: file})
	}

	return receipts, nil
}

// Numeric cells come back in shortest form ("5.5" for 5.50). ledgerAmount
// pads the fraction to cents so amounts match the receipt file names.
func ledgerAmount(raw string) (string, error) {
	amount, err := NormalizeAmount(raw)
	if err != nil {
		return "", err
	}
	whole, frac, _ := strings.Cut(amount, amountDecimalSep)
	if len(frac) < ledgerDecimals {
		frac += strings.Repeat("0", ledgerDecimals-len(frac))
	}
	return whole + amountDecimalSep + frac, nil
}

func init() {
	RegisterParser("xlsx-ledger", ParserFunc(ParseXLSXLedger))
}
