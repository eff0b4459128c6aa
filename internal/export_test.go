package internal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportXLSX_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	in := append(outputReceipts(), testReceipt("4", "02/02/2025", "0.10"), testReceipt("5", "02/03/2025", "1234.56"))
	require.NoError(t, ExportXLSX(path, in, usd()))

	receipts, err := LoadReceipts("xlsx-ledger:" + path)
	require.NoError(t, err)
	require.Len(t, receipts, len(in), "the total row is not a receipt")

	want := sortedReceipts(in)
	for i, r := range receipts {
		assert.Equal(t, want[i].Transaction, r.Transaction, "row %d", i)
		assert.Equal(t, want[i].Path, r.Path)
	}
}

func TestExportXLSX_TotalFormula(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	require.NoError(t, ExportXLSX(path, outputReceipts(), usd()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ledgerSheet}, f.GetSheetList())
	label, err := f.GetCellValue(ledgerSheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "Total", label)
	formula, err := f.GetCellFormula(ledgerSheet, "C5")
	require.NoError(t, err)
	assert.Equal(t, "SUM(C2:C4)", formula)
}

func TestExportXLSX_Styles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	require.NoError(t, ExportXLSX(path, outputReceipts(), usd()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellStyle(ledgerSheet, "A1")
	require.NoError(t, err)
	assert.NotZero(t, header)

	first, err := f.GetCellStyle(ledgerSheet, "C2")
	require.NoError(t, err)
	total, err := f.GetCellStyle(ledgerSheet, "C5")
	require.NoError(t, err)
	assert.NotZero(t, first)
	assert.Equal(t, first, total)

	width, err := f.GetColWidth(ledgerSheet, "D")
	require.NoError(t, err)
	assert.Equal(t, 60.0, width)
}

func TestExportXLSX_Unwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "ledger.xlsx")
	err := ExportXLSX(path, outputReceipts(), usd())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing "+path)
}

func TestParseXLSXLedger_RelativeFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edited.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]any{"Expenses to file"})
	f.SetSheetRow(sheet, "A3", &[]any{"order", "date", "amount", "file"})
	f.SetSheetRow(sheet, "A4", &[]any{"4711", "2025/01/15", "5.5", "scans/a.png"})
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	receipts, err := ParseXLSXLedger(path)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, filepath.Join(dir, "scans", "a.png"), receipts[0].Path)
	assert.Equal(t, "01/15/2025", receipts[0].Date.String())
	assert.Equal(t, "5.50", receipts[0].Amount)
}

func TestLedgerAmount(t *testing.T) {
	tests := []struct {
		raw, want string
	}{
		{"5.5", "5.50"},
		{"0.1", "0.10"},
		{"9", "9.00"},
		{"1234.56", "1234.56"},
		{"1.125", "1.125"},
		{"$ 7.5", "7.50"},
	}
	for _, tt := range tests {
		got, err := ledgerAmount(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "ledgerAmount(%q)", tt.raw)
	}

	_, err := ledgerAmount("n/a")
	assert.Error(t, err)
}

func TestParseXLSXLedger_MissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	f := excelize.NewFile()
	f.SetSheetRow(f.GetSheetName(0), "A1", &[]any{"Order", "Date"})
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := ParseXLSXLedger(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find required columns")
}

func TestMoneyFormat(t *testing.T) {
	assert.Equal(t, `#,##0.00 "USD"`, *moneyFormat(GetCurrency("USD")))
	assert.Equal(t, `#,##0 "JPY"`, *moneyFormat(GetCurrency("JPY")))
}
