package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// JSONOutput is the root JSON output object. Its receipts list is a valid
// simple-json manifest.
type JSONOutput struct {
	Receipts []SimpleJSONReceipt `json:"receipts"`
	Summary  JSONSummary         `json:"summary"`
}

// JSONSummary contains aggregate statistics
type JSONSummary struct {
	Count     int     `json:"count"`
	Total     float64 `json:"total"`
	Currency  string  `json:"currency"`
	FirstDate string  `json:"first_date,omitempty"`
	LastDate  string  `json:"last_date,omitempty"`
	Skipped   int     `json:"skipped,omitempty"`
}

func sortedReceipts(receipts []Receipt) []Receipt {
	ordered := slices.Clone(receipts)
	SortOldestFirst(ordered)
	return ordered
}

func totalAmount(receipts []Receipt) float64 {
	var total float64
	for _, r := range receipts {
		total += r.AmountValue()
	}
	return total
}

// amountBounds returns the smallest and largest amount of non-empty receipts
func amountBounds(receipts []Receipt) (lo, hi float64) {
	lo, hi = receipts[0].AmountValue(), receipts[0].AmountValue()
	for _, r := range receipts[1:] {
		lo = min(lo, r.AmountValue())
		hi = max(hi, r.AmountValue())
	}
	return lo, hi
}

// PrintReceiptsJSON writes receipts oldest first, with a summary
func PrintReceiptsJSON(w io.Writer, receipts []Receipt, skipped []string, currency Currency) error {
	ordered := sortedReceipts(receipts)

	out := JSONOutput{
		Receipts: make([]SimpleJSONReceipt, 0, len(ordered)),
		Summary: JSONSummary{
			Count:    len(ordered),
			Total:    totalAmount(ordered),
			Currency: currency.Code,
			Skipped:  len(skipped),
		},
	}
	for _, r := range ordered {
		out.Receipts = append(out.Receipts, SimpleJSONReceipt{
			ID:     r.ID,
			Date:   r.Date.String(),
			Amount: r.Amount,
			File:   r.Path,
		})
	}
	if len(ordered) > 0 {
		out.Summary.FirstDate = ordered[0].Date.String()
		out.Summary.LastDate = ordered[len(ordered)-1].Date.String()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// PrintReceiptsTable writes receipts oldest first as a formatted table
func PrintReceiptsTable(w io.Writer, receipts []Receipt, skipped []string, currency Currency) {
	ordered := sortedReceipts(receipts)

	fmt.Fprintf(w, "Found %d receipts", len(ordered))
	if len(skipped) > 0 {
		fmt.Fprintf(w, " (%d other files ignored)", len(skipped))
	}
	fmt.Fprintln(w)
	if len(ordered) == 0 {
		return
	}
	fmt.Fprintf(w, "Range: %s to %s\n", ordered[0].Date, ordered[len(ordered)-1].Date)
	if lo, hi := amountBounds(ordered); lo == hi {
		fmt.Fprintf(w, "Amount: %s each\n\n", currency.Format(lo))
	} else {
		fmt.Fprintf(w, "Amounts: %s\n\n", currency.FormatRange(lo, hi))
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Order", "Date", "Amount", "File"})

	for _, r := range ordered {
		t.AppendRow(table.Row{r.ID, r.Date.String(), currency.Format(r.AmountValue()), filepath.Base(r.Path)})
	}

	t.AppendSeparator()
	t.AppendFooter(table.Row{"", text.Bold.Sprint("Total"), text.Bold.Sprint(currency.Format(totalAmount(ordered))), ""})

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})

	t.Render()
}

// PrintCaptureSummary reports what a capture run saved
func PrintCaptureSummary(w io.Writer, report CaptureReport, currency Currency) {
	if len(report.Receipts) == 0 {
		fmt.Fprintf(w, "%s on %d pages", text.FgHiBlack.Sprint("No new receipts"), report.Pages)
	} else {
		fmt.Fprintf(w, "Captured %s receipts from %d pages", text.FgGreen.Sprintf("%d new", len(report.Receipts)), report.Pages)
	}
	if report.Filtered > 0 {
		fmt.Fprintf(w, ", %d skipped by price filter", report.Filtered)
	}
	fmt.Fprintln(w)
	if len(report.Receipts) > 0 {
		PrintReceiptsTable(w, report.Receipts, nil, currency)
	}
}

// PrintReplaySummary reports how far a replay run got
func PrintReplaySummary(w io.Writer, saved, total int, err error) {
	if err != nil {
		fmt.Fprintf(w, "%s %d of %d expenses saved before the failure\n", text.FgRed.Sprint("STOPPED"), saved, total)
		return
	}
	fmt.Fprintf(w, "%s %d of %d expenses saved\n", text.FgGreen.Sprint("DONE"), saved, total)
}
