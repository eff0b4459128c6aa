package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Row is one scraped listing row. Handle is only used to take the row's
// screenshot.
type Row struct {
	Handle Element
	Transaction
}

// PriceFilter is a set of accepted amounts. A nil filter accepts everything.
type PriceFilter map[string]struct{}

// NewPriceFilter builds a filter from amount strings; an empty list yields nil.
func NewPriceFilter(prices []string) (PriceFilter, error) {
	if len(prices) == 0 {
		return nil, nil
	}
	f := make(PriceFilter, len(prices))
	for _, p := range prices {
		key, err := priceKey(p)
		if err != nil {
			return nil, err
		}
		f[key] = struct{}{}
	}
	return f, nil
}

// Allows reports whether amount is in the filter.
func (f PriceFilter) Allows(amount string) bool {
	if f == nil {
		return true
	}
	key, err := priceKey(amount)
	if err != nil {
		return false
	}
	_, ok := f[key]
	return ok
}

// priceKey makes "5.5", "5.50" and "$5.50" the same member.
func priceKey(s string) (string, error) {
	n, err := NormalizeAmount(s)
	if err != nil {
		return "", err
	}
	v, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(v, 'f', -1, 64), nil
}

// SyncPolicy decides which scraped rows of a page get materialized.
type SyncPolicy struct {
	// Watermark is the exclusive lower bound; nil captures everything.
	Watermark *CalendarDate
	Prices    PriceFilter
}

// SortNewestFirst orders rows descending by (date, id).
func SortNewestFirst(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		return compareChronological(b.Transaction, a.Transaction)
	})
}

// Plan walks rows newest first. Rows not strictly newer than the watermark end
// the walk and set stop, which also ends pagination. Rows rejected by the
// price filter are skipped without stopping.
func (p SyncPolicy) Plan(rows []Row) (selected []Row, stop bool) {
	ordered := slices.Clone(rows)
	SortNewestFirst(ordered)
	for _, row := range ordered {
		if p.Watermark != nil && !row.Date.After(*p.Watermark) {
			return selected, true
		}
		if !p.Prices.Allows(row.Amount) {
			continue
		}
		selected = append(selected, row)
	}
	return selected, false
}

// Scraper reads the order rows of the current listing page.
type Scraper struct {
	Browser   Browser
	Selectors CaptureSelectors
	DateSep   string
	Timing    Timing
}

// ScrapeRows hides overlays, waits for the rows, and reads each row's cells.
func (s *Scraper) ScrapeRows(ctx context.Context) ([]Row, error) {
	for _, loc := range s.Selectors.Hide {
		if err := s.Browser.Execute(ctx, hideScript(loc)); err != nil {
			return nil, fmt.Errorf("hiding %s: %w", loc, err)
		}
	}

	if _, err := WaitFor(ctx, s.Browser, s.Selectors.Row, s.Timing); err != nil {
		return nil, err
	}
	elements, err := s.Browser.FindAll(ctx, s.Selectors.Row)
	if err != nil {
		return nil, fmt.Errorf("listing rows: %w", err)
	}

	rows := make([]Row, 0, len(elements))
	for i, el := range elements {
		id, err := cellText(ctx, el, s.Selectors.ID)
		if err != nil {
			return nil, fmt.Errorf("row %d id: %w", i, err)
		}
		date, err := cellText(ctx, el, s.Selectors.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d date: %w", i, err)
		}
		price, err := cellText(ctx, el, s.Selectors.Price)
		if err != nil {
			return nil, fmt.Errorf("row %d price: %w", i, err)
		}

		// the date cell also carries the time of day
		if fields := strings.Fields(date); len(fields) > 0 {
			date = fields[0]
		}
		tx, err := NewTransaction(id, date, s.DateSep, price)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, Row{Handle: el, Transaction: tx})
	}
	return rows, nil
}

func cellText(ctx context.Context, row Element, loc Locator) (string, error) {
	cell, err := row.Find(ctx, loc)
	if err != nil {
		return "", err
	}
	text, err := cell.Text(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func hideScript(loc Locator) string {
	q, _ := json.Marshal(loc.Query)
	if loc.By == ByXPath {
		return fmt.Sprintf(`(function(){const r=document.evaluate(%s,document,null,XPathResult.ORDERED_NODE_SNAPSHOT_TYPE,null);for(let i=0;i<r.snapshotLength;i++){r.snapshotItem(i).style.display="none";}})()`, q)
	}
	return fmt.Sprintf(`document.querySelectorAll(%s).forEach(function(e){e.style.display="none";})`, q)
}

// CaptureReport summarizes a capture run.
type CaptureReport struct {
	Pages    int
	Receipts []Receipt
	Filtered int // rows skipped by the price filter
}

// Capturer materializes new listing rows as receipt images in OutputDir.
type Capturer struct {
	Scraper   *Scraper
	Paginator *Paginator
	Policy    SyncPolicy
	OutputDir string
	Log       zerolog.Logger

	report CaptureReport
}

// Run walks the listing from the current page on.
func (c *Capturer) Run(ctx context.Context) (CaptureReport, error) {
	c.report = CaptureReport{}
	if err := os.MkdirAll(c.OutputDir, 0755); err != nil {
		return c.report, fmt.Errorf("creating output directory: %w", err)
	}
	pages, err := c.Paginator.Traverse(ctx, c.CapturePage)
	c.report.Pages = pages
	return c.report, err
}

// CapturePage is the PageVisitor of a capture run.
func (c *Capturer) CapturePage(ctx context.Context, page int) (bool, error) {
	rows, err := c.Scraper.ScrapeRows(ctx)
	if err != nil {
		return false, err
	}

	selected, stop := c.Policy.Plan(rows)
	for _, row := range selected {
		receipt, err := c.materialize(ctx, row)
		if err != nil {
			return false, err
		}
		c.report.Receipts = append(c.report.Receipts, receipt)
	}
	if c.Policy.Prices != nil {
		c.report.Filtered += c.filteredOnPage(rows)
	}

	c.Log.Info().
		Int("page", page).
		Int("rows", len(rows)).
		Int("saved", len(selected)).
		Bool("reached_watermark", stop).
		Msg("page captured")
	return !stop, nil
}

func (c *Capturer) filteredOnPage(rows []Row) int {
	n := 0
	for _, row := range rows {
		if c.Policy.Watermark != nil && !row.Date.After(*c.Policy.Watermark) {
			continue
		}
		if !c.Policy.Prices.Allows(row.Amount) {
			n++
		}
	}
	return n
}

func (c *Capturer) materialize(ctx context.Context, row Row) (Receipt, error) {
	c.Log.Debug().Str("order", row.ID).Stringer("date", row.Date).Msg("taking screenshot")

	png, err := row.Handle.Screenshot(ctx)
	if err != nil {
		return Receipt{}, fmt.Errorf("screenshot of order %s: %w", row.ID, err)
	}
	path := filepath.Join(c.OutputDir, row.Filename())
	if err := os.WriteFile(path, png, 0644); err != nil {
		return Receipt{}, fmt.Errorf("writing receipt: %w", err)
	}
	return Receipt{Transaction: row.Transaction, Path: path}, nil
}
