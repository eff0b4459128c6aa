package internal

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// awaitLogin opens the login page and waits while the operator signs in by
// hand. Credentials are never handled here.
func awaitLogin(ctx context.Context, b Browser, url string, marker Locator, t Timing, log zerolog.Logger) error {
	if err := b.Navigate(ctx, url); err != nil {
		return fmt.Errorf("opening login page: %w", err)
	}
	log.Info().Str("url", url).Dur("timeout", t.Timeout).Msg("waiting for login")
	if _, err := WaitFor(ctx, b, marker, t); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	log.Info().Msg("logged in")
	return nil
}

// CaptureOptions are the per-run choices of a capture.
type CaptureOptions struct {
	OutputDir string
	Watermark *CalendarDate
	Prices    []string
}

// CaptureWorkflow saves receipt images of new orders from the vendor's order
// history.
type CaptureWorkflow struct {
	Config  *Config
	Options CaptureOptions
	Log     zerolog.Logger
}

// Run captures into Options.OutputDir using an already started session.
func (w *CaptureWorkflow) Run(ctx context.Context, b Browser) (CaptureReport, error) {
	cfg := w.Config.Capture
	timing := w.Config.Timeouts.ElementTiming()

	prices, err := NewPriceFilter(w.Options.Prices)
	if err != nil {
		return CaptureReport{}, &ConfigError{Field: "prices", Value: fmt.Sprint(w.Options.Prices), Err: err}
	}

	if err := awaitLogin(ctx, b, cfg.LoginURL, cfg.Selectors.LoggedIn, w.Config.Timeouts.LoginTiming(), w.Log); err != nil {
		return CaptureReport{}, err
	}
	if err := b.Navigate(ctx, cfg.OrdersURL); err != nil {
		return CaptureReport{}, fmt.Errorf("opening order history: %w", err)
	}
	if _, err := WaitFor(ctx, b, cfg.Selectors.Listing, timing); err != nil {
		return CaptureReport{}, fmt.Errorf("order history: %w", err)
	}

	ev := w.Log.Info().Str("output", w.Options.OutputDir)
	if w.Options.Watermark != nil {
		ev = ev.Stringer("after", *w.Options.Watermark)
	}
	ev.Strs("prices", w.Options.Prices).Msg("capturing receipts")

	capturer := &Capturer{
		Scraper: &Scraper{
			Browser:   b,
			Selectors: cfg.Selectors,
			DateSep:   cfg.DateSeparator,
			Timing:    timing,
		},
		Paginator: &Paginator{
			Browser:  b,
			Next:     cfg.Selectors.NextPage,
			Disabled: cfg.Selectors.NextPageDisabled,
			Timing:   timing,
			Log:      w.Log,
		},
		Policy:    SyncPolicy{Watermark: w.Options.Watermark, Prices: prices},
		OutputDir: w.Options.OutputDir,
		Log:       w.Log,
	}
	return capturer.Run(ctx)
}

// ReplayWorkflow enters receipts as line items of a new expense report.
type ReplayWorkflow struct {
	Config     *Config
	Receipts   []Receipt
	ReportName string

	// Hold keeps the window open for review once every expense is saved,
	// until a line is read from In.
	Hold   bool
	In     io.Reader
	Prompt io.Writer

	Log zerolog.Logger
}

// Run replays every receipt and returns how many expenses were saved.
func (w *ReplayWorkflow) Run(ctx context.Context, b Browser) (int, error) {
	cfg := w.Config.Replay
	timing := w.Config.Timeouts.ElementTiming()

	name := w.ReportName
	if name == "" {
		name = cfg.ReportName
	}

	if err := awaitLogin(ctx, b, cfg.LoginURL, cfg.Selectors.LoggedIn, w.Config.Timeouts.LoginTiming(), w.Log); err != nil {
		return 0, err
	}

	starter := &ReportStarter{
		Browser:   b,
		Selectors: cfg.Selectors,
		Timing:    timing,
		Optional:  w.Config.Timeouts.OptionalTiming(),
		Log:       w.Log,
	}
	if err := starter.Start(ctx, name); err != nil {
		return 0, err
	}
	w.Log.Info().Str("report", name).Str("category", cfg.Category).Int("receipts", len(w.Receipts)).Msg("report started")

	if _, err := WaitFor(ctx, b, cfg.Selectors.AddExpense, timing); err != nil {
		return 0, fmt.Errorf("report page: %w", err)
	}

	entry := &ExpenseEntry{
		Browser:   b,
		Selectors: cfg.EntrySelectors(),
		Timing:    timing,
		Log:       w.Log,
	}
	saved, err := entry.ReplayAll(ctx, w.Receipts)
	if err != nil {
		return saved, err
	}
	w.Log.Info().Int("saved", saved).Msg("all expenses entered")

	if !w.Hold {
		return saved, nil
	}
	if w.Prompt != nil {
		fmt.Fprintln(w.Prompt, "Review the report in the browser. Press ENTER to exit.")
	}
	return saved, HoldForReview(ctx, b, w.In, w.Config.Timeouts.PollInterval, w.Log)
}
