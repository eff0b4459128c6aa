package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gigurra/receipt-relay/internal"
	"github.com/gigurra/receipt-relay/internal/chrome"
	"github.com/rs/zerolog"
)

func newDriver(cfg *internal.Config, log zerolog.Logger) *internal.Driver {
	return &internal.Driver{
		Launch: func(ctx context.Context) (internal.Browser, error) {
			s, err := chrome.Launch(ctx, cfg.Browser, log)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		ErrorScreenshot: cfg.ErrorScreenshot,
		Log:             log,
	}
}

// captureOptions turns the capture flags into options. Everything is checked
// here, before a browser is started.
func captureOptions(p *CaptureParams, cfg *internal.Config) (internal.CaptureOptions, error) {
	opts := internal.CaptureOptions{OutputDir: p.Output, Prices: cfg.Capture.Prices}

	watermark, err := internal.ParseWatermark(p.Date, "/")
	if err != nil {
		return opts, err
	}
	if p.Resume {
		if watermark != nil {
			return opts, &internal.ConfigError{Field: "date", Value: p.Date, Err: errors.New("cannot be combined with --resume")}
		}
		if watermark, err = internal.ResumeWatermark(p.Output); err != nil {
			return opts, err
		}
	}
	opts.Watermark = watermark

	if p.Prices != "" {
		if opts.Prices, err = internal.ParsePrices(p.Prices); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func runCapture(ctx context.Context, p *CaptureParams) error {
	cfg, err := loadRunConfig(p.CommonParams)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, "capture")
	if err != nil {
		return err
	}
	opts, err := captureOptions(p, cfg)
	if err != nil {
		return err
	}

	wf := &internal.CaptureWorkflow{Config: cfg, Options: opts, Log: log}
	var report internal.CaptureReport
	err = newDriver(cfg, log).Run(ctx, func(ctx context.Context, b internal.Browser) error {
		var err error
		report, err = wf.Run(ctx, b)
		return err
	})
	// receipts saved before a failure are still on disk
	internal.PrintCaptureSummary(os.Stdout, report, internal.ResolveCurrency(cfg.Output.Currency))
	return err
}

func runReplay(ctx context.Context, p *ReplayParams) error {
	cfg, err := loadRunConfig(p.CommonParams)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, "replay")
	if err != nil {
		return err
	}

	receipts, err := internal.LoadReceipts(p.Source)
	if err != nil {
		return fmt.Errorf("loading receipts: %w", err)
	}
	if len(receipts) == 0 {
		return fmt.Errorf("no receipts found in %s", p.Source)
	}
	for _, r := range receipts {
		if _, err := os.Stat(r.Path); err != nil {
			return fmt.Errorf("receipt %s: %w", r.ID, err)
		}
	}

	wf := &internal.ReplayWorkflow{
		Config:     cfg,
		Receipts:   receipts,
		ReportName: p.ReportName,
		Hold:       !p.NoHold,
		In:         os.Stdin,
		Prompt:     os.Stderr,
		Log:        log,
	}
	saved := 0
	err = newDriver(cfg, log).Run(ctx, func(ctx context.Context, b internal.Browser) error {
		var err error
		saved, err = wf.Run(ctx, b)
		return err
	})
	internal.PrintReplaySummary(os.Stdout, saved, len(receipts), err)
	return err
}

func runList(p *ListParams) error {
	cfg, err := loadConfig(p.Config)
	if err != nil {
		return err
	}

	var receipts []internal.Receipt
	var skipped []string
	if format, path := internal.ParseFileArg(p.Source); format == "" {
		receipts, skipped, err = internal.ReadReceiptDir(path)
	} else {
		receipts, err = internal.LoadReceipts(p.Source)
	}
	if err != nil {
		return fmt.Errorf("loading receipts: %w", err)
	}

	code := p.Currency
	if code == "" {
		code = cfg.Output.Currency
	}
	currency := internal.ResolveCurrency(code)

	if p.XLSX != "" {
		if err := internal.ExportXLSX(p.XLSX, receipts, currency); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d receipts to %s\n", len(receipts), p.XLSX)
	}

	if p.Output == "json" {
		return internal.PrintReceiptsJSON(os.Stdout, receipts, skipped, currency)
	}
	internal.PrintReceiptsTable(os.Stdout, receipts, skipped, currency)
	return nil
}

func runInitConfig(p *InitConfigParams) error {
	path := p.Path
	if path == "" {
		path = internal.DefaultConfigPath()
	}
	if path == "" {
		return errors.New("cannot determine home directory, pass a path")
	}
	if err := writeConfigTemplate(path, p.Force); err != nil {
		return err
	}
	fmt.Printf("Wrote config template to %s\n", path)
	return nil
}
