package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/GiGurra/boa/pkg/boa"
)

// CommonParams are shared by the commands that drive a browser
type CommonParams struct {
	Config    string `descr:"Path to config file (default: ~/.receipt-relay/config.yaml)" optional:"true"`
	Headless  bool   `descr:"Run the browser without a window" optional:"true"`
	RemoteURL string `name:"remote-url" descr:"Attach to a running browser's DevTools URL instead of launching one" optional:"true"`
	LogLevel  string `name:"log-level" descr:"Log level (debug, info, warn, error)" optional:"true"`
	LogFormat string `name:"log-format" descr:"Log format" alts:"console,json" optional:"true"`
}

type CaptureParams struct {
	CommonParams
	Output string `descr:"Directory the receipt images are written to" short:"o"`
	Date   string `descr:"Only capture orders after this date (MM/DD/YYYY)" short:"d" optional:"true"`
	Prices string `descr:"Comma-separated amounts to capture, e.g. 5.50,9.00 (default: all)" optional:"true"`
	Resume bool   `descr:"Only capture orders newer than the newest receipt already in the output directory" optional:"true"`
}

type ReplayParams struct {
	CommonParams
	Source     string `descr:"Receipt directory, or a prefixed manifest (simple-json:FILE, xlsx-ledger:FILE)" positional:"true"`
	ReportName string `name:"report-name" descr:"Name of the new expense report (default from config)" optional:"true"`
	NoHold     bool   `name:"no-hold" descr:"Exit once all expenses are saved instead of waiting for review" optional:"true"`
}

type ListParams struct {
	Config   string `descr:"Path to config file (default: ~/.receipt-relay/config.yaml)" optional:"true"`
	Source   string `descr:"Receipt directory, or a prefixed manifest (simple-json:FILE, xlsx-ledger:FILE)" positional:"true"`
	Output   string `descr:"Output format" alts:"table,json" default:"table" strict:"true"`
	XLSX     string `name:"xlsx" descr:"Also write the receipts to an Excel ledger at this path" optional:"true"`
	Currency string `descr:"Currency code for display (default: from config or locale)" optional:"true"`
}

type InitConfigParams struct {
	Path  string `descr:"Where to write the config template (default: ~/.receipt-relay/config.yaml)" positional:"true" optional:"true"`
	Force bool   `descr:"Overwrite an existing file" optional:"true"`
}

func main() {
	boa.NewCmdT[boa.NoParams]("receipt-relay").
		WithShort("Capture transit receipts and replay them into an expense report").
		WithLong("Drives a browser through a transit vendor's order history to save one receipt image per order, " +
			"and replays saved receipts as line items of a new expense report. " +
			"Sign-in is always done by hand in the opened window.").
		WithSubCmds(
			captureCmd(),
			replayCmd(),
			listCmd(),
			initConfigCmd(),
		).
		Run()
}

func captureCmd() boa.CmdIfc {
	return boa.NewCmdT[CaptureParams]("capture").
		WithShort("Save receipt images of new orders").
		WithLong("Walks the vendor's order history newest first and saves a screenshot of every order after the " +
			"given date as {id}_{MM-DD-YYYY}_{amount}.png. Stops at the first order on or before that date.").
		WithRunFunc(func(params *CaptureParams) {
			withSignals(func(ctx context.Context) error {
				return runCapture(ctx, params)
			})
		})
}

func replayCmd() boa.CmdIfc {
	return boa.NewCmdT[ReplayParams]("replay").
		WithShort("Enter saved receipts as expenses of a new report").
		WithLong("Starts a new expense report and adds one expense per receipt, oldest first, attaching the " +
			"receipt image to each. Stops at the first expense that cannot be completed.").
		WithRunFunc(func(params *ReplayParams) {
			withSignals(func(ctx context.Context) error {
				return runReplay(ctx, params)
			})
		})
}

func listCmd() boa.CmdIfc {
	return boa.NewCmdT[ListParams]("list").
		WithShort("Show the receipts a replay would enter").
		WithRunFunc(func(params *ListParams) {
			exitOnError(runList(params))
		})
}

func initConfigCmd() boa.CmdIfc {
	return boa.NewCmdT[InitConfigParams]("init-config").
		WithShort("Write a config file with the built-in defaults").
		WithRunFunc(func(params *InitConfigParams) {
			exitOnError(runInitConfig(params))
		})
}

func withSignals(fn func(ctx context.Context) error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := fn(ctx)
	stop()
	exitOnError(err)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
