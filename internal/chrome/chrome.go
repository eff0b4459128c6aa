// Package chrome implements the browser capabilities of the automation core on
// top of the Chrome DevTools Protocol.
package chrome

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/gigurra/receipt-relay/internal"
	"github.com/rs/zerolog"
)

// Session is one browser tab driven over CDP.
type Session struct {
	tab         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	log         zerolog.Logger
}

var _ internal.Browser = (*Session)(nil)

// Launch starts a local Chrome, or attaches to cfg.RemoteURL when set, and
// opens a tab. Canceling ctx tears the session down.
func Launch(ctx context.Context, cfg internal.BrowserConfig, log zerolog.Logger) (*Session, error) {
	var allocCtx context.Context
	var cancelAlloc context.CancelFunc
	if cfg.RemoteURL != "" {
		log.Debug().Str("url", cfg.RemoteURL).Msg("attaching to remote browser")
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, cfg.RemoteURL)
	} else {
		log.Debug().Bool("headless", cfg.Headless).Msg("launching browser")
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, allocatorOptions(cfg)...)
	}

	tab, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			log.Debug().Msgf(format, args...)
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			log.Debug().Msgf(format, args...)
		}),
	)

	// an empty Run starts the browser and attaches to the tab
	if err := chromedp.Run(tab); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}

	return &Session{tab: tab, cancelTab: cancelTab, cancelAlloc: cancelAlloc, log: log}, nil
}

func allocatorOptions(cfg internal.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("headless", cfg.Headless))
	if cfg.Width > 0 && cfg.Height > 0 {
		opts = append(opts, chromedp.WindowSize(cfg.Width, cfg.Height))
	}
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}
	return opts
}

// scope derives a context that carries the tab, ends with the tab, and also
// honors the deadline and cancellation of the caller's ctx.
func (s *Session) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(s.tab)
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		prev := cancel
		cancel = func() {
			cancelDeadline()
			prev()
		}
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := s.scope(ctx)
	defer cancel()
	return s.translate(chromedp.Run(runCtx, actions...))
}

// translate maps CDP failures onto the error kinds the retry primitives know.
func (s *Session) translate(err error) error {
	if err == nil {
		return nil
	}
	if s.tab.Err() != nil ||
		errors.Is(err, chromedp.ErrChannelClosed) ||
		errors.Is(err, chromedp.ErrInvalidTarget) {
		return fmt.Errorf("%w: %v", internal.ErrSessionLost, err)
	}
	var cdpErr *cdproto.Error
	if errors.As(err, &cdpErr) && staleNode(cdpErr.Message) {
		return fmt.Errorf("%w: %v", internal.ErrNotInteractable, err)
	}
	return err
}

func staleNode(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "could not find node") ||
		strings.Contains(msg, "no node with given id") ||
		strings.Contains(msg, "node is detached")
}

func queryOption(loc internal.Locator) chromedp.QueryOption {
	if loc.By == internal.ByXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQueryAll
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *Session) nodes(ctx context.Context, loc internal.Locator, opts ...chromedp.QueryOption) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	opts = append(opts, chromedp.AtLeast(0))
	if err := s.run(ctx, chromedp.Nodes(loc.Query, &nodes, opts...)); err != nil {
		return nil, err
	}
	return nodes, nil
}

// Find returns the first match without waiting for one to appear.
func (s *Session) Find(ctx context.Context, loc internal.Locator) (internal.Element, error) {
	nodes, err := s.nodes(ctx, loc, queryOption(loc))
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", internal.ErrNotFound, loc)
	}
	return &element{s: s, node: nodes[0]}, nil
}

func (s *Session) FindAll(ctx context.Context, loc internal.Locator) ([]internal.Element, error) {
	nodes, err := s.nodes(ctx, loc, queryOption(loc))
	if err != nil {
		return nil, err
	}
	elements := make([]internal.Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, &element{s: s, node: n})
	}
	return elements, nil
}

func (s *Session) Execute(ctx context.Context, script string) error {
	return s.run(ctx, chromedp.Evaluate(script, nil))
}

// FullScreenshot captures the whole page as PNG.
func (s *Session) FullScreenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Ping evaluates a trivial expression to check the tab is still there.
func (s *Session) Ping(ctx context.Context) error {
	var one int
	err := s.run(ctx, chromedp.Evaluate("1", &one))
	if err != nil && s.tab.Err() != nil {
		return fmt.Errorf("%w: %v", internal.ErrSessionLost, err)
	}
	return err
}

// Close closes the tab and, unless attached remotely, the browser.
func (s *Session) Close() error {
	err := chromedp.Cancel(s.tab)
	s.cancelTab()
	s.cancelAlloc()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
