package internal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"k8s.io/apimachinery/pkg/util/wait"
)

const errorScreenshotTimeout = 10 * time.Second

// Driver owns the browser session of one run.
type Driver struct {
	Launch Launcher
	// ErrorScreenshot is where the page is captured when a run fails; empty
	// disables it.
	ErrorScreenshot string
	Log             zerolog.Logger
}

// Run starts a session, hands it to fn and closes it on every exit path. A
// failure other than a lost session leaves a full-page screenshot behind.
func (d *Driver) Run(ctx context.Context, fn func(ctx context.Context, b Browser) error) error {
	b, err := d.Launch(ctx)
	if err != nil {
		return fmt.Errorf("starting browser: %w", err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			d.Log.Warn().Err(err).Msg("closing browser")
		}
	}()

	err = fn(ctx, b)
	if err != nil && !errors.Is(err, ErrSessionLost) {
		d.Log.Error().Err(err).Msg("run failed")
		d.saveErrorScreenshot(ctx, b)
	}
	return err
}

func (d *Driver) saveErrorScreenshot(ctx context.Context, b Browser) {
	if d.ErrorScreenshot == "" {
		return
	}
	// the run's context may already be done
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), errorScreenshotTimeout)
	defer cancel()

	png, err := b.FullScreenshot(ctx)
	if err != nil {
		d.Log.Warn().Err(err).Msg("taking error screenshot")
		return
	}
	if err := os.WriteFile(d.ErrorScreenshot, png, 0644); err != nil {
		d.Log.Warn().Err(err).Msg("writing error screenshot")
		return
	}
	d.Log.Info().Str("path", d.ErrorScreenshot).Msg("error screenshot saved")
}

// HoldForReview keeps the session open until a line is read from in or the
// operator closes the browser window, which is not an error. Other ping
// failures, such as a page navigating mid-evaluation, are logged and polling
// continues. The reader goroutine never touches the session; when the hold
// ends another way it stays blocked on in until the process exits.
func HoldForReview(ctx context.Context, b Browser, in io.Reader, interval time.Duration, log zerolog.Logger) error {
	entered := make(chan struct{})
	go func() {
		_, _ = bufio.NewReader(in).ReadString('\n')
		close(entered)
	}()

	if interval <= 0 {
		interval = DefaultPollInterval
	}
	err := wait.PollUntilContextCancel(ctx, interval, true, func(ctx context.Context) (bool, error) {
		select {
		case <-entered:
			return true, nil
		default:
		}
		err := b.Ping(ctx)
		switch {
		case err == nil:
			return false, nil
		case errors.Is(err, ErrSessionLost):
			return false, err
		default:
			log.Debug().Err(err).Msg("ping failed, still holding")
			return false, nil
		}
	})
	if errors.Is(err, ErrSessionLost) {
		return nil
	}
	return err
}
