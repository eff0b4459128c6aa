package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// PageVisitor is called once per listing page, 1-based. Returning false stops
// the traversal early; an error aborts it.
type PageVisitor func(ctx context.Context, page int) (bool, error)

// Paginator walks a paged listing by activating its "next page" control.
type Paginator struct {
	Browser  Browser
	Next     Locator
	Disabled Locator // optional; a match means the last page is showing
	Timing   Timing
	Log      zerolog.Logger
}

// Traverse visits the current page and every following one until visit asks
// to stop or the "next" control is missing or disabled. The returned count
// includes the final page. A listing that never disables "next" is walked
// forever; there is no page cap.
func (p *Paginator) Traverse(ctx context.Context, visit PageVisitor) (int, error) {
	pages := 0
	for {
		pages++
		if visit != nil {
			more, err := visit(ctx, pages)
			if err != nil {
				return pages, fmt.Errorf("page %d: %w", pages, err)
			}
			if !more {
				p.Log.Debug().Int("page", pages).Msg("early stop")
				return pages, nil
			}
		}

		last, err := p.onLastPage(ctx)
		if err != nil {
			return pages, fmt.Errorf("page %d: %w", pages, err)
		}
		if last {
			p.Log.Debug().Int("page", pages).Msg("last page reached")
			return pages, nil
		}

		// listings often re-render "next" along with the rows
		findNext := func(ctx context.Context) (Element, error) { return p.Browser.Find(ctx, p.Next) }
		if err := RepeatClick(ctx, p.Next.String(), findNext, p.Timing); err != nil {
			return pages, fmt.Errorf("advancing past page %d: %w", pages, err)
		}
	}
}

func (p *Paginator) onLastPage(ctx context.Context) (bool, error) {
	if !p.Disabled.IsZero() {
		_, err := p.Browser.Find(ctx, p.Disabled)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return false, err
		}
	}

	next, err := p.Browser.Find(ctx, p.Next)
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	enabled, err := next.Enabled(ctx)
	if err != nil {
		return false, err
	}
	return !enabled, nil
}
