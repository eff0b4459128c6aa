package internal

import (
	"context"
	"errors"
	"fmt"
)

// ElementFactory resolves an element afresh on every call.
type ElementFactory func(ctx context.Context) (Element, error)

// WaitFor polls until loc resolves to an element.
func WaitFor(ctx context.Context, b Browser, loc Locator, t Timing) (Element, error) {
	var el Element
	err := retryUntil(ctx, t, loc.String(), IsTransient, func(ctx context.Context) error {
		found, err := b.Find(ctx, loc)
		if err != nil {
			return err
		}
		el = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return el, nil
}

// WaitOptional is WaitFor for elements that may legitimately never show up,
// such as dismissable pop-ups. A timeout is reported as ok=false.
func WaitOptional(ctx context.Context, b Browser, loc Locator, t Timing) (Element, bool, error) {
	el, err := WaitFor(ctx, b, loc, t)
	if errors.Is(err, ErrInteractionTimeout) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return el, true, nil
}

// ScrollIntoView brings the element into the viewport.
func ScrollIntoView(ctx context.Context, el Element) error {
	if err := el.ScrollIntoView(ctx); err != nil {
		return fmt.Errorf("scrolling into view: %w", err)
	}
	return nil
}

// ClickUntilVisible resolves loc, scrolls it into view and clicks it, retrying
// while the element is missing, not yet interactable or covered by another
// element. The first successful click ends the wait.
func ClickUntilVisible(ctx context.Context, b Browser, loc Locator, t Timing) error {
	return retryUntil(ctx, t, loc.String(), IsTransient, func(ctx context.Context) error {
		el, err := b.Find(ctx, loc)
		if err != nil {
			return err
		}
		return scrollAndClick(ctx, el)
	})
}

// ClickElementUntilVisible is ClickUntilVisible for an element that is
// already located.
func ClickElementUntilVisible(ctx context.Context, el Element, what string, t Timing) error {
	return retryUntil(ctx, t, what, IsTransient, func(ctx context.Context) error {
		return scrollAndClick(ctx, el)
	})
}

// RepeatClick re-resolves its target on every attempt, so it copes with
// elements that are replaced rather than merely hidden. Every error but a
// lost session is retried until the deadline; the timeout error wraps the
// last one seen.
func RepeatClick(ctx context.Context, what string, factory ElementFactory, t Timing) error {
	alive := func(err error) bool { return !errors.Is(err, ErrSessionLost) }
	return retryUntil(ctx, t, what, alive, func(ctx context.Context) error {
		el, err := factory(ctx)
		if err != nil {
			return err
		}
		return scrollAndClick(ctx, el)
	})
}

// SetField clears the field and types value into it. There is no retry: the
// field is expected to be usable once located.
func SetField(ctx context.Context, el Element, value string) error {
	if err := el.Clear(ctx); err != nil {
		return fmt.Errorf("clearing field: %w", err)
	}
	if err := el.SendKeys(ctx, value); err != nil {
		return fmt.Errorf("typing into field: %w", err)
	}
	return nil
}

// WaitAndSet waits for the field behind loc and sets it.
func WaitAndSet(ctx context.Context, b Browser, loc Locator, value string, t Timing) error {
	el, err := WaitFor(ctx, b, loc, t)
	if err != nil {
		return err
	}
	return SetField(ctx, el, value)
}

func scrollAndClick(ctx context.Context, el Element) error {
	if err := el.ScrollIntoView(ctx); err != nil {
		return err
	}
	return el.Click(ctx)
}
