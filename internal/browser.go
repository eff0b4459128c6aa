package internal

import (
	"context"
	"fmt"
)

// Strategy selects how a Locator query is interpreted.
type Strategy string

const (
	ByCSS   Strategy = "css"
	ByXPath Strategy = "xpath"
)

// Locator is a declarative query for one UI element.
type Locator struct {
	Query string
	By    Strategy
}

// CSS returns a CSS selector locator.
func CSS(query string) Locator {
	return Locator{Query: query, By: ByCSS}
}

// XPath returns an XPath locator.
func XPath(query string) Locator {
	return Locator{Query: query, By: ByXPath}
}

// IsZero reports whether the locator is unset.
func (l Locator) IsZero() bool {
	return l.Query == ""
}

func (l Locator) String() string {
	by := l.By
	if by == "" {
		by = ByCSS
	}
	return fmt.Sprintf("%s(%s)", by, l.Query)
}

// Browser is the capability set the automation core needs from a remote,
// script-capable browser session. Implementations return ErrNotFound from Find
// when nothing matches, and ErrSessionLost once the window is gone.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	Find(ctx context.Context, loc Locator) (Element, error)
	FindAll(ctx context.Context, loc Locator) ([]Element, error)
	// Execute runs a script in page context and discards its result.
	Execute(ctx context.Context, script string) error
	FullScreenshot(ctx context.Context) ([]byte, error)
	// Ping returns ErrSessionLost when the session is no longer usable.
	Ping(ctx context.Context) error
	Close() error
}

// Element is a handle on one located UI element.
type Element interface {
	ScrollIntoView(ctx context.Context) error
	// Click returns ErrNotInteractable or ErrClickIntercepted for conditions
	// that may clear up on a later attempt.
	Click(ctx context.Context) error
	Clear(ctx context.Context) error
	SendKeys(ctx context.Context, value string) error
	Submit(ctx context.Context) error
	Text(ctx context.Context) (string, error)
	Enabled(ctx context.Context) (bool, error)
	// Find looks up a descendant; only CSS locators are supported.
	Find(ctx context.Context, loc Locator) (Element, error)
	// Screenshot returns a PNG of the element.
	Screenshot(ctx context.Context) ([]byte, error)
	// DropFile synthesizes a drag-and-drop of the local file onto the element.
	DropFile(ctx context.Context, path string) error
}

// Launcher creates a browser session. The caller owns the returned Browser
// and must Close it.
type Launcher func(ctx context.Context) (Browser, error)
