package internal

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// fastTiming keeps the retry loops of tests short
var fastTiming = Timing{Interval: time.Millisecond, Timeout: 50 * time.Millisecond}

// fakeBrowser is an in-memory Browser. Elements are registered per locator,
// either for every page or for one page of a paged listing.
type fakeBrowser struct {
	mu sync.Mutex

	static map[string][]*fakeElement
	pages  []map[string][]*fakeElement
	page   int

	hiddenFinds map[string]int // Find calls that report ErrNotFound before the element shows up
	finds       map[string]int

	actions    []string
	navigated  []string
	scripts    []string
	pingErr    error
	screenshot []byte
	closed     bool
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		static:      map[string][]*fakeElement{},
		hiddenFinds: map[string]int{},
		finds:       map[string]int{},
		screenshot:  []byte("full-page"),
	}
}

func (b *fakeBrowser) bind(loc Locator, els []*fakeElement) []*fakeElement {
	for _, el := range els {
		el.b = b
		if el.loc == "" {
			el.loc = loc.String()
		}
		for key, child := range el.children {
			child.b = b
			if child.loc == "" {
				child.loc = key
			}
		}
	}
	return els
}

// add registers elements present on every page
func (b *fakeBrowser) add(loc Locator, els ...*fakeElement) *fakeBrowser {
	b.static[loc.String()] = append(b.static[loc.String()], b.bind(loc, els)...)
	return b
}

// addPage appends a listing page and returns its index
func (b *fakeBrowser) addPage(elements map[Locator][]*fakeElement) int {
	page := map[string][]*fakeElement{}
	for loc, els := range elements {
		page[loc.String()] = b.bind(loc, els)
	}
	b.pages = append(b.pages, page)
	return len(b.pages) - 1
}

func (b *fakeBrowser) nextPage() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page++
}

func (b *fakeBrowser) record(format string, args ...any) {
	b.actions = append(b.actions, fmt.Sprintf(format, args...))
}

func (b *fakeBrowser) Actions() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.actions...)
}

func (b *fakeBrowser) lookup(loc Locator) []*fakeElement {
	key := loc.String()
	b.finds[key]++
	if b.hiddenFinds[key] > 0 {
		b.hiddenFinds[key]--
		return nil
	}
	if b.page < len(b.pages) {
		if els, ok := b.pages[b.page][key]; ok {
			return els
		}
	}
	return b.static[key]
}

func (b *fakeBrowser) Navigate(ctx context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.navigated = append(b.navigated, url)
	return nil
}

func (b *fakeBrowser) Find(ctx context.Context, loc Locator) (Element, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	els := b.lookup(loc)
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
	}
	return els[0], nil
}

func (b *fakeBrowser) FindAll(ctx context.Context, loc Locator) ([]Element, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Element
	for _, el := range b.lookup(loc) {
		out = append(out, el)
	}
	return out, nil
}

func (b *fakeBrowser) Execute(ctx context.Context, script string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scripts = append(b.scripts, script)
	return nil
}

func (b *fakeBrowser) FullScreenshot(ctx context.Context) ([]byte, error) {
	return b.screenshot, nil
}

func (b *fakeBrowser) Ping(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pingErr
}

func (b *fakeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// fakeElement records what is done to it on its browser's action log
type fakeElement struct {
	b   *fakeBrowser
	loc string

	text      string
	disabled  bool
	png       []byte
	children  map[string]*fakeElement
	clickErrs []error // returned by successive clicks before one succeeds
	clicks    int
	onClick   func()
	value     string
}

func (e *fakeElement) ScrollIntoView(ctx context.Context) error {
	return nil
}

func (e *fakeElement) Click(ctx context.Context) error {
	e.b.mu.Lock()
	e.clicks++
	if len(e.clickErrs) > 0 {
		err := e.clickErrs[0]
		e.clickErrs = e.clickErrs[1:]
		e.b.mu.Unlock()
		return err
	}
	e.b.record("click %s", e.loc)
	hook := e.onClick
	e.b.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

func (e *fakeElement) Clear(ctx context.Context) error {
	e.b.mu.Lock()
	defer e.b.mu.Unlock()
	e.value = ""
	e.b.record("clear %s", e.loc)
	return nil
}

func (e *fakeElement) SendKeys(ctx context.Context, value string) error {
	e.b.mu.Lock()
	defer e.b.mu.Unlock()
	e.value += value
	e.b.record("type %s %s", e.loc, value)
	return nil
}

func (e *fakeElement) Submit(ctx context.Context) error {
	e.b.mu.Lock()
	defer e.b.mu.Unlock()
	e.b.record("submit %s", e.loc)
	return nil
}

func (e *fakeElement) Text(ctx context.Context) (string, error) {
	return e.text, nil
}

func (e *fakeElement) Enabled(ctx context.Context) (bool, error) {
	return !e.disabled, nil
}

func (e *fakeElement) Find(ctx context.Context, loc Locator) (Element, error) {
	child, ok := e.children[loc.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
	}
	return child, nil
}

func (e *fakeElement) Screenshot(ctx context.Context) ([]byte, error) {
	return e.png, nil
}

func (e *fakeElement) DropFile(ctx context.Context, path string) error {
	e.b.mu.Lock()
	defer e.b.mu.Unlock()
	e.b.record("drop %s %s", e.loc, path)
	return nil
}

// fakeRow builds a listing row with id, date and price cells
func fakeRow(sel CaptureSelectors, id, date, price string) *fakeElement {
	return &fakeElement{
		png: []byte("png-" + id),
		children: map[string]*fakeElement{
			sel.ID.String():    {text: id},
			sel.Date.String():  {text: date},
			sel.Price.String(): {text: price},
		},
	}
}
