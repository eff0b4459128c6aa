package internal

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	nextLoc     = CSS("button.next")
	disabledLoc = CSS("button.next[disabled]")
)

// pagedBrowser builds a listing of n pages whose last page shows a disabled
// "next" control
func pagedBrowser(n int) *fakeBrowser {
	b := newFakeBrowser()
	for i := 0; i < n; i++ {
		if i == n-1 {
			b.addPage(map[Locator][]*fakeElement{disabledLoc: {{}}})
			continue
		}
		b.addPage(map[Locator][]*fakeElement{nextLoc: {{onClick: b.nextPage}}})
	}
	return b
}

func newPaginator(b Browser) *Paginator {
	return &Paginator{Browser: b, Next: nextLoc, Disabled: disabledLoc, Timing: fastTiming, Log: zerolog.Nop()}
}

func TestTraverse_AllPages(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		b := pagedBrowser(n)
		var visited []int
		pages, err := newPaginator(b).Traverse(context.Background(), func(ctx context.Context, page int) (bool, error) {
			visited = append(visited, page)
			return true, nil
		})

		require.NoError(t, err)
		assert.Equal(t, n, pages)
		require.Len(t, visited, n)
		for i, p := range visited {
			assert.Equal(t, i+1, p)
		}
		assert.Len(t, b.Actions(), n-1, "one next click between pages")
	}
}

func TestTraverse_EarlyStop(t *testing.T) {
	b := pagedBrowser(6)
	calls := 0
	pages, err := newPaginator(b).Traverse(context.Background(), func(ctx context.Context, page int) (bool, error) {
		calls++
		return page < 3, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, pages)
	assert.Equal(t, 3, calls)
	assert.Len(t, b.Actions(), 2, "no next click after the stopping page")
}

func TestTraverse_NilVisitor(t *testing.T) {
	pages, err := newPaginator(pagedBrowser(4)).Traverse(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 4, pages)
}

func TestTraverse_NextMissing(t *testing.T) {
	b := newFakeBrowser()
	pages, err := newPaginator(b).Traverse(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestTraverse_NextDisabled(t *testing.T) {
	b := newFakeBrowser().add(nextLoc, &fakeElement{disabled: true})
	p := newPaginator(b)
	p.Disabled = Locator{}

	pages, err := p.Traverse(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
	assert.Empty(t, b.Actions())
}

func TestTraverse_VisitorError(t *testing.T) {
	boom := errors.New("boom")
	pages, err := newPaginator(pagedBrowser(5)).Traverse(context.Background(), func(ctx context.Context, page int) (bool, error) {
		if page == 2 {
			return false, boom
		}
		return true, nil
	})

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "page 2")
	assert.Equal(t, 2, pages)
}

func TestTraverse_NextReplacedDuringClick(t *testing.T) {
	b := newFakeBrowser()
	next := &fakeElement{onClick: b.nextPage, clickErrs: []error{errors.New("node is detached from document")}}
	b.addPage(map[Locator][]*fakeElement{nextLoc: {next}})
	b.addPage(map[Locator][]*fakeElement{disabledLoc: {{}}})

	pages, err := newPaginator(b).Traverse(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.Equal(t, 2, next.clicks)
}

func TestTraverse_NextNeverClickable(t *testing.T) {
	b := newFakeBrowser()
	stuck := errors.New("node is detached from document")
	b.addPage(map[Locator][]*fakeElement{nextLoc: {{clickErrs: slices.Repeat([]error{stuck}, 1000)}}})

	pages, err := newPaginator(b).Traverse(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInteractionTimeout)
	assert.ErrorIs(t, err, stuck)
	assert.Contains(t, err.Error(), "advancing past page 1")
	assert.Equal(t, 1, pages)
}
