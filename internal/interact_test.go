package internal

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitFor(t *testing.T) {
	loc := CSS("#late")
	b := newFakeBrowser().add(loc, &fakeElement{})
	b.hiddenFinds[loc.String()] = 3

	el, err := WaitFor(context.Background(), b, loc, fastTiming)
	require.NoError(t, err)
	assert.NotNil(t, el)
	assert.Equal(t, 4, b.finds[loc.String()])
}

func TestWaitFor_Timeout(t *testing.T) {
	b := newFakeBrowser()

	_, err := WaitFor(context.Background(), b, CSS("#never"), fastTiming)

	var timeout *InteractionTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.ErrorIs(t, err, ErrInteractionTimeout)
	assert.ErrorIs(t, err, ErrNotFound, "timeout should carry the last failure")
	assert.Equal(t, "css(#never)", timeout.What)
}

func TestWaitOptional(t *testing.T) {
	present := CSS("#popup")
	b := newFakeBrowser().add(present, &fakeElement{})

	el, ok, err := WaitOptional(context.Background(), b, present, fastTiming)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, el)

	el, ok, err = WaitOptional(context.Background(), b, CSS("#absent"), fastTiming)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, el)
}

func TestClickUntilVisible(t *testing.T) {
	tests := []struct {
		name       string
		hidden     int
		clickErrs  []error
		wantClicks int
	}{
		{"clickable at once", 0, nil, 1},
		{"appears late", 2, nil, 1},
		{"covered then clickable", 0, []error{ErrClickIntercepted, ErrClickIntercepted}, 3},
		{"not yet interactable", 1, []error{ErrNotInteractable}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := CSS("button")
			el := &fakeElement{clickErrs: tt.clickErrs}
			b := newFakeBrowser().add(loc, el)
			b.hiddenFinds[loc.String()] = tt.hidden

			err := ClickUntilVisible(context.Background(), b, loc, fastTiming)
			require.NoError(t, err)
			assert.Equal(t, tt.wantClicks, el.clicks)
			assert.Equal(t, []string{"click css(button)"}, b.Actions())
		})
	}
}

func TestClickUntilVisible_AbortsOnUnexpectedError(t *testing.T) {
	boom := errors.New("boom")
	loc := CSS("button")
	el := &fakeElement{clickErrs: []error{boom, nil}}
	b := newFakeBrowser().add(loc, el)

	err := ClickUntilVisible(context.Background(), b, loc, fastTiming)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInteractionTimeout)
	assert.Equal(t, 1, el.clicks)
}

func TestClickUntilVisible_NeverClickable(t *testing.T) {
	loc := CSS("button")
	errs := make([]error, 1000)
	for i := range errs {
		errs[i] = ErrClickIntercepted
	}
	el := &fakeElement{clickErrs: errs}
	b := newFakeBrowser().add(loc, el)

	err := ClickUntilVisible(context.Background(), b, loc, fastTiming)
	assert.ErrorIs(t, err, ErrInteractionTimeout)
	assert.ErrorIs(t, err, ErrClickIntercepted)
	assert.Empty(t, b.Actions())
}

func TestRepeatClick(t *testing.T) {
	loc := CSS("button")
	el := &fakeElement{}
	b := newFakeBrowser().add(loc, el)

	var calls atomic.Int32
	factory := func(ctx context.Context) (Element, error) {
		if calls.Add(1) < 3 {
			return nil, errors.New("stale element")
		}
		return b.Find(ctx, loc)
	}

	err := RepeatClick(context.Background(), "button", factory, fastTiming)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 1, el.clicks)
}

func TestRepeatClick_NeverSucceeds(t *testing.T) {
	stale := errors.New("stale element")
	var calls atomic.Int32
	factory := func(ctx context.Context) (Element, error) {
		calls.Add(1)
		return nil, stale
	}

	start := time.Now()
	err := RepeatClick(context.Background(), "button", factory, fastTiming)

	assert.ErrorIs(t, err, ErrInteractionTimeout)
	assert.ErrorIs(t, err, stale)
	assert.GreaterOrEqual(t, time.Since(start), fastTiming.Timeout)

	// no attempt is made once the primitive has returned
	after := calls.Load()
	time.Sleep(5 * fastTiming.Interval)
	assert.Equal(t, after, calls.Load())
}

func TestRetry_ParentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ClickUntilVisible(ctx, newFakeBrowser(), CSS("button"), fastTiming.WithTimeout(time.Second))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrInteractionTimeout)
}

func TestSetField(t *testing.T) {
	loc := CSS("input")
	el := &fakeElement{value: "old"}
	b := newFakeBrowser().add(loc, el)

	require.NoError(t, WaitAndSet(context.Background(), b, loc, "5.50", fastTiming))
	assert.Equal(t, "5.50", el.value)
	assert.Equal(t, []string{"clear css(input)", "type css(input) 5.50"}, b.Actions())
}

func TestRepeatClick_SessionLost(t *testing.T) {
	var calls atomic.Int32
	factory := func(ctx context.Context) (Element, error) {
		calls.Add(1)
		return nil, fmt.Errorf("finding button: %w", ErrSessionLost)
	}

	err := RepeatClick(context.Background(), "button", factory, fastTiming)

	assert.ErrorIs(t, err, ErrSessionLost)
	assert.NotErrorIs(t, err, ErrInteractionTimeout)
	assert.Equal(t, int32(1), calls.Load())
}
