// Package timers provides a context-bound timer that can be re-armed from
// any goroutine.
package timers

import (
	"context"
	"time"
)

// SleepWithContext waits for d and reports whether it elapsed before ctx
// was done.
func SleepWithContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// ResettableTimer calls fn each time it expires. Reset re-arms it for the
// full duration; it never fires again on its own.
type ResettableTimer struct {
	timer    *time.Timer
	fn       func()
	dur      time.Duration
	ctx      context.Context
	cancelFn context.CancelFunc
	resetCh  chan struct{}
}

// New returns an armed timer.
func New(ctx context.Context, d time.Duration, fn func()) *ResettableTimer {
	rt := newTimer(ctx, d, fn)
	go rt.run()
	return rt
}

// NewStopped returns a timer that waits for the first Reset.
func NewStopped(ctx context.Context, d time.Duration, fn func()) *ResettableTimer {
	rt := newTimer(ctx, d, fn)
	rt.timer.Stop()
	go rt.run()
	return rt
}

func newTimer(ctx context.Context, d time.Duration, fn func()) *ResettableTimer {
	myCtx, cancel := context.WithCancel(ctx)
	return &ResettableTimer{
		timer:    time.NewTimer(d),
		fn:       fn,
		dur:      d,
		ctx:      myCtx,
		cancelFn: cancel,
		resetCh:  make(chan struct{}, 1),
	}
}

func (rt *ResettableTimer) Reset() {
	select {
	case rt.resetCh <- struct{}{}:
	default: // a reset is already pending
	}
}

// Stop cancels the timer for good.
func (rt *ResettableTimer) Stop() {
	rt.cancelFn()
}

func (rt *ResettableTimer) run() {
	defer rt.timer.Stop()
	for {
		select {
		case <-rt.timer.C:
			rt.fn()
		case <-rt.resetCh:
			if !rt.timer.Stop() {
				select {
				case <-rt.timer.C:
				default:
				}
			}
			rt.timer.Reset(rt.dur)
		case <-rt.ctx.Done():
			return
		}
	}
}
