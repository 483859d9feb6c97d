package pending

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ofonoril/ril"
)

type completion struct {
	token   ril.Token
	errno   ril.Errno
	payload any
}

type host struct {
	mu   sync.Mutex
	done []completion
}

func (h *host) CompleteRequest(t ril.Token, e ril.Errno, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.done = append(h.done, completion{t, e, payload})
}

func (h *host) NotifyUnsolicited(ril.Unsolicited, any) {}

func (h *host) completions() []completion {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]completion(nil), h.done...)
}

func newSlot(h ril.Host, opts Options) *Slot {
	opts.Logger = log.New(io.Discard)
	return NewSlot(context.Background(), "imei", h, opts)
}

func Test_Slot_ParkAndResolve(t *testing.T) {
	h := &host{}
	s := newSlot(h, Options{})

	require.NoError(t, s.Park(7))
	assert.True(t, s.awaiting())
	assert.Empty(t, h.completions())

	assert.Equal(t, 1, s.Resolve(ril.Success, "356938035643809"))

	assert.False(t, s.awaiting())
	assert.Equal(t, []completion{{7, ril.Success, "356938035643809"}}, h.completions())
}

func Test_Slot_ResolveIdleIsNoop(t *testing.T) {
	h := &host{}
	s := newSlot(h, Options{})

	assert.Equal(t, 0, s.Resolve(ril.Success, nil))
	assert.Empty(t, h.completions())
}

func Test_Slot_QueuesSecondRequest(t *testing.T) {
	h := &host{}
	s := newSlot(h, Options{})

	require.NoError(t, s.Park(1))
	require.NoError(t, s.Park(2))
	s.Resolve(ril.Success, "x")

	assert.Equal(t, []completion{{1, ril.Success, "x"}, {2, ril.Success, "x"}}, h.completions())
	assert.Equal(t, 0, s.Resolve(ril.Success, "y"), "tokens complete exactly once")
}

func Test_Slot_ExclusiveRejects(t *testing.T) {
	h := &host{}
	s := newSlot(h, Options{Exclusive: true})

	require.NoError(t, s.Park(1))
	assert.ErrorIs(t, s.Park(2), ErrBusy)

	s.Resolve(ril.Success, nil)
	assert.Len(t, h.completions(), 1)
	assert.NoError(t, s.Park(3))
}

func Test_Slot_Timeout(t *testing.T) {
	h := &host{}
	s := newSlot(h, Options{Timeout: 10 * time.Millisecond})

	require.NoError(t, s.Park(9))

	assert.Eventually(t, func() bool { return len(h.completions()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, completion{9, ril.GenericFailure, nil}, h.completions()[0])
	assert.False(t, s.awaiting())
}

func Test_Slot_ResolvedBeforeTimeout(t *testing.T) {
	h := &host{}
	s := newSlot(h, Options{Timeout: 20 * time.Millisecond})

	require.NoError(t, s.Park(1))
	s.Resolve(ril.Success, nil)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, []completion{{1, ril.Success, nil}}, h.completions())
}
