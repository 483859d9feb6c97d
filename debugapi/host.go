// Package debugapi stands in for the radio daemon. Host implements the
// completion side of the plugin ABI, and Server drives the plugin over HTTP.
package debugapi

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"go.uber.org/atomic"

	"ofonoril/ril"
)

const ringSize = 256

type Completion struct {
	Token   ril.Token `json:"token"`
	Errno   ril.Errno `json:"errno"`
	Status  string    `json:"status"`
	Payload any       `json:"payload,omitempty"`
}

type Event struct {
	Seq     uint64          `json:"seq"`
	Kind    ril.Unsolicited `json:"kind"`
	Name    string          `json:"name"`
	Payload any             `json:"payload,omitempty"`
	At      time.Time       `json:"at"`
}

// Host hands out tokens, routes completions to whoever waits on them and
// keeps the last unsolicited events in a ring.
type Host struct {
	tokens *atomic.Uint64
	logger *log.Logger

	mu      sync.Mutex
	waiting map[ril.Token]chan Completion
	ring    [ringSize]Event
	seq     uint64
}

func NewHost(logger *log.Logger) *Host {
	if logger == nil {
		logger = log.Default()
	}
	return &Host{
		tokens:  atomic.NewUint64(0),
		logger:  logger,
		waiting: map[ril.Token]chan Completion{},
	}
}

// Expect allocates a token and the channel its completion will arrive on.
// Call it before issuing the request.
func (h *Host) Expect() (ril.Token, <-chan Completion) {
	t := ril.Token(h.tokens.Inc())
	ch := make(chan Completion, 1)
	h.mu.Lock()
	h.waiting[t] = ch
	h.mu.Unlock()
	return t, ch
}

// Forget drops interest in t. A later completion is logged and discarded.
func (h *Host) Forget(t ril.Token) {
	h.mu.Lock()
	delete(h.waiting, t)
	h.mu.Unlock()
}

func (h *Host) CompleteRequest(t ril.Token, e ril.Errno, payload any) {
	h.mu.Lock()
	ch, ok := h.waiting[t]
	delete(h.waiting, t)
	h.mu.Unlock()

	if !ok {
		h.logger.Warn("🪃 completion nobody waits for", "token", t, "errno", e)
		return
	}
	ch <- Completion{Token: t, Errno: e, Status: e.String(), Payload: payload}
}

func (h *Host) NotifyUnsolicited(kind ril.Unsolicited, payload any) {
	h.mu.Lock()
	h.seq++
	h.ring[h.seq%ringSize] = Event{
		Seq:     h.seq,
		Kind:    kind,
		Name:    kind.String(),
		Payload: payload,
		At:      time.Now(),
	}
	h.mu.Unlock()
	h.logger.Debug("📣 unsolicited", "kind", kind)
}

// Events returns the buffered events newer than since, oldest first, and the
// sequence number of the newest event.
func (h *Host) Events(since uint64) ([]Event, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	first := since + 1
	if h.seq >= ringSize && first <= h.seq-ringSize {
		first = h.seq - ringSize + 1
	}
	out := []Event{}
	for seq := first; seq <= h.seq; seq++ {
		out = append(out, h.ring[seq%ringSize])
	}
	return out, h.seq
}
