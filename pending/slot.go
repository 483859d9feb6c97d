// Package pending parks request tokens whose answer arrives later as an
// ofono property change.
package pending

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/looplab/fsm"

	"ofonoril/ril"
	"ofonoril/timers"
)

var ErrBusy = errors.New("pending: a request is already awaiting its reply")

const (
	StateIdle     = "idle"
	StateAwaiting = "awaiting"

	eventPark    = "park"
	eventResolve = "resolve"
)

type Options struct {
	// Timeout completes parked tokens with GENERIC_FAILURE. Zero waits forever.
	Timeout time.Duration
	// Exclusive rejects a second request instead of queueing it.
	Exclusive bool
	Logger    *log.Logger
}

// Slot holds the tokens waiting for one kind of asynchronous answer.
type Slot struct {
	name   string
	host   ril.Host
	ctx    context.Context
	opts   Options
	logger *log.Logger

	mu     sync.Mutex
	fsm    *fsm.FSM
	tokens []ril.Token
	timer  *timers.ResettableTimer
	gen    uint64
}

func NewSlot(ctx context.Context, name string, host ril.Host, opts Options) *Slot {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Slot{
		name:   name,
		host:   host,
		ctx:    ctx,
		opts:   opts,
		logger: logger.With("slot", name),
	}
	s.fsm = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventPark, Src: []string{StateIdle}, Dst: StateAwaiting},
			{Name: eventResolve, Src: []string{StateAwaiting}, Dst: StateIdle},
		},
		fsm.Callbacks{
			"enter_" + StateAwaiting: s.onAwaiting,
			"leave_" + StateAwaiting: s.onIdle,
		},
	)
	return s
}

// callbacks run with s.mu held
func (s *Slot) onAwaiting(_ context.Context, _ *fsm.Event) {
	s.gen++
	if s.opts.Timeout <= 0 {
		return
	}
	gen := s.gen
	s.timer = timers.New(s.ctx, s.opts.Timeout, func() { s.expire(gen) })
}

func (s *Slot) onIdle(_ context.Context, _ *fsm.Event) {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Slot) expire(gen uint64) {
	s.mu.Lock()
	stale := gen != s.gen || s.fsm.Is(StateIdle)
	s.mu.Unlock()
	if stale {
		return
	}
	s.logger.Warn("⏱️ pending request timed out")
	s.Resolve(ril.GenericFailure, nil)
}

// Park stores t until Resolve. While a reply is awaited further tokens are
// queued, or rejected with ErrBusy for an exclusive slot.
func (s *Slot) Park(t ril.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fsm.Is(StateAwaiting) {
		if s.opts.Exclusive {
			return ErrBusy
		}
		s.tokens = append(s.tokens, t)
		s.logger.Debug("⏳ request queued", "token", t, "queued", len(s.tokens))
		return nil
	}
	if err := s.fsm.Event(context.Background(), eventPark); err != nil {
		return err
	}
	s.tokens = append(s.tokens, t)
	s.logger.Debug("⏳ request parked", "token", t)
	return nil
}

// Resolve completes every parked token in arrival order and returns how many
// there were.
func (s *Slot) Resolve(e ril.Errno, payload any) int {
	s.mu.Lock()
	if !s.fsm.Is(StateAwaiting) {
		s.mu.Unlock()
		return 0
	}
	tokens := s.tokens
	s.tokens = nil
	if err := s.fsm.Event(context.Background(), eventResolve); err != nil {
		s.logger.Error("resolve", "err", err)
	}
	s.mu.Unlock()

	for _, t := range tokens {
		s.host.CompleteRequest(t, e, payload)
	}
	return len(tokens)
}

func (s *Slot) awaiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fsm.Is(StateAwaiting)
}

func (s *Slot) Name() string {
	return s.name
}
