// Package calls keeps the voice calls announced by VoiceCallManager in sync
// with their per-call property changes.
package calls

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"ofonoril/ril"
)

var (
	ErrInvalidState = errors.New("calls: invalid call state")
	ErrUnknownCall  = errors.New("calls: unknown call")
	ErrDuplicate    = errors.New("calls: call already registered")
)

var states = map[string]ril.CallState{
	"active":   ril.CallActive,
	"held":     ril.CallHolding,
	"dialing":  ril.CallDialing,
	"alerting": ril.CallAlerting,
	"incoming": ril.CallIncoming,
	"waiting":  ril.CallWaiting,
}

// ParseState maps an ofono call state to its RIL value.
func ParseState(s string) (ril.CallState, error) {
	if st, ok := states[s]; ok {
		return st, nil
	}
	return -1, fmt.Errorf("%w: %q", ErrInvalidState, s)
}

// Properties is the subset of a VoiceCall property bundle used to build a
// call record.
type Properties struct {
	State              string
	LineIdentification string
	Name               string
	Multiparty         bool
}

// Controller performs call actions on the modem.
type Controller interface {
	Answer(ctx context.Context, path string) error
	Hangup(ctx context.Context, path string) error
}

// Hooks are called outside the registry lock.
type Hooks struct {
	Changed func()
	Ring    func()
}

// Entry is a call together with its ofono object path.
type Entry struct {
	Path    string
	Call    ril.Call
	Started time.Time
	Reason  string
}

type record struct {
	Entry
	detach func()
}

// Criteria selects a call by index, or by state when Index is zero.
type Criteria struct {
	Index int
	State ril.CallState
}

func (c Criteria) match(call ril.Call) bool {
	if c.Index != 0 {
		return call.Index == c.Index
	}
	return call.State == c.State
}

type Registry struct {
	mu     sync.Mutex
	calls  []*record
	hooks  Hooks
	logger *log.Logger
}

func New(hooks Hooks, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{hooks: hooks, logger: logger}
}

func (r *Registry) changed() {
	if r.hooks.Changed != nil {
		r.hooks.Changed()
	}
}

func presentation(s string) int {
	if s == "" {
		return ril.PresentationUnknown
	}
	return ril.PresentationAllowed
}

func toa(number string) int {
	if strings.HasPrefix(number, "+") {
		return ril.TOAInternational
	}
	return ril.TOAUnknown
}

// pathIndex returns the trailing number of the last path element, as in
// /isimodem/voicecall01.
func pathIndex(p string) int {
	base := path.Base(p)
	i := len(base)
	for i > 0 && base[i-1] >= '0' && base[i-1] <= '9' {
		i--
	}
	n, err := strconv.Atoi(base[i:])
	if err != nil {
		return 0
	}
	return n
}

// index must be called with the lock held.
func (r *Registry) index(p string) int {
	used := make(map[int]bool, len(r.calls))
	for _, c := range r.calls {
		used[c.Call.Index] = true
	}
	if n := pathIndex(p); n > 0 && !used[n] {
		return n
	}
	n := 1
	for used[n] {
		n++
	}
	return n
}

// Add registers a call announced by CallAdded. detach is called when the
// call is removed.
func (r *Registry) Add(p string, props Properties, detach func()) (ril.Call, error) {
	st, err := ParseState(props.State)
	if err != nil {
		return ril.Call{}, err
	}

	r.mu.Lock()
	for _, c := range r.calls {
		if c.Path == p {
			r.mu.Unlock()
			return ril.Call{}, fmt.Errorf("%w: %s", ErrDuplicate, p)
		}
	}
	rec := &record{
		Entry: Entry{
			Path:    p,
			Started: time.Now(),
			Call: ril.Call{
				State:              st,
				Index:              r.index(p),
				TOA:                toa(props.LineIdentification),
				IsMultiparty:       props.Multiparty,
				IsMT:               st == ril.CallIncoming || st == ril.CallWaiting,
				IsVoice:            true,
				Number:             props.LineIdentification,
				NumberPresentation: presentation(props.LineIdentification),
				Name:               props.Name,
				NamePresentation:   presentation(props.Name),
			},
		},
		detach: detach,
	}
	r.calls = append(r.calls, rec)
	call := rec.Call
	r.mu.Unlock()

	r.logger.Info("📞 call added", "path", p, "index", call.Index, "state", call.State, "number", call.Number)
	r.changed()
	if call.State == ril.CallIncoming && r.hooks.Ring != nil {
		r.hooks.Ring()
	}
	return call, nil
}

// Remove drops the call announced by CallRemoved and returns its last entry.
func (r *Registry) Remove(p string) (Entry, error) {
	r.mu.Lock()
	i := slices.IndexFunc(r.calls, func(c *record) bool { return c.Path == p })
	if i < 0 {
		r.mu.Unlock()
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownCall, p)
	}
	rec := r.calls[i]
	r.calls = slices.Delete(r.calls, i, i+1)
	r.mu.Unlock()

	if rec.detach != nil {
		rec.detach()
	}
	r.logger.Info("📞 call removed", "path", p, "index", rec.Call.Index, "reason", rec.Reason)
	r.changed()
	return rec.Entry, nil
}

// SetProperty applies a VoiceCall PropertyChanged. An unknown state string
// leaves the record untouched.
func (r *Registry) SetProperty(p, name string, value any) error {
	r.mu.Lock()
	var rec *record
	for _, c := range r.calls {
		if c.Path == p {
			rec = c
			break
		}
	}
	if rec == nil {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownCall, p)
	}

	changed := true
	switch name {
	case "State":
		s, _ := value.(string)
		st, err := ParseState(s)
		if err != nil {
			r.mu.Unlock()
			return err
		}
		rec.Call.State = st
	case "LineIdentification":
		s, _ := value.(string)
		rec.Call.Number = s
		rec.Call.NumberPresentation = presentation(s)
		rec.Call.TOA = toa(s)
	case "Name":
		s, _ := value.(string)
		rec.Call.Name = s
		rec.Call.NamePresentation = presentation(s)
	case "Multiparty":
		b, _ := value.(bool)
		rec.Call.IsMultiparty = b
	default:
		changed = false
	}
	r.mu.Unlock()

	if changed {
		r.logger.Debug("📞 call property", "path", p, "name", name, "value", value)
		r.changed()
	}
	return nil
}

// SetDisconnectReason records the DisconnectReason signal for a call.
func (r *Registry) SetDisconnectReason(p, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.calls {
		if c.Path == p {
			c.Reason = reason
			return
		}
	}
}

// Snapshot copies out the current calls ordered by index.
func (r *Registry) Snapshot() []ril.Call {
	r.mu.Lock()
	out := make([]ril.Call, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.Call)
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b ril.Call) int { return a.Index - b.Index })
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Find returns the first call, in arrival order, matching c.
func (r *Registry) Find(c Criteria) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.calls {
		if c.match(rec.Call) {
			return rec.Entry, true
		}
	}
	return Entry{}, false
}

// Answer answers the first incoming call. The modem's reply is only logged:
// the host re-reads the call list to learn the outcome.
func (r *Registry) Answer(ctx context.Context, ctl Controller) bool {
	e, ok := r.Find(Criteria{State: ril.CallIncoming})
	if !ok {
		r.logger.Warn("📞 no incoming call to answer")
		return false
	}
	if err := ctl.Answer(ctx, e.Path); err != nil {
		r.logger.Warn("📞 answer failed", "path", e.Path, "err", err)
	}
	return true
}

// Hangup hangs up the first call matching c, ignoring the modem's reply like
// Answer.
func (r *Registry) Hangup(ctx context.Context, c Criteria, ctl Controller) bool {
	e, ok := r.Find(c)
	if !ok {
		return false
	}
	if err := ctl.Hangup(ctx, e.Path); err != nil {
		r.logger.Warn("📞 hangup failed", "path", e.Path, "err", err)
	}
	return true
}
