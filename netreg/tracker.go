// Package netreg tracks NetworkRegistration properties and answers the
// registration, operator and signal strength requests from them.
package netreg

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"go.uber.org/atomic"

	"ofonoril/ril"
)

// Status is the registration state code the host expects.
type Status int

const (
	NotRegistered Status = 0
	Registered    Status = 1
	Searching     Status = 2
	Roaming       Status = 5
)

func ParseStatus(s string) Status {
	switch s {
	case "searching":
		return Searching
	case "registered":
		return Registered
	case "roaming":
		return Roaming
	}
	return NotRegistered
}

// Radio technology codes.
const (
	TechUnknown = 0
	TechGPRS    = 1
	TechEDGE    = 2
	TechUMTS    = 3
	TechHSPA    = 11
	TechLTE     = 14
)

var technologies = map[string]int{
	"gsm":  TechGPRS,
	"edge": TechEDGE,
	"umts": TechUMTS,
	"hspa": TechHSPA,
	"lte":  TechLTE,
}

// ParseTechnology maps an ofono technology name. ok is false for names it
// does not know.
func ParseTechnology(s string) (tech int, ok bool) {
	tech, ok = technologies[s]
	return tech, ok
}

const (
	ModeAuto   = 0
	ModeManual = 1
)

// Rescale maps ofono's 0-100 strength to the 0-31 range, with 99 for
// unknown.
func Rescale(raw int) int {
	if raw <= 0 || raw > 100 {
		return ril.SignalUnknown
	}
	v := (raw*31 + 50) / 100
	if v == 0 {
		return ril.SignalUnknown
	}
	return min(v, 31)
}

type Snapshot struct {
	Status     Status
	LAC        uint32
	CellID     uint32
	Strength   int
	Operator   string
	MCC        string
	MNC        string
	Technology int
	Mode       int
}

type Hooks struct {
	Strength func(ril.SignalStrength)
	Changed  func()
}

type Tracker struct {
	mu       sync.Mutex
	snap     Snapshot
	screenOn *atomic.Bool
	hooks    Hooks
	logger   *log.Logger
	props    map[string]func(s *Snapshot, v any) bool
}

func New(hooks Hooks, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	t := &Tracker{
		screenOn: atomic.NewBool(true),
		hooks:    hooks,
		logger:   logger,
	}
	t.props = map[string]func(s *Snapshot, v any) bool{
		"Status": func(s *Snapshot, v any) bool {
			st := ParseStatus(str(v))
			changed := s.Status != st
			s.Status = st
			if st == NotRegistered {
				changed = changed || s.Operator != "" || s.MCC != "" || s.MNC != ""
				s.Operator, s.MCC, s.MNC = "", "", ""
			}
			return changed
		},
		"LocationAreaCode": func(s *Snapshot, v any) bool {
			return swap(&s.LAC, uint32(num(v)))
		},
		"CellId": func(s *Snapshot, v any) bool {
			return swap(&s.CellID, uint32(num(v)))
		},
		"Name": func(s *Snapshot, v any) bool {
			return swap(&s.Operator, str(v))
		},
		"MobileCountryCode": func(s *Snapshot, v any) bool {
			return swap(&s.MCC, str(v))
		},
		"MobileNetworkCode": func(s *Snapshot, v any) bool {
			return swap(&s.MNC, str(v))
		},
		"Technology": func(s *Snapshot, v any) bool {
			tech, ok := ParseTechnology(str(v))
			if !ok {
				t.logger.Warn("📶 unknown technology, keeping last", "technology", v)
				return false
			}
			return swap(&s.Technology, tech)
		},
		"Mode": func(s *Snapshot, v any) bool {
			switch str(v) {
			case "auto", "auto-only":
				return swap(&s.Mode, ModeAuto)
			case "manual":
				return swap(&s.Mode, ModeManual)
			}
			return false
		},
	}
	return t
}

func swap[T comparable](dst *T, v T) bool {
	if *dst == v {
		return false
	}
	*dst = v
	return true
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) int64 {
	switch n := v.(type) {
	case byte:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}

// Apply handles a NetworkRegistration property.
func (t *Tracker) Apply(name string, value any) {
	if name == "Strength" {
		t.setStrength(int(num(value)))
		return
	}
	fn, ok := t.props[name]
	if !ok {
		return
	}

	t.mu.Lock()
	changed := fn(&t.snap, value)
	t.mu.Unlock()

	t.logger.Debug("📡 registration", "name", name, "value", value)
	if changed && t.hooks.Changed != nil {
		t.hooks.Changed()
	}
}

func (t *Tracker) setStrength(raw int) {
	t.mu.Lock()
	t.snap.Strength = raw
	t.mu.Unlock()

	t.logger.Debug("📶 signal strength", "raw", raw, "screen", t.screenOn.Load())
	if t.screenOn.Load() {
		t.push()
	}
}

func (t *Tracker) push() {
	if t.hooks.Strength != nil {
		t.hooks.Strength(t.SignalStrength())
	}
}

// SetScreen records the screen state. Turning the screen on pushes the
// current strength once.
func (t *Tracker) SetScreen(on bool) {
	if t.screenOn.Swap(on) != on && on {
		t.push()
	}
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

func (t *Tracker) SignalStrength() ril.SignalStrength {
	return ril.NewSignalStrength(Rescale(t.Snapshot().Strength))
}

func cell(s Snapshot) (string, string) {
	return fmt.Sprintf("%x", s.LAC), fmt.Sprintf("%x", s.CellID)
}

// VoiceRegistration answers VOICE_REGISTRATION_STATE.
func (t *Tracker) VoiceRegistration() ([]string, ril.Errno) {
	s := t.Snapshot()
	if s.Status == NotRegistered {
		return nil, ril.RadioNotAvailable
	}
	lac, cid := cell(s)
	return []string{fmt.Sprint(int(s.Status)), lac, cid, fmt.Sprint(s.Technology)}, ril.Success
}

// DataRegistration answers DATA_REGISTRATION_STATE. Only home and roaming
// registrations are reported.
func (t *Tracker) DataRegistration(attached bool) ([]string, ril.Errno) {
	s := t.Snapshot()
	if s.Status != Registered && s.Status != Roaming {
		return nil, ril.RadioNotAvailable
	}
	state := "0"
	if attached {
		state = "1"
	}
	lac, cid := cell(s)
	return []string{state, lac, cid, fmt.Sprint(s.Technology)}, ril.Success
}

// Operator answers OPERATOR with long name, short name and numeric id.
func (t *Tracker) Operator() ([]string, ril.Errno) {
	s := t.Snapshot()
	if s.Status == NotRegistered {
		return nil, ril.RadioNotAvailable
	}
	return []string{s.Operator, s.Operator, s.MCC + s.MNC}, ril.Success
}
