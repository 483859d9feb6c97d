package radio

import (
	"fmt"
	"sync"

	"ofonoril/ril"
)

type SIMStatus int

const (
	SIMAbsent SIMStatus = iota
	SIMNotReady
	SIMReady
	SIMPin
	SIMPuk
	SIMNetworkPersonalization
)

func (s SIMStatus) String() string {
	switch s {
	case SIMAbsent:
		return "absent"
	case SIMNotReady:
		return "not-ready"
	case SIMReady:
		return "ready"
	case SIMPin:
		return "pin"
	case SIMPuk:
		return "puk"
	case SIMNetworkPersonalization:
		return "network-personalization"
	}
	return fmt.Sprintf("sim-status-%d", int(s))
}

var apps = map[SIMStatus]ril.AppStatus{
	SIMAbsent: {},
	SIMNotReady: {
		AppType:  ril.AppSIM,
		AppState: ril.AppStateDetected,
	},
	SIMReady: {
		AppType:       ril.AppSIM,
		AppState:      ril.AppStateReady,
		PersoSubstate: ril.PersoReady,
	},
	SIMPin: {
		AppType:  ril.AppSIM,
		AppState: ril.AppStatePin,
		Pin1:     ril.PinEnabledNotVerified,
	},
	SIMPuk: {
		AppType:  ril.AppSIM,
		AppState: ril.AppStatePuk,
		Pin1:     ril.PinEnabledBlocked,
	},
	SIMNetworkPersonalization: {
		AppType:       ril.AppSIM,
		AppState:      ril.AppStateSubscriptionPerso,
		PersoSubstate: ril.PersoSIMNetwork,
		Pin1:          ril.PinEnabledNotVerified,
	},
}

// SIM tracks the card as reported by SimManager.
type SIM struct {
	mu     sync.Mutex
	status SIMStatus
	imsi   string
}

func NewSIM() *SIM {
	return &SIM{status: SIMNotReady}
}

// Status reports the SIM status as seen through the current radio state.
func (s *SIM) Status(radio ril.RadioState) SIMStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch radio {
	case ril.RadioOff, ril.RadioUnavailable:
		return SIMNotReady
	}
	if s.status == SIMReady && radio != ril.RadioSIMReady {
		return SIMNotReady
	}
	return s.status
}

// SetPresent applies the "Present" property and reports whether the status
// changed.
func (s *SIM) SetPresent(present bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case !present:
		return s.set(SIMAbsent)
	case s.status == SIMAbsent:
		return s.set(SIMReady)
	}
	return false
}

// SetPinRequired applies the "PinRequired" property.
func (s *SIM) SetPinRequired(pin string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == SIMAbsent {
		return false
	}
	switch pin {
	case "none":
		return s.set(SIMReady)
	case "pin":
		return s.set(SIMPin)
	case "puk":
		return s.set(SIMPuk)
	case "network":
		return s.set(SIMNetworkPersonalization)
	}
	return s.set(SIMNotReady)
}

func (s *SIM) set(st SIMStatus) bool {
	if s.status == st {
		return false
	}
	s.status = st
	return true
}

// SetIMSI stores the subscriber identity the first time it is seen.
func (s *SIM) SetIMSI(imsi string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.imsi != "" || imsi == "" {
		return false
	}
	s.imsi = imsi
	return true
}

func (s *SIM) IMSI() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imsi
}

// CardStatus builds the GET_SIM_STATUS reply: one GSM application when a
// card is present, none when absent.
func (s *SIM) CardStatus(radio ril.RadioState) ril.CardStatus {
	st := s.Status(radio)
	cs := ril.CardStatus{
		CardState:         ril.CardAbsent,
		UniversalPinState: ril.PinUnknown,
		GSMUMTSAppIndex:   ril.CardMaxApps,
		CDMAAppIndex:      ril.CardMaxApps,
	}
	if st == SIMAbsent {
		return cs
	}
	cs.CardState = ril.CardPresent
	cs.GSMUMTSAppIndex = 0
	cs.Applications = []ril.AppStatus{apps[st]}
	return cs
}
