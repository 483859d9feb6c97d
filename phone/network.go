package phone

import (
	"github.com/godbus/dbus/v5"

	"ofonoril/ofono"
	"ofonoril/ril"
)

func (m *Modem) requestSignalStrength(_ any, t ril.Token) {
	m.complete(t, ril.Success, m.netreg.SignalStrength())
}

func (m *Modem) requestVoiceRegistration(_ any, t ril.Token) {
	reg, e := m.netreg.VoiceRegistration()
	m.complete(t, e, reg)
}

func (m *Modem) requestDataRegistration(_ any, t ril.Token) {
	reg, e := m.netreg.DataRegistration(m.propBool(ofono.InterfaceConnectionManager, "Attached"))
	m.complete(t, e, reg)
}

func (m *Modem) requestOperator(_ any, t ril.Token) {
	op, e := m.netreg.Operator()
	m.complete(t, e, op)
}

func (m *Modem) requestSelectionMode(_ any, t ril.Token) {
	m.complete(t, ril.Success, m.netreg.Snapshot().Mode)
}

func (m *Modem) requestSelectAutomatic(_ any, t ril.Token) {
	if err := m.invoke(ofono.InterfaceNetworkRegistration, "Register").Err; err != nil {
		m.logger.Warn("📡 register failed", "err", err)
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	m.complete(t, ril.Success, nil)
}

func (m *Modem) requestSelectManual(payload any, t ril.Token) {
	mccmnc, ok := stringArg(payload)
	if !ok || mccmnc == "" {
		m.complete(t, ril.IllegalSIMOrME, nil)
		return
	}
	op := ofono.NewObject(m.caller, m.cfg.Modem+dbus.ObjectPath("/operator/"+mccmnc), ofono.InterfaceNetworkOperator)
	if err := m.callObject(op, "Register").Err; err != nil {
		m.logger.Warn("📡 manual register failed", "operator", mccmnc, "err", err)
		m.complete(t, ril.IllegalSIMOrME, nil)
		return
	}
	m.complete(t, ril.Success, nil)
}

func operatorStatus(s string) string {
	switch s {
	case "available", "current", "forbidden":
		return s
	}
	return "unknown"
}

// requestScan runs the operator scan off the calling goroutine, it can take
// minutes.
func (m *Modem) requestScan(_ any, t ril.Token) {
	obj := m.object(ofono.InterfaceNetworkRegistration)
	if obj == nil {
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	go func() {
		ctx, cancel := m.callContext(m.cfg.ScanTimeout)
		defer cancel()

		var ops []ofono.PathProperties
		if err := obj.Call(ctx, "Scan").Store(&ops); err != nil {
			m.logger.Warn("📡 scan failed", "err", err)
			m.complete(t, ril.GenericFailure, nil)
			return
		}
		if len(ops) == 0 {
			m.complete(t, ril.GenericFailure, nil)
			return
		}
		out := make([]string, 0, 4*len(ops))
		for _, op := range ops {
			p := ofono.Properties(op.Properties)
			name := p.String("Name")
			out = append(out, name, name,
				p.String("MobileCountryCode")+p.String("MobileNetworkCode"),
				operatorStatus(p.String("Status")))
		}
		m.logger.Info("📡 scan done", "operators", len(ops))
		m.complete(t, ril.Success, out)
	}()
}

var preferredTypes = map[int]string{
	ril.NetworkTypeGSMWCDMA:     "any",
	ril.NetworkTypeGSMWCDMAAuto: "any",
	ril.NetworkTypeGSMOnly:      "gsm",
	ril.NetworkTypeWCDMAOnly:    "umts",
	ril.NetworkTypeLTEOnly:      "lte",
}

var preferenceTypes = map[string]int{
	"any":  ril.NetworkTypeGSMWCDMAAuto,
	"gsm":  ril.NetworkTypeGSMOnly,
	"umts": ril.NetworkTypeWCDMAOnly,
	"lte":  ril.NetworkTypeLTEOnly,
}

func (m *Modem) requestSetPreferredType(payload any, t ril.Token) {
	n, ok := intArg(payload)
	pref, known := preferredTypes[n]
	if !ok || !known {
		m.complete(t, ril.ModeNotSupported, nil)
		return
	}
	if err := m.setProperty(ofono.InterfaceRadioSettings, "TechnologyPreference", pref); err != nil {
		m.logger.Warn("📡 could not set technology", "pref", pref, "err", err)
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	m.complete(t, ril.Success, nil)
}

func (m *Modem) requestGetPreferredType(_ any, t ril.Token) {
	pref := m.propString(ofono.InterfaceRadioSettings, "TechnologyPreference")
	n, ok := preferenceTypes[pref]
	if !ok {
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	m.complete(t, ril.Success, n)
}

// CDMA roaming preference values
const (
	roamingHomeOnly   = 0
	roamingAffiliated = 1
	roamingAny        = 2
)

func (m *Modem) requestQueryRoaming(_ any, t ril.Token) {
	pref := roamingHomeOnly
	if m.propBool(ofono.InterfaceConnectionManager, "RoamingAllowed") {
		pref = roamingAny
	}
	m.complete(t, ril.Success, pref)
}

func (m *Modem) requestSetRoaming(payload any, t ril.Token) {
	pref, ok := intArg(payload)
	if !ok {
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	allowed := pref != roamingHomeOnly && pref != roamingAffiliated
	if err := m.setProperty(ofono.InterfaceConnectionManager, "RoamingAllowed", allowed); err != nil {
		m.logger.Warn("🌐 could not set roaming", "err", err)
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	m.complete(t, ril.Success, nil)
}

// requestScreenState gates signal strength pushes and lets the modem use
// fast dormancy while the screen is off.
func (m *Modem) requestScreenState(payload any, t ril.Token) {
	on, ok := intArg(payload)
	if !ok {
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	m.netreg.SetScreen(on != 0)
	if m.object(ofono.InterfaceRadioSettings) != nil {
		if err := m.setProperty(ofono.InterfaceRadioSettings, "FastDormancy", on == 0); err != nil {
			m.logger.Warn("📡 could not set fast dormancy", "err", err)
		}
	}
	m.complete(t, ril.Success, nil)
}
