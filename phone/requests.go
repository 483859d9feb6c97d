package phone

import (
	"errors"

	"ofonoril/ofono"
	"ofonoril/pending"
	"ofonoril/ril"
)

func (m *Modem) requestSIMStatus(_ any, t ril.Token) {
	m.complete(t, ril.Success, m.sim.CardStatus(m.radio.State()))
}

func (m *Modem) requestRadioPower(payload any, t ril.Token) {
	on, ok := intArg(payload)
	if !ok {
		m.complete(t, ril.GenericFailure, nil)
		return
	}

	if on == 0 {
		if err := m.setProperty(ofono.InterfaceModem, "Powered", false); err != nil {
			m.logger.Warn("🔋 could not power off", "err", err)
		}
		m.radio.Set(ril.RadioOff)
		m.complete(t, ril.Success, nil)
		return
	}

	if m.propBool(ofono.InterfaceModem, "Powered") {
		// no PropertyChanged will follow
		m.complete(t, ril.Success, nil)
		m.checkSIM()
		return
	}
	if err := m.power.Park(t); err != nil {
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	if err := m.setProperty(ofono.InterfaceModem, "Powered", true); err != nil {
		m.logger.Warn("🔋 could not power on", "err", err)
		m.power.Resolve(ril.GenericFailure, nil)
	}
}

// parkOrReply completes with value when it is already known, or parks t in
// slot until the modem reports it.
func (m *Modem) parkOrReply(slot *pending.Slot, value string, t ril.Token) {
	if value != "" {
		m.complete(t, ril.Success, value)
		return
	}
	if err := slot.Park(t); err != nil {
		m.complete(t, ril.GenericFailure, nil)
	}
}

func (m *Modem) requestIMEI(_ any, t ril.Token) {
	m.mu.Lock()
	serial := m.serial
	m.mu.Unlock()
	m.parkOrReply(m.imei, serial, t)
}

func (m *Modem) requestBasebandVersion(_ any, t ril.Token) {
	m.mu.Lock()
	revision := m.revision
	m.mu.Unlock()
	m.parkOrReply(m.baseband, revision, t)
}

func (m *Modem) requestIMSI(_ any, t ril.Token) {
	imsi := m.sim.IMSI()
	if imsi == "" {
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	m.complete(t, ril.Success, imsi)
}

// simCall maps a PIN request onto a SimManager method taking the PIN type
// followed by n strings from the payload.
func (m *Modem) simCall(method, pinType string, n int) handler {
	return func(payload any, t ril.Token) {
		args, _ := payload.([]string)
		if len(args) < n {
			m.complete(t, ril.GenericFailure, nil)
			return
		}
		callArgs := []any{pinType}
		for _, a := range args[:n] {
			callArgs = append(callArgs, a)
		}
		// remaining retries are not known
		retries := []int{-1}
		if err := m.invoke(ofono.InterfaceSimManager, method, callArgs...).Err; err != nil {
			m.logger.Warn("💳 pin rejected", "method", method, "type", pinType, "err", err)
			m.complete(t, ril.PasswordIncorrect, retries)
			return
		}
		m.complete(t, ril.Success, retries)
	}
}

func (m *Modem) requestSetMute(payload any, t ril.Token) {
	mute, ok := intArg(payload)
	if !ok {
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	if err := m.audio.SetMute(mute != 0); err != nil {
		m.logger.Warn("🔇 could not set mute", "err", err)
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	m.complete(t, ril.Success, nil)
}

func (m *Modem) requestGetMute(_ any, t ril.Token) {
	muted := 0
	if m.audio.Muted() {
		muted = 1
	}
	m.complete(t, ril.Success, muted)
}

func (m *Modem) requestSendUSSD(payload any, t ril.Token) {
	text, ok := stringArg(payload)
	if !ok {
		m.complete(t, ril.GenericFailure, nil)
		return
	}

	var response string
	var err error
	if m.propString(ofono.InterfaceSupplementaryServices, "State") == "user-response" {
		err = m.invoke(ofono.InterfaceSupplementaryServices, "Respond", text).Store(&response)
	} else {
		response, err = m.initiateUSSD(text)
	}
	if err != nil {
		m.logger.Warn("📟 ussd failed", "err", err)
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	m.complete(t, ril.Success, nil)
	m.notify(ril.UnsolOnUSSD, []string{"0", response})
}

var errNotUSSD = errors.New("reply is not a USSD string")

// initiateUSSD returns the network's answer to a USSD string. Service codes
// for forwarding or barring answer with other types.
func (m *Modem) initiateUSSD(text string) (string, error) {
	var kind string
	var value any
	if err := m.invoke(ofono.InterfaceSupplementaryServices, "Initiate", text).Store(&kind, &value); err != nil {
		return "", err
	}
	if s, ok := value.(string); ok && kind == "USSD" {
		return s, nil
	}
	m.logger.Debug("📟 ussd reply", "kind", kind, "value", value)
	return "", errNotUSSD
}

func (m *Modem) requestCancelUSSD(_ any, t ril.Token) {
	if err := m.invoke(ofono.InterfaceSupplementaryServices, "Cancel").Err; err != nil {
		m.logger.Warn("📟 ussd cancel failed", "err", err)
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	m.complete(t, ril.Success, nil)
}
