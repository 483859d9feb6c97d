package phone

import (
	"context"

	"github.com/godbus/dbus/v5"

	"ofonoril/calls"
	"ofonoril/ofono"
	"ofonoril/ril"
)

// callControl performs VoiceCall actions for the registry.
type callControl struct {
	m *Modem
}

func (c callControl) object(path string) *ofono.Object {
	return ofono.NewObject(c.m.caller, dbus.ObjectPath(path), ofono.InterfaceVoiceCall)
}

func (c callControl) Answer(ctx context.Context, path string) error {
	return c.object(path).Call(ctx, "Answer").Err
}

func (c callControl) Hangup(ctx context.Context, path string) error {
	return c.object(path).Call(ctx, "Hangup").Err
}

func (m *Modem) controller() (context.Context, context.CancelFunc, callControl) {
	ctx, cancel := m.callContext(m.cfg.CallTimeout)
	return ctx, cancel, callControl{m}
}

func (m *Modem) requestCurrentCalls(_ any, t ril.Token) {
	m.complete(t, ril.Success, m.calls.Snapshot())
}

func clirMode(clir int) string {
	switch clir {
	case 1:
		return "enabled"
	case 2:
		return "disabled"
	}
	return "default"
}

// Call control requests complete SUCCESS whatever ofono answers. The host
// re-reads GET_CURRENT_CALLS to learn the outcome.

func (m *Modem) requestDial(payload any, t ril.Token) {
	d, ok := payload.(ril.Dial)
	if !ok || d.Address == "" {
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	var p dbus.ObjectPath
	if err := m.invoke(ofono.InterfaceVoiceCallManager, "Dial", d.Address, clirMode(d.CLIR)).Store(&p); err != nil {
		m.logger.Warn("📞 dial failed", "err", err)
		m.mu.Lock()
		m.lastCallFail = ril.CallFailErrorUnspecified
		m.mu.Unlock()
	} else {
		m.logger.Info("📞 dialing", "path", p)
	}
	m.complete(t, ril.Success, nil)
}

func (m *Modem) requestAnswer(_ any, t ril.Token) {
	ctx, cancel, ctl := m.controller()
	defer cancel()
	m.calls.Answer(ctx, ctl)
	m.complete(t, ril.Success, nil)
}

func (m *Modem) requestHangup(payload any, t ril.Token) {
	index, ok := intArg(payload)
	if !ok || index <= 0 {
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	ctx, cancel, ctl := m.controller()
	defer cancel()
	if !m.calls.Hangup(ctx, calls.Criteria{Index: index}, ctl) {
		m.logger.Warn("📞 no call to hang up", "index", index)
	}
	m.complete(t, ril.Success, nil)
}

// hangupFirst hangs up the first call in the first state that has one.
func (m *Modem) hangupFirst(states ...ril.CallState) handler {
	return func(_ any, t ril.Token) {
		ctx, cancel, ctl := m.controller()
		defer cancel()
		for _, st := range states {
			if m.calls.Hangup(ctx, calls.Criteria{State: st}, ctl) {
				break
			}
		}
		m.complete(t, ril.Success, nil)
	}
}

func (m *Modem) requestSwitch(_ any, t ril.Token) {
	method := "SwapCalls"
	if _, waiting := m.calls.Find(calls.Criteria{State: ril.CallWaiting}); waiting {
		method = "HoldAndAnswer"
	}
	if err := m.invoke(ofono.InterfaceVoiceCallManager, method).Err; err != nil {
		m.logger.Warn("📞 switch failed", "method", method, "err", err)
	}
	m.complete(t, ril.Success, nil)
}

// callManager calls a VoiceCallManager method that takes no arguments.
func (m *Modem) callManager(method string) handler {
	return func(_ any, t ril.Token) {
		if err := m.invoke(ofono.InterfaceVoiceCallManager, method).Err; err != nil {
			m.logger.Warn("📞 call manager failed", "method", method, "err", err)
		}
		m.complete(t, ril.Success, nil)
	}
}

func (m *Modem) requestSeparate(payload any, t ril.Token) {
	index, ok := intArg(payload)
	if !ok || index <= 0 {
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	if e, found := m.calls.Find(calls.Criteria{Index: index}); found {
		err := m.invoke(ofono.InterfaceVoiceCallManager, "PrivateChat", dbus.ObjectPath(e.Path)).Err
		if err != nil {
			m.logger.Warn("📞 private chat failed", "path", e.Path, "err", err)
		}
	}
	m.complete(t, ril.Success, nil)
}

func (m *Modem) requestLastCallFailCause(_ any, t ril.Token) {
	m.mu.Lock()
	cause := m.lastCallFail
	m.mu.Unlock()
	m.complete(t, ril.Success, cause)
}

func (m *Modem) requestTones(payload any, t ril.Token) {
	tones, ok := stringArg(payload)
	if !ok || tones == "" {
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	if err := m.invoke(ofono.InterfaceVoiceCallManager, "SendTones", tones).Err; err != nil {
		m.logger.Warn("📞 tones failed", "err", err)
	}
	m.complete(t, ril.Success, nil)
}
