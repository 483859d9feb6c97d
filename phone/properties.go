package phone

import (
	"slices"
	"time"

	"github.com/godbus/dbus/v5"

	"ofonoril/calls"
	"ofonoril/db"
	"ofonoril/ofono"
	"ofonoril/pdu"
	"ofonoril/ril"
)

// registration properties handled by the tracker
var netregProperties = []string{
	"Status", "LocationAreaCode", "CellId", "Name", "MobileCountryCode",
	"MobileNetworkCode", "Technology", "Mode", "Strength",
}

func (m *Modem) propertyTables() map[string]propertyTable {
	netregTable := propertyTable{}
	for _, name := range netregProperties {
		netregTable[name] = func(v any) { m.netreg.Apply(name, v) }
	}

	return map[string]propertyTable{
		ofono.InterfaceModem: {
			"Powered":    m.onPowered,
			"Online":     m.onOnline,
			"Interfaces": m.onInterfaces,
			"Serial":     m.onSerial,
			"Revision":   m.onRevision,
			"Features":   m.onFeatures,
		},
		ofono.InterfaceSimManager: {
			"SubscriberIdentity": m.onSubscriberIdentity,
			"Present": func(v any) {
				b, _ := v.(bool)
				if m.sim.SetPresent(b) {
					m.simStatusChanged()
				}
			},
			"PinRequired": func(v any) {
				s, _ := v.(string)
				if m.sim.SetPinRequired(s) {
					m.simStatusChanged()
				}
			},
		},
		ofono.InterfaceNetworkRegistration: netregTable,
		ofono.InterfaceConnectionManager: {
			"Attached": func(v any) {
				m.logger.Info("🌐 packet service", "attached", v)
				m.notify(ril.UnsolVoiceNetworkStateChanged, nil)
			},
		},
		ofono.InterfaceConnectionContext: {
			"Active": m.onContextActive,
		},
		ofono.InterfaceAudioSettings: {
			"Active": func(v any) {
				b, _ := v.(bool)
				m.audio.SetActive(b)
			},
		},
		ofono.InterfaceSupplementaryServices: {
			"State": func(v any) {
				m.logger.Debug("📟 ussd state", "state", v)
			},
		},
	}
}

func (m *Modem) onPowered(v any) {
	powered, _ := v.(bool)
	m.logger.Info("🔋 modem powered", "powered", powered)
	m.power.Resolve(ril.Success, nil)
	if powered && m.radio.State() != ril.RadioUnavailable {
		m.checkSIM()
	}
}

func (m *Modem) onOnline(v any) {
	m.logger.Info("📶 modem online", "online", v)
}

func (m *Modem) onSerial(v any) {
	s, _ := v.(string)
	m.mu.Lock()
	m.serial = s
	m.mu.Unlock()
	m.persist("imei", s)
	m.imei.Resolve(ril.Success, s)
}

func (m *Modem) onRevision(v any) {
	s, _ := v.(string)
	m.mu.Lock()
	m.revision = s
	m.mu.Unlock()
	m.persist("revision", s)
	m.baseband.Resolve(ril.Success, s)
}

func (m *Modem) onFeatures(v any) {
	features, _ := v.([]string)
	for _, f := range features {
		switch f {
		case "rat":
			if !m.goingOnline.CompareAndSwap(false, true) {
				continue
			}
			m.logger.Info("📶 radio access available, going online")
			if err := m.setProperty(ofono.InterfaceModem, "Online", true); err != nil {
				m.logger.Warn("📶 could not set online", "err", err)
			}
			m.radio.Set(ril.RadioSIMReady)
		case "gprs":
			m.notify(ril.UnsolVoiceNetworkStateChanged, nil)
		}
	}
}

// onInterfaces creates a proxy for every newly listed interface. Proxies are
// kept for the life of the modem.
func (m *Modem) onInterfaces(v any) {
	list, _ := v.([]string)
	for _, iface := range list {
		setup, known := m.setups[iface]
		if !known || m.object(iface) != nil {
			continue
		}
		obj := ofono.NewObject(m.caller, m.cfg.Modem, iface)
		m.mu.Lock()
		m.objects[iface] = obj
		m.mu.Unlock()

		m.watch(obj)
		props, err := m.getProperties(obj)
		if err != nil {
			m.logger.Warn("🔌 could not read properties", "iface", iface, "err", err)
		} else {
			m.apply(iface, props)
		}
		if setup != nil {
			setup(obj)
		}
		m.logger.Info("🔌 interface ready", "iface", iface)
	}
}

func (m *Modem) simStatusChanged() {
	m.logger.Info("💳 sim status", "status", m.SIMStatus())
	m.notify(ril.UnsolSIMStatusChanged, nil)
}

func (m *Modem) onSubscriberIdentity(v any) {
	s, _ := v.(string)
	if m.sim.SetIMSI(s) {
		m.persist("imsi", s)
		m.simStatusChanged()
	}
}

func (m *Modem) setupVoiceCalls(obj *ofono.Object) {
	m.addDetach(m.watcher.Subscribe(obj.Path, obj.Interface, ofono.SignalCallAdded, func(sig ofono.Signal) {
		var p dbus.ObjectPath
		var props map[string]dbus.Variant
		if err := dbus.Store(sig.Body, &p, &props); err != nil {
			m.logger.Warn("📞 bad CallAdded", "err", err)
			return
		}
		m.addCall(p, props)
	}))
	m.addDetach(m.watcher.Subscribe(obj.Path, obj.Interface, ofono.SignalCallRemoved, func(sig ofono.Signal) {
		var p dbus.ObjectPath
		if err := dbus.Store(sig.Body, &p); err != nil {
			m.logger.Warn("📞 bad CallRemoved", "err", err)
			return
		}
		m.removeCall(p)
	}))

	var existing []ofono.PathProperties
	if err := m.callObject(obj, "GetCalls").Store(&existing); err != nil {
		m.logger.Warn("📞 could not list calls", "err", err)
		return
	}
	for _, c := range existing {
		m.addCall(c.Path, c.Properties)
	}
}

func (m *Modem) addCall(p dbus.ObjectPath, bundle map[string]dbus.Variant) {
	props := ofono.Properties(bundle)
	onProperty := m.watcher.OnPropertyChanged(p, ofono.InterfaceVoiceCall, func(name string, value any) {
		if err := m.calls.SetProperty(string(p), name, value); err != nil {
			m.logger.Warn("📞 call property not applied", "path", p, "name", name, "err", err)
		}
	})
	onReason := m.watcher.Subscribe(p, ofono.InterfaceVoiceCall, ofono.SignalDisconnectReason, func(sig ofono.Signal) {
		var reason string
		if err := dbus.Store(sig.Body, &reason); err != nil {
			m.logger.Warn("📞 bad DisconnectReason", "err", err)
			return
		}
		m.onDisconnectReason(p, reason)
	})
	detach := func() {
		onProperty()
		onReason()
	}

	_, err := m.calls.Add(string(p), calls.Properties{
		State:              props.String("State"),
		LineIdentification: props.String("LineIdentification"),
		Name:               props.String("Name"),
		Multiparty:         props.Bool("Multiparty"),
	}, detach)
	if err != nil {
		detach()
		m.logger.Warn("📞 call not added", "path", p, "err", err)
	}
}

func (m *Modem) onDisconnectReason(p dbus.ObjectPath, reason string) {
	cause := ril.CallFailErrorUnspecified
	if reason == "local" || reason == "remote" {
		cause = ril.CallFailNormal
	}
	m.mu.Lock()
	m.lastCallFail = cause
	m.mu.Unlock()
	m.calls.SetDisconnectReason(string(p), reason)
	m.logger.Info("📞 call disconnected", "path", p, "reason", reason)
}

func (m *Modem) removeCall(p dbus.ObjectPath) {
	e, err := m.calls.Remove(string(p))
	if err != nil {
		m.logger.Warn("📞 call not removed", "path", p, "err", err)
		return
	}
	if m.store == nil {
		return
	}
	err = m.store.LogCall(db.CallLog{
		Path:      e.Path,
		Number:    e.Call.Number,
		Name:      e.Call.Name,
		Incoming:  e.Call.IsMT,
		Reason:    e.Reason,
		StartedAt: e.Started,
		EndedAt:   time.Now(),
	})
	if err != nil {
		m.logger.Warn("💾 could not log call", "path", p, "err", err)
	}
}

func (m *Modem) setupMessages(obj *ofono.Object) {
	m.addDetach(m.watcher.Subscribe(obj.Path, obj.Interface, ofono.SignalIncomingMessage, func(sig ofono.Signal) {
		text, info, ok := m.message(sig)
		if ok {
			m.onIncomingMessage(text, info)
		}
	}))
	m.addDetach(m.watcher.Subscribe(obj.Path, obj.Interface, ofono.SignalImmediateMessage, func(sig ofono.Signal) {
		text, info, ok := m.message(sig)
		if !ok {
			return
		}
		sender := info.String("Sender")
		m.logger.Info("✉️ immediate message", "sender", sender)
		m.journal(db.MessageLog{Incoming: true, Peer: sender, Text: text})
	}))
}

func (m *Modem) message(sig ofono.Signal) (string, ofono.Properties, bool) {
	var text string
	var info map[string]dbus.Variant
	if err := dbus.Store(sig.Body, &text, &info); err != nil {
		m.logger.Warn("✉️ bad message signal", "member", sig.Member, "err", err)
		return "", nil, false
	}
	return text, ofono.Properties(info), true
}

func (m *Modem) onIncomingMessage(text string, info ofono.Properties) {
	sender := info.String("Sender")
	if sender == "" {
		m.logger.Warn("✉️ message without sender dropped")
		return
	}
	encoded, err := pdu.Encode(text, m.cfg.SMSC, sender)
	if err != nil {
		m.logger.Warn("✉️ could not encode message", "sender", sender, "err", err)
		return
	}
	m.logger.Info("✉️ incoming message", "sender", sender)
	m.notify(ril.UnsolNewSMS, encoded)
	m.journal(db.MessageLog{Incoming: true, Peer: sender, Text: text})
}

func (m *Modem) journal(msg db.MessageLog) {
	if m.store == nil || !m.cfg.Journal {
		return
	}
	if msg.RecordedAt.IsZero() {
		msg.RecordedAt = time.Now()
	}
	if err := m.store.LogMessage(msg); err != nil {
		m.logger.Warn("💾 could not journal message", "err", err)
	}
}

func (m *Modem) setupSupplementary(obj *ofono.Object) {
	ussd := func(kind string) ofono.Handler {
		return func(sig ofono.Signal) {
			var msg string
			if err := dbus.Store(sig.Body, &msg); err != nil {
				m.logger.Warn("📟 bad ussd signal", "member", sig.Member, "err", err)
				return
			}
			m.logger.Info("📟 ussd", "member", sig.Member)
			m.notify(ril.UnsolOnUSSD, []string{kind, msg})
		}
	}
	m.addDetach(m.watcher.Subscribe(obj.Path, obj.Interface, ofono.SignalRequestReceived, ussd("1")))
	m.addDetach(m.watcher.Subscribe(obj.Path, obj.Interface, ofono.SignalNotificationReceived, ussd("0")))
}

// setupConnections binds the first packet data context, creating an
// internet context when the modem has none.
func (m *Modem) setupConnections(obj *ofono.Object) {
	var contexts []ofono.PathProperties
	if err := m.callObject(obj, "GetContexts").Store(&contexts); err != nil {
		m.logger.Warn("🌐 could not list contexts", "err", err)
		return
	}

	var p dbus.ObjectPath
	if i := slices.IndexFunc(contexts, func(c ofono.PathProperties) bool {
		return ofono.Properties(c.Properties).String("Type") == "internet"
	}); i >= 0 {
		p = contexts[i].Path
	} else if len(contexts) > 0 {
		p = contexts[0].Path
	} else if err := m.callObject(obj, "AddContext", "internet").Store(&p); err != nil {
		m.logger.Warn("🌐 could not add context", "err", err)
		return
	}

	ctxObj := ofono.NewObject(m.caller, p, ofono.InterfaceConnectionContext)
	m.mu.Lock()
	m.objects[ofono.InterfaceConnectionContext] = ctxObj
	m.mu.Unlock()
	m.watch(ctxObj)
	if props, err := m.getProperties(ctxObj); err == nil {
		m.apply(ofono.InterfaceConnectionContext, props)
	}
	m.logger.Info("🌐 data context", "path", p)
}
