package phone

import (
	"errors"
	"strconv"

	"ofonoril/netif"
	"ofonoril/ofono"
	"ofonoril/ril"
)

const dataCID = 1

var errNotAttached = errors.New("packet service not attached")

func (m *Modem) requestSetupDataCall(payload any, t ril.Token) {
	req, ok := payload.(ril.SetupDataCall)
	if !ok {
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	if !m.propBool(ofono.InterfaceConnectionManager, "Attached") {
		m.logger.Warn("🌐 data call refused", "err", errNotAttached)
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	if m.object(ofono.InterfaceConnectionContext) == nil {
		m.complete(t, ril.GenericFailure, nil)
		return
	}

	if link, up := m.dataLink(); up && m.propBool(ofono.InterfaceConnectionContext, "Active") {
		m.complete(t, ril.Success, dataCallResponse(link))
		return
	}

	if err := m.dataCall.Park(t); err != nil {
		m.logger.Warn("🌐 data call already in progress")
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	for _, kv := range []struct {
		name  string
		value any
	}{
		{"AccessPointName", req.APN},
		{"Username", req.User},
		{"Password", req.Password},
		{"Active", true},
	} {
		if err := m.setProperty(ofono.InterfaceConnectionContext, kv.name, kv.value); err != nil {
			m.logger.Warn("🌐 could not set up context", "property", kv.name, "err", err)
			m.dataCall.Resolve(ril.GenericFailure, nil)
			return
		}
	}
	m.logger.Info("🌐 activating context", "apn", req.APN)
}

func dataCallResponse(link netif.Settings) ril.DataCall {
	return ril.DataCall{
		CID:     strconv.Itoa(dataCID),
		Ifname:  link.Interface,
		Address: link.Address,
	}
}

// dataLink returns the configured data interface, if any.
func (m *Modem) dataLink() (netif.Settings, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.link, m.link.Address != ""
}

func (m *Modem) setDataLink(link netif.Settings, apn string) {
	m.mu.Lock()
	m.link = link
	m.apn = apn
	m.mu.Unlock()
}

// onContextActive finishes a parked SETUP_DATA_CALL and reports the data
// call list for every Active change. The first reading of an inactive
// context has nothing to report.
func (m *Modem) onContextActive(v any) {
	active, _ := v.(bool)
	m.mu.Lock()
	seen := m.contextSeen
	m.contextSeen = true
	m.mu.Unlock()

	if active {
		link, apn, err := m.configureData()
		if err != nil {
			m.logger.Warn("🌐 data interface not configured", "err", err)
			m.setDataLink(netif.Settings{}, "")
			m.dataCall.Resolve(ril.GenericFailure, nil)
		} else {
			m.setDataLink(link, apn)
			m.dataCall.Resolve(ril.Success, dataCallResponse(link))
		}
	} else {
		m.setDataLink(netif.Settings{}, "")
		m.dataCall.Resolve(ril.GenericFailure, nil)
	}

	if !seen && !active {
		return
	}
	_, up := m.dataLink()
	m.logger.Info("🌐 data call", "active", active, "up", up)
	m.notify(ril.UnsolDataCallListChanged, m.dataCallList())
}

// configureData reads the context settings and brings the interface up. It
// returns the access point the context was activated with.
func (m *Modem) configureData() (netif.Settings, string, error) {
	obj := m.object(ofono.InterfaceConnectionContext)
	if obj == nil {
		return netif.Settings{}, "", ofono.ErrNoInterface
	}
	props, err := m.getProperties(obj)
	if err != nil {
		return netif.Settings{}, "", err
	}
	settings := props.Map("Settings")
	link := netif.Settings{
		Interface: settings.String("Interface"),
		Address:   settings.String("Address"),
		Netmask:   settings.String("Netmask"),
		Gateway:   settings.String("Gateway"),
	}
	if link.Interface == "" {
		link.Interface = m.cfg.DataInterface
	}
	if link.Address == "" {
		return netif.Settings{}, "", netif.ErrNoAddress
	}
	if m.netif != nil {
		ctx, cancel := m.callContext(m.cfg.CallTimeout)
		defer cancel()
		if err := m.netif.Configure(ctx, link); err != nil {
			return netif.Settings{}, "", err
		}
	}
	return link, props.String("AccessPointName"), nil
}

func (m *Modem) dataCallList() []ril.DataCallStatus {
	link, up := m.dataLink()
	if !up {
		return []ril.DataCallStatus{}
	}
	m.mu.Lock()
	apn := m.apn
	m.mu.Unlock()
	return []ril.DataCallStatus{{
		CID:     dataCID,
		Active:  1,
		Type:    "IP",
		APN:     apn,
		Address: link.Address,
	}}
}

func (m *Modem) requestDeactivateDataCall(_ any, t ril.Token) {
	if err := m.setProperty(ofono.InterfaceConnectionContext, "Active", false); err != nil {
		m.logger.Warn("🌐 could not deactivate context", "err", err)
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	m.complete(t, ril.Success, nil)
}

func (m *Modem) requestDataCallList(_ any, t ril.Token) {
	m.complete(t, ril.Success, m.dataCallList())
}
