// Package phone is the RIL plugin context. A Modem owns the radio state, the
// SIM model, the call registry and the registration tracker for one ofono
// modem, and turns RIL requests into ofono method calls.
package phone

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/godbus/dbus/v5"
	"go.uber.org/atomic"

	"ofonoril/audio"
	"ofonoril/calls"
	"ofonoril/db"
	"ofonoril/netif"
	"ofonoril/netreg"
	"ofonoril/ofono"
	"ofonoril/pending"
	"ofonoril/radio"
	"ofonoril/ril"
	"ofonoril/timers"
)

type Config struct {
	Modem           dbus.ObjectPath
	SMSC            string
	DataInterface   string
	CallTimeout     time.Duration
	ScanTimeout     time.Duration
	PendingTimeout  time.Duration
	SIMPollInterval time.Duration
	Journal         bool
	Version         string
}

// Deps are the collaborators a Modem talks to. Store may be nil.
type Deps struct {
	Caller  ofono.Caller
	Watcher *ofono.Watcher
	Host    ril.Host
	Audio   audio.Router
	Netif   netif.Configurer
	Store   *db.Store
	Logger  *log.Logger
}

type handler func(payload any, t ril.Token)

type propertyTable map[string]func(value any)

// Modem implements ril.RadioFunctions on top of one ofono modem.
type Modem struct {
	cfg     Config
	caller  ofono.Caller
	watcher *ofono.Watcher
	host    ril.Host
	audio   audio.Router
	netif   netif.Configurer
	store   *db.Store
	logger  *log.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	closed    chan struct{}

	radio  *radio.Machine
	sim    *radio.SIM
	calls  *calls.Registry
	netreg *netreg.Tracker

	power    *pending.Slot
	imei     *pending.Slot
	baseband *pending.Slot
	dataCall *pending.Slot
	simPoll  *timers.ResettableTimer

	goingOnline *atomic.Bool
	messageRef  *atomic.Int32

	mu           sync.Mutex
	objects      map[string]*ofono.Object
	props        map[string]map[string]any
	detach       []func()
	serial       string
	revision     string
	link         netif.Settings
	apn          string
	contextSeen  bool
	lastCallFail int

	requests map[ril.Request]handler
	tables   map[string]propertyTable
	setups   map[string]func(*ofono.Object)
}

func New(ctx context.Context, cfg Config, deps Deps) *Modem {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Version == "" {
		cfg.Version = "ofono-ril"
	}
	if cfg.SIMPollInterval <= 0 {
		cfg.SIMPollInterval = time.Second
	}
	if cfg.ScanTimeout <= 0 {
		cfg.ScanTimeout = 15 * time.Minute
	}
	ctx, cancel := context.WithCancel(ctx)

	m := &Modem{
		cfg:          cfg,
		caller:       deps.Caller,
		watcher:      deps.Watcher,
		host:         deps.Host,
		audio:        deps.Audio,
		netif:        deps.Netif,
		store:        deps.Store,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
		closed:       make(chan struct{}),
		sim:          radio.NewSIM(),
		goingOnline:  atomic.NewBool(false),
		messageRef:   atomic.NewInt32(0),
		objects:      map[string]*ofono.Object{},
		props:        map[string]map[string]any{},
		lastCallFail: ril.CallFailNormal,
	}
	if m.audio == nil {
		m.audio = audio.NewNull(logger)
	}

	m.radio = radio.NewMachine(radio.Hooks{
		Notify: func(s ril.RadioState) {
			m.logger.Info("📻 radio state", "state", s)
			m.notify(ril.UnsolRadioStateChanged, nil)
		},
		SIMReady: func() {
			m.logger.Debug("💳 sim ready")
		},
		SIMNotReady: func() {
			m.simPoll.Reset()
		},
	})
	m.simPoll = timers.NewStopped(ctx, cfg.SIMPollInterval, m.pollSIM)

	m.calls = calls.New(calls.Hooks{
		Changed: func() { m.notify(ril.UnsolCallStateChanged, nil) },
		Ring:    func() { m.notify(ril.UnsolCallRing, nil) },
	}, logger)
	m.netreg = netreg.New(netreg.Hooks{
		Strength: func(s ril.SignalStrength) { m.notify(ril.UnsolSignalStrength, s) },
		Changed:  func() { m.notify(ril.UnsolVoiceNetworkStateChanged, nil) },
	}, logger)

	opts := pending.Options{Timeout: cfg.PendingTimeout, Logger: logger}
	m.power = pending.NewSlot(ctx, "radio-power", m.host, opts)
	m.imei = pending.NewSlot(ctx, "imei", m.host, opts)
	m.baseband = pending.NewSlot(ctx, "baseband", m.host, opts)
	opts.Exclusive = true
	m.dataCall = pending.NewSlot(ctx, "data-call", m.host, opts)

	m.requests = m.requestTable()
	m.tables = m.propertyTables()
	m.setups = map[string]func(*ofono.Object){
		ofono.InterfaceVoiceCallManager:      m.setupVoiceCalls,
		ofono.InterfaceSimManager:            nil,
		ofono.InterfaceNetworkRegistration:   nil,
		ofono.InterfaceRadioSettings:         nil,
		ofono.InterfaceMessageManager:        m.setupMessages,
		ofono.InterfaceSupplementaryServices: m.setupSupplementary,
		ofono.InterfaceAudioSettings:         nil,
		ofono.InterfaceConnectionManager:     m.setupConnections,
	}
	return m
}

// Start moves the radio to Off, subscribes to the modem and feeds its
// current properties through the same handlers PropertyChanged uses.
func (m *Modem) Start() error {
	m.radio.Set(ril.RadioOff)

	obj := ofono.NewObject(m.caller, m.cfg.Modem, ofono.InterfaceModem)
	m.mu.Lock()
	m.objects[ofono.InterfaceModem] = obj
	m.mu.Unlock()
	m.watch(obj)

	props, err := m.getProperties(obj)
	if err != nil {
		return fmt.Errorf("modem properties: %w", err)
	}
	m.logger.Info("📱 modem ready", "path", m.cfg.Modem)
	m.apply(ofono.InterfaceModem, props)
	return nil
}

// Close forces the radio to Unavailable, fails every parked token and
// detaches from ofono.
func (m *Modem) Close() {
	m.closeOnce.Do(m.close)
}

func (m *Modem) close() {
	defer close(m.closed)
	m.radio.Close()
	for _, s := range []*pending.Slot{m.power, m.imei, m.baseband, m.dataCall} {
		if n := s.Resolve(ril.RadioNotAvailable, nil); n > 0 {
			m.logger.Debug("⏳ pending requests dropped", "slot", s.Name(), "count", n)
		}
	}
	m.cancel()

	m.mu.Lock()
	detach := m.detach
	m.detach = nil
	m.mu.Unlock()
	for _, d := range detach {
		d()
	}
	m.logger.Info("👋 modem closed")
}

// WaitForClosed blocks until the radio is closing and Close has finished
// tearing the modem down.
func (m *Modem) WaitForClosed() {
	m.radio.WaitForClosed()
	<-m.closed
}

func (m *Modem) CurrentState() ril.RadioState {
	return m.radio.State()
}

func (m *Modem) OnSupports(code ril.Request) bool {
	_, ok := m.requests[code]
	return ok
}

func (m *Modem) OnCancel(t ril.Token) {
	m.logger.Debug("🚫 cancel ignored", "token", t)
}

func (m *Modem) Version() string {
	return m.cfg.Version
}

// SIMStatus is the status GET_SIM_STATUS would report now.
func (m *Modem) SIMStatus() radio.SIMStatus {
	return m.sim.Status(m.radio.State())
}

func (m *Modem) complete(t ril.Token, e ril.Errno, payload any) {
	if e != ril.Success {
		m.logger.Debug("↩️ request failed", "token", t, "err", e)
	}
	m.host.CompleteRequest(t, e, payload)
}

func (m *Modem) notify(kind ril.Unsolicited, payload any) {
	m.host.NotifyUnsolicited(kind, payload)
}

// callContext bounds one bus call.
func (m *Modem) callContext(d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(m.ctx, d)
}

func (m *Modem) object(iface string) *ofono.Object {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[iface]
}

func (m *Modem) callObject(obj *ofono.Object, member string, args ...any) ofono.Reply {
	if obj == nil {
		return ofono.Reply{Err: ofono.ErrNoInterface}
	}
	ctx, cancel := m.callContext(m.cfg.CallTimeout)
	defer cancel()
	return obj.Call(ctx, member, args...)
}

// invoke calls member on the modem's iface proxy.
func (m *Modem) invoke(iface, member string, args ...any) ofono.Reply {
	obj := m.object(iface)
	if obj == nil {
		return ofono.Reply{Err: fmt.Errorf("%w: %s", ofono.ErrNoInterface, iface)}
	}
	return m.callObject(obj, member, args...)
}

func (m *Modem) setProperty(iface, name string, value any) error {
	return m.invoke(iface, "SetProperty", name, dbus.MakeVariant(value)).Err
}

func (m *Modem) getProperties(obj *ofono.Object) (ofono.Properties, error) {
	ctx, cancel := m.callContext(m.cfg.CallTimeout)
	defer cancel()
	return obj.GetProperties(ctx)
}

// watch routes PropertyChanged of obj to its property table.
func (m *Modem) watch(obj *ofono.Object) {
	iface := obj.Interface
	m.addDetach(m.watcher.OnPropertyChanged(obj.Path, iface, func(name string, value any) {
		m.onProperty(iface, name, value)
	}))
}

func (m *Modem) addDetach(d func()) {
	m.mu.Lock()
	m.detach = append(m.detach, d)
	m.mu.Unlock()
}

// apply feeds a GetProperties bundle through the property table, in name
// order.
func (m *Modem) apply(iface string, props ofono.Properties) {
	for _, name := range slices.Sorted(maps.Keys(props)) {
		m.onProperty(iface, name, props[name].Value())
	}
}

func (m *Modem) onProperty(iface, name string, value any) {
	m.mu.Lock()
	cache, ok := m.props[iface]
	if !ok {
		cache = map[string]any{}
		m.props[iface] = cache
	}
	cache[name] = value
	m.mu.Unlock()

	m.logger.Debug("🔧 property", "iface", iface, "name", name, "value", value)
	if fn, ok := m.tables[iface][name]; ok {
		fn(value)
	}
}

// prop returns the last value seen for an interface property.
func (m *Modem) prop(iface, name string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.props[iface][name]
	return v, ok
}

func (m *Modem) propBool(iface, name string) bool {
	v, _ := m.prop(iface, name)
	b, _ := v.(bool)
	return b
}

func (m *Modem) propString(iface, name string) string {
	v, _ := m.prop(iface, name)
	s, _ := v.(string)
	return s
}

func (m *Modem) persist(key, value string) {
	if m.store == nil {
		return
	}
	if err := m.store.Put(key, value); err != nil {
		m.logger.Warn("💾 could not persist", "key", key, "err", err)
	}
}

// checkSIM moves the radio to SimReady when the SIM interface is up.
func (m *Modem) checkSIM() {
	if m.object(ofono.InterfaceSimManager) != nil {
		m.radio.Set(ril.RadioSIMReady)
		return
	}
	m.radio.Set(ril.RadioSIMNotReady)
}

// pollSIM runs from the SIM poll timer and only acts while still waiting
// for the SIM.
func (m *Modem) pollSIM() {
	if m.radio.Closing() || m.radio.State() != ril.RadioSIMNotReady {
		return
	}
	m.checkSIM()
}
