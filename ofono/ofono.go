// Package ofono is a small client for the ofono D-Bus API: object proxies
// with property bundles, and a single-goroutine signal event loop.
package ofono

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const Service = "org.ofono"

const (
	InterfaceManager               = "org.ofono.Manager"
	InterfaceModem                 = "org.ofono.Modem"
	InterfaceVoiceCallManager      = "org.ofono.VoiceCallManager"
	InterfaceVoiceCall             = "org.ofono.VoiceCall"
	InterfaceSimManager            = "org.ofono.SimManager"
	InterfaceNetworkRegistration   = "org.ofono.NetworkRegistration"
	InterfaceNetworkOperator       = "org.ofono.NetworkOperator"
	InterfaceMessageManager        = "org.ofono.MessageManager"
	InterfaceConnectionManager     = "org.ofono.ConnectionManager"
	InterfaceConnectionContext     = "org.ofono.ConnectionContext"
	InterfaceSupplementaryServices = "org.ofono.SupplementaryServices"
	InterfaceRadioSettings         = "org.ofono.RadioSettings"
	InterfaceAudioSettings         = "org.ofono.AudioSettings"
)

const (
	SignalPropertyChanged      = "PropertyChanged"
	SignalCallAdded            = "CallAdded"
	SignalCallRemoved          = "CallRemoved"
	SignalDisconnectReason     = "DisconnectReason"
	SignalIncomingMessage      = "IncomingMessage"
	SignalImmediateMessage     = "ImmediateMessage"
	SignalRequestReceived      = "RequestReceived"
	SignalNotificationReceived = "NotificationReceived"
)

var (
	ErrNoInterface = errors.New("ofono: interface not available")
	ErrBadSignal   = errors.New("ofono: unexpected signal body")
)

// Caller performs a method call on an ofono object.
type Caller interface {
	Call(ctx context.Context, path dbus.ObjectPath, method string, args ...any) ([]any, error)
}

// Reply is the outcome of a method call.
type Reply struct {
	Body []any
	Err  error
}

// Store copies the reply body into dest, like dbus.Call.Store.
func (r Reply) Store(dest ...any) error {
	if r.Err != nil {
		return r.Err
	}
	return dbus.Store(r.Body, dest...)
}

// PathProperties is one element of an a(oa{sv}) reply, as returned by
// GetModems, GetCalls, GetContexts and Scan.
type PathProperties struct {
	Path       dbus.ObjectPath
	Properties map[string]dbus.Variant
}

// Object is a proxy for one interface of an ofono object.
type Object struct {
	caller    Caller
	Path      dbus.ObjectPath
	Interface string
}

func NewObject(c Caller, path dbus.ObjectPath, iface string) *Object {
	return &Object{caller: c, Path: path, Interface: iface}
}

func (o *Object) String() string {
	return fmt.Sprintf("%s(%s)", o.Interface, o.Path)
}

// Call invokes member on the proxy's interface.
func (o *Object) Call(ctx context.Context, member string, args ...any) Reply {
	body, err := o.caller.Call(ctx, o.Path, o.Interface+"."+member, args...)
	if err != nil {
		err = fmt.Errorf("%s.%s: %w", o, member, err)
	}
	return Reply{Body: body, Err: err}
}

func (o *Object) GetProperties(ctx context.Context) (Properties, error) {
	var props map[string]dbus.Variant
	if err := o.Call(ctx, "GetProperties").Store(&props); err != nil {
		return nil, err
	}
	return Properties(props), nil
}

func (o *Object) SetProperty(ctx context.Context, name string, value any) error {
	return o.Call(ctx, "SetProperty", name, dbus.MakeVariant(value)).Err
}

// Bus is the system bus connection to ofono.
type Bus struct {
	conn    *dbus.Conn
	signals chan *dbus.Signal
}

// ConnectSystemBus connects and subscribes to every signal ofono emits.
func ConnectSystemBus() (*Bus, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}
	if err := conn.AddMatchSignal(dbus.WithMatchSender(Service)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("add match: %w", err)
	}
	b := &Bus{
		conn:    conn,
		signals: make(chan *dbus.Signal, 64),
	}
	conn.Signal(b.signals)
	return b, nil
}

func (b *Bus) Call(ctx context.Context, path dbus.ObjectPath, method string, args ...any) ([]any, error) {
	call := b.conn.Object(Service, path).CallWithContext(ctx, method, 0, args...)
	return call.Body, call.Err
}

func (b *Bus) Signals() <-chan *dbus.Signal {
	return b.signals
}

func (b *Bus) Close() error {
	b.conn.RemoveSignal(b.signals)
	return b.conn.Close()
}
