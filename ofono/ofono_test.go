package ofono

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	path   dbus.ObjectPath
	method string
	args   []any
}

type fakeCaller struct {
	calls   []call
	replies map[string][]any
	err     error
}

func (f *fakeCaller) Call(_ context.Context, path dbus.ObjectPath, method string, args ...any) ([]any, error) {
	f.calls = append(f.calls, call{path, method, args})
	return f.replies[method], f.err
}

func Test_Object_GetProperties(t *testing.T) {
	c := &fakeCaller{replies: map[string][]any{
		"org.ofono.Modem.GetProperties": {map[string]dbus.Variant{
			"Serial":     dbus.MakeVariant("356938035643809"),
			"Powered":    dbus.MakeVariant(true),
			"Interfaces": dbus.MakeVariant([]string{InterfaceSimManager}),
		}},
	}}
	o := NewObject(c, "/isimodem", InterfaceModem)

	props, err := o.GetProperties(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "356938035643809", props.String("Serial"))
	assert.True(t, props.Bool("Powered"))
	assert.Equal(t, []string{InterfaceSimManager}, props.Strings("Interfaces"))
	assert.Empty(t, props.String("Missing"))
}

func Test_Object_SetPropertyWrapsVariant(t *testing.T) {
	c := &fakeCaller{}
	o := NewObject(c, "/isimodem", InterfaceModem)

	require.NoError(t, o.SetProperty(context.Background(), "Online", true))

	require.Len(t, c.calls, 1)
	assert.Equal(t, "org.ofono.Modem.SetProperty", c.calls[0].method)
	assert.Equal(t, []any{"Online", dbus.MakeVariant(true)}, c.calls[0].args)
}

func Test_Object_CallErrorNamesMethod(t *testing.T) {
	c := &fakeCaller{err: errors.New("org.ofono.Error.Failed")}
	o := NewObject(c, "/isimodem", InterfaceVoiceCallManager)

	err := o.Call(context.Background(), "Dial", "123", "").Err

	assert.ErrorContains(t, err, "VoiceCallManager(/isimodem).Dial")
	assert.ErrorIs(t, err, c.err)
}

func Test_Reply_StorePathProperties(t *testing.T) {
	r := Reply{Body: []any{[]PathProperties{{
		Path:       "/isimodem",
		Properties: map[string]dbus.Variant{"Powered": dbus.MakeVariant(true)},
	}}}}

	var modems []PathProperties
	require.NoError(t, r.Store(&modems))

	require.Len(t, modems, 1)
	assert.Equal(t, dbus.ObjectPath("/isimodem"), modems[0].Path)
	assert.True(t, Properties(modems[0].Properties).Bool("Powered"))
}

func Test_Properties_Map(t *testing.T) {
	p := Properties{"Settings": dbus.MakeVariant(map[string]dbus.Variant{
		"Address":   dbus.MakeVariant("10.0.0.2"),
		"Interface": dbus.MakeVariant("gprs0"),
	})}

	s := p.Map("Settings")

	assert.Equal(t, "10.0.0.2", s.String("Address"))
	assert.Nil(t, p.Map("Missing"))
}

func Test_Watcher_DispatchAndDetach(t *testing.T) {
	w := NewWatcher(log.New(io.Discard))
	var got []string
	detach := w.OnPropertyChanged("/isimodem", InterfaceNetworkRegistration, func(name string, value any) {
		got = append(got, name)
		assert.Equal(t, byte(45), value)
	})

	sig := Signal{
		Path:      "/isimodem",
		Interface: InterfaceNetworkRegistration,
		Member:    SignalPropertyChanged,
		Body:      []any{"Strength", dbus.MakeVariant(byte(45))},
	}
	w.Dispatch(sig)
	w.Dispatch(Signal{Path: "/other", Interface: InterfaceNetworkRegistration, Member: SignalPropertyChanged, Body: sig.Body})
	detach()
	w.Dispatch(sig)

	assert.Equal(t, []string{"Strength"}, got)
}

func Test_Watcher_BadPropertyChangedIgnored(t *testing.T) {
	w := NewWatcher(log.New(io.Discard))
	called := false
	w.OnPropertyChanged("/isimodem", InterfaceModem, func(string, any) { called = true })

	w.Dispatch(Signal{Path: "/isimodem", Interface: InterfaceModem, Member: SignalPropertyChanged, Body: []any{42}})

	assert.False(t, called)
}

func Test_Watcher_Run(t *testing.T) {
	w := NewWatcher(log.New(io.Discard))
	ch := make(chan *dbus.Signal, 2)
	var removed []dbus.ObjectPath
	w.Subscribe("/isimodem", InterfaceVoiceCallManager, SignalCallRemoved, func(sig Signal) {
		var p dbus.ObjectPath
		require.NoError(t, dbus.Store(sig.Body, &p))
		removed = append(removed, p)
	})

	ch <- &dbus.Signal{Path: "/isimodem", Name: "org.ofono.VoiceCallManager.CallRemoved", Body: []any{dbus.ObjectPath("/isimodem/voicecall01")}}
	close(ch)
	w.Run(context.Background(), ch)

	assert.Equal(t, []dbus.ObjectPath{"/isimodem/voicecall01"}, removed)
}

func Test_FromDBus(t *testing.T) {
	sig := FromDBus(&dbus.Signal{Path: "/isimodem", Name: "org.ofono.SupplementaryServices.RequestReceived"})

	assert.Equal(t, InterfaceSupplementaryServices, sig.Interface)
	assert.Equal(t, SignalRequestReceived, sig.Member)
}
