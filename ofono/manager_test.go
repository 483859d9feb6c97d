package ofono

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/godbus/dbus/v5"
	"github.com/jpillora/backoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyCaller fails the first n calls.
type flakyCaller struct {
	n     int
	calls int
	reply []any
}

func (f *flakyCaller) Call(context.Context, dbus.ObjectPath, string, ...any) ([]any, error) {
	f.calls++
	if f.calls <= f.n {
		return nil, errors.New("org.freedesktop.DBus.Error.ServiceUnknown")
	}
	return f.reply, nil
}

func modemList(paths ...dbus.ObjectPath) []any {
	list := [][]any{}
	for _, p := range paths {
		list = append(list, []any{p, map[string]dbus.Variant{"Powered": dbus.MakeVariant(false)}})
	}
	return []any{list}
}

func Test_Modems(t *testing.T) {
	c := &fakeCaller{replies: map[string][]any{
		"org.ofono.Manager.GetModems": modemList("/isimodem", "/phonesim"),
	}}

	modems, err := Modems(context.Background(), c)

	require.NoError(t, err)
	require.Len(t, modems, 2)
	assert.Equal(t, dbus.ObjectPath("/phonesim"), modems[1].Path)
	assert.Equal(t, dbus.ObjectPath("/"), c.calls[0].path)
}

func Test_PickModem(t *testing.T) {
	modems := []PathProperties{{Path: "/phonesim"}, {Path: "/isimodem"}}

	p, err := PickModem(modems, "/isimodem")
	require.NoError(t, err)
	assert.Equal(t, dbus.ObjectPath("/isimodem"), p)

	p, err = PickModem(modems, "/ril_0")
	require.NoError(t, err)
	assert.Equal(t, dbus.ObjectPath("/phonesim"), p)

	_, err = PickModem(nil, "/isimodem")
	assert.ErrorIs(t, err, ErrNoModem)
}

func Test_WaitForModem_Retries(t *testing.T) {
	c := &flakyCaller{n: 2, reply: modemList("/isimodem")}
	b := &backoff.Backoff{Min: time.Millisecond, Max: 5 * time.Millisecond}

	p, err := WaitForModem(context.Background(), c, "/isimodem", b, log.New(io.Discard))

	require.NoError(t, err)
	assert.Equal(t, dbus.ObjectPath("/isimodem"), p)
	assert.Equal(t, 3, c.calls)
	assert.Zero(t, b.Attempt())
}

func Test_WaitForModem_Cancelled(t *testing.T) {
	c := &flakyCaller{reply: modemList()}
	b := &backoff.Backoff{Min: time.Millisecond, Max: 2 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := WaitForModem(ctx, c, "/isimodem", b, log.New(io.Discard))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, c.calls, 1)
}
