package ofono

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/godbus/dbus/v5"
	"github.com/jpillora/backoff"

	"ofonoril/timers"
)

var ErrNoModem = errors.New("ofono: no modem")

// Modems lists the modems ofono manages.
func Modems(ctx context.Context, c Caller) ([]PathProperties, error) {
	var modems []PathProperties
	err := NewObject(c, "/", InterfaceManager).Call(ctx, "GetModems").Store(&modems)
	return modems, err
}

// PickModem returns want when it is listed, or else the first modem.
func PickModem(modems []PathProperties, want dbus.ObjectPath) (dbus.ObjectPath, error) {
	if len(modems) == 0 {
		return "", ErrNoModem
	}
	for _, m := range modems {
		if m.Path == want {
			return want, nil
		}
	}
	return modems[0].Path, nil
}

// WaitForModem polls GetModems until a modem shows up, sleeping between
// attempts as b says. ofono may start after us.
func WaitForModem(ctx context.Context, c Caller, want dbus.ObjectPath, b *backoff.Backoff, logger *log.Logger) (dbus.ObjectPath, error) {
	if logger == nil {
		logger = log.Default()
	}
	for {
		modems, err := Modems(ctx, c)
		if err == nil {
			var p dbus.ObjectPath
			if p, err = PickModem(modems, want); err == nil {
				if p != want {
					logger.Warn("📱 configured modem not found, using first", "want", want, "path", p)
				}
				b.Reset()
				return p, nil
			}
		}

		d := b.Duration()
		logger.Warn("📱 waiting for modem", "err", err, "retry", d)
		if !timers.SleepWithContext(ctx, d) {
			return "", ctx.Err()
		}
	}
}
