// Package audio routes call audio when ofono reports the voice path active.
package audio

import (
	"github.com/charmbracelet/log"
	"go.uber.org/atomic"
)

type Router interface {
	// SetActive is edge-triggered: repeating the current value does nothing.
	SetActive(active bool)
	SetMute(mute bool) error
	Muted() bool
	Close() error
}

// Null only tracks state. It is used when the voice path needs no routing.
type Null struct {
	active *atomic.Bool
	muted  *atomic.Bool
	logger *log.Logger
}

func NewNull(logger *log.Logger) *Null {
	if logger == nil {
		logger = log.Default()
	}
	return &Null{
		active: atomic.NewBool(false),
		muted:  atomic.NewBool(false),
		logger: logger,
	}
}

func (n *Null) SetActive(active bool) {
	if n.active.CompareAndSwap(!active, active) {
		n.logger.Debug("🔊 audio", "active", active)
	}
}

func (n *Null) SetMute(mute bool) error {
	n.muted.Store(mute)
	return nil
}

func (n *Null) Muted() bool {
	return n.muted.Load()
}

func (n *Null) Close() error {
	return nil
}
