// Package radio holds the authoritative radio state and the SIM status
// derived from SimManager properties.
package radio

import (
	"sync"

	"ofonoril/ril"
)

// Hooks are called outside the state lock after every transition.
type Hooks struct {
	// Notify is called for every Set, changed or not.
	Notify      func(ril.RadioState)
	SIMReady    func()
	SIMNotReady func()
}

type Machine struct {
	mu      sync.Mutex
	cond    *sync.Cond
	state   ril.RadioState
	closing bool
	hooks   Hooks
}

func NewMachine(hooks Hooks) *Machine {
	m := &Machine{
		state: ril.RadioUnavailable,
		hooks: hooks,
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Set stores s and emits the state change. Once the machine is closing every
// transition resolves to Unavailable.
func (m *Machine) Set(s ril.RadioState) {
	m.mu.Lock()
	if m.closing {
		s = ril.RadioUnavailable
	}
	m.state = s
	m.cond.Broadcast()
	m.mu.Unlock()

	if m.hooks.Notify != nil {
		m.hooks.Notify(s)
	}

	switch s {
	case ril.RadioSIMReady:
		if m.hooks.SIMReady != nil {
			m.hooks.SIMReady()
		}
	case ril.RadioSIMNotReady:
		if m.hooks.SIMNotReady != nil {
			m.hooks.SIMNotReady()
		}
	}
}

func (m *Machine) State() ril.RadioState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Closing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closing
}

// Close marks the machine as closing and moves it to Unavailable.
func (m *Machine) Close() {
	m.mu.Lock()
	m.closing = true
	m.mu.Unlock()
	m.Set(ril.RadioUnavailable)
}

// WaitForClosed blocks until Close has been called.
func (m *Machine) WaitForClosed() {
	m.mu.Lock()
	for !m.closing {
		m.cond.Wait()
	}
	m.mu.Unlock()
}
