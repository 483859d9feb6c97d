// Package ril models the vendor RIL ABI: the five plugin entry points the
// radio daemon calls, and the two completion primitives it hands back.
package ril

// Token correlates a request with its completion. It is opaque to the plugin.
type Token uint64

// Host is the radio daemon side of the ABI.
type Host interface {
	// CompleteRequest must be called exactly once per OnRequest.
	CompleteRequest(t Token, e Errno, payload any)
	NotifyUnsolicited(kind Unsolicited, payload any)
}

// RadioFunctions is the table registered with the host at load time.
type RadioFunctions interface {
	OnRequest(code Request, payload any, t Token)
	CurrentState() RadioState
	OnSupports(code Request) bool
	OnCancel(t Token)
	Version() string
}

// HostFunc adapts a pair of funcs to Host.
type HostFunc struct {
	Complete func(t Token, e Errno, payload any)
	Notify   func(kind Unsolicited, payload any)
}

func (h HostFunc) CompleteRequest(t Token, e Errno, payload any) {
	if h.Complete != nil {
		h.Complete(t, e, payload)
	}
}

func (h HostFunc) NotifyUnsolicited(kind Unsolicited, payload any) {
	if h.Notify != nil {
		h.Notify(kind, payload)
	}
}
