package ofono

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/godbus/dbus/v5"
)

type Signal struct {
	Path      dbus.ObjectPath
	Interface string
	Member    string
	Body      []any
}

type Handler func(Signal)

type key struct {
	path   dbus.ObjectPath
	iface  string
	member string
}

type subscription struct {
	id uint64
	h  Handler
}

// Watcher routes ofono signals to subscribers. All handlers run on the
// goroutine calling Run or Dispatch.
type Watcher struct {
	mu     sync.Mutex
	subs   map[key][]subscription
	nextID uint64
	logger *log.Logger
}

func NewWatcher(logger *log.Logger) *Watcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		subs:   map[key][]subscription{},
		logger: logger,
	}
}

// Subscribe registers h for member signals of iface on path. The returned
// func detaches it.
func (w *Watcher) Subscribe(path dbus.ObjectPath, iface, member string, h Handler) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	id := w.nextID
	k := key{path, iface, member}
	w.subs[k] = append(w.subs[k], subscription{id: id, h: h})

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		subs := w.subs[k]
		for i, s := range subs {
			if s.id == id {
				w.subs[k] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(w.subs[k]) == 0 {
			delete(w.subs, k)
		}
	}
}

// OnPropertyChanged subscribes to PropertyChanged and unpacks its body.
func (w *Watcher) OnPropertyChanged(path dbus.ObjectPath, iface string, h func(name string, value any)) func() {
	return w.Subscribe(path, iface, SignalPropertyChanged, func(sig Signal) {
		name, value, err := PropertyChanged(sig)
		if err != nil {
			w.logger.Warn("bad PropertyChanged", "path", sig.Path, "iface", sig.Interface, "err", err)
			return
		}
		h(name, value)
	})
}

func (w *Watcher) Dispatch(sig Signal) {
	w.mu.Lock()
	subs := append([]subscription(nil), w.subs[key{sig.Path, sig.Interface, sig.Member}]...)
	w.mu.Unlock()

	if len(subs) == 0 {
		w.logger.Debug("unhandled signal", "path", sig.Path, "iface", sig.Interface, "member", sig.Member)
		return
	}
	for _, s := range subs {
		s.h(sig)
	}
}

// Run is the event loop: it dispatches signals from ch until ctx is done or
// ch is closed.
func (w *Watcher) Run(ctx context.Context, ch <-chan *dbus.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-ch:
			if !ok {
				return
			}
			if raw == nil {
				continue
			}
			w.Dispatch(FromDBus(raw))
		}
	}
}

// FromDBus splits the signal name into interface and member.
func FromDBus(raw *dbus.Signal) Signal {
	sig := Signal{Path: raw.Path, Member: raw.Name, Body: raw.Body}
	if i := strings.LastIndexByte(raw.Name, '.'); i >= 0 {
		sig.Interface, sig.Member = raw.Name[:i], raw.Name[i+1:]
	}
	return sig
}

// PropertyChanged unpacks a PropertyChanged(s, v) body.
func PropertyChanged(sig Signal) (string, any, error) {
	var name string
	var value dbus.Variant
	if err := dbus.Store(sig.Body, &name, &value); err != nil {
		return "", nil, ErrBadSignal
	}
	return name, value.Value(), nil
}
