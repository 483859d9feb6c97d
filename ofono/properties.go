package ofono

import "github.com/godbus/dbus/v5"

// Properties is a GetProperties bundle.
type Properties map[string]dbus.Variant

func (p Properties) Value(name string) (any, bool) {
	v, ok := p[name]
	if !ok {
		return nil, false
	}
	return v.Value(), true
}

func (p Properties) String(name string) string {
	v, _ := p.Value(name)
	switch s := v.(type) {
	case string:
		return s
	case dbus.ObjectPath:
		return string(s)
	}
	return ""
}

func (p Properties) Bool(name string) bool {
	v, _ := p.Value(name)
	b, _ := v.(bool)
	return b
}

func (p Properties) Strings(name string) []string {
	v, _ := p.Value(name)
	s, _ := v.([]string)
	return s
}

// Map returns a nested a{sv} property such as a context's Settings.
func (p Properties) Map(name string) Properties {
	v, _ := p.Value(name)
	switch m := v.(type) {
	case map[string]dbus.Variant:
		return Properties(m)
	case Properties:
		return m
	}
	return nil
}
