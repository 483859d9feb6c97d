package netreg

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"ofonoril/ril"
)

type pushes struct {
	strengths []ril.SignalStrength
	changed   int
}

func newTracker() (*Tracker, *pushes) {
	p := &pushes{}
	tr := New(Hooks{
		Strength: func(s ril.SignalStrength) { p.strengths = append(p.strengths, s) },
		Changed:  func() { p.changed++ },
	}, log.New(io.Discard))
	return tr, p
}

func Test_Rescale(t *testing.T) {
	assert.Equal(t, 14, Rescale(45))
	assert.Equal(t, 31, Rescale(100))
	assert.Equal(t, ril.SignalUnknown, Rescale(0))
	assert.Equal(t, ril.SignalUnknown, Rescale(1))
	assert.Equal(t, ril.SignalUnknown, Rescale(101))
}

func Test_Rescale_Range(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var raw = rapid.IntRange(-50, 300).Draw(t, "raw")

		var v = Rescale(raw)

		if v != ril.SignalUnknown {
			assert.GreaterOrEqual(t, v, 1)
			assert.LessOrEqual(t, v, 31)
		}
	})
}

func Test_Tracker_StrengthScreenOn(t *testing.T) {
	tr, p := newTracker()

	tr.Apply("Strength", byte(45))

	if assert.Len(t, p.strengths, 1) {
		assert.Equal(t, 14, p.strengths[0].GW.SignalStrength)
		assert.Equal(t, ril.SignalUnknown, p.strengths[0].GW.BitErrorRate)
	}
}

func Test_Tracker_StrengthScreenOff(t *testing.T) {
	tr, p := newTracker()
	tr.SetScreen(false)

	tr.Apply("Strength", byte(45))

	assert.Empty(t, p.strengths)
	assert.Equal(t, 14, tr.SignalStrength().GW.SignalStrength)

	tr.SetScreen(true)
	assert.Len(t, p.strengths, 1)
	tr.SetScreen(true)
	assert.Len(t, p.strengths, 1)
}

func Test_Tracker_RoamingThenUnregistered(t *testing.T) {
	tr, _ := newTracker()
	tr.Apply("Status", "roaming")
	tr.Apply("Name", "Beeline")
	tr.Apply("MobileCountryCode", "250")
	tr.Apply("MobileNetworkCode", "99")

	op, e := tr.Operator()
	assert.Equal(t, ril.Success, e)
	assert.Equal(t, []string{"Beeline", "Beeline", "25099"}, op)

	tr.Apply("Status", "unregistered")

	s := tr.Snapshot()
	assert.Equal(t, NotRegistered, s.Status)
	assert.Empty(t, s.Operator)
	assert.Empty(t, s.MCC)
	assert.Empty(t, s.MNC)
	_, e = tr.Operator()
	assert.Equal(t, ril.RadioNotAvailable, e)
}

func Test_Tracker_Registration(t *testing.T) {
	tr, p := newTracker()

	_, e := tr.VoiceRegistration()
	assert.Equal(t, ril.RadioNotAvailable, e)

	tr.Apply("Status", "registered")
	tr.Apply("LocationAreaCode", uint16(0x1a2b))
	tr.Apply("CellId", uint32(0xbeef))
	tr.Apply("Technology", "umts")

	v, e := tr.VoiceRegistration()
	assert.Equal(t, ril.Success, e)
	assert.Equal(t, []string{"1", "1a2b", "beef", "3"}, v)

	d, e := tr.DataRegistration(true)
	assert.Equal(t, ril.Success, e)
	assert.Equal(t, []string{"1", "1a2b", "beef", "3"}, d)
	assert.Equal(t, 4, p.changed)
}

func Test_Tracker_DataRegistrationWhileSearching(t *testing.T) {
	tr, _ := newTracker()
	tr.Apply("Status", "searching")

	_, e := tr.DataRegistration(true)
	assert.Equal(t, ril.RadioNotAvailable, e)

	v, e := tr.VoiceRegistration()
	assert.Equal(t, ril.Success, e)
	assert.Equal(t, "2", v[0])
}

func Test_Tracker_TechnologyAndMode(t *testing.T) {
	tr, p := newTracker()

	tr.Apply("Technology", "lte")
	tr.Apply("Mode", "manual")
	tr.Apply("Mode", "bogus")
	tr.Apply("BaseStation", "whatever")

	s := tr.Snapshot()
	assert.Equal(t, TechLTE, s.Technology)
	assert.Equal(t, ModeManual, s.Mode)
	assert.Equal(t, 2, p.changed)
}

func Test_Tracker_UnknownTechnologyKeepsLast(t *testing.T) {
	tr, p := newTracker()
	tr.Apply("Technology", "hspa")

	tr.Apply("Technology", "5gnr")

	assert.Equal(t, TechHSPA, tr.Snapshot().Technology)
	assert.Equal(t, 1, p.changed)

	_, ok := ParseTechnology("5gnr")
	assert.False(t, ok)
}
