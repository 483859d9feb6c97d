package radio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ofonoril/ril"
)

func Test_SIM_NotReadyWhileRadioOff(t *testing.T) {
	s := NewSIM()
	s.SetPinRequired("none")

	assert.Equal(t, SIMNotReady, s.Status(ril.RadioOff))
	assert.Equal(t, SIMNotReady, s.Status(ril.RadioUnavailable))
	assert.Equal(t, SIMNotReady, s.Status(ril.RadioSIMNotReady))
	assert.Equal(t, SIMReady, s.Status(ril.RadioSIMReady))
}

func Test_SIM_PinRequired(t *testing.T) {
	s := NewSIM()

	for pin, want := range map[string]SIMStatus{
		"pin":     SIMPin,
		"puk":     SIMPuk,
		"network": SIMNetworkPersonalization,
		"phone":   SIMNotReady,
		"none":    SIMReady,
	} {
		s.SetPinRequired(pin)
		assert.Equal(t, want, s.Status(ril.RadioSIMReady), pin)
	}
}

func Test_SIM_PinRequiredReportsChange(t *testing.T) {
	s := NewSIM()

	assert.True(t, s.SetPinRequired("pin"))
	assert.False(t, s.SetPinRequired("pin"))
}

func Test_SIM_Present(t *testing.T) {
	s := NewSIM()

	assert.True(t, s.SetPresent(false))
	assert.Equal(t, SIMAbsent, s.Status(ril.RadioSIMReady))
	assert.False(t, s.SetPinRequired("pin"), "absent card ignores PinRequired")

	assert.True(t, s.SetPresent(true))
	assert.Equal(t, SIMReady, s.Status(ril.RadioSIMReady))
	assert.False(t, s.SetPresent(true))
}

func Test_SIM_IMSIOnce(t *testing.T) {
	s := NewSIM()

	assert.False(t, s.SetIMSI(""))
	assert.True(t, s.SetIMSI("250991234567890"))
	assert.False(t, s.SetIMSI("250990000000000"))
	assert.Equal(t, "250991234567890", s.IMSI())
}

func Test_SIM_CardStatus(t *testing.T) {
	s := NewSIM()
	s.SetPinRequired("pin")

	cs := s.CardStatus(ril.RadioSIMReady)
	assert.Equal(t, ril.CardPresent, cs.CardState)
	require.Len(t, cs.Applications, 1)
	assert.Equal(t, 0, cs.GSMUMTSAppIndex)
	assert.Equal(t, ril.AppStatePin, cs.Applications[0].AppState)
	assert.Equal(t, ril.PinEnabledNotVerified, cs.Applications[0].Pin1)

	s.SetPresent(false)
	cs = s.CardStatus(ril.RadioSIMReady)
	assert.Equal(t, ril.CardAbsent, cs.CardState)
	assert.Empty(t, cs.Applications)
	assert.Equal(t, ril.CardMaxApps, cs.GSMUMTSAppIndex)
}
