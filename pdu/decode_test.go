package pdu

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/sms/encoding/pdumode"
	"github.com/warthog618/sms/encoding/tpdu"
	"github.com/warthog618/sms/encoding/ucs2"
)

func submitTPDU(t *testing.T, number, message string) []byte {
	s, err := tpdu.NewSubmit()
	require.NoError(t, err)
	s.DA.SetNumber(number)
	s.SetDCS(byte(tpdu.DcsUCS2Data))
	s.SetUD(ucs2.Encode([]rune(message)))
	b, err := s.MarshalBinary()
	require.NoError(t, err)
	return b
}

func Test_DecodeSubmit(t *testing.T) {
	b := submitTPDU(t, "+79161234567", "Тест")

	s, err := DecodeSubmit(hex.EncodeToString(b))

	require.NoError(t, err)
	assert.Equal(t, "79161234567", strings.TrimPrefix(s.To, "+"))
	assert.Equal(t, "Тест", s.Text)
}

func Test_DecodeSubmit_WithSMSCPrefix(t *testing.T) {
	p := &pdumode.PDU{TPDU: submitTPDU(t, "+79161234567", "hello")}
	b, err := p.MarshalBinary()
	require.NoError(t, err)

	s, err := DecodeSubmit(hex.EncodeToString(b))

	require.NoError(t, err)
	assert.Equal(t, "hello", s.Text)
}

func Test_DecodeSubmit_BadHex(t *testing.T) {
	_, err := DecodeSubmit("zz")

	assert.Error(t, err)
}
