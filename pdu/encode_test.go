package pdu

import (
	"encoding/hex"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/sms/encoding/pdumode"
	"github.com/warthog618/sms/encoding/tpdu"
	"pgregory.net/rapid"
)

const (
	testSMSC   = "+79168999100"
	testSender = "+79161234567"
	// SMSC, first octet, sender, PID, DCS and time stamp for the numbers above
	testHeader = "07919761989901F0040b919761214365F7000899309251619580"
)

func Test_Encode_KnownVector(t *testing.T) {
	out, err := Encode("Hi", testSMSC, testSender)

	require.NoError(t, err)
	assert.Equal(t, testHeader+"0400480069", out)
}

func Test_Encode_EmptyMessage(t *testing.T) {
	out, err := Encode("", testSMSC, testSender)

	require.NoError(t, err)
	assert.Equal(t, testHeader+"00", out)
}

func Test_Encode_EmptyInternationalNumber(t *testing.T) {
	_, err := Encode("x", "+", testSender)
	assert.ErrorIs(t, err, ErrEmptyNumber)

	_, err = Encode("x", testSMSC, "+")
	assert.ErrorIs(t, err, ErrEmptyNumber)
}

func Test_Encode_NationalSender(t *testing.T) {
	out, err := Encode("", testSMSC, "0123")

	require.NoError(t, err)
	assert.Equal(t, testHeader[:16]+"04"+"04"+"91"+"1032"+testHeader[34:]+"00", out)
}

func Test_Encode_NationalNumbersAreInternational(t *testing.T) {
	out, err := Encode("", "89168999100", "89161234567")

	require.NoError(t, err)
	assert.Equal(t, "07919861989901F0"+"04"+"0b919861214365F7"+"0008"+"99309251619580"+"00", out)
}

func Test_Encode_AlphanumericSenderUsesPlaceholder(t *testing.T) {
	out, err := Encode("", testSMSC, "Beeline")

	require.NoError(t, err)
	assert.Equal(t, testHeader[:16]+"04"+"04"+"91"+"0000"+testHeader[34:]+"00", out)
}

func Test_Encode_NonBMPIsReplaced(t *testing.T) {
	out, err := Encode("a\U0001F600", testSMSC, testSender)

	require.NoError(t, err)
	assert.Equal(t, testHeader+"040061003f", out)
}

func Test_Encode_DecodesAsDeliver(t *testing.T) {
	const message = "Привет, world"

	out, err := Encode(message, testSMSC, testSender)
	require.NoError(t, err)

	raw, err := hex.DecodeString(out)
	require.NoError(t, err)
	p, err := pdumode.UnmarshalBinary(raw)
	require.NoError(t, err)

	d := &tpdu.TPDU{}
	require.NoError(t, d.UnmarshalBinary(p.TPDU))
	assert.Equal(t, tpdu.SmsDeliver, d.SmsType())
	assert.Equal(t, "79161234567", strings.TrimPrefix(d.OA.Number(), "+"))

	alpha, err := d.Alphabet()
	require.NoError(t, err)
	text, err := tpdu.DecodeUserData(d.UD, d.UDH, alpha)
	require.NoError(t, err)
	assert.Equal(t, message, string(text))
}

var bmpText = rapid.StringOf(rapid.RuneFrom(nil, unicode.Latin, unicode.Cyrillic, unicode.Greek, unicode.Han))

func Test_Encode_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var message = bmpText.Draw(t, "message")

		var first, err1 = Encode(message, testSMSC, testSender)
		var second, err2 = Encode(message, testSMSC, testSender)

		assert.NoError(t, err1)
		assert.NoError(t, err2)
		assert.Equal(t, first, second)
	})
}

func Test_Encode_TruncatesUserData(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var message = bmpText.Draw(t, "message")
		var n = len([]rune(message))

		var out, err = Encode(message, testSMSC, testSender)
		assert.NoError(t, err)

		var udl = min(2*n, MaxUserData)
		assert.Len(t, out, len(testHeader)+2+2*udl)
		assert.Equal(t, hex.EncodeToString([]byte{byte(udl)}), out[len(testHeader):len(testHeader)+2])
	})
}

func Test_Encode_LongMessageCapped(t *testing.T) {
	out, err := Encode(strings.Repeat("z", 200), testSMSC, testSender)

	require.NoError(t, err)
	assert.Equal(t, "fe", out[len(testHeader):len(testHeader)+2])
	assert.Len(t, out, len(testHeader)+2+MaxUserData*2)
}
