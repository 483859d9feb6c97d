// Package pdu builds the hex text form of SMS-DELIVER PDUs handed to the
// radio daemon, and reads back the SMS-SUBMIT PDUs it sends.
package pdu

import (
	"errors"
	"strings"

	"github.com/warthog618/sms/encoding/ucs2"
	"golang.org/x/text/runes"
)

var ErrEmptyNumber = errors.New("pdu: empty number")

const (
	// MaxUserData is the largest UCS-2 payload in octets. TP-UDL is one octet.
	MaxUserData = 254

	firstOctetDeliver = 0x04
	pidDefault        = 0x00
	dcsUCS2           = 0x08

	// both addresses are always written as international
	toaInternational = 0x91
)

// service centre time stamp, not derived from the clock
var timestamp = [...]byte{0x99, 0x30, 0x92, 0x51, 0x61, 0x95, 0x80}

// placeholder used for numbers that cannot be written as semi-octets
const placeholder = "0000"

var bmpOnly = runes.Map(func(r rune) rune {
	if r > 0xffff {
		return '?'
	}
	return r
})

type encoder struct {
	strings.Builder
}

func nibble(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'a' + n - 10
}

func (e *encoder) octet(b byte) {
	e.WriteByte(nibble(b >> 4))
	e.WriteByte(nibble(b & 0x0f))
}

// address writes the type of address and the swapped semi-octets of digits.
func (e *encoder) address(digits string) {
	e.octet(toaInternational)
	for i := 0; i < len(digits); i += 2 {
		if i+1 == len(digits) {
			e.WriteByte('F')
			e.WriteByte(digits[i])
			break
		}
		e.WriteByte(digits[i+1])
		e.WriteByte(digits[i])
	}
}

// semiOctets maps a dialling string to its semi-octet digits. Strings that
// cannot be represented fall back to the placeholder.
func semiOctets(number string) (string, error) {
	if strings.HasPrefix(number, "+") {
		number = number[1:]
		if number == "" {
			return "", ErrEmptyNumber
		}
	}
	var b strings.Builder
	for _, r := range number {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '*':
			b.WriteByte('a')
		case r == '#':
			b.WriteByte('b')
		default:
			return placeholder, nil
		}
	}
	if b.Len() == 0 {
		return placeholder, nil
	}
	return b.String(), nil
}

// Encode returns the SMS-DELIVER PDU for message as lowercase hex text,
// prefixed with the service centre address. Text beyond MaxUserData octets of
// UCS-2 is dropped.
func Encode(message, smsc, sender string) (string, error) {
	var e encoder

	sc, err := semiOctets(smsc)
	if err != nil {
		return "", err
	}
	// length of the SMSC field in octets, type of address included
	e.octet(byte(len(sc)/2 + len(sc)%2 + 1))
	e.address(sc)

	e.octet(firstOctetDeliver)

	oa, err := semiOctets(sender)
	if err != nil {
		return "", err
	}
	// originating address length counts digits, not octets
	e.octet(byte(len(oa)))
	e.address(oa)

	e.octet(pidDefault)
	e.octet(dcsUCS2)
	for _, b := range timestamp {
		e.octet(b)
	}

	ud := ucs2.Encode([]rune(bmpOnly.String(message)))
	if len(ud) > MaxUserData {
		ud = ud[:MaxUserData]
	}
	e.octet(byte(len(ud)))
	for _, b := range ud {
		e.octet(b)
	}
	return e.String(), nil
}
