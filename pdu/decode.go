package pdu

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/warthog618/sms/encoding/pdumode"
	"github.com/warthog618/sms/encoding/tpdu"
)

var ErrNotSubmit = errors.New("pdu: not an SMS-SUBMIT")

// Submit is the part of an outgoing message ofono needs to send it.
type Submit struct {
	To   string
	Text string
}

// DecodeSubmit reads a hex SMS-SUBMIT TPDU as passed with SEND_SMS. A PDU
// that still carries its SMSC prefix is accepted as well.
func DecodeSubmit(hexPDU string) (Submit, error) {
	raw, err := hex.DecodeString(hexPDU)
	if err != nil {
		return Submit{}, fmt.Errorf("pdu: %w", err)
	}
	s, err := decodeSubmit(raw)
	if err == nil {
		return s, nil
	}
	p, perr := pdumode.UnmarshalBinary(raw)
	if perr != nil {
		return Submit{}, err
	}
	return decodeSubmit(p.TPDU)
}

func decodeSubmit(raw []byte) (Submit, error) {
	t := &tpdu.TPDU{Direction: tpdu.MO}
	if err := t.UnmarshalBinary(raw); err != nil {
		return Submit{}, fmt.Errorf("pdu: %w", err)
	}
	if t.SmsType() != tpdu.SmsSubmit {
		return Submit{}, ErrNotSubmit
	}
	alpha, err := t.Alphabet()
	if err != nil {
		return Submit{}, fmt.Errorf("pdu: %w", err)
	}
	text, err := tpdu.DecodeUserData(t.UD, t.UDH, alpha)
	if err != nil {
		return Submit{}, fmt.Errorf("pdu: %w", err)
	}
	return Submit{To: t.DA.Number(), Text: string(text)}, nil
}
