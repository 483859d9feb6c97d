package phone

import (
	"ofonoril/db"
	"ofonoril/ofono"
	"ofonoril/pdu"
	"ofonoril/ril"
)

func (m *Modem) requestSendSMS(payload any, t ril.Token) {
	msg, ok := payload.(ril.SMS)
	if !ok {
		m.complete(t, ril.GenericFailure, nil)
		return
	}
	submit, err := pdu.DecodeSubmit(msg.PDU)
	if err != nil {
		m.logger.Warn("✉️ undecodable pdu", "err", err)
		m.complete(t, ril.GenericFailure, nil)
		return
	}

	if m.object(ofono.InterfaceMessageManager) == nil {
		m.logger.Warn("✉️ no message manager yet", "to", submit.To)
		m.complete(t, ril.RadioNotAvailable, nil)
		return
	}

	ref := int(m.messageRef.Inc() & 0xff)
	if err := m.invoke(ofono.InterfaceMessageManager, "SendMessage", submit.To, submit.Text).Err; err != nil {
		m.logger.Warn("✉️ send failed", "to", submit.To, "err", err)
		m.journal(db.MessageLog{Peer: submit.To, Text: submit.Text, Reference: ref, Failed: true})
		m.complete(t, ril.SMSSendFailRetry, nil)
		return
	}
	m.logger.Info("✉️ message sent", "to", submit.To, "ref", ref)
	m.journal(db.MessageLog{Peer: submit.To, Text: submit.Text, Reference: ref})
	m.complete(t, ril.Success, ril.SMSResponse{MessageRef: ref, ErrorCode: -1})
}
