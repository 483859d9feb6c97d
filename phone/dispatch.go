package phone

import (
	"ofonoril/ril"
)

// requests accepted while the radio is off
var offAllowed = map[ril.Request]bool{
	ril.RequestRadioPower:      true,
	ril.RequestGetSIMStatus:    true,
	ril.RequestGetIMEI:         true,
	ril.RequestGetIMEISV:       true,
	ril.RequestBasebandVersion: true,
}

// OnRequest gates code on the radio state and routes it to its handler.
// Every request is completed exactly once, possibly later from the event
// loop.
func (m *Modem) OnRequest(code ril.Request, payload any, t ril.Token) {
	state := m.radio.State()
	m.logger.Debug("➡️ request", "code", code, "token", t, "radio", state)

	switch {
	case state == ril.RadioUnavailable && code != ril.RequestGetSIMStatus:
		m.complete(t, ril.RadioNotAvailable, nil)
		return
	case state == ril.RadioOff && !offAllowed[code]:
		m.complete(t, ril.RadioNotAvailable, nil)
		return
	}

	h, ok := m.requests[code]
	if !ok {
		m.complete(t, ril.RequestNotSupported, nil)
		return
	}
	h(payload, t)
}

func (m *Modem) requestTable() map[ril.Request]handler {
	return map[ril.Request]handler{
		// identity, SIM and power
		ril.RequestGetSIMStatus:                  m.requestSIMStatus,
		ril.RequestRadioPower:                    m.requestRadioPower,
		ril.RequestGetIMEI:                       m.requestIMEI,
		ril.RequestGetIMEISV:                     m.reply(ril.Success, "02"),
		ril.RequestBasebandVersion:               m.requestBasebandVersion,
		ril.RequestGetIMSI:                       m.requestIMSI,
		ril.RequestEnterSIMPin:                   m.simCall("EnterPin", "pin", 1),
		ril.RequestEnterSIMPuk:                   m.simCall("ResetPin", "puk", 2),
		ril.RequestEnterSIMPin2:                  m.simCall("EnterPin", "pin2", 1),
		ril.RequestEnterSIMPuk2:                  m.simCall("ResetPin", "puk2", 2),
		ril.RequestChangeSIMPin:                  m.simCall("ChangePin", "pin", 2),
		ril.RequestChangeSIMPin2:                 m.simCall("ChangePin", "pin2", 2),
		ril.RequestEnterNetworkDepersonalization: m.reply(ril.Success, nil),
		ril.RequestSIMIO:                         m.reply(ril.GenericFailure, nil),

		// calls
		ril.RequestGetCurrentCalls:                  m.requestCurrentCalls,
		ril.RequestDial:                             m.requestDial,
		ril.RequestAnswer:                           m.requestAnswer,
		ril.RequestHangup:                           m.requestHangup,
		ril.RequestHangupWaitingOrBackground:        m.hangupFirst(ril.CallWaiting, ril.CallHolding, ril.CallIncoming),
		ril.RequestHangupForegroundResumeBackground: m.hangupFirst(ril.CallActive),
		ril.RequestUDUB:                             m.hangupFirst(ril.CallIncoming, ril.CallWaiting),
		ril.RequestSwitchWaitingOrHoldingAndActive:  m.requestSwitch,
		ril.RequestConference:                       m.callManager("CreateMultiparty"),
		ril.RequestSeparateConnection:               m.requestSeparate,
		ril.RequestLastCallFailCause:                m.requestLastCallFailCause,
		ril.RequestDTMF:                             m.requestTones,
		ril.RequestDTMFStart:                        m.requestTones,
		ril.RequestDTMFStop:                         m.reply(ril.Success, nil),
		ril.RequestSetMute:                          m.requestSetMute,
		ril.RequestGetMute:                          m.requestGetMute,

		// messaging and supplementary services
		ril.RequestSendSMS:           m.requestSendSMS,
		ril.RequestSendSMSExpectMore: m.requestSendSMS,
		ril.RequestSMSAcknowledge:    m.reply(ril.Success, nil),
		ril.RequestWriteSMSToSIM:     m.reply(ril.GenericFailure, nil),
		ril.RequestDeleteSMSOnSIM:    m.reply(ril.RequestNotSupported, nil),
		ril.RequestSendUSSD:          m.requestSendUSSD,
		ril.RequestCancelUSSD:        m.requestCancelUSSD,

		// network
		ril.RequestSignalStrength:               m.requestSignalStrength,
		ril.RequestVoiceRegistrationState:       m.requestVoiceRegistration,
		ril.RequestDataRegistrationState:        m.requestDataRegistration,
		ril.RequestOperator:                     m.requestOperator,
		ril.RequestQueryNetworkSelectionMode:    m.requestSelectionMode,
		ril.RequestSetNetworkSelectionAutomatic: m.requestSelectAutomatic,
		ril.RequestSetNetworkSelectionManual:    m.requestSelectManual,
		ril.RequestQueryAvailableNetworks:       m.requestScan,
		ril.RequestSetPreferredNetworkType:      m.requestSetPreferredType,
		ril.RequestGetPreferredNetworkType:      m.requestGetPreferredType,
		ril.RequestCDMAQueryRoamingPreference:   m.requestQueryRoaming,
		ril.RequestCDMASetRoamingPreference:     m.requestSetRoaming,
		ril.RequestScreenState:                  m.requestScreenState,

		// packet data
		ril.RequestSetupDataCall:      m.requestSetupDataCall,
		ril.RequestDeactivateDataCall: m.requestDeactivateDataCall,
		ril.RequestDataCallList:       m.requestDataCallList,

		ril.RequestOEMHookRaw:     m.echo,
		ril.RequestOEMHookStrings: m.echo,
	}
}

// reply completes with a fixed status and payload.
func (m *Modem) reply(e ril.Errno, payload any) handler {
	return func(_ any, t ril.Token) {
		m.complete(t, e, payload)
	}
}

func (m *Modem) echo(payload any, t ril.Token) {
	m.complete(t, ril.Success, payload)
}

func intArg(payload any) (int, bool) {
	switch v := payload.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case []int:
		if len(v) > 0 {
			return v[0], true
		}
	}
	return 0, false
}

func stringArg(payload any) (string, bool) {
	switch v := payload.(type) {
	case string:
		return v, true
	case []string:
		if len(v) > 0 {
			return v[0], true
		}
	}
	return "", false
}
