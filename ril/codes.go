package ril

import "fmt"

type Request int

const (
	RequestGetSIMStatus                     Request = 1
	RequestEnterSIMPin                      Request = 2
	RequestEnterSIMPuk                      Request = 3
	RequestEnterSIMPin2                     Request = 4
	RequestEnterSIMPuk2                     Request = 5
	RequestChangeSIMPin                     Request = 6
	RequestChangeSIMPin2                    Request = 7
	RequestEnterNetworkDepersonalization    Request = 8
	RequestGetCurrentCalls                  Request = 9
	RequestDial                             Request = 10
	RequestGetIMSI                          Request = 11
	RequestHangup                           Request = 12
	RequestHangupWaitingOrBackground        Request = 13
	RequestHangupForegroundResumeBackground Request = 14
	RequestSwitchWaitingOrHoldingAndActive  Request = 15
	RequestConference                       Request = 16
	RequestUDUB                             Request = 17
	RequestLastCallFailCause                Request = 18
	RequestSignalStrength                   Request = 19
	RequestVoiceRegistrationState           Request = 20
	RequestDataRegistrationState            Request = 21
	RequestOperator                         Request = 22
	RequestRadioPower                       Request = 23
	RequestDTMF                             Request = 24
	RequestSendSMS                          Request = 25
	RequestSendSMSExpectMore                Request = 26
	RequestSetupDataCall                    Request = 27
	RequestSIMIO                            Request = 28
	RequestSendUSSD                         Request = 29
	RequestCancelUSSD                       Request = 30
	RequestGetCLIR                          Request = 31
	RequestSetCLIR                          Request = 32
	RequestQueryCallForwardStatus           Request = 33
	RequestSetCallForward                   Request = 34
	RequestQueryCallWaiting                 Request = 35
	RequestSetCallWaiting                   Request = 36
	RequestSMSAcknowledge                   Request = 37
	RequestGetIMEI                          Request = 38
	RequestGetIMEISV                        Request = 39
	RequestAnswer                           Request = 40
	RequestDeactivateDataCall               Request = 41
	RequestQueryFacilityLock                Request = 42
	RequestSetFacilityLock                  Request = 43
	RequestChangeBarringPassword            Request = 44
	RequestQueryNetworkSelectionMode        Request = 45
	RequestSetNetworkSelectionAutomatic     Request = 46
	RequestSetNetworkSelectionManual        Request = 47
	RequestQueryAvailableNetworks           Request = 48
	RequestDTMFStart                        Request = 49
	RequestDTMFStop                         Request = 50
	RequestBasebandVersion                  Request = 51
	RequestSeparateConnection               Request = 52
	RequestSetMute                          Request = 53
	RequestGetMute                          Request = 54
	RequestQueryCLIP                        Request = 55
	RequestLastDataCallFailCause            Request = 56
	RequestDataCallList                     Request = 57
	RequestResetRadio                       Request = 58
	RequestOEMHookRaw                       Request = 59
	RequestOEMHookStrings                   Request = 60
	RequestScreenState                      Request = 61
	RequestSetSuppSvcNotification           Request = 62
	RequestWriteSMSToSIM                    Request = 63
	RequestDeleteSMSOnSIM                   Request = 64
	RequestSetBandMode                      Request = 65
	RequestQueryAvailableBandMode           Request = 66
	RequestExplicitCallTransfer             Request = 72
	RequestSetPreferredNetworkType          Request = 73
	RequestGetPreferredNetworkType          Request = 74
	RequestGetNeighboringCellIDs            Request = 75
	RequestSetLocationUpdates               Request = 76
	RequestCDMASetSubscriptionSource        Request = 77
	RequestCDMASetRoamingPreference         Request = 78
	RequestCDMAQueryRoamingPreference       Request = 79
)

var requestNames = map[Request]string{
	RequestGetSIMStatus:                     "GET_SIM_STATUS",
	RequestEnterSIMPin:                      "ENTER_SIM_PIN",
	RequestEnterSIMPuk:                      "ENTER_SIM_PUK",
	RequestEnterSIMPin2:                     "ENTER_SIM_PIN2",
	RequestEnterSIMPuk2:                     "ENTER_SIM_PUK2",
	RequestChangeSIMPin:                     "CHANGE_SIM_PIN",
	RequestChangeSIMPin2:                    "CHANGE_SIM_PIN2",
	RequestEnterNetworkDepersonalization:    "ENTER_NETWORK_DEPERSONALIZATION",
	RequestGetCurrentCalls:                  "GET_CURRENT_CALLS",
	RequestDial:                             "DIAL",
	RequestGetIMSI:                          "GET_IMSI",
	RequestHangup:                           "HANGUP",
	RequestHangupWaitingOrBackground:        "HANGUP_WAITING_OR_BACKGROUND",
	RequestHangupForegroundResumeBackground: "HANGUP_FOREGROUND_RESUME_BACKGROUND",
	RequestSwitchWaitingOrHoldingAndActive:  "SWITCH_WAITING_OR_HOLDING_AND_ACTIVE",
	RequestConference:                       "CONFERENCE",
	RequestUDUB:                             "UDUB",
	RequestLastCallFailCause:                "LAST_CALL_FAIL_CAUSE",
	RequestSignalStrength:                   "SIGNAL_STRENGTH",
	RequestVoiceRegistrationState:           "VOICE_REGISTRATION_STATE",
	RequestDataRegistrationState:            "DATA_REGISTRATION_STATE",
	RequestOperator:                         "OPERATOR",
	RequestRadioPower:                       "RADIO_POWER",
	RequestDTMF:                             "DTMF",
	RequestSendSMS:                          "SEND_SMS",
	RequestSendSMSExpectMore:                "SEND_SMS_EXPECT_MORE",
	RequestSetupDataCall:                    "SETUP_DATA_CALL",
	RequestSIMIO:                            "SIM_IO",
	RequestSendUSSD:                         "SEND_USSD",
	RequestCancelUSSD:                       "CANCEL_USSD",
	RequestGetCLIR:                          "GET_CLIR",
	RequestSetCLIR:                          "SET_CLIR",
	RequestQueryCallForwardStatus:           "QUERY_CALL_FORWARD_STATUS",
	RequestSetCallForward:                   "SET_CALL_FORWARD",
	RequestQueryCallWaiting:                 "QUERY_CALL_WAITING",
	RequestSetCallWaiting:                   "SET_CALL_WAITING",
	RequestSMSAcknowledge:                   "SMS_ACKNOWLEDGE",
	RequestGetIMEI:                          "GET_IMEI",
	RequestGetIMEISV:                        "GET_IMEISV",
	RequestAnswer:                           "ANSWER",
	RequestDeactivateDataCall:               "DEACTIVATE_DATA_CALL",
	RequestQueryFacilityLock:                "QUERY_FACILITY_LOCK",
	RequestSetFacilityLock:                  "SET_FACILITY_LOCK",
	RequestChangeBarringPassword:            "CHANGE_BARRING_PASSWORD",
	RequestQueryNetworkSelectionMode:        "QUERY_NETWORK_SELECTION_MODE",
	RequestSetNetworkSelectionAutomatic:     "SET_NETWORK_SELECTION_AUTOMATIC",
	RequestSetNetworkSelectionManual:        "SET_NETWORK_SELECTION_MANUAL",
	RequestQueryAvailableNetworks:           "QUERY_AVAILABLE_NETWORKS",
	RequestDTMFStart:                        "DTMF_START",
	RequestDTMFStop:                         "DTMF_STOP",
	RequestBasebandVersion:                  "BASEBAND_VERSION",
	RequestSeparateConnection:               "SEPARATE_CONNECTION",
	RequestSetMute:                          "SET_MUTE",
	RequestGetMute:                          "GET_MUTE",
	RequestQueryCLIP:                        "QUERY_CLIP",
	RequestLastDataCallFailCause:            "LAST_DATA_CALL_FAIL_CAUSE",
	RequestDataCallList:                     "DATA_CALL_LIST",
	RequestResetRadio:                       "RESET_RADIO",
	RequestOEMHookRaw:                       "OEM_HOOK_RAW",
	RequestOEMHookStrings:                   "OEM_HOOK_STRINGS",
	RequestScreenState:                      "SCREEN_STATE",
	RequestSetSuppSvcNotification:           "SET_SUPP_SVC_NOTIFICATION",
	RequestWriteSMSToSIM:                    "WRITE_SMS_TO_SIM",
	RequestDeleteSMSOnSIM:                   "DELETE_SMS_ON_SIM",
	RequestSetBandMode:                      "SET_BAND_MODE",
	RequestQueryAvailableBandMode:           "QUERY_AVAILABLE_BAND_MODE",
	RequestExplicitCallTransfer:             "EXPLICIT_CALL_TRANSFER",
	RequestSetPreferredNetworkType:          "SET_PREFERRED_NETWORK_TYPE",
	RequestGetPreferredNetworkType:          "GET_PREFERRED_NETWORK_TYPE",
	RequestGetNeighboringCellIDs:            "GET_NEIGHBORING_CELL_IDS",
	RequestSetLocationUpdates:               "SET_LOCATION_UPDATES",
	RequestCDMASetSubscriptionSource:        "CDMA_SET_SUBSCRIPTION_SOURCE",
	RequestCDMASetRoamingPreference:         "CDMA_SET_ROAMING_PREFERENCE",
	RequestCDMAQueryRoamingPreference:       "CDMA_QUERY_ROAMING_PREFERENCE",
}

func (r Request) String() string {
	if name, ok := requestNames[r]; ok {
		return name
	}
	return fmt.Sprintf("REQUEST_%d", int(r))
}

type Unsolicited int

const (
	UnsolRadioStateChanged        Unsolicited = 1000
	UnsolCallStateChanged         Unsolicited = 1001
	UnsolVoiceNetworkStateChanged Unsolicited = 1002
	UnsolNewSMS                   Unsolicited = 1003
	UnsolOnUSSD                   Unsolicited = 1006
	UnsolSignalStrength           Unsolicited = 1009
	UnsolDataCallListChanged      Unsolicited = 1010
	UnsolCallRing                 Unsolicited = 1018
	UnsolSIMStatusChanged         Unsolicited = 1019
)

var unsolNames = map[Unsolicited]string{
	UnsolRadioStateChanged:        "RADIO_STATE_CHANGED",
	UnsolCallStateChanged:         "CALL_STATE_CHANGED",
	UnsolVoiceNetworkStateChanged: "VOICE_NETWORK_STATE_CHANGED",
	UnsolNewSMS:                   "NEW_SMS",
	UnsolOnUSSD:                   "ON_USSD",
	UnsolSignalStrength:           "SIGNAL_STRENGTH",
	UnsolDataCallListChanged:      "DATA_CALL_LIST_CHANGED",
	UnsolCallRing:                 "CALL_RING",
	UnsolSIMStatusChanged:         "SIM_STATUS_CHANGED",
}

func (u Unsolicited) String() string {
	if name, ok := unsolNames[u]; ok {
		return name
	}
	return fmt.Sprintf("UNSOL_%d", int(u))
}

// Errno is the completion status of a request.
type Errno int

const (
	Success             Errno = 0
	RadioNotAvailable   Errno = 1
	GenericFailure      Errno = 2
	PasswordIncorrect   Errno = 3
	SIMPin2             Errno = 4
	SIMPuk2             Errno = 5
	RequestNotSupported Errno = 6
	Cancelled           Errno = 7
	SMSSendFailRetry    Errno = 10
	SIMAbsent           Errno = 11
	ModeNotSupported    Errno = 13
	IllegalSIMOrME      Errno = 15
)

var errnoNames = map[Errno]string{
	Success:             "SUCCESS",
	RadioNotAvailable:   "RADIO_NOT_AVAILABLE",
	GenericFailure:      "GENERIC_FAILURE",
	PasswordIncorrect:   "PASSWORD_INCORRECT",
	SIMPin2:             "SIM_PIN2",
	SIMPuk2:             "SIM_PUK2",
	RequestNotSupported: "REQUEST_NOT_SUPPORTED",
	Cancelled:           "CANCELLED",
	SMSSendFailRetry:    "SMS_SEND_FAIL_RETRY",
	SIMAbsent:           "SIM_ABSENT",
	ModeNotSupported:    "MODE_NOT_SUPPORTED",
	IllegalSIMOrME:      "ILLEGAL_SIM_OR_ME",
}

func (e Errno) String() string {
	if name, ok := errnoNames[e]; ok {
		return name
	}
	return fmt.Sprintf("E_%d", int(e))
}

// RadioState values as reported to the host.
type RadioState int

const (
	RadioOff         RadioState = 0
	RadioUnavailable RadioState = 1
	RadioSIMNotReady RadioState = 2
	RadioSIMReady    RadioState = 4
)

func (s RadioState) String() string {
	switch s {
	case RadioOff:
		return "OFF"
	case RadioUnavailable:
		return "UNAVAILABLE"
	case RadioSIMNotReady:
		return "SIM_NOT_READY"
	case RadioSIMReady:
		return "SIM_READY"
	}
	return fmt.Sprintf("RADIO_STATE_%d", int(s))
}
