package ril

// CallState mirrors RIL_CallState.
type CallState int

const (
	CallActive   CallState = 0
	CallHolding  CallState = 1
	CallDialing  CallState = 2
	CallAlerting CallState = 3
	CallIncoming CallState = 4
	CallWaiting  CallState = 5
)

func (s CallState) String() string {
	switch s {
	case CallActive:
		return "active"
	case CallHolding:
		return "holding"
	case CallDialing:
		return "dialing"
	case CallAlerting:
		return "alerting"
	case CallIncoming:
		return "incoming"
	case CallWaiting:
		return "waiting"
	}
	return "invalid"
}

// Presentation values for number and name.
const (
	PresentationAllowed    = 0
	PresentationRestricted = 1
	PresentationUnknown    = 2
)

const (
	TOAInternational = 145
	TOAUnknown       = 129
)

type Call struct {
	State              CallState `json:"state"`
	Index              int       `json:"index"`
	TOA                int       `json:"toa"`
	IsMultiparty       bool      `json:"is_mpty"`
	IsMT               bool      `json:"is_mt"`
	ALS                int       `json:"als"`
	IsVoice            bool      `json:"is_voice"`
	IsVoicePrivacy     bool      `json:"is_voice_privacy"`
	Number             string    `json:"number"`
	NumberPresentation int       `json:"number_presentation"`
	Name               string    `json:"name"`
	NamePresentation   int       `json:"name_presentation"`
}

type Dial struct {
	Address string `json:"address"`
	CLIR    int    `json:"clir"`
}

// Last call fail causes.
const (
	CallFailNormal           = 16
	CallFailBusy             = 17
	CallFailErrorUnspecified = 0xffff
)

type CardState int

const (
	CardAbsent  CardState = 0
	CardPresent CardState = 1
	CardError   CardState = 2
)

type PinState int

const (
	PinUnknown            PinState = 0
	PinEnabledNotVerified PinState = 1
	PinEnabledVerified    PinState = 2
	PinDisabled           PinState = 3
	PinEnabledBlocked     PinState = 4
	PinEnabledPermBlocked PinState = 5
)

type AppType int

const (
	AppUnknown AppType = 0
	AppSIM     AppType = 1
	AppUSIM    AppType = 2
)

type AppState int

const (
	AppStateUnknown           AppState = 0
	AppStateDetected          AppState = 1
	AppStatePin               AppState = 2
	AppStatePuk               AppState = 3
	AppStateSubscriptionPerso AppState = 4
	AppStateReady             AppState = 5
)

type PersoSubstate int

const (
	PersoUnknown    PersoSubstate = 0
	PersoInProgress PersoSubstate = 1
	PersoReady      PersoSubstate = 2
	PersoSIMNetwork PersoSubstate = 3
)

const CardMaxApps = 8

type AppStatus struct {
	AppType       AppType       `json:"app_type"`
	AppState      AppState      `json:"app_state"`
	PersoSubstate PersoSubstate `json:"perso_substate"`
	AID           string        `json:"aid"`
	Label         string        `json:"label"`
	Pin1Replaced  bool          `json:"pin1_replaced"`
	Pin1          PinState      `json:"pin1"`
	Pin2          PinState      `json:"pin2"`
}

type CardStatus struct {
	CardState         CardState   `json:"card_state"`
	UniversalPinState PinState    `json:"universal_pin_state"`
	GSMUMTSAppIndex   int         `json:"gsm_umts_app_index"`
	CDMAAppIndex      int         `json:"cdma_app_index"`
	Applications      []AppStatus `json:"applications"`
}

type GWSignalStrength struct {
	SignalStrength int `json:"signal_strength"`
	BitErrorRate   int `json:"bit_error_rate"`
}

type CDMASignalStrength struct {
	DBm  int `json:"dbm"`
	ECIO int `json:"ecio"`
}

type EVDOSignalStrength struct {
	DBm              int `json:"dbm"`
	ECIO             int `json:"ecio"`
	SignalNoiseRatio int `json:"signal_noise_ratio"`
}

type LTESignalStrength struct {
	SignalStrength int `json:"signal_strength"`
	RSRP           int `json:"rsrp"`
	RSRQ           int `json:"rsrq"`
	RSSNR          int `json:"rssnr"`
	CQI            int `json:"cqi"`
}

type SignalStrength struct {
	GW   GWSignalStrength   `json:"gw"`
	CDMA CDMASignalStrength `json:"cdma"`
	EVDO EVDOSignalStrength `json:"evdo"`
	LTE  LTESignalStrength  `json:"lte"`
}

// SignalUnknown is the "not known or not detectable" strength and error rate.
const SignalUnknown = 99

// NewSignalStrength fills the non-GW technologies with their unknown values.
func NewSignalStrength(gw int) SignalStrength {
	return SignalStrength{
		GW:   GWSignalStrength{SignalStrength: gw, BitErrorRate: SignalUnknown},
		CDMA: CDMASignalStrength{DBm: -1, ECIO: -1},
		EVDO: EVDOSignalStrength{DBm: -1, ECIO: -1, SignalNoiseRatio: -1},
		LTE: LTESignalStrength{
			SignalStrength: SignalUnknown,
			RSRP:           0x7fffffff,
			RSRQ:           0x7fffffff,
			RSSNR:          0x7fffffff,
			CQI:            0x7fffffff,
		},
	}
}

// SMS is the SEND_SMS argument: an optional SMSC address and a hex SUBMIT TPDU.
type SMS struct {
	SMSC string `json:"smsc"`
	PDU  string `json:"pdu"`
}

type SMSResponse struct {
	MessageRef int    `json:"message_ref"`
	AckPDU     string `json:"ack_pdu"`
	ErrorCode  int    `json:"error_code"`
}

type SetupDataCall struct {
	RadioTechnology string `json:"radio_technology"`
	Profile         string `json:"profile"`
	APN             string `json:"apn"`
	User            string `json:"user"`
	Password        string `json:"password"`
	AuthType        string `json:"auth_type"`
}

// DataCall is the SETUP_DATA_CALL response.
type DataCall struct {
	CID     string `json:"cid"`
	Ifname  string `json:"ifname"`
	Address string `json:"address"`
}

type DataCallStatus struct {
	CID     int    `json:"cid"`
	Active  int    `json:"active"`
	Type    string `json:"type"`
	APN     string `json:"apn"`
	Address string `json:"address"`
}

// Preferred network types understood by SET/GET_PREFERRED_NETWORK_TYPE.
const (
	NetworkTypeGSMWCDMA     = 0
	NetworkTypeGSMOnly      = 1
	NetworkTypeWCDMAOnly    = 2
	NetworkTypeGSMWCDMAAuto = 3
	NetworkTypeLTEOnly      = 11
)
