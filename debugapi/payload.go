package debugapi

import (
	"github.com/gin-gonic/gin"

	"ofonoril/ril"
)

func bind[T any](c *gin.Context) (any, error) {
	var v T
	if err := c.ShouldBindJSON(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// payloads decodes the JSON body of a request into the payload type its
// handler expects. Codes not listed take no payload.
var payloads = map[ril.Request]func(*gin.Context) (any, error){
	ril.RequestEnterSIMPin:   bind[[]string],
	ril.RequestEnterSIMPuk:   bind[[]string],
	ril.RequestEnterSIMPin2:  bind[[]string],
	ril.RequestEnterSIMPuk2:  bind[[]string],
	ril.RequestChangeSIMPin:  bind[[]string],
	ril.RequestChangeSIMPin2: bind[[]string],

	ril.RequestDial:               bind[ril.Dial],
	ril.RequestHangup:             bind[int],
	ril.RequestSeparateConnection: bind[int],
	ril.RequestDTMF:               bind[string],
	ril.RequestDTMFStart:          bind[string],
	ril.RequestSetMute:            bind[int],
	ril.RequestRadioPower:         bind[int],

	ril.RequestSendSMS:           bind[ril.SMS],
	ril.RequestSendSMSExpectMore: bind[ril.SMS],
	ril.RequestSendUSSD:          bind[string],

	ril.RequestSetNetworkSelectionManual: bind[string],
	ril.RequestSetPreferredNetworkType:   bind[int],
	ril.RequestCDMASetRoamingPreference:  bind[int],
	ril.RequestScreenState:               bind[int],

	ril.RequestSetupDataCall:      bind[ril.SetupDataCall],
	ril.RequestDeactivateDataCall: bind[[]string],

	ril.RequestOEMHookRaw:     bind[string],
	ril.RequestOEMHookStrings: bind[[]string],
}
