package racf

// SEAR return codes.
const (
	SEAROK             = 0
	SEARFailed         = 4
	SEARInvalidRequest = 8
)

// ReturnCodes carries the native codes unchanged plus the SEAR code.
type ReturnCodes struct {
	SAFReturnCode  int `json:"saf_return_code"`
	RACFReturnCode int `json:"racf_return_code"`
	RACFReasonCode int `json:"racf_reason_code"`
	SEARReturnCode int `json:"sear_return_code"`
}

// NativeOK reports whether the native service succeeded.
func (c ReturnCodes) NativeOK() bool {
	return c.SAFReturnCode == 0 && c.RACFReturnCode == 0
}
