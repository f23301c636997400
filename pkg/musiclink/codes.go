package musiclink

import "slices"

// SuccessCodes lists the upstream "code" values a provider uses for success.
type SuccessCodes struct {
	Codes []int64
	// MissingOK accepts responses that carry no code at all.
	MissingOK bool
}

// successCodes is consulted once per response, at the transport boundary.
var successCodes = map[Provider]SuccessCodes{
	ProviderSBY: {Codes: []int64{200}, MissingOK: true},
	ProviderXF:  {Codes: []int64{200}},
	ProviderXZG: {Codes: []int64{200}},
	ProviderLZ:  {Codes: []int64{200}, MissingOK: true},
	ProviderCGG: {Codes: []int64{200}, MissingOK: true}, // Qishui detail has no code field.
}

// SuccessCodesFor returns the success-code entry of a provider.
// Unknown providers accept only 200.
func SuccessCodesFor(provider Provider) SuccessCodes {
	if sc, ok := successCodes[provider]; ok {
		return sc
	}
	return SuccessCodes{Codes: []int64{200}}
}

// Accepts reports whether a response code means success. present is false when the body had no code.
func (sc SuccessCodes) Accepts(code int64, present bool) bool {
	if !present {
		return sc.MissingOK
	}
	return slices.Contains(sc.Codes, code)
}
