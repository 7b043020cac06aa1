package types

// SuccessEnvelope wraps every successful response body; cart views, catalog
// rows, sale records, and report figures all ride under "data".
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the serialized error taxonomy entry. Details carries the
// structured payload for codes that allow it, such as the stock shortage
// attached to INSUFFICIENT_STOCK.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every failure response body.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
