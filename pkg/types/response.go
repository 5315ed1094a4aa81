// Package types holds the JSON envelopes shared by every handler.
package types

// SuccessEnvelope is the {"data": ...} body of a 2xx response.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope is the {"error": {...}} body of a 4xx or 5xx response.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// APIError carries a stable machine code next to the human message.
// Details holds field-level context such as the offending field name.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
