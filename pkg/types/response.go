// Package types holds the wire envelopes every API response is wrapped in.
package types

// SuccessEnvelope wraps a successful payload under "data".
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error body: a stable machine-readable code, a
// message safe to show a shopper, and optional structured details.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under "error".
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
