package realtime

import "fmt"

// Error is an API-level error from the realtime endpoint.
type Error struct {
	// Type is the error type (e.g. "invalid_request_error").
	Type string `json:"type,omitzero"`

	// Code is the error code (e.g. "invalid_value").
	Code string `json:"code,omitzero"`

	// Message is the human-readable error message.
	Message string `json:"message,omitzero"`

	// Param is the parameter that caused the error, if applicable.
	Param string `json:"param,omitzero"`

	// EventID is the ID of the client event that caused the error.
	EventID string `json:"event_id,omitzero"`

	// HTTPStatus is the HTTP status code, if the error came from an
	// HTTP exchange rather than a channel event.
	HTTPStatus int `json:"-"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("realtime: %s: %s", e.Code, e.Message)
	}
	if e.Type != "" {
		return fmt.Sprintf("realtime: %s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("realtime: %s", e.Message)
}

// SignalingError is returned when the SDP exchange is rejected with a
// non-2xx status. Body carries the response body verbatim: the remote
// side's validation messages are the only way to diagnose a rejected
// offer, so nothing is trimmed or rewritten.
type SignalingError struct {
	StatusCode int
	Body       string
}

func (e *SignalingError) Error() string {
	return fmt.Sprintf("realtime: signaling rejected (status %d): %s", e.StatusCode, e.Body)
}
