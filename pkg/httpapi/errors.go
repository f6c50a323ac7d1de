package httpapi

import (
	"encoding/json"
	"net/http"
)

// Error codes exposed by the API. The rate limiter and idempotency guard
// reuse these so every rejection shares one envelope shape.
const (
	CodeFieldRequired = "FIELD_REQUIRED"
	CodeRateLimit     = "RATE_LIMIT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeInternal      = "INTERNAL"
)

// ErrorBody is the structured error envelope: {"error":{...}}.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code, the offending field for
// validation errors, and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// WriteJSON serializes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the structured error envelope.
func WriteError(w http.ResponseWriter, status int, code, field, message string) {
	WriteJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Field: field, Message: message}})
}
