package helpers

import (
	"encoding/json"
	"net/http"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeValidation    = "validation_error"
	ErrCodeNotFound      = "not_found"
	ErrCodeTokenExpired  = "token_expired"
	ErrCodeLocked        = "locked"
	ErrCodeConflict      = "conflict"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeInternalError = "internal_error"
)

// FieldError is a validation violation scoped to a single input field, so
// clients can highlight the right input.
// swagger:model FieldError
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is the error object in the API response envelope. Issues carries
// field-level validation errors when Code is validation_error.
// swagger:model APIError
type APIError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Issues  []FieldError `json:"issues,omitempty"`
}

// APIResponse is the envelope for all API responses.
// On success: OK is true and Data is set. On error: OK is false and Error is set.
// swagger:model APIResponse
type APIResponse struct {
	OK    bool      `json:"ok"`
	Data  any       `json:"data,omitempty"`
	Error *APIError `json:"error,omitempty"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode,
// and encodes an APIResponse with ok=true and the given data.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{OK: true, Data: data})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode,
// and encodes an APIResponse with ok=false and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		OK:    false,
		Error: &APIError{Code: code, Message: message},
	})
}

// WriteJSONValidationError writes a 400 with all field-level violations at once.
func WriteJSONValidationError(w http.ResponseWriter, issues []FieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(APIResponse{
		OK: false,
		Error: &APIError{
			Code:    ErrCodeValidation,
			Message: "Invalid form data.",
			Issues:  issues,
		},
	})
}
