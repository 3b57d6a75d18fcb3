package helpers

import (
	"encoding/json"
	"net/http"
)

// Validator is implemented by request DTOs that support validation.
// Validate normalizes the DTO in place and returns all field-level
// violations; nil or empty means valid.
type Validator interface {
	Validate() []FieldError
}

// DecodeAndValidate decodes the request body into dest, ignoring unknown
// fields, and, if dest implements Validator, runs Validate(). On decode or
// validation failure it writes a 400 JSON error and returns false; otherwise
// returns true. Callers should return immediately when DecodeAndValidate
// returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	return decodeAndValidate(w, r, dest, false)
}

// DecodeAndValidateStrict is DecodeAndValidate with unknown fields rejected.
func DecodeAndValidateStrict(w http.ResponseWriter, r *http.Request, dest any) bool {
	return decodeAndValidate(w, r, dest, true)
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, dest any, strict bool) bool {
	dec := json.NewDecoder(r.Body)
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dest); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return false
	}
	if v, ok := dest.(Validator); ok {
		if issues := v.Validate(); len(issues) > 0 {
			WriteJSONValidationError(w, issues)
			return false
		}
	}
	return true
}
