package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"eventregistration/internal/delivery/http/helpers"
	"eventregistration/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const maxLegacyGuests = 10

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// trimToNil trims s and returns nil when the result is empty.
func trimToNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// attendanceFields is the plus-one portion shared by register and edit
// payloads. Legacy clients send an integer guest count instead of the
// plus_one flag; both forms are accepted.
type attendanceFields struct {
	PlusOne         *helpers.FlexBool `json:"plus_one"`
	PlusOneFullName *string           `json:"plus_one_full_name"`
	Guests          *helpers.FlexInt  `json:"guests"`
}

// resolve normalizes the attendance fields into (plusOne, plusOneFullName),
// appending any violations to issues.
func (a *attendanceFields) resolve(issues []helpers.FieldError) (bool, *string, []helpers.FieldError) {
	plusOne := false
	switch {
	case a.PlusOne != nil:
		plusOne = bool(*a.PlusOne)
	case a.Guests != nil:
		guests := int(*a.Guests)
		if guests < 0 {
			guests = 0
		}
		if guests > maxLegacyGuests {
			guests = maxLegacyGuests
		}
		plusOne = guests > 0
	}

	if !plusOne {
		// Stored as null regardless of what was submitted.
		return false, nil, issues
	}

	name := trimToNil(a.PlusOneFullName)
	if name == nil || utf8.RuneCountInString(*name) < 2 {
		issues = append(issues, helpers.FieldError{
			Field:   "plus_one_full_name",
			Message: "Please enter the first and last name for your +1.",
		})
		return true, nil, issues
	}
	if utf8.RuneCountInString(*name) > 120 {
		issues = append(issues, helpers.FieldError{
			Field:   "plus_one_full_name",
			Message: "Name too long.",
		})
		return true, nil, issues
	}
	return true, name, issues
}

func validateProfile(fullName string, phone, company *string, issues []helpers.FieldError) (string, *string, *string, []helpers.FieldError) {
	fullName = strings.TrimSpace(fullName)
	if n := utf8.RuneCountInString(fullName); n < 2 {
		issues = append(issues, helpers.FieldError{Field: "full_name", Message: "Name too short."})
	} else if n > 120 {
		issues = append(issues, helpers.FieldError{Field: "full_name", Message: "Name too long."})
	}

	phone = trimToNil(phone)
	if phone != nil && utf8.RuneCountInString(*phone) > 50 {
		issues = append(issues, helpers.FieldError{Field: "phone", Message: "Phone too long."})
	}
	company = trimToNil(company)
	if company != nil && utf8.RuneCountInString(*company) > 120 {
		issues = append(issues, helpers.FieldError{Field: "company", Message: "Company too long."})
	}
	return fullName, phone, company, issues
}

// RegisterRequest is the request body for POST /register.
// swagger:model RegisterRequest
type RegisterRequest struct {
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone"`
	Company  *string `json:"company"`
	attendanceFields

	plusOne         bool
	plusOneFullName *string
}

// Validate implements helpers.Validator. It normalizes the payload in place
// and returns every violation at once.
func (r *RegisterRequest) Validate() []helpers.FieldError {
	var issues []helpers.FieldError

	r.FullName, r.Phone, r.Company, issues = validateProfile(r.FullName, r.Phone, r.Company, issues)

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if !emailRegexp.MatchString(r.Email) || len(r.Email) > 200 {
		issues = append(issues, helpers.FieldError{Field: "email", Message: "Invalid email address."})
	}

	r.plusOne, r.plusOneFullName, issues = r.resolve(issues)
	return issues
}

// RegisterResponse is the success payload for POST /register. EmailWarning is
// set when the registration was stored but the confirmation email failed.
// swagger:model RegisterResponse
type RegisterResponse struct {
	EditToken    string `json:"edit_token"`
	EmailWarning string `json:"email_warning,omitempty"`
}

// Register godoc
// @Summary Register an attendee
// @Description Creates a registration, issues an edit token, and emails the edit link. The email is best-effort: a send failure is reported in email_warning, not as a request failure.
// @Tags registration
// @Accept json
// @Produce json
// @Param body body controllers.RegisterRequest true "Registration payload (legacy clients may send guests instead of plus_one)"
// @Success 200 {object} helpers.APIResponse "data contains edit_token and optional email_warning"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error with field-level issues"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email already registered)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /register [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	reg := &domain.Registration{
		FullName:        req.FullName,
		Email:           req.Email,
		Phone:           req.Phone,
		Company:         req.Company,
		PlusOne:         req.plusOne,
		PlusOneFullName: req.plusOneFullName,
	}

	result, err := c.Service.Register(r.Context(), reg)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "This email is already registered.")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "Unexpected error.")
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, RegisterResponse{
		EditToken:    result.EditToken,
		EmailWarning: result.EmailWarning,
	})
}

// FetchResponse is the success payload for GET /registration.
// swagger:model FetchResponse
type FetchResponse struct {
	Locked       bool                 `json:"locked"`
	LockReason   string               `json:"lock_reason,omitempty"`
	Registration *domain.Registration `json:"registration"`
}

// Fetch godoc
// @Summary Fetch a registration by edit token
// @Description Returns the registration for the given edit token along with the current lock status. Reads are allowed while editing is locked.
// @Tags registration
// @Produce json
// @Param token query string true "Edit token"
// @Success 200 {object} helpers.APIResponse "data contains locked, lock_reason, registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (missing token)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (invalid token)"
// @Failure 410 {object} helpers.APIResponse "error.code: token_expired"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registration [get]
func (c *RegistrationController) Fetch(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "Missing token.")
		return
	}

	reg, lock, err := c.Service.GetByToken(r.Context(), token)
	if err != nil {
		c.writeTokenError(w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, FetchResponse{
		Locked:       lock.Locked,
		LockReason:   lock.LockReason,
		Registration: reg,
	})
}

// EditRequest is the request body for POST /edit.
// swagger:model EditRequest
type EditRequest struct {
	Token    string  `json:"token"`
	FullName string  `json:"full_name"`
	Phone    *string `json:"phone"`
	Company  *string `json:"company"`
	attendanceFields

	plusOne         bool
	plusOneFullName *string
}

// Validate implements helpers.Validator.
func (r *EditRequest) Validate() []helpers.FieldError {
	var issues []helpers.FieldError

	r.Token = strings.TrimSpace(r.Token)
	if len(r.Token) < 10 {
		issues = append(issues, helpers.FieldError{Field: "token", Message: "Invalid token."})
	}

	r.FullName, r.Phone, r.Company, issues = validateProfile(r.FullName, r.Phone, r.Company, issues)
	r.plusOne, r.plusOneFullName, issues = r.resolve(issues)
	return issues
}

// EditResponse is the success payload for POST /edit. The previous token is
// invalid from this point on.
// swagger:model EditResponse
type EditResponse struct {
	NewToken string `json:"new_token"`
}

// Edit godoc
// @Summary Update a registration
// @Description Applies the edit identified by the token, rotates the token, and returns the replacement. Rejected inside the 24h pre-event lock window.
// @Tags registration
// @Accept json
// @Produce json
// @Param body body controllers.EditRequest true "Edit payload"
// @Success 200 {object} helpers.APIResponse "data contains new_token"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 410 {object} helpers.APIResponse "error.code: token_expired"
// @Failure 423 {object} helpers.APIResponse "error.code: locked"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /edit [post]
func (c *RegistrationController) Edit(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if !helpers.DecodeAndValidateStrict(w, r, &req) {
		return
	}

	upd := &domain.RegistrationUpdate{
		FullName:        req.FullName,
		Phone:           req.Phone,
		Company:         req.Company,
		PlusOne:         req.plusOne,
		PlusOneFullName: req.plusOneFullName,
	}

	newToken, err := c.Service.Edit(r.Context(), req.Token, upd)
	if err != nil {
		c.writeTokenError(w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, EditResponse{NewToken: newToken})
}

// ResendRequest is the request body for POST /resend-edit-link.
// swagger:model ResendRequest
type ResendRequest struct {
	Token string `json:"token"`
}

// Validate implements helpers.Validator.
func (r *ResendRequest) Validate() []helpers.FieldError {
	r.Token = strings.TrimSpace(r.Token)
	if len(r.Token) < 10 {
		return []helpers.FieldError{{Field: "token", Message: "Invalid token."}}
	}
	return nil
}

// Resend godoc
// @Summary Re-send the edit link email
// @Description Re-sends the edit link for the registration matching the token. The token is not rotated. Rejected inside the 24h pre-event lock window.
// @Tags registration
// @Accept json
// @Produce json
// @Param body body controllers.ResendRequest true "Token payload"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 410 {object} helpers.APIResponse "error.code: token_expired"
// @Failure 423 {object} helpers.APIResponse "error.code: locked"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error (sender not configured or provider failure)"
// @Router /resend-edit-link [post]
func (c *RegistrationController) Resend(w http.ResponseWriter, r *http.Request) {
	var req ResendRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	if err := c.Service.ResendEditLink(r.Context(), req.Token); err != nil {
		if errors.Is(err, domain.ErrSenderNotConfigured) {
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "Sender address not configured; cannot send.")
			return
		}
		c.writeTokenError(w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, nil)
}

// writeTokenError maps the shared token/lock error taxonomy to HTTP statuses.
// Expiry is more specific than the lock window, so the service reports it
// first and the 410 wins over the 423.
func (c *RegistrationController) writeTokenError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "Invalid token.")
	case errors.Is(err, domain.ErrTokenExpired):
		helpers.WriteJSONError(w, http.StatusGone, helpers.ErrCodeTokenExpired, "Token expired.")
	case errors.Is(err, domain.ErrEditLocked):
		helpers.WriteJSONError(w, http.StatusLocked, helpers.ErrCodeLocked, "Editing is locked 24 hours before the event.")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "Unexpected error.")
	}
}
