package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventregistration/internal/delivery/http/helpers"
	"eventregistration/internal/delivery/http/middleware"
	"eventregistration/internal/domain"
)

const adminTokenExpiry = 24 * time.Hour

type AdminController struct {
	Logger    *slog.Logger
	Service   domain.RegistrationService
	Issuer    domain.TokenIssuer
	Passwords domain.PasswordVerifier

	AdminEmail        string
	AdminPasswordHash string
}

func NewAdminController(logger *slog.Logger, svc domain.RegistrationService, issuer domain.TokenIssuer, passwords domain.PasswordVerifier, adminEmail, adminPasswordHash string) *AdminController {
	return &AdminController{
		Logger:            logger,
		Service:           svc,
		Issuer:            issuer,
		Passwords:         passwords,
		AdminEmail:        adminEmail,
		AdminPasswordHash: adminPasswordHash,
	}
}

// LoginRequest is the request body for POST /admin/login.
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements helpers.Validator.
func (r *LoginRequest) Validate() []helpers.FieldError {
	var issues []helpers.FieldError
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" {
		issues = append(issues, helpers.FieldError{Field: "email", Message: "Email is required."})
	}
	if r.Password == "" {
		issues = append(issues, helpers.FieldError{Field: "password", Message: "Password is required."})
	}
	return issues
}

// LoginResponse is the success payload for POST /admin/login.
// swagger:model LoginResponse
type LoginResponse struct {
	Token string `json:"token"`
}

// Login godoc
// @Summary Admin login
// @Description Verifies the configured admin credentials and returns a bearer token for the admin endpoints.
// @Tags admin
// @Accept json
// @Produce json
// @Param body body controllers.LoginRequest true "Admin credentials"
// @Success 200 {object} helpers.APIResponse "data contains token"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/login [post]
func (c *AdminController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	if c.AdminEmail == "" || c.AdminPasswordHash == "" {
		c.Logger.ErrorContext(r.Context(), "admin credentials not configured")
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "Admin access not configured.")
		return
	}
	if req.Email != c.AdminEmail || c.Passwords.Compare(c.AdminPasswordHash, req.Password) != nil {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "Invalid credentials.")
		return
	}

	token, err := c.Issuer.Issue("admin", c.AdminEmail, adminTokenExpiry)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "Unexpected error.")
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, LoginResponse{Token: token})
}

// ListRegistrationsResponse is the success payload for GET /admin/registrations.
// swagger:model ListRegistrationsResponse
type ListRegistrationsResponse struct {
	Items      []*domain.Registration `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListRegistrations godoc
// @Summary List registrations
// @Description Returns all registrations, newest first, paginated. Edit tokens are never included.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/registrations [get]
func (c *AdminController) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.AdminSubjectFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	params := helpers.ParsePagination(r)
	items, total, err := c.Service.List(r.Context(), params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "Unexpected error.")
		return
	}
	if items == nil {
		items = []*domain.Registration{}
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, ListRegistrationsResponse{
		Items:      items,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}
