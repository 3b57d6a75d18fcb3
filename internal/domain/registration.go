package domain

import (
	"context"
	"errors"
	"time"
)

// Registration status values.
const (
	StatusSubmitted = "submitted"
	StatusUpdated   = "updated"
)

// Sentinel errors for registration operations.
var (
	ErrNotFound            = errors.New("registration not found")
	ErrTokenExpired        = errors.New("edit token expired")
	ErrEditLocked          = errors.New("editing is locked")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrInvalidInput        = errors.New("invalid input")
	ErrSenderNotConfigured = errors.New("sender address not configured")
)

// Registration represents an attendee's registration, including the edit
// token that acts as the bearer credential for later changes.
// swagger:model Registration
type Registration struct {
	ID                 string         `json:"id"`
	FullName           string         `json:"full_name"`
	Email              string         `json:"email"`
	Phone              *string        `json:"phone"`
	Company            *string        `json:"company"`
	PlusOne            bool           `json:"plus_one"`
	PlusOneFullName    *string        `json:"plus_one_full_name"`
	Status             string         `json:"status"`
	EditToken          string         `json:"-"`
	EditTokenExpiresAt time.Time      `json:"edit_token_expires_at"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// NewRegistration creates a submitted Registration. ID is set by the
// repository on create.
func NewRegistration(fullName, email string, phone, company *string, plusOne bool, plusOneFullName *string, editToken string, expiresAt, createdAt time.Time) *Registration {
	return &Registration{
		FullName:           fullName,
		Email:              email,
		Phone:              phone,
		Company:            company,
		PlusOne:            plusOne,
		PlusOneFullName:    plusOneFullName,
		Status:             StatusSubmitted,
		EditToken:          editToken,
		EditTokenExpiresAt: expiresAt,
		CreatedAt:          createdAt,
		UpdatedAt:          createdAt,
	}
}

// RegistrationUpdate holds the editable fields applied on an accepted edit.
// The repository always sets status=updated and rotates the token alongside.
type RegistrationUpdate struct {
	FullName        string
	Phone           *string
	Company         *string
	PlusOne         bool
	PlusOneFullName *string
}

// RegistrationRepository defines storage operations for registrations.
type RegistrationRepository interface {
	// Create inserts the registration and sets reg.ID.
	// Returns ErrDuplicateEmail when the email is already registered.
	Create(ctx context.Context, reg *Registration) error
	// GetByToken returns the registration matching the edit token, including
	// its expiry, or ErrNotFound.
	GetByToken(ctx context.Context, token string) (*Registration, error)
	// UpdateByID applies the update, sets status=updated, and stores the new
	// token with its new expiry. Returns ErrNotFound when no row matched.
	UpdateByID(ctx context.Context, id string, upd *RegistrationUpdate, newToken string, newExpiresAt, updatedAt time.Time) error
	List(ctx context.Context, params PaginationParams) ([]*Registration, error)
	Count(ctx context.Context) (int, error)
}

// EditTokenGenerator produces opaque single-purpose edit tokens from a
// cryptographically secure random source.
type EditTokenGenerator interface {
	Generate() (string, error)
}

// LockStatus reports whether edits are currently allowed and why not.
type LockStatus struct {
	Locked     bool   `json:"locked"`
	LockReason string `json:"lock_reason,omitempty"`
}

// RegisterResult is the outcome of a successful registration. EmailWarning is
// set when the confirmation email could not be sent; the registration itself
// is already durable at that point.
type RegisterResult struct {
	Registration *Registration
	EditToken    string
	EmailWarning string
}

// RegistrationService defines the attendee-facing registration operations.
type RegistrationService interface {
	Register(ctx context.Context, reg *Registration) (*RegisterResult, error)
	// GetByToken returns the registration and current lock status. Reads are
	// allowed while locked.
	GetByToken(ctx context.Context, token string) (*Registration, LockStatus, error)
	// Edit applies the update and rotates the token, returning the new token.
	Edit(ctx context.Context, token string, upd *RegistrationUpdate) (newToken string, err error)
	// ResendEditLink re-sends the edit link email for the registration
	// matching the token. The token is not rotated.
	ResendEditLink(ctx context.Context, token string) error
	List(ctx context.Context, params PaginationParams) ([]*Registration, int, error)
}
