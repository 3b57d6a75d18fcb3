package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"eventregistration/internal/domain"
)

// editTokenTTL is how long an edit token stays valid, counted from issuance
// and from every rotation.
const editTokenTTL = 14 * 24 * time.Hour

// RegistrationConfig holds the request-time read-only settings the
// registration service needs.
type RegistrationConfig struct {
	PublicBaseURL string
	EventStart    time.Time // zero means editing is never locked
	EmailLanguage string
	SenderSet     bool // false when no outbound sender address is configured
}

type registrationService struct {
	repo     domain.RegistrationRepository
	tokenGen domain.EditTokenGenerator
	emails   domain.EmailService
	cfg      RegistrationConfig
	now      func() time.Time
}

// NewRegistrationService creates a RegistrationService with the given
// repository, token generator, and email service.
func NewRegistrationService(repo domain.RegistrationRepository, tokenGen domain.EditTokenGenerator, emails domain.EmailService, cfg RegistrationConfig) domain.RegistrationService {
	return &registrationService{
		repo:     repo,
		tokenGen: tokenGen,
		emails:   emails,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *registrationService) Register(ctx context.Context, reg *domain.Registration) (*domain.RegisterResult, error) {
	token, err := s.tokenGen.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate edit token: %w", err)
	}

	now := s.now()
	reg.Status = domain.StatusSubmitted
	reg.EditToken = token
	reg.EditTokenExpiresAt = now.Add(editTokenTTL)
	reg.CreatedAt = now
	reg.UpdatedAt = now
	if !reg.PlusOne {
		reg.PlusOneFullName = nil
	}

	if err := s.repo.Create(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	result := &domain.RegisterResult{Registration: reg, EditToken: token}

	// The registration is durable at this point; email is best-effort and a
	// failure is reported back as a warning, never rolled back.
	if !s.cfg.SenderSet {
		result.EmailWarning = "confirmation email skipped: sender address not configured"
		return result, nil
	}
	if err := s.sendEditLink(ctx, reg, token); err != nil {
		log.Printf("[REGISTRATION] Confirmation email to %s failed: %v", reg.Email, err)
		result.EmailWarning = "registration saved but the confirmation email could not be sent"
	}
	return result, nil
}

func (s *registrationService) GetByToken(ctx context.Context, token string) (*domain.Registration, domain.LockStatus, error) {
	reg, err := s.findValid(ctx, token)
	if err != nil {
		return nil, domain.LockStatus{}, err
	}
	// Reads stay allowed while locked; the caller gets the status alongside.
	return reg, EditLockStatus(s.now(), s.cfg.EventStart), nil
}

func (s *registrationService) Edit(ctx context.Context, token string, upd *domain.RegistrationUpdate) (string, error) {
	reg, err := s.findValid(ctx, token)
	if err != nil {
		return "", err
	}
	if IsEditLocked(s.now(), s.cfg.EventStart) {
		return "", domain.ErrEditLocked
	}

	newToken, err := s.tokenGen.Generate()
	if err != nil {
		return "", fmt.Errorf("generate edit token: %w", err)
	}
	if !upd.PlusOne {
		upd.PlusOneFullName = nil
	}

	now := s.now()
	if err := s.repo.UpdateByID(ctx, reg.ID, upd, newToken, now.Add(editTokenTTL), now); err != nil {
		return "", fmt.Errorf("update registration: %w", err)
	}
	return newToken, nil
}

func (s *registrationService) ResendEditLink(ctx context.Context, token string) error {
	reg, err := s.findValid(ctx, token)
	if err != nil {
		return err
	}
	if IsEditLocked(s.now(), s.cfg.EventStart) {
		return domain.ErrEditLocked
	}
	if !s.cfg.SenderSet {
		return domain.ErrSenderNotConfigured
	}
	// The token is re-sent as-is; resending does not rotate.
	if err := s.sendEditLink(ctx, reg, reg.EditToken); err != nil {
		return fmt.Errorf("send edit link: %w", err)
	}
	return nil
}

func (s *registrationService) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Registration, int, error) {
	regs, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}
	return regs, total, nil
}

// findValid looks up the registration by token and applies the validity
// check shared by fetch, edit, and resend: unknown token first, then expiry.
// Expiry is checked before any lock-window decision so an expired token in a
// lock window still reports as expired.
func (s *registrationService) findValid(ctx context.Context, token string) (*domain.Registration, error) {
	reg, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if reg.EditTokenExpiresAt.Before(s.now()) {
		return nil, domain.ErrTokenExpired
	}
	return reg, nil
}

func (s *registrationService) sendEditLink(ctx context.Context, reg *domain.Registration, token string) error {
	return s.emails.SendEditLink(ctx, &domain.EditLinkEmailData{
		Email:    reg.Email,
		FullName: reg.FullName,
		EditURL:  fmt.Sprintf("%s/edit?token=%s", s.cfg.PublicBaseURL, token),
		Language: s.cfg.EmailLanguage,
	})
}
