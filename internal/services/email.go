package services

import (
	"context"
	"fmt"
	"log"

	"eventregistration/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendEditLink sends the registration confirmation email carrying the edit
// link, using the "registration_<lang>" template set.
func (s *emailService) SendEditLink(ctx context.Context, data *domain.EditLinkEmailData) error {
	if data == nil {
		return fmt.Errorf("edit link email data is nil")
	}
	lang := data.Language
	if lang != "hr" && lang != "en" {
		lang = "hr"
	}
	templateName := "registration_" + lang
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send edit link email: %w", err)
	}
	log.Printf("[EMAIL] Edit link sent to %s", data.Email)
	return nil
}
