package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EditLinkEmailData holds data for the registration confirmation / edit-link email.
type EditLinkEmailData struct {
	Email    string
	FullName string
	EditURL  string
	Language string // "hr" or "en"
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendEditLink(ctx context.Context, data *EditLinkEmailData) error
}
