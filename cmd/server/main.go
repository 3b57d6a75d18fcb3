package main

import (
	"database/sql"
	"net/http"
	"os"

	_ "github.com/lib/pq"

	"eventregistration/config"
	"eventregistration/internal/adapters/auth"
	"eventregistration/internal/adapters/email"
	httpdelivery "eventregistration/internal/delivery/http"
	"eventregistration/internal/delivery/http/controllers"
	"eventregistration/internal/delivery/http/middleware"
	"eventregistration/internal/repository/postgres"
	"eventregistration/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.SESRegion,
			AccessKeyID:        cfg.Email.SESAccessKeyID,
			SecretAccessKey:    cfg.Email.SESSecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	registrationRepo := postgres.NewRegistrationRepository(db)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	registrationService := services.NewRegistrationService(
		registrationRepo,
		auth.NewEditTokenGenerator(),
		emailService,
		services.RegistrationConfig{
			PublicBaseURL: cfg.PublicBaseURL,
			EventStart:    cfg.EventStart,
			EmailLanguage: cfg.Email.Language,
			SenderSet:     cfg.Email.FromAddress != "",
		},
	)

	issuer, verifier := auth.NewJWTTokens(cfg.Admin.JWTSecret)
	registrationController := controllers.NewRegistrationController(logger, registrationService)
	adminController := controllers.NewAdminController(logger, registrationService,
		issuer, auth.NewBcryptVerifier(), cfg.Admin.Email, cfg.Admin.PasswordHash)

	mux := httpdelivery.NewRouter(registrationController, adminController, verifier)
	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	addr := ":" + cfg.Port
	logger.Info("server listening", "addr", addr, "env", cfg.Environment)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
