package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventregistration/internal/delivery/http/controllers"
	"eventregistration/internal/delivery/http/middleware"
	"eventregistration/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(registrationController *controllers.RegistrationController, adminController *controllers.AdminController, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()

	// Attendee routes (edit-token bearer, no login)
	mux.HandleFunc("POST /register", registrationController.Register)
	mux.HandleFunc("GET /registration", registrationController.Fetch)
	mux.HandleFunc("POST /edit", registrationController.Edit)
	mux.HandleFunc("POST /resend-edit-link", registrationController.Resend)

	// Admin
	requireAdmin := middleware.RequireAdmin(verifier)
	mux.HandleFunc("POST /admin/login", adminController.Login)
	mux.HandleFunc("GET /admin/registrations", requireAdmin(adminController.ListRegistrations))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
