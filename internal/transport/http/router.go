package http

import (
	"net/http"

	"github.com/commerce-customer-api/internal/application/address"
	"github.com/commerce-customer-api/internal/application/customer"
	"github.com/commerce-customer-api/internal/application/verification"
	"github.com/commerce-customer-api/internal/config"
	"github.com/commerce-customer-api/internal/domain"
	"github.com/commerce-customer-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/commerce-customer-api/internal/infrastructure/jwt"
	s3infra "github.com/commerce-customer-api/internal/infrastructure/s3"
	"github.com/commerce-customer-api/internal/infrastructure/smtp"
	"github.com/commerce-customer-api/internal/infrastructure/sns"
	"github.com/commerce-customer-api/internal/transport/http/handler"
	appmiddleware "github.com/commerce-customer-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	ProfileRepo      *dynamo.ProfileRepo
	VerificationRepo *dynamo.VerificationRepo
	AddressRepo      *dynamo.AddressRepo
	Identity         IdentityProvider
	AvatarStore      *s3infra.Store
	Mailer           smtp.Mailer
	SMSSender        sns.SMSSender
	Publisher        sns.EventPublisher
	JWTProvider      *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	verificationSvc := verification.NewService(verification.ServiceDeps{
		VerificationRepo: deps.VerificationRepo,
		Mailer:           deps.Mailer,
		SMSSender:        deps.SMSSender,
		CodeTTL:          cfg.VerificationTTL,
	})
	customerSvc := customer.NewService(customer.ServiceDeps{
		IdentityProvider: deps.Identity,
		ProfileRepo:      deps.ProfileRepo,
		Gate:             verificationSvc,
		Publisher:        deps.Publisher,
		AvatarStore:      deps.AvatarStore,
	})
	addressSvc := address.NewService(deps.AddressRepo)

	healthH := handler.NewHealthHandler()
	customerH := handler.NewCustomerHandler(customerSvc)
	verificationH := handler.NewVerificationHandler(verificationSvc)
	addressH := handler.NewAddressHandler(addressSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/customers", customerH.Register)
		r.With(sensitiveRL.Limit).Post("/verifications/send", verificationH.Send)
		r.With(sensitiveRL.Limit).Post("/verifications/check", verificationH.Check)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			// Self or admin
			r.Get("/customers/{id}", customerH.Get)
			r.Post("/customers/{id}/activate", customerH.Activate)
			r.Put("/customers/{id}/email", customerH.UpdateEmail)
			r.Put("/customers/{id}/phone-number", customerH.UpdatePhone)
			r.Put("/customers/{id}/name", customerH.UpdateName)
			r.Put("/customers/{id}/birthday", customerH.UpdateBirthday)
			r.Put("/customers/{id}/password", customerH.UpdatePassword)
			r.Put("/customers/{id}/agreement", customerH.UpdateAgreement)
			r.Put("/customers/{id}/image", customerH.UpdateImage)

			r.Get("/customers/{id}/addresses", addressH.List)
			r.Post("/customers/{id}/addresses", addressH.Create)
			r.Put("/customers/{id}/addresses/{addressID}", addressH.Update)
			r.Delete("/customers/{id}/addresses/{addressID}", addressH.Delete)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/customers", customerH.List)
				r.Delete("/customers/{id}", customerH.Disable)
			})
		})
	})

	return r
}
