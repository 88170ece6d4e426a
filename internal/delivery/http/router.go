package http

import (
	"context"
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// RouterDeps are the services and settings the HTTP surface is built from.
type RouterDeps struct {
	Logger         *slog.Logger
	Verifier       domain.TokenVerifier
	Events         domain.EventService
	Registrations  domain.RegistrationService
	Catalog        domain.CatalogService
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	// HealthCheck reports whether the backing services are reachable. Nil means always healthy.
	HealthCheck func(ctx context.Context) error
}

// collections maps each event URL prefix to the variant it serves.
var collections = []struct {
	prefix  string
	variant domain.Variant
}{
	{"/events", domain.VariantPublic},
	{"/private-events", domain.VariantPrivate},
	{"/paid-events", domain.VariantPaid},
}

// NewRouter initializes the HTTP router with all application routes and wraps it
// in the request id, logging, CORS and authentication middleware.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	for _, c := range collections {
		registerEventRoutes(mux, c.prefix, c.variant, deps)
	}

	catalog := controllers.NewCatalogController(deps.Logger, deps.Catalog)
	mux.HandleFunc("GET /event-venues", catalog.ListVenues)
	mux.HandleFunc("POST /event-venues", middleware.RequireAdmin(catalog.CreateVenue))
	mux.HandleFunc("GET /event-venues/{venueID}", catalog.GetVenue)
	mux.HandleFunc("PUT /event-venues/{venueID}", middleware.RequireAdmin(catalog.UpdateVenue))
	mux.HandleFunc("DELETE /event-venues/{venueID}", catalog.DeleteVenue)
	mux.HandleFunc("GET /event-types", catalog.ListEventTypes)
	mux.HandleFunc("POST /event-types", middleware.RequireAdmin(catalog.CreateEventType))
	mux.HandleFunc("GET /event-types/{typeID}", catalog.GetEventType)
	mux.HandleFunc("PUT /event-types/{typeID}", middleware.RequireAdmin(catalog.UpdateEventType))
	mux.HandleFunc("DELETE /event-types/{typeID}", catalog.DeleteEventType)

	mux.HandleFunc("GET /health", healthHandler(deps.Logger, deps.HealthCheck))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	handler = middleware.Authenticate(deps.Verifier, deps.Logger, handler)
	handler = middleware.CORS(deps.AllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(deps.Logger, handler)
	return middleware.RequestID(handler)
}

func registerEventRoutes(mux *http.ServeMux, prefix string, variant domain.Variant, deps RouterDeps) {
	events := controllers.NewEventController(deps.Logger, deps.Events, variant)
	regs := controllers.NewRegistrationController(deps.Logger, deps.Registrations, variant)

	// Registration writes need a caller and are throttled per user. Admin-only writes
	// are rejected before their body is decoded.
	protected := func(next http.HandlerFunc) http.HandlerFunc {
		next = middleware.RequireAuth(next)
		if deps.RateLimiter != nil {
			next = deps.RateLimiter.Limit(next)
		}
		return next
	}

	mux.HandleFunc("GET "+prefix, events.ListEvents)
	mux.HandleFunc("POST "+prefix, middleware.RequireAdmin(events.CreateEvent))
	mux.HandleFunc("GET "+prefix+"/{eventID}", events.GetEvent)
	mux.HandleFunc("PUT "+prefix+"/{eventID}", middleware.RequireAdmin(events.ReplaceEvent))
	mux.HandleFunc("PATCH "+prefix+"/{eventID}", middleware.RequireAdmin(events.UpdateEvent))
	mux.HandleFunc("DELETE "+prefix+"/{eventID}", events.DeleteEvent)

	mux.HandleFunc("POST "+prefix+"/{eventID}/registration", protected(regs.Register))
	mux.HandleFunc("DELETE "+prefix+"/{eventID}/registration", protected(regs.CancelRegistration))
	mux.HandleFunc("POST "+prefix+"/{eventID}/invitation", protected(middleware.RequireAdmin(regs.Invite)))
	mux.HandleFunc("DELETE "+prefix+"/{eventID}/invitation", protected(regs.RevokeInvitation))
	mux.HandleFunc("POST "+prefix+"/{eventID}/confirm-invitation", protected(regs.AcceptInvitation))
	mux.HandleFunc("GET "+prefix+"/{eventID}/invitation-code", regs.GetInvitationCode)
	mux.HandleFunc("GET "+prefix+"/{eventID}/guestlist", regs.ListGuests)
	mux.HandleFunc("GET "+prefix+"/{eventID}/registrations", regs.ListRegistrations)
}

// HealthResponse is the data of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// healthHandler godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse{data=HealthResponse}
// @Failure 503 {object} helpers.APIResponse "error.code: internal_error"
// @Router /health [get]
func healthHandler(logger *slog.Logger, check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				logger.ErrorContext(r.Context(), "health check failed", "err", err)
				helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeInternalError, "unavailable")
				return
			}
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
