package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

type contextKey string

const actorKey contextKey = "actor"

// WithActor returns a context carrying the authenticated actor.
func WithActor(ctx context.Context, actor *domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the authenticated actor, or nil for anonymous requests.
func ActorFromContext(ctx context.Context) *domain.Actor {
	actor, _ := ctx.Value(actorKey).(*domain.Actor)
	return actor
}

// Authenticate validates a Bearer token when one is sent and stores the actor in the
// request context. Requests without an Authorization header pass through anonymously;
// a malformed or invalid token is answered with 401.
func Authenticate(verifier domain.TokenVerifier, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			next.ServeHTTP(w, r)
			return
		}
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
			return
		}
		token := strings.TrimSpace(auth[len(prefix):])
		if token == "" {
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
			return
		}
		actor, err := verifier.Verify(token)
		if err != nil {
			logger.DebugContext(r.Context(), "token rejected", "err", err)
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// RequireAuth responds with 401 unless Authenticate stored an actor in the context.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ActorFromContext(r.Context()) == nil {
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "authentication required")
			return
		}
		next(w, r)
	}
}

// RequireAdmin responds with 401 for anonymous callers and 403 for non-admins
// before the handler reads the request body.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !ActorFromContext(r.Context()).IsAdmin() {
			h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "admin role required")
			return
		}
		next(w, r)
	})
}
