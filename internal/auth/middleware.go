package auth

import (
	"net/http"
	"strings"

	"github.com/sarisari-pos/sarisari/internal/shared"
)

// Middleware authenticates requests with a Bearer token and places the actor
// in the request context.
func (s *Service) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				shared.WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			actor, err := s.Verify(token)
			if err != nil {
				shared.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
		})
	}
}

// RequireAdmin rejects requests whose actor lacks the admin role. It must run
// after Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := shared.ActorFromContext(r.Context())
		if !ok || !actor.IsAdmin() {
			shared.WriteError(w, http.StatusForbidden, shared.ErrForbidden.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
