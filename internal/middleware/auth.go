package middleware

import (
	"net/http"
	"strings"

	"github.com/HammerMeetNail/reelcanon/internal/handlers"
	"github.com/HammerMeetNail/reelcanon/internal/logging"
	"github.com/HammerMeetNail/reelcanon/internal/services"
)

const bearerPrefix = "Bearer "

type AuthMiddleware struct {
	authService services.AuthServiceInterface
	header      string
}

// NewAuthMiddleware reads tokens from header, which defaults to Authorization.
func NewAuthMiddleware(authService services.AuthServiceInterface, header string) *AuthMiddleware {
	if header == "" {
		header = "Authorization"
	}
	return &AuthMiddleware{authService: authService, header: header}
}

func (m *AuthMiddleware) token(r *http.Request) string {
	value := strings.TrimSpace(r.Header.Get(m.header))
	if len(value) > len(bearerPrefix) && strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(value[len(bearerPrefix):])
	}
	return ""
}

// Authenticate verifies a bearer token and adds the principal to context.
// Requests without a token continue anonymously; a token that fails
// verification is rejected.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.token(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := m.authService.VerifyToken(r.Context(), token)
		if err != nil {
			logging.Debug("Rejected bearer token", map[string]interface{}{
				"path":  r.URL.Path,
				"error": err.Error(),
			})
			writeJSONError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		notePrincipal(r.Context(), principal)
		ctx := handlers.SetPrincipalInContext(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects unauthenticated requests with 401.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handlers.GetPrincipalFromContext(r.Context()) == nil {
			writeJSONError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous callers with 401 and non-admins with 403.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := handlers.GetPrincipalFromContext(r.Context())
		if p == nil {
			writeJSONError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if err := services.RequireAdmin(*p); err != nil {
			writeJSONError(w, http.StatusForbidden, "Access denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}
