package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/reelcanon/internal/handlers"
	"github.com/HammerMeetNail/reelcanon/internal/models"
	"github.com/HammerMeetNail/reelcanon/internal/services"
)

// stubAuthService accepts "good" and "admin" and rejects everything else.
type stubAuthService struct {
	services.AuthServiceInterface
	seen string
}

func (s *stubAuthService) VerifyToken(ctx context.Context, token string) (*models.Principal, error) {
	s.seen = token
	switch token {
	case "good":
		return &models.Principal{UserID: uuid.New(), Username: "reeler"}, nil
	case "admin":
		return &models.Principal{UserID: uuid.New(), Username: "admin", IsAdmin: true}, nil
	}
	return nil, services.ErrInvalidToken
}

func principalEcho(called *bool, got **models.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		*got = handlers.GetPrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	tests := []struct {
		name          string
		header        string
		value         string
		wantStatus    int
		wantCalled    bool
		wantPrincipal bool
		wantToken     string
	}{
		{"no header", "Authorization", "", http.StatusOK, true, false, ""},
		{"not a bearer scheme", "Authorization", "Basic Zm9vOmJhcg==", http.StatusOK, true, false, ""},
		{"valid token", "Authorization", "Bearer good", http.StatusOK, true, true, "good"},
		{"lowercase scheme", "Authorization", "bearer good", http.StatusOK, true, true, "good"},
		{"invalid token", "Authorization", "Bearer forged", http.StatusUnauthorized, false, false, "forged"},
		{"custom header", "X-Reel-Token", "Bearer good", http.StatusOK, true, true, "good"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &stubAuthService{}
			am := NewAuthMiddleware(auth, tt.header)

			var called bool
			var principal *models.Principal
			req := httptest.NewRequest(http.MethodGet, "/api/friendships", nil)
			if tt.value != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rr := httptest.NewRecorder()
			am.Authenticate(principalEcho(&called, &principal)).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
			if called != tt.wantCalled {
				t.Fatalf("expected next called=%v, got %v", tt.wantCalled, called)
			}
			if (principal != nil) != tt.wantPrincipal {
				t.Fatalf("expected principal=%v, got %+v", tt.wantPrincipal, principal)
			}
			if auth.seen != tt.wantToken {
				t.Fatalf("expected verified token %q, got %q", tt.wantToken, auth.seen)
			}
		})
	}
}

func TestAuthMiddleware_Authenticate_InvalidTokenBody(t *testing.T) {
	am := NewAuthMiddleware(&stubAuthService{}, "")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rr := httptest.NewRecorder()

	am.Authenticate(http.NotFoundHandler()).ServeHTTP(rr, req)

	if got := rr.Body.String(); got != `{"error":"Invalid token"}` {
		t.Fatalf("unexpected body %q", got)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %q", ct)
	}
}

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	am := NewAuthMiddleware(&stubAuthService{}, "")

	var called bool
	var principal *models.Principal
	rr := httptest.NewRecorder()
	am.RequireAuth(principalEcho(&called, &principal)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if called || rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without calling next, got %d called=%v", rr.Code, called)
	}
	if got := rr.Body.String(); got != `{"error":"Authentication required"}` {
		t.Fatalf("unexpected body %q", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rr = httptest.NewRecorder()
	am.Authenticate(am.RequireAuth(principalEcho(&called, &principal))).ServeHTTP(rr, req)
	if !called || rr.Code != http.StatusOK || principal == nil {
		t.Fatalf("expected authenticated request through, got %d", rr.Code)
	}
}

func TestAuthMiddleware_RequireAdmin(t *testing.T) {
	am := NewAuthMiddleware(&stubAuthService{}, "")

	tests := []struct {
		token      string
		wantStatus int
	}{
		{"", http.StatusUnauthorized},
		{"good", http.StatusForbidden},
		{"admin", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			var called bool
			var principal *models.Principal
			req := httptest.NewRequest(http.MethodGet, "/api/friendships/all", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			am.Authenticate(am.RequireAdmin(principalEcho(&called, &principal))).ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
			if called != (tt.wantStatus == http.StatusOK) {
				t.Fatalf("unexpected next called=%v", called)
			}
		})
	}
}
