package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campushq/campuschat-core/internal/core/domain"
)

// staffValidator accepts exactly one token and hands back a registrar
// context, mirroring what the auth service does for a live session.
func staffValidator(goodToken string) *mockAuthService {
	return &mockAuthService{
		validateTokenFn: func(ctx context.Context, token string) (*domain.AuthContext, error) {
			if token != goodToken {
				return nil, domain.ErrTokenInvalid
			}
			return &domain.AuthContext{
				UserID: "staff-registrar",
				Email:  "registrar@greenfield.edu",
				Role:   domain.RoleMember,
			}, nil
		},
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"standard", "Bearer abc123", "abc123"},
		{"scheme is case insensitive", "bearer abc123", "abc123"},
		{"padded token", "Bearer   abc123  ", "abc123"},
		{"no header", "", ""},
		{"bare token without scheme", "abc123", ""},
		{"basic auth", "Basic dXNlcjpwYXNz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := extractBearerToken(req); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGetAuthContext(t *testing.T) {
	if got := GetAuthContext(context.Background()); got != nil {
		t.Errorf("expected nil outside a request, got %+v", got)
	}

	want := &domain.AuthContext{UserID: "staff-registrar", Role: domain.RoleMember}
	ctx := withAuthContext(context.Background(), want)
	if got := GetAuthContext(ctx); got != want {
		t.Errorf("expected the stored context back, got %+v", got)
	}
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	middleware := NewAuthMiddleware(staffValidator("registrar-token"))

	var seen *domain.AuthContext
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetAuthContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer registrar-token")
	rr := httptest.NewRecorder()

	middleware.Authenticate(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if seen == nil || seen.UserID != "staff-registrar" {
		t.Errorf("expected registrar context in the handler, got %+v", seen)
	}
	if seen != nil && seen.IsGuest() {
		t.Error("a signed-in staff member must not read as a guest")
	}
}

func TestAuthMiddleware_Authenticate_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		validateErr error
		header      string
	}{
		{"no header", nil, ""},
		{"invalid token", domain.ErrTokenInvalid, "Bearer forged"},
		{"expired token", domain.ErrTokenExpired, "Bearer stale"},
		{"revoked session", domain.ErrSessionNotFound, "Bearer revoked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAuth := &mockAuthService{
				validateTokenFn: func(ctx context.Context, token string) (*domain.AuthContext, error) {
					return nil, tt.validateErr
				},
			}
			middleware := NewAuthMiddleware(mockAuth)

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be called")
			})

			req := httptest.NewRequest("GET", "/api/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			middleware.Authenticate(handler).ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", rr.Code)
			}
		})
	}
}

func TestAuthMiddleware_OptionalAuth_BearerWins(t *testing.T) {
	middleware := NewAuthMiddleware(staffValidator("registrar-token"))

	var seen *domain.AuthContext
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetAuthContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	// Both identities present; the signed-in one takes precedence
	req := httptest.NewRequest("POST", "/api/v1/chat", nil)
	req.Header.Set("Authorization", "Bearer registrar-token")
	req.Header.Set("X-Guest-ID", "guest-7f3a")
	rr := httptest.NewRecorder()

	middleware.OptionalAuth(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if seen == nil || seen.UserID != "staff-registrar" || seen.IsGuest() {
		t.Errorf("expected the staff context to win, got %+v", seen)
	}
}

func TestAuthMiddleware_OptionalAuth_InvalidBearerRejected(t *testing.T) {
	// A bad token must not silently fall back to guest access
	middleware := NewAuthMiddleware(staffValidator("registrar-token"))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest("POST", "/api/v1/chat", nil)
	req.Header.Set("Authorization", "Bearer forged")
	req.Header.Set("X-Guest-ID", "guest-7f3a")
	rr := httptest.NewRecorder()

	middleware.OptionalAuth(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_OptionalAuth_GuestHeader(t *testing.T) {
	middleware := NewAuthMiddleware(&mockAuthService{})

	var seen *domain.AuthContext
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetAuthContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("POST", "/api/v1/chat", nil)
	req.Header.Set("X-Guest-ID", "guest-7f3a")
	rr := httptest.NewRecorder()

	middleware.OptionalAuth(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if seen == nil || seen.GuestID != "guest-7f3a" || !seen.IsGuest() {
		t.Errorf("expected a guest context, got %+v", seen)
	}
}

func TestAuthMiddleware_OptionalAuth_NoIdentity(t *testing.T) {
	tests := []struct {
		name    string
		guestID string
	}{
		{"no headers at all", ""},
		{"blank guest id", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			middleware := NewAuthMiddleware(&mockAuthService{})

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be called")
			})

			req := httptest.NewRequest("POST", "/api/v1/chat", nil)
			if tt.guestID != "" {
				req.Header.Set("X-Guest-ID", tt.guestID)
			}
			rr := httptest.NewRecorder()

			middleware.OptionalAuth(handler).ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", rr.Code)
			}
		})
	}
}

func TestAuthMiddleware_RequireAdmin(t *testing.T) {
	tests := []struct {
		name    string
		authCtx *domain.AuthContext
		want    int
	}{
		{
			name:    "admin passes",
			authCtx: &domain.AuthContext{UserID: "admin-1", Role: domain.RoleAdmin},
			want:    http.StatusOK,
		},
		{
			name:    "member is forbidden",
			authCtx: &domain.AuthContext{UserID: "staff-registrar", Role: domain.RoleMember},
			want:    http.StatusForbidden,
		},
		{
			name:    "no context is unauthorized",
			authCtx: nil,
			want:    http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			middleware := NewAuthMiddleware(&mockAuthService{})

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.want != http.StatusOK {
					t.Error("handler should not be called")
				}
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("PUT", "/api/v1/settings/chat", nil)
			if tt.authCtx != nil {
				req = req.WithContext(withAuthContext(req.Context(), tt.authCtx))
			}
			rr := httptest.NewRecorder()

			middleware.RequireAdmin(handler).ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rr.Code)
			}
		})
	}
}

func TestWithLogging_PassesResponseThrough(t *testing.T) {
	handler := withLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))

	if rr.Code != http.StatusTeapot {
		t.Errorf("expected status 418, got %d", rr.Code)
	}
	if rr.Body.String() != "short and stout" {
		t.Errorf("expected body passed through, got %q", rr.Body.String())
	}
}

func TestStatusRecorder_CapturesStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	rw := &statusRecorder{ResponseWriter: rr, status: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)

	if rw.status != http.StatusNotFound {
		t.Errorf("expected captured status 404, got %d", rw.status)
	}
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected underlying status 404, got %d", rr.Code)
	}
}

func TestWithRecovery_PanicBecomes500(t *testing.T) {
	handler := withRecovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("widget exploded")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/chat", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rr.Code)
	}
}

func TestWithCORS_AllowedOrigin(t *testing.T) {
	handler := withCORS([]string{"https://www.greenfield.edu"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest("POST", "/api/v1/chat", nil)
	req.Header.Set("Origin", "https://www.greenfield.edu")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://www.greenfield.edu" {
		t.Errorf("expected the origin echoed, got %q", got)
	}
	// The widget sends its guest identity as a custom header
	if got := rr.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, Authorization, X-Guest-ID" {
		t.Errorf("expected X-Guest-ID allowed, got %q", got)
	}
}

func TestWithCORS_Preflight(t *testing.T) {
	handler := withCORS([]string{"*"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("preflight must not reach the handler")
		}))

	req := httptest.NewRequest("OPTIONS", "/api/v1/chat", nil)
	req.Header.Set("Origin", "https://www.greenfield.edu")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected status 204 for preflight, got %d", rr.Code)
	}
}

func TestWithCORS_UnknownOrigin(t *testing.T) {
	handler := withCORS([]string{"https://www.greenfield.edu"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest("GET", "/api/v1/chat", nil)
	req.Header.Set("Origin", "https://other-school.example")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("expected no CORS headers for an unknown origin")
	}
}
