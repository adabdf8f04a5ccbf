package services

import (
	"context"
	"testing"
	"time"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven/mocks"
)

type authFixture struct {
	users    *mocks.MockUserStore
	sessions *mocks.MockSessionStore
	adapter  *mocks.MockAuthAdapter
	svc      *authService
}

func newTestAuthService() *authFixture {
	f := &authFixture{
		users:    mocks.NewMockUserStore(),
		sessions: mocks.NewMockSessionStore(),
		adapter:  mocks.NewMockAuthAdapter(),
	}
	f.svc = NewAuthService(f.users, f.sessions, f.adapter).(*authService)
	return f
}

// seedRegistrar stores the registrar account used across these tests.
// The mock adapter compares passwords as plain text.
func (f *authFixture) seedRegistrar(t *testing.T) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:           "staff-registrar",
		Email:        "registrar@greenfield.edu",
		PasswordHash: "open-sesame",
		Name:         "Registrar",
		Role:         domain.RoleMember,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	if err := f.users.Save(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// openSessionFor mints a token and live session for a user, bypassing
// the password check
func (f *authFixture) openSessionFor(t *testing.T, user *domain.User, sessionID string) string {
	t.Helper()
	token, err := f.adapter.GenerateToken(&domain.TokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		SessionID: sessionID,
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	session := &domain.Session{
		ID:           sessionID,
		UserID:       user.ID,
		Token:        token,
		RefreshToken: "refresh-" + sessionID,
		ExpiresAt:    time.Now().Add(time.Hour),
		CreatedAt:    time.Now(),
	}
	if err := f.sessions.Save(context.Background(), session); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return token
}

func TestAuthService_Authenticate(t *testing.T) {
	f := newTestAuthService()
	f.seedRegistrar(t)

	tests := []struct {
		name    string
		req     domain.LoginRequest
		wantErr error
	}{
		{
			name:    "valid credentials",
			req:     domain.LoginRequest{Email: "registrar@greenfield.edu", Password: "open-sesame"},
			wantErr: nil,
		},
		{
			name:    "empty email",
			req:     domain.LoginRequest{Password: "open-sesame"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "empty password",
			req:     domain.LoginRequest{Email: "registrar@greenfield.edu"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "wrong password",
			req:     domain.LoginRequest{Email: "registrar@greenfield.edu", Password: "guess"},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			// Unknown accounts read the same as a bad password
			name:    "unknown account",
			req:     domain.LoginRequest{Email: "nobody@greenfield.edu", Password: "open-sesame"},
			wantErr: domain.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.svc.Authenticate(context.Background(), tt.req)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Token == "" || resp.RefreshToken == "" {
				t.Error("expected both tokens in the login response")
			}
			if resp.User.Email != tt.req.Email {
				t.Errorf("expected user %s, got %s", tt.req.Email, resp.User.Email)
			}
			if f.sessions.Count() == 0 {
				t.Error("expected a session to be persisted")
			}
		})
	}
}

func TestAuthService_Authenticate_DisabledAccount(t *testing.T) {
	f := newTestAuthService()
	user := f.seedRegistrar(t)
	user.Active = false
	_ = f.users.Save(context.Background(), user)

	_, err := f.svc.Authenticate(context.Background(), domain.LoginRequest{
		Email:    "registrar@greenfield.edu",
		Password: "open-sesame",
	})
	if err != domain.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized for a disabled account, got %v", err)
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	f := newTestAuthService()
	user := f.seedRegistrar(t)
	token := f.openSessionFor(t, user, "sess-live")

	authCtx, err := f.svc.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authCtx.UserID != "staff-registrar" {
		t.Errorf("expected UserID staff-registrar, got %s", authCtx.UserID)
	}
	if authCtx.SessionID != "sess-live" {
		t.Errorf("expected SessionID sess-live, got %s", authCtx.SessionID)
	}
	if authCtx.IsGuest() {
		t.Error("a signed-in staff member is not a guest")
	}
}

func TestAuthService_ValidateToken_Rejections(t *testing.T) {
	f := newTestAuthService()
	user := f.seedRegistrar(t)

	expiredClaims := &domain.TokenClaims{
		UserID:    user.ID,
		SessionID: "sess-old",
		IssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}
	expiredToken, _ := f.adapter.GenerateToken(expiredClaims)

	orphanClaims := &domain.TokenClaims{
		UserID:    user.ID,
		SessionID: "sess-revoked",
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
	orphanToken, _ := f.adapter.GenerateToken(orphanClaims)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty token", "", domain.ErrTokenInvalid},
		{"garbage token", "not-a-jwt", domain.ErrTokenInvalid},
		{"expired token", expiredToken, domain.ErrTokenExpired},
		{"revoked session", orphanToken, domain.ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authCtx, err := f.svc.ValidateToken(context.Background(), tt.token)
			if err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if authCtx != nil {
				t.Error("expected nil auth context on rejection")
			}
		})
	}
}

func TestAuthService_ValidateToken_SessionExpiredUnderValidJWT(t *testing.T) {
	f := newTestAuthService()
	user := f.seedRegistrar(t)
	token := f.openSessionFor(t, user, "sess-stale")

	// The JWT is still within its window but the session lapsed
	session, _ := f.sessions.Get(context.Background(), "sess-stale")
	session.ExpiresAt = time.Now().Add(-time.Minute)
	_ = f.sessions.Save(context.Background(), session)

	_, err := f.svc.ValidateToken(context.Background(), token)
	if err != domain.ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAuthService_RefreshToken_RotatesSession(t *testing.T) {
	f := newTestAuthService()
	user := f.seedRegistrar(t)
	f.openSessionFor(t, user, "sess-first")

	resp, err := f.svc.RefreshToken(context.Background(), domain.RefreshRequest{
		RefreshToken: "refresh-sess-first",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Token == "" || resp.RefreshToken == "" {
		t.Error("expected fresh tokens after rotation")
	}
	if resp.RefreshToken == "refresh-sess-first" {
		t.Error("refresh token must not be reissued unchanged")
	}

	// The old session is gone, so the spent refresh token is dead
	if _, err := f.sessions.Get(context.Background(), "sess-first"); err != domain.ErrSessionNotFound {
		t.Error("expected the old session to be dropped")
	}
	if _, err := f.svc.RefreshToken(context.Background(), domain.RefreshRequest{
		RefreshToken: "refresh-sess-first",
	}); err != domain.ErrTokenInvalid {
		t.Errorf("expected a spent refresh token to be rejected, got %v", err)
	}
}

func TestAuthService_RefreshToken_Rejections(t *testing.T) {
	f := newTestAuthService()

	if _, err := f.svc.RefreshToken(context.Background(), domain.RefreshRequest{}); err != domain.ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid for empty refresh token, got %v", err)
	}
	if _, err := f.svc.RefreshToken(context.Background(), domain.RefreshRequest{
		RefreshToken: "never-issued",
	}); err != domain.ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid for unknown refresh token, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := newTestAuthService()
	user := f.seedRegistrar(t)
	token := f.openSessionFor(t, user, "sess-out")

	if err := f.svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.sessions.Get(context.Background(), "sess-out"); err != domain.ErrSessionNotFound {
		t.Error("expected the session to be dropped on logout")
	}

	// Nothing to invalidate is not an error
	if err := f.svc.Logout(context.Background(), ""); err != nil {
		t.Errorf("empty token logout should be a no-op, got %v", err)
	}
	if err := f.svc.Logout(context.Background(), "garbage"); err != nil {
		t.Errorf("unparseable token logout should be a no-op, got %v", err)
	}
}

func TestAuthService_LogoutAll(t *testing.T) {
	f := newTestAuthService()
	user := f.seedRegistrar(t)
	f.openSessionFor(t, user, "sess-desk")
	f.openSessionFor(t, user, "sess-laptop")

	if err := f.svc.LogoutAll(context.Background(), user.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.sessions.Count() != 0 {
		t.Errorf("expected every session dropped, %d left", f.sessions.Count())
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newTestAuthService()
	f.seedRegistrar(t)

	tests := []struct {
		name    string
		userID  string
		req     domain.ChangePasswordRequest
		wantErr error
	}{
		{
			name:    "missing current password",
			userID:  "staff-registrar",
			req:     domain.ChangePasswordRequest{NewPassword: "new-secret"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing new password",
			userID:  "staff-registrar",
			req:     domain.ChangePasswordRequest{CurrentPassword: "open-sesame"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "wrong current password",
			userID:  "staff-registrar",
			req:     domain.ChangePasswordRequest{CurrentPassword: "guess", NewPassword: "new-secret"},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:    "unknown user",
			userID:  "staff-ghost",
			req:     domain.ChangePasswordRequest{CurrentPassword: "open-sesame", NewPassword: "new-secret"},
			wantErr: domain.ErrNotFound,
		},
		{
			name:   "valid change",
			userID: "staff-registrar",
			req:    domain.ChangePasswordRequest{CurrentPassword: "open-sesame", NewPassword: "new-secret"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.ChangePassword(context.Background(), tt.userID, tt.req)
			if err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAuthService_ChangePassword_ForcesRelogin(t *testing.T) {
	f := newTestAuthService()
	user := f.seedRegistrar(t)
	f.openSessionFor(t, user, "sess-before")

	err := f.svc.ChangePassword(context.Background(), user.ID, domain.ChangePasswordRequest{
		CurrentPassword: "open-sesame",
		NewPassword:     "new-secret",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.sessions.Get(context.Background(), "sess-before"); err != domain.ErrSessionNotFound {
		t.Error("expected sessions revoked after a password change")
	}
}

func TestRandomID(t *testing.T) {
	if randomID(16) == randomID(16) {
		t.Error("expected unique IDs")
	}
	// 32 input bytes encode well past 40 characters; enough entropy for
	// an opaque refresh token
	if len(randomID(32)) < 40 {
		t.Errorf("unexpected encoded length %d", len(randomID(32)))
	}
}
