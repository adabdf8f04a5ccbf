package domain

import "time"

// Session is one staff sign-in. The JWT carries the session ID, so a
// deleted session revokes the token before it expires.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	UserAgent    string    `json:"user_agent,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
}

// IsExpired reports whether the session has lapsed
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// AuthContext contains authenticated caller info for request context.
// For anonymous visitors UserID is empty and GuestID carries the
// client-generated identifier.
type AuthContext struct {
	UserID    string `json:"user_id,omitempty"`
	GuestID   string `json:"guest_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      Role   `json:"role,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// IsAdmin checks if the authenticated user is an admin
func (a *AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsGuest reports whether the caller is an anonymous visitor
func (a *AuthContext) IsGuest() bool {
	return a.UserID == "" && a.GuestID != ""
}

// LoginRequest carries a staff sign-in attempt
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse hands back the token pair after a successful sign-in
// or refresh
type LoginResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         *UserSummary `json:"user"`
}

// RefreshRequest trades a refresh token for a new session
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenClaims is the JWT payload. SessionID ties the token to a stored
// session so revocation works.
type TokenClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	SessionID string `json:"session_id"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// ChangePasswordRequest is the self-service password change payload
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
