// Package auth resolves dashboard sessions against Supabase Auth and decides who may see the dashboard.
package auth

import (
	"context"
	"time"
)

// User is the identity behind a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Session is what a successful sign in returns.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user"`
}

// Provider is the remote auth service.
type Provider interface {
	// CurrentUser returns nil and no error when token does not belong to a live session.
	CurrentUser(ctx context.Context, token string) (*User, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
}
