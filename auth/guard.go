package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// SessionCookie carries the access token set by the login endpoint.
	SessionCookie = "sb-access-token"
	LoginPath     = "/login"
)

// Outcome is what the auth service said about a session.
type Outcome int

const (
	OutcomeNoUser Outcome = iota
	OutcomeError
	OutcomeUser
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUser:
		return "user"
	case OutcomeError:
		return "error"
	}
	return "no_user"
}

// Decision is the guard's verdict. Either Allow is set and User is known, or the caller must
// send the visitor to RedirectTo.
type Decision struct {
	Allow      bool
	User       *User
	Outcome    Outcome
	RedirectTo string
}

// Guard gates the dashboard. An auth failure is treated exactly like a missing session.
type Guard struct {
	provider   Provider
	adminEmail string
	logger     zerolog.Logger
}

// NewGuard builds a guard. When adminEmail is set, every other signed in user is turned away.
func NewGuard(provider Provider, adminEmail string, logger zerolog.Logger) *Guard {
	return &Guard{
		provider:   provider,
		adminEmail: strings.ToLower(strings.TrimSpace(adminEmail)),
		logger:     logger.With().Str("component", "sessionGuard").Logger(),
	}
}

func (g *Guard) Check(ctx context.Context, token string) Decision {
	deny := func(outcome Outcome) Decision {
		return Decision{Outcome: outcome, RedirectTo: LoginPath}
	}

	user, err := g.provider.CurrentUser(ctx, token)
	if err != nil {
		g.logger.Error().Err(err).Msg("session check failed")
		return deny(OutcomeError)
	}
	if user == nil {
		return deny(OutcomeNoUser)
	}
	if g.adminEmail != "" && strings.ToLower(user.Email) != g.adminEmail {
		g.logger.Warn().Str("userID", user.ID).Msg("signed in user is not the dashboard owner")
		return deny(OutcomeNoUser)
	}
	return Decision{Allow: true, User: user, Outcome: OutcomeUser}
}

// TokenFromRequest reads the access token from the session cookie or a bearer header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// SetSessionCookie stores the access token for later requests.
func SetSessionCookie(w http.ResponseWriter, s *Session, secure bool) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = int(time.Hour.Seconds())
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    s.AccessToken,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
