package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gotrue "github.com/supabase-community/auth-go"
	"github.com/supabase-community/auth-go/types"

	"github.com/jevonc/portfolio-backend/errs"
)

// Supabase access tokens live for an hour unless the project says otherwise.
const defaultTokenLifetime = time.Hour

// Supabase talks to the GoTrue endpoints of a Supabase project.
type Supabase struct {
	client   gotrue.Client
	base     http.Client
	verifier *TokenVerifier

	// tokens signed out through this server, until they would have expired anyway
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

type SupabaseOption func(*Supabase)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) SupabaseOption {
	return func(s *Supabase) { s.base = *c }
}

// WithTokenVerifier checks access tokens locally instead of asking the auth server.
func WithTokenVerifier(v *TokenVerifier) SupabaseOption {
	return func(s *Supabase) { s.verifier = v }
}

func NewSupabase(baseURL, anonKey string, opts ...SupabaseOption) *Supabase {
	s := &Supabase{
		base:    http.Client{Timeout: 10 * time.Second},
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
	if baseURL = strings.TrimRight(baseURL, "/"); baseURL != "" {
		s.client = gotrue.New("", anonKey).WithCustomAuthURL(baseURL + "/auth/v1")
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// call returns a client bound to ctx and, when set, the caller's access token.
func (s *Supabase) call(ctx context.Context, token string) (gotrue.Client, error) {
	if s.client == nil {
		return nil, errs.NewConfigMissingError("SUPABASE_URL")
	}
	httpClient := s.base
	transport := httpClient.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	httpClient.Transport = contextTransport{ctx: ctx, next: transport}

	c := s.client.WithClient(httpClient)
	if token != "" {
		c = c.WithToken(token)
	}
	return c, nil
}

func (s *Supabase) CurrentUser(ctx context.Context, token string) (*User, error) {
	if token == "" || s.isRevoked(token) {
		return nil, nil
	}
	if s.verifier != nil {
		user, err := s.verifier.Verify(token)
		if err != nil {
			// an invalid or expired token is simply not a session
			return nil, nil
		}
		return user, nil
	}

	c, err := s.call(ctx, token)
	if err != nil {
		return nil, errs.NewAuthUnavailableError(err)
	}
	resp, err := c.GetUser()
	if err != nil {
		status, _ := statusOf(err)
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return nil, nil
		}
		return nil, errs.NewAuthUnavailableError(err)
	}
	if resp == nil || resp.ID == uuid.Nil {
		return nil, nil
	}
	return userFrom(resp.User), nil
}

func (s *Supabase) SignIn(ctx context.Context, email, password string) (*Session, error) {
	c, err := s.call(ctx, "")
	if err != nil {
		return nil, errs.NewAuthUnavailableError(err)
	}

	resp, err := c.Token(types.TokenRequest{
		GrantType: "password",
		Email:     email,
		Password:  password,
	})
	if err != nil {
		status, body := statusOf(err)
		switch status {
		case http.StatusBadRequest, http.StatusUnauthorized:
			msg := errorText(body)
			if msg == "" {
				msg = "invalid login credentials"
			}
			return nil, errs.NewUnauthorizedError(msg)
		}
		return nil, errs.NewAuthUnavailableError(err)
	}

	expiresAt := time.Unix(resp.ExpiresAt, 0)
	if resp.ExpiresAt == 0 {
		expiresAt = s.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expiresAt,
		User:         userFrom(resp.User),
	}, nil
}

// SignOut revokes the session. A token the server no longer knows counts as signed out.
// The token is refused locally from now on even if the auth server cannot be reached.
func (s *Supabase) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	s.revoke(token)

	c, err := s.call(ctx, token)
	if err != nil {
		return errs.NewAuthUnavailableError(err)
	}
	if err := c.Logout(); err != nil {
		switch status, _ := statusOf(err); status {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return nil
		}
		return errs.NewAuthUnavailableError(err)
	}
	return nil
}

func (s *Supabase) revoke(token string) {
	expiresAt := s.now().Add(defaultTokenLifetime)
	if s.verifier != nil {
		if claims, err := s.verifier.Parse(token); err == nil && claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for t, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, t)
		}
	}
	s.revoked[token] = expiresAt
}

func (s *Supabase) isRevoked(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[token]
	return ok && !s.now().After(exp)
}

func userFrom(u types.User) *User {
	return &User{ID: u.ID.String(), Email: u.Email, Role: u.Role}
}

// contextTransport attaches ctx to every request, since the GoTrue client does not take one.
type contextTransport struct {
	ctx  context.Context
	next http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.next.RoundTrip(req.WithContext(t.ctx))
}

var statusPattern = regexp.MustCompile(`(?s)status code (\d{3}):?\s*(.*)`)

// statusOf pulls the HTTP status and response body out of a GoTrue client error.
// It returns 0 for transport failures.
func statusOf(err error) (int, string) {
	if err == nil {
		return 0, ""
	}
	m := statusPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0, ""
	}
	status, _ := strconv.Atoi(m[1])
	return status, m[2]
}

// GoTrue has used several error shapes over time
type supabaseErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func errorText(body string) string {
	var e supabaseErrorResponse
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		return ""
	}
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}
