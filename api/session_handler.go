package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/jevonc/portfolio-backend/auth"
	"github.com/jevonc/portfolio-backend/errs"
	"github.com/jevonc/portfolio-backend/models"
	"github.com/jevonc/portfolio-backend/store"
)

type sessionHandler struct {
	responder     Responder
	logger        zerolog.Logger
	provider      auth.Provider
	store         *store.Store
	secureCookies bool
}

func newSessionHandler(provider auth.Provider, store *store.Store, secureCookies bool) sessionHandler {
	logger := log.With().Str("handlerName", "sessionHandler").Logger()

	return sessionHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		provider:      provider,
		store:         store,
		secureCookies: secureCookies,
	}
}

// login exchanges email and password for a session cookie
// @Summary Sign in
// @Tags Session
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} auth.Session
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 502 {object} ErrorResponse "Auth service unavailable"
// @Router /login [post]
func (h sessionHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			req.Email, req.Password = r.PostFormValue("email"), r.PostFormValue("password")
		} else if err := h.responder.DecodeJSON(r, &req, "login"); err != nil && !errors.Is(err, io.EOF) {
			h.responder.WriteError(w, err)
			return
		}

		req.Email = strings.TrimSpace(req.Email)
		if req.Email == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("email"))
			return
		}
		if req.Password == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("password"))
			return
		}

		session, err := h.provider.SignIn(r.Context(), req.Email, req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		auth.SetSessionCookie(w, session, h.secureCookies)
		if session.User != nil {
			h.logger.Info().Str("userID", session.User.ID).Msg("signed in")
		}
		h.responder.WriteJSON(w, map[string]any{
			"user":       session.User,
			"expires_at": session.ExpiresAt,
		})
	}
}

// logout signs out at the provider, clears the cookie and sends the visitor to the login page.
// A provider failure does not keep the visitor signed in locally.
func (h sessionHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.provider.SignOut(r.Context(), auth.TokenFromRequest(r)); err != nil {
			h.logger.Warn().Err(err).Msg("sign out at auth service failed")
		}
		auth.ClearSessionCookie(w, h.secureCookies)

		status := http.StatusFound
		if r.Method == http.MethodPost {
			status = http.StatusSeeOther
		}
		http.Redirect(w, r, auth.LoginPath, status)
	}
}

// dashboard returns the signed in user with freshly fetched lists
// @Summary Dashboard snapshot
// @Tags Session
// @Produce json
// @Success 200 {object} DashboardResponse
// @Success 302 "Redirect to /login without a valid session"
// @Router /dashboard [get]
func (h sessionHandler) dashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := ctxGetUser(r.Context())
		if !ok {
			// the guard middleware always sets the user; never render without one
			http.Redirect(w, r, auth.LoginPath, http.StatusFound)
			return
		}

		var projects, achievements store.Snapshot
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			projects = h.store.FetchAll(ctx, models.KindProject)
			return nil
		})
		g.Go(func() error {
			achievements = h.store.FetchAll(ctx, models.KindAchievement)
			return nil
		})
		_ = g.Wait()

		h.responder.WriteJSON(w, DashboardResponse{
			User:         user,
			Projects:     listResponse(projects),
			Achievements: listResponse(achievements),
		})
	}
}
