package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jevonc/portfolio-backend/models"
	"github.com/jevonc/portfolio-backend/store"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type publicHandler struct {
	responder   Responder
	logger      zerolog.Logger
	store       *store.Store
	db          pinger
	startupTime time.Time
}

func newPublicHandler(store *store.Store, db pinger, startupTime time.Time) publicHandler {
	logger := log.With().Str("handlerName", "publicHandler").Logger()

	return publicHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		store:       store,
		db:          db,
		startupTime: startupTime,
	}
}

// health reports uptime and whether the database answers
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} healthResponse
// @Failure 503 {object} healthResponse
// @Router /health [get]
func (h publicHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status:    "ok",
			StartedAt: h.startupTime.UTC(),
			Uptime:    time.Since(h.startupTime).Round(time.Second).String(),
			Database:  "ok",
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn().Err(err).Msg("database ping failed")
			resp.Status = "degraded"
			resp.Database = "unreachable"
			h.responder.WriteJSONStatus(w, http.StatusServiceUnavailable, resp)
			return
		}
		h.responder.WriteJSON(w, resp)
	}
}

// listRecords serves the public project and achievement sections
// @Summary List projects or achievements
// @Description Refreshes the list from the database. If that fails the previous list is returned with stale set.
// @Tags Records
// @Produce json
// @Success 200 {object} ListResponse
// @Router /projects [get]
// @Router /achievements [get]
func (h publicHandler) listRecords(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := h.store.FetchAll(r.Context(), kind)
		h.responder.WriteJSON(w, listResponse(snap))
	}
}
