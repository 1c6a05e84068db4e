package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jevonc/portfolio-backend/errs"
	"github.com/jevonc/portfolio-backend/resume"
)

type resumeHandler struct {
	responder Responder
	logger    zerolog.Logger
	locator   resume.Locator
}

func newResumeHandler(locator resume.Locator) resumeHandler {
	logger := log.With().Str("handlerName", "resumeHandler").Logger()

	return resumeHandler{
		responder: NewResponder(logger),
		logger:    logger,
		locator:   locator,
	}
}

// getResume reports whether a resume is available and where
func (h resumeHandler) getResume() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := h.locator.Locate(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to locate resume", err))
			return
		}
		h.responder.WriteJSON(w, info)
	}
}

// downloadResume serves the local file or redirects to a presigned link
func (h resumeHandler) downloadResume() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := h.locator.Locate(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to locate resume", err))
			return
		}

		switch {
		case !info.Available:
			h.responder.WriteJSONStatus(w, http.StatusNotFound, info)
		case info.Path != "":
			w.Header().Set("Content-Type", "application/pdf")
			http.ServeFile(w, r, info.Path)
		default:
			http.Redirect(w, r, info.URL, http.StatusFound)
		}
	}
}
