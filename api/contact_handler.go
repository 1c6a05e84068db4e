package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jevonc/portfolio-backend/errs"
	"github.com/jevonc/portfolio-backend/relay"
)

type contactHandler struct {
	responder Responder
	logger    zerolog.Logger
	relay     *relay.Relay
}

func newContactHandler(r *relay.Relay) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()

	return contactHandler{
		responder: NewResponder(logger),
		logger:    logger,
		relay:     r,
	}
}

// sendMessage relays a contact form submission
// @Summary Send contact message
// @Tags Contact
// @Accept json
// @Produce json
// @Param message body relay.Message true "Contact message"
// @Success 200 {object} contactResponse "status sent"
// @Failure 400 {object} ErrorResponse "Invalid message"
// @Failure 429 {object} ErrorResponse "Rate limited"
// @Failure 502 {object} contactResponse "Relay rejected the message"
// @Failure 503 {object} contactResponse "Relay not configured"
// @Router /contact [post]
func (h contactHandler) sendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg relay.Message
		if err := h.responder.DecodeJSON(r, &msg, "contact"); err != nil {
			if errors.Is(err, io.EOF) {
				err = errs.NewMissingRequiredFieldError("message")
			}
			h.responder.WriteError(w, err)
			return
		}
		if err := h.relay.ValidateMessage(msg); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		form := relay.NewForm(h.relay)
		err := form.Submit(r.Context(), msg)
		status, visible := form.State()
		if err != nil {
			code := http.StatusBadGateway
			var apiErr *errs.ApiErr
			if errors.As(err, &apiErr) {
				code = apiErr.StatusCode
			}
			h.responder.WriteJSONStatus(w, code, contactResponse{Status: string(status), Error: visible})
			return
		}
		h.responder.WriteJSON(w, contactResponse{Status: string(status)})
	}
}
