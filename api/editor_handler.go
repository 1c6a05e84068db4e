package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jevonc/portfolio-backend/editor"
	"github.com/jevonc/portfolio-backend/errs"
	"github.com/jevonc/portfolio-backend/models"
)

type recordFinder interface {
	Find(ctx context.Context, kind models.Kind, id uuid.UUID) (models.Record, error)
}

// editorHandler exposes long-lived editors: open one, submit as often as needed, close it.
type editorHandler struct {
	responder Responder
	logger    zerolog.Logger
	sessions  *editor.Sessions
	records   recordFinder
}

func newEditorHandler(sessions *editor.Sessions, records recordFinder) editorHandler {
	logger := log.With().Str("handlerName", "editorHandler").Logger()

	return editorHandler{
		responder: NewResponder(logger),
		logger:    logger,
		sessions:  sessions,
		records:   records,
	}
}

// openEditor starts an editor, empty or pre-populated from the record with the given id
// @Summary Open editor
// @Tags Editor
// @Accept json
// @Produce json
// @Success 201 {object} EditorResponse
// @Failure 404 {object} ErrorResponse "Record not found"
// @Router /api/admin/editors [post]
func (h editorHandler) openEditor() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req openEditorRequest
		if err := h.responder.DecodeJSON(r, &req, "editor"); err != nil {
			if errors.Is(err, io.EOF) {
				err = errs.NewMissingRequiredFieldError("kind")
			}
			h.responder.WriteError(w, err)
			return
		}
		kind, err := models.ParseKind(req.Kind)
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidFieldError("kind", "must be projects or achievements"))
			return
		}

		var initial editor.Input
		if req.ID == nil || *req.ID == "" {
			initial = emptyInput(kind)
		} else {
			id, err := uuid.Parse(*req.ID)
			if err != nil {
				h.responder.WriteError(w, errs.NewInvalidFieldError("id", "must be a UUID"))
				return
			}
			record, err := h.records.Find(r.Context(), kind, id)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			initial = editor.InputFrom(record)
		}

		e := h.sessions.Open(initial)
		h.responder.WriteJSONStatus(w, http.StatusCreated, EditorResponse{Editor: e.State()})
	}
}

func (h editorHandler) getEditor() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := h.editorFromPath(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, EditorResponse{Editor: e.State()})
	}
}

// submitEditor optionally replaces the form fields, then submits. On failure the editor stays
// open and its state carries the error message.
// @Summary Submit editor
// @Tags Editor
// @Accept json
// @Produce json
// @Success 200 {object} EditorResponse "Saved; the editor is closed"
// @Failure 400 {object} ErrorResponse "Invalid fields"
// @Failure 409 {object} ErrorResponse "Submission already in progress"
// @Failure 410 {object} ErrorResponse "Editor closed"
// @Router /api/admin/editors/{editorID}/submit [post]
func (h editorHandler) submitEditor() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := h.editorFromPath(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		in, err := decodeInput(h.responder, r, e.Kind())
		switch {
		case errors.Is(err, io.EOF):
			// no body: submit the fields already held by the editor
		case err != nil:
			h.responder.WriteError(w, err)
			return
		default:
			if err := e.SetInput(withID(in, e.Input().RecordID())); err != nil {
				h.responder.WriteError(w, err)
				return
			}
		}

		record, err := e.Submit(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, EditorResponse{Editor: e.State(), Record: record})
	}
}

func (h editorHandler) closeEditor() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "editorID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.sessions.Close(id); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h editorHandler) editorFromPath(r *http.Request) (*editor.Editor, error) {
	id, err := uuidParam(r, "editorID")
	if err != nil {
		return nil, err
	}
	return h.sessions.Get(id)
}

func emptyInput(kind models.Kind) editor.Input {
	if kind == models.KindAchievement {
		return editor.NewAchievementInput()
	}
	return editor.NewProjectInput()
}
