package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jevonc/portfolio-backend/editor"
	"github.com/jevonc/portfolio-backend/errs"
	"github.com/jevonc/portfolio-backend/models"
	"github.com/jevonc/portfolio-backend/store"
)

type recordHandler struct {
	responder Responder
	logger    zerolog.Logger
	store     *store.Store
	writer    editor.Writer
}

func newRecordHandler(store *store.Store, writer editor.Writer) recordHandler {
	logger := log.With().Str("handlerName", "recordHandler").Logger()

	return recordHandler{
		responder: NewResponder(logger),
		logger:    logger,
		store:     store,
		writer:    writer,
	}
}

// listRecords refreshes and returns one collection
// @Summary List records
// @Tags Admin
// @Produce json
// @Param kind path string true "projects or achievements"
// @Success 200 {object} ListResponse
// @Failure 400 {object} ErrorResponse "Unknown kind"
// @Failure 401 {object} ErrorResponse "No session"
// @Router /api/admin/{kind} [get]
func (h recordHandler) listRecords() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := kindParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, listResponse(h.store.FetchAll(r.Context(), kind)))
	}
}

// createRecord inserts a record through a one-shot editor
// @Summary Create record
// @Tags Admin
// @Accept json
// @Produce json
// @Param kind path string true "projects or achievements"
// @Success 201 {object} MutationResponse "Created record and refreshed list"
// @Failure 400 {object} ErrorResponse "Invalid record"
// @Failure 401 {object} ErrorResponse "No session"
// @Router /api/admin/{kind} [post]
func (h recordHandler) createRecord() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := kindParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		in, err := decodeInput(h.responder, r, kind)
		if errors.Is(err, io.EOF) {
			err = errs.NewMalformedPayloadError(kind.Singular(), err)
		}
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		record, err := h.submit(r, withID(in, nil))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, MutationResponse{
			Record: record,
			List:   listResponse(h.store.Snapshot(kind)),
		})
	}
}

// updateRecord overwrites the editable fields of a record
// @Summary Update record
// @Tags Admin
// @Accept json
// @Produce json
// @Param kind path string true "projects or achievements"
// @Param recordID path string true "Record ID" format(uuid)
// @Success 200 {object} MutationResponse "Updated record and refreshed list"
// @Failure 400 {object} ErrorResponse "Invalid record"
// @Failure 404 {object} ErrorResponse "Record not found"
// @Router /api/admin/{kind}/{recordID} [put]
func (h recordHandler) updateRecord() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := kindParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		id, err := uuidParam(r, "recordID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		in, err := decodeInput(h.responder, r, kind)
		if errors.Is(err, io.EOF) {
			err = errs.NewMalformedPayloadError(kind.Singular(), err)
		}
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		record, err := h.submit(r, withID(in, &id))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, MutationResponse{
			Record: record,
			List:   listResponse(h.store.Snapshot(kind)),
		})
	}
}

// deleteRecord removes a record. Without confirm=true nothing is deleted and 428 is returned
// with the confirmation prompt.
// @Summary Delete record
// @Tags Admin
// @Produce json
// @Param kind path string true "projects or achievements"
// @Param recordID path string true "Record ID" format(uuid)
// @Param confirm query bool true "Must be true"
// @Success 200 {object} MutationResponse "Refreshed list"
// @Failure 404 {object} ErrorResponse "Record not found"
// @Failure 428 {object} ErrorResponse "Confirmation required"
// @Router /api/admin/{kind}/{recordID} [delete]
func (h recordHandler) deleteRecord() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := kindParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		id, err := uuidParam(r, "recordID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
		snap, err := h.store.Delete(r.Context(), kind, id, store.Answer(confirmed))
		if err != nil {
			if !errs.IsConfirmationRequired(err) {
				err = errs.NewDatabaseError("delete", kind.Singular(), err)
			}
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, MutationResponse{List: listResponse(snap)})
	}
}

func (h recordHandler) submit(r *http.Request, in editor.Input) (models.Record, error) {
	e := editor.New(in, h.writer, editor.Callbacks{OnSuccess: h.store.Refresh}, h.logger)
	return e.Submit(r.Context())
}

func kindParam(r *http.Request) (models.Kind, error) {
	kind, err := models.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", errs.NewNotFoundError(err.Error())
	}
	return kind, nil
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, errs.NewMissingRequiredFieldError(name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewInvalidFieldError(name, "must be a UUID")
	}
	return id, nil
}

// decodeInput reads the form fields for kind from the request body onto a fresh form, so omitted
// fields keep the form defaults. An empty body is io.EOF.
func decodeInput(responder Responder, r *http.Request, kind models.Kind) (editor.Input, error) {
	var (
		in  editor.Input
		err error
	)
	switch kind {
	case models.KindProject:
		p := editor.NewProjectInput()
		err = responder.DecodeJSON(r, &p, "project")
		in = p
	case models.KindAchievement:
		a := editor.NewAchievementInput()
		err = responder.DecodeJSON(r, &a, "achievement")
		in = a
	default:
		return nil, errs.NewNotFoundError("unknown record kind")
	}
	return in, err
}

// withID sets the record the input targets; nil means a new record.
func withID(in editor.Input, id *uuid.UUID) editor.Input {
	switch v := in.(type) {
	case editor.ProjectInput:
		v.ID = id
		return v
	case editor.AchievementInput:
		v.ID = id
		return v
	}
	return in
}
