// Package editor implements the create/update form for a single record.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jevonc/portfolio-backend/errs"
	"github.com/jevonc/portfolio-backend/models"
)

// Writer issues record mutations against the data service.
type Writer interface {
	InsertProject(ctx context.Context, p *models.Project) error
	UpdateProject(ctx context.Context, p *models.Project) error
	InsertAchievement(ctx context.Context, a *models.Achievement) error
	UpdateAchievement(ctx context.Context, a *models.Achievement) error
}

// Callbacks run after a successful submission, OnSuccess first.
type Callbacks struct {
	// OnSuccess is awaited before the editor closes. Typically the store refresh.
	OnSuccess func(ctx context.Context, kind models.Kind) error
	OnClose   func()
}

// State is what the dashboard needs to render an editor.
type State struct {
	ID         uuid.UUID   `json:"id"`
	Kind       models.Kind `json:"kind"`
	Mode       Mode        `json:"mode"`
	Input      Input       `json:"input"`
	Submitting bool        `json:"submitting"`
	LastError  string      `json:"last_error,omitempty"`
	Closed     bool        `json:"closed"`
}

type Editor struct {
	id        uuid.UUID
	writer    Writer
	callbacks Callbacks
	logger    zerolog.Logger

	mu        sync.Mutex
	input     Input
	lastError string

	inFlight atomic.Bool
	closed   atomic.Bool
}

// New opens an editor on initial. The mode is fixed by whether initial carries an id.
func New(initial Input, writer Writer, callbacks Callbacks, logger zerolog.Logger) *Editor {
	id := uuid.New()
	return &Editor{
		id:        id,
		writer:    writer,
		callbacks: callbacks,
		input:     initial,
		logger: logger.With().
			Str("component", "recordEditor").
			Str("editorID", id.String()).
			Str("kind", string(initial.Kind())).
			Logger(),
	}
}

func (e *Editor) ID() uuid.UUID { return e.id }

func (e *Editor) Kind() models.Kind { return e.Input().Kind() }

func (e *Editor) Mode() Mode { return ModeOf(e.Input()) }

func (e *Editor) Input() Input {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.input
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		ID:         e.id,
		Kind:       e.input.Kind(),
		Mode:       ModeOf(e.input),
		Input:      e.input,
		Submitting: e.inFlight.Load(),
		LastError:  e.lastError,
		Closed:     e.closed.Load(),
	}
}

// SetInput replaces the form fields. The record kind and the record being edited cannot change.
func (e *Editor) SetInput(in Input) error {
	if e.closed.Load() {
		return errs.NewEditorClosedError()
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if in.Kind() != e.input.Kind() {
		return errs.NewInvalidFieldError("kind", fmt.Sprintf("editor is for %s", e.input.Kind()))
	}
	if !sameID(in.RecordID(), e.input.RecordID()) {
		return errs.NewInvalidFieldError("id", "an editor cannot switch records")
	}
	e.input = in
	return nil
}

// Submit validates the form and issues exactly one insert or update. On success the OnSuccess
// callback is awaited, then the editor closes. On failure the editor stays open with the error
// message recorded for display, and no callback runs.
func (e *Editor) Submit(ctx context.Context) (models.Record, error) {
	if e.closed.Load() {
		return nil, errs.NewEditorClosedError()
	}
	if !e.inFlight.CompareAndSwap(false, true) {
		return nil, errs.NewSubmitInFlightError()
	}
	defer e.inFlight.Store(false)

	in := e.Input()
	if err := Validate(in); err != nil {
		e.fail(err)
		return nil, err
	}

	record, err := e.mutate(ctx, in)
	if err != nil {
		e.fail(err)
		return nil, err
	}

	if e.callbacks.OnSuccess != nil {
		if err := e.callbacks.OnSuccess(ctx, in.Kind()); err != nil {
			// the mutation is committed; a failed refresh only leaves the list stale
			e.logger.Warn().Err(err).Msg("refresh after save failed")
		}
	}
	e.Close()
	return record, nil
}

func (e *Editor) mutate(ctx context.Context, in Input) (models.Record, error) {
	mode := ModeOf(in)
	switch v := in.(type) {
	case ProjectInput:
		p := v.toProject()
		if mode == ModeEdit {
			if err := e.writer.UpdateProject(ctx, p); err != nil {
				return nil, errs.NewDatabaseError("update", "project", err)
			}
		} else if err := e.writer.InsertProject(ctx, p); err != nil {
			return nil, errs.NewDatabaseError("insert", "project", err)
		}
		return *p, nil
	case AchievementInput:
		a, err := v.toAchievement()
		if err != nil {
			return nil, errs.NewInvalidFieldError("date", err.Error())
		}
		if mode == ModeEdit {
			if err := e.writer.UpdateAchievement(ctx, a); err != nil {
				return nil, errs.NewDatabaseError("update", "achievement", err)
			}
		} else if err := e.writer.InsertAchievement(ctx, a); err != nil {
			return nil, errs.NewDatabaseError("insert", "achievement", err)
		}
		return *a, nil
	}
	return nil, errs.NewBadRequestError("unsupported record input")
}

func (e *Editor) fail(err error) {
	e.logger.Info().Err(err).Msg("submission failed, editor stays open")
	msg := err.Error()
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) {
		msg = apiErr.GetFullError()
	}
	e.mu.Lock()
	e.lastError = msg
	e.mu.Unlock()
}

// Close dismisses the editor. OnClose runs at most once.
func (e *Editor) Close() {
	if e.closed.CompareAndSwap(false, true) && e.callbacks.OnClose != nil {
		e.callbacks.OnClose()
	}
}

func (e *Editor) Closed() bool { return e.closed.Load() }

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return (a == nil || *a == uuid.Nil) && (b == nil || *b == uuid.Nil)
	}
	return *a == *b
}
