package editor

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jevonc/portfolio-backend/errs"
)

// Sessions keeps the open editors so a client can retry a failed submission on the same instance.
type Sessions struct {
	writer    Writer
	callbacks Callbacks
	logger    zerolog.Logger

	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	editors  map[uuid.UUID]*session
	lastScan time.Time
}

type session struct {
	editor     *Editor
	lastActive time.Time
}

// DefaultIdleTimeout is how long an untouched editor stays open.
const DefaultIdleTimeout = 30 * time.Minute

type SessionsOption func(*Sessions)

// WithIdleTimeout closes editors nobody has touched for d.
func WithIdleTimeout(d time.Duration) SessionsOption {
	return func(s *Sessions) { s.idleTTL = d }
}

// NewSessions builds a registry whose editors write through writer. callbacks.OnSuccess is shared
// by every editor; callbacks.OnClose, if set, runs after the editor is dropped from the registry.
func NewSessions(writer Writer, callbacks Callbacks, logger zerolog.Logger, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		writer:    writer,
		callbacks: callbacks,
		logger:    logger,
		idleTTL:   DefaultIdleTimeout,
		now:       time.Now,
		editors:   make(map[uuid.UUID]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open registers a new editor on initial.
func (s *Sessions) Open(initial Input) *Editor {
	var e *Editor
	e = New(initial, s.writer, Callbacks{
		OnSuccess: s.callbacks.OnSuccess,
		OnClose: func() {
			s.remove(e.ID())
			if s.callbacks.OnClose != nil {
				s.callbacks.OnClose()
			}
		},
	}, s.logger)

	s.sweep()

	s.mu.Lock()
	s.editors[e.ID()] = &session{editor: e, lastActive: s.now()}
	s.mu.Unlock()
	return e
}

// Get returns the open editor with id and marks it active.
func (s *Sessions) Get(id uuid.UUID) (*Editor, error) {
	s.sweep()

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.editors[id]
	if !ok {
		return nil, errs.NewNotFound("editor")
	}
	entry.lastActive = s.now()
	return entry.editor, nil
}

// Close cancels the editor with id.
func (s *Sessions) Close(id uuid.UUID) error {
	e, err := s.Get(id)
	if err != nil {
		return err
	}
	e.Close()
	return nil
}

// Len is the number of open editors.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.editors)
}

func (s *Sessions) remove(id uuid.UUID) {
	s.mu.Lock()
	delete(s.editors, id)
	s.mu.Unlock()
}

// sweep closes editors idle for longer than idleTTL. Editors with a submission in flight are kept.
// It scans at most once per idleTTL.
func (s *Sessions) sweep() {
	if s.idleTTL <= 0 {
		return
	}

	var idle []*Editor
	s.mu.Lock()
	now := s.now()
	if now.Sub(s.lastScan) >= s.idleTTL {
		s.lastScan = now
		for _, entry := range s.editors {
			if now.Sub(entry.lastActive) > s.idleTTL && !entry.editor.inFlight.Load() {
				idle = append(idle, entry.editor)
			}
		}
	}
	s.mu.Unlock()

	// Close calls back into remove, so the lock must not be held here
	for _, e := range idle {
		s.logger.Info().Str("editorID", e.ID().String()).Msg("closing idle editor")
		e.Close()
	}
}
