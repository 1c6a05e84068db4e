// Package store keeps the dashboard's in-memory copy of each record collection.
//
// The lists are a disposable cache of the data service: every list is replaced wholesale by a
// fetch, and every successful mutation is followed by a full refetch. Nothing is ever merged or
// removed locally.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jevonc/portfolio-backend/errs"
	"github.com/jevonc/portfolio-backend/models"
)

// Source is the data service the store reads from and deletes through.
type Source interface {
	List(ctx context.Context, kind models.Kind) ([]models.Record, error)
	Delete(ctx context.Context, kind models.Kind, id uuid.UUID) error
}

// Confirmer is asked before any delete is issued.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// Answer is a Confirmer whose answer is already known, e.g. from a request parameter.
type Answer bool

func (a Answer) Confirm(context.Context, string) bool {
	return bool(a)
}

// Snapshot is a read-only view of one list.
type Snapshot struct {
	Kind      models.Kind
	Records   []models.Record
	FetchedAt time.Time
	// Stale is set when the latest fetch failed and Records predates it.
	Stale bool
}

type list struct {
	records   []models.Record
	fetchedAt time.Time
	stale     bool
}

type Store struct {
	source Source
	logger zerolog.Logger

	mu    sync.RWMutex
	lists map[models.Kind]*list

	// one refresh at a time per kind, so a slow older fetch can't overwrite a newer one
	refreshMu map[models.Kind]*sync.Mutex
}

func New(source Source, logger zerolog.Logger) *Store {
	s := &Store{
		source:    source,
		logger:    logger.With().Str("component", "recordStore").Logger(),
		lists:     make(map[models.Kind]*list, len(models.Kinds)),
		refreshMu: make(map[models.Kind]*sync.Mutex, len(models.Kinds)),
	}
	for _, kind := range models.Kinds {
		s.lists[kind] = &list{}
		s.refreshMu[kind] = &sync.Mutex{}
	}
	return s
}

// FetchAll reloads every record of kind from the source. On success the list is replaced;
// on failure the previous list stays available and the snapshot is marked stale.
func (s *Store) FetchAll(ctx context.Context, kind models.Kind) Snapshot {
	refresh, ok := s.refreshMu[kind]
	if !ok {
		s.logger.Error().Str("kind", string(kind)).Msg("fetch requested for unknown record kind")
		return Snapshot{Kind: kind, Stale: true}
	}
	refresh.Lock()
	defer refresh.Unlock()

	records, err := s.source.List(ctx, kind)

	s.mu.Lock()
	l := s.lists[kind]
	if err != nil {
		l.stale = true
	} else {
		l.records = records
		l.fetchedAt = time.Now()
		l.stale = false
	}
	snap := l.snapshot(kind)
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn().Err(err).Str("kind", string(kind)).Int("kept", len(snap.Records)).Msg("fetch failed, keeping previous list")
	}
	return snap
}

// Refresh is the post-mutation reload. It reports the fetch error, if any, so a caller that just
// mutated knows the list it holds is not yet current.
func (s *Store) Refresh(ctx context.Context, kind models.Kind) error {
	snap := s.FetchAll(ctx, kind)
	if snap.Stale {
		return fmt.Errorf("refresh %s: list is stale", kind)
	}
	return nil
}

// FetchEverything refreshes every kind.
func (s *Store) FetchEverything(ctx context.Context) {
	for _, kind := range models.Kinds {
		s.FetchAll(ctx, kind)
	}
}

// Snapshot returns the current list without contacting the source.
func (s *Store) Snapshot(kind models.Kind) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lists[kind]
	if !ok {
		return Snapshot{Kind: kind}
	}
	return l.snapshot(kind)
}

// Delete asks confirm first and issues nothing if it declines. After a successful delete the
// list is refetched before returning; the deleted record is never removed locally.
func (s *Store) Delete(ctx context.Context, kind models.Kind, id uuid.UUID, confirm Confirmer) (Snapshot, error) {
	prompt := DeletePrompt(kind)
	if confirm == nil || !confirm.Confirm(ctx, prompt) {
		return s.Snapshot(kind), errs.NewConfirmationRequiredError(prompt)
	}

	if err := s.source.Delete(ctx, kind, id); err != nil {
		s.logger.Error().Err(err).Str("kind", string(kind)).Str("id", id.String()).Msg("delete failed")
		return s.Snapshot(kind), fmt.Errorf("delete %s: %w", kind.Singular(), err)
	}

	return s.FetchAll(ctx, kind), nil
}

// DeletePrompt is the question put to the user before deleting a record of kind.
func DeletePrompt(kind models.Kind) string {
	return fmt.Sprintf("Are you sure you want to delete this %s?", kind.Singular())
}

func (l *list) snapshot(kind models.Kind) Snapshot {
	records := make([]models.Record, len(l.records))
	copy(records, l.records)
	return Snapshot{
		Kind:      kind,
		Records:   records,
		FetchedAt: l.fetchedAt,
		Stale:     l.stale,
	}
}
