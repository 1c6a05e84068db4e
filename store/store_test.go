package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jevonc/portfolio-backend/database"
	"github.com/jevonc/portfolio-backend/errs"
	"github.com/jevonc/portfolio-backend/models"
)

type fakeSource struct {
	mu        sync.Mutex
	records   map[models.Kind][]models.Record
	listErr   error
	deleteErr error
	lists     int
	deletes   []uuid.UUID
}

type recordingConfirmer struct {
	prompt string
}

func (c *recordingConfirmer) Confirm(_ context.Context, prompt string) bool {
	c.prompt = prompt
	return false
}

func projects(s *Store) []models.Project {
	var out []models.Project
	for _, r := range s.Snapshot(models.KindProject).Records {
		out = append(out, r.(models.Project))
	}
	return out
}

func newFakeSource() *fakeSource {
	return &fakeSource{records: map[models.Kind][]models.Record{}}
}

func (f *fakeSource) List(_ context.Context, kind models.Kind) ([]models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Record(nil), f.records[kind]...), nil
}

func (f *fakeSource) Delete(_ context.Context, kind models.Kind, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.records[kind][:0]
	for _, r := range f.records[kind] {
		if r.RecordID() != id {
			kept = append(kept, r)
		}
	}
	f.records[kind] = kept
	return nil
}

func (f *fakeSource) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists, len(f.deletes)
}

func project(title string) models.Project {
	return models.Project{ID: uuid.New(), Title: title, Category: models.CategoryOther}
}

func TestFetchAllReplacesList(t *testing.T) {
	src := newFakeSource()
	src.records[models.KindProject] = []models.Record{project("a"), project("b")}
	s := New(src, zerolog.Nop())

	snap := s.FetchAll(context.Background(), models.KindProject)
	assert.Len(t, snap.Records, 2)
	assert.False(t, snap.Stale)
	assert.False(t, snap.FetchedAt.IsZero())

	src.records[models.KindProject] = []models.Record{project("c")}
	snap = s.FetchAll(context.Background(), models.KindProject)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "c", projects(s)[0].Title)
}

func TestFetchAllFailureKeepsPreviousList(t *testing.T) {
	src := newFakeSource()
	src.records[models.KindProject] = []models.Record{project("a")}
	s := New(src, zerolog.Nop())
	s.FetchAll(context.Background(), models.KindProject)

	src.listErr = errors.New("connection refused")
	snap := s.FetchAll(context.Background(), models.KindProject)
	assert.True(t, snap.Stale)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "a", snap.Records[0].(models.Project).Title)

	src.listErr = nil
	snap = s.FetchAll(context.Background(), models.KindProject)
	assert.False(t, snap.Stale)
}

func TestSnapshotIsACopy(t *testing.T) {
	src := newFakeSource()
	src.records[models.KindProject] = []models.Record{project("a")}
	s := New(src, zerolog.Nop())
	s.FetchAll(context.Background(), models.KindProject)

	snap := s.Snapshot(models.KindProject)
	snap.Records[0] = project("mutated")
	assert.Equal(t, "a", projects(s)[0].Title)
}

func TestDeleteDeclinedIssuesNoCalls(t *testing.T) {
	src := newFakeSource()
	p := project("a")
	src.records[models.KindProject] = []models.Record{p}
	s := New(src, zerolog.Nop())

	decline := &recordingConfirmer{}
	_, err := s.Delete(context.Background(), models.KindProject, p.ID, decline)
	assert.True(t, errs.IsConfirmationRequired(err))
	assert.Equal(t, "Are you sure you want to delete this project?", decline.prompt)

	lists, deletes := src.calls()
	assert.Zero(t, lists)
	assert.Zero(t, deletes)

	_, err = s.Delete(context.Background(), models.KindProject, p.ID, nil)
	assert.True(t, errs.IsConfirmationRequired(err))
	_, deletes = src.calls()
	assert.Zero(t, deletes)
}

func TestDeleteConfirmedRefetches(t *testing.T) {
	src := newFakeSource()
	a, b := project("a"), project("b")
	src.records[models.KindProject] = []models.Record{a, b}
	s := New(src, zerolog.Nop())
	s.FetchAll(context.Background(), models.KindProject)

	snap, err := s.Delete(context.Background(), models.KindProject, a.ID, Answer(true))
	require.NoError(t, err)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, b.ID, snap.Records[0].RecordID())

	lists, deletes := src.calls()
	assert.Equal(t, 2, lists)
	assert.Equal(t, 1, deletes)
}

func TestDeleteFailureLeavesListUntouched(t *testing.T) {
	src := newFakeSource()
	a := project("a")
	src.records[models.KindProject] = []models.Record{a}
	s := New(src, zerolog.Nop())
	s.FetchAll(context.Background(), models.KindProject)

	src.deleteErr = errs.NewNotFound("project")
	snap, err := s.Delete(context.Background(), models.KindProject, a.ID, Answer(true))
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.Len(t, snap.Records, 1)

	lists, _ := src.calls()
	assert.Equal(t, 1, lists)
}

func TestUnknownKind(t *testing.T) {
	s := New(newFakeSource(), zerolog.Nop())
	snap := s.FetchAll(context.Background(), models.Kind("posts"))
	assert.True(t, snap.Stale)
	assert.Empty(t, s.Snapshot(models.Kind("posts")).Records)
}

// A list is always whatever the service returned last: seeding two projects and inserting a
// third leaves exactly three, newest first, with no local merging.
func TestListReflectsServiceAfterInsert(t *testing.T) {
	ctx := context.Background()
	gormDB, err := database.OpenSQLite(filepath.Join(t.TempDir(), "store.db"), nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(gormDB))
	db := database.New(gormDB)
	t.Cleanup(func() { _ = db.Close() })

	s := New(db, zerolog.Nop())
	for _, title := range []string{"A", "B"} {
		require.NoError(t, db.InsertProject(ctx, &models.Project{Title: title, Description: "d", Category: models.CategoryOther}))
	}
	require.Len(t, s.FetchAll(ctx, models.KindProject).Records, 2)

	require.NoError(t, db.InsertProject(ctx, &models.Project{Title: "C", Description: "d", Category: models.CategoryOther}))
	s.FetchAll(ctx, models.KindProject)

	listed := projects(s)
	require.Len(t, listed, 3)
	assert.Equal(t, "C", listed[0].Title)

	_, err = s.Delete(ctx, models.KindProject, listed[0].ID, Answer(true))
	require.NoError(t, err)
	assert.Len(t, projects(s), 2)
}

func TestConcurrentFetches(t *testing.T) {
	src := newFakeSource()
	src.records[models.KindAchievement] = []models.Record{
		models.Achievement{ID: uuid.New(), Title: "x", Type: models.AchievementAward},
	}
	s := New(src, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.FetchEverything(context.Background())
			_ = s.Snapshot(models.KindAchievement)
		}()
	}
	wg.Wait()
	assert.Len(t, s.Snapshot(models.KindAchievement).Records, 1)
}

func TestRefreshReportsStaleness(t *testing.T) {
	src := newFakeSource()
	s := New(src, zerolog.Nop())
	require.NoError(t, s.Refresh(context.Background(), models.KindAchievement))

	src.listErr = errors.New("timeout")
	assert.Error(t, s.Refresh(context.Background(), models.KindAchievement))
}
