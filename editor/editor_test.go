package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jevonc/portfolio-backend/errs"
	"github.com/jevonc/portfolio-backend/models"
)

type recordingWriter struct {
	mu      sync.Mutex
	calls   []string
	project *models.Project
	err     error
	block   chan struct{}
	started chan struct{}
}

func (w *recordingWriter) record(call string) error {
	w.mu.Lock()
	w.calls = append(w.calls, call)
	w.mu.Unlock()
	if w.started != nil {
		close(w.started)
	}
	if w.block != nil {
		<-w.block
	}
	return w.err
}

func (w *recordingWriter) InsertProject(_ context.Context, p *models.Project) error {
	w.project = p
	if w.err == nil {
		p.ID = uuid.New()
	}
	return w.record("insertProject")
}

func (w *recordingWriter) UpdateProject(_ context.Context, p *models.Project) error {
	w.project = p
	return w.record("updateProject")
}

func (w *recordingWriter) InsertAchievement(_ context.Context, a *models.Achievement) error {
	return w.record("insertAchievement")
}

func (w *recordingWriter) UpdateAchievement(_ context.Context, a *models.Achievement) error {
	return w.record("updateAchievement")
}

func (w *recordingWriter) Calls() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.calls...)
}

func validProject() ProjectInput {
	return ProjectInput{
		Title:       "Portfolio",
		Description: "Personal site",
		Category:    models.CategoryWebDevelopment,
		TechStack:   "Next.js, Python, Supabase",
	}
}

func TestParseTechStack(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"Next.js, Python, Supabase", []string{"Next.js", "Python", "Supabase"}},
		{"Next.js,, Python,", []string{"Next.js", "Python"}},
		{"", []string{}},
		{" , ,", []string{}},
		{"Go", []string{"Go"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseTechStack(tt.raw)
			assert.Equal(t, tt.want, got)
			// reparsing the joined result gives the same stack
			assert.Equal(t, got, ParseTechStack(joinStack(got)))
		})
	}
}

func joinStack(stack []string) string {
	out := ""
	for i, s := range stack {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

func TestSubmitWithoutIDInsertsOnce(t *testing.T) {
	w := &recordingWriter{}
	var order []string
	e := New(validProject(), w, Callbacks{
		OnSuccess: func(ctx context.Context, kind models.Kind) error {
			order = append(order, "success:"+string(kind))
			return nil
		},
		OnClose: func() { order = append(order, "close") },
	}, zerolog.Nop())

	assert.Equal(t, ModeCreate, e.Mode())
	record, err := e.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"insertProject"}, w.Calls())
	assert.Equal(t, []string{"success:projects", "close"}, order)
	assert.True(t, e.Closed())
	assert.Equal(t, models.KindProject, record.Kind())
	assert.Equal(t, []string{"Next.js", "Python", "Supabase"}, []string(w.project.TechStack))
}

func TestSubmitWithIDUpdatesOnce(t *testing.T) {
	w := &recordingWriter{}
	existing := models.Project{ID: uuid.New(), Title: "Old", Description: "d", Category: models.CategoryAutomation, TechStack: []string{"Go"}}
	in := ProjectInputFrom(existing)
	in.Title = "New"

	e := New(in, w, Callbacks{}, zerolog.Nop())
	assert.Equal(t, ModeEdit, e.Mode())

	_, err := e.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"updateProject"}, w.Calls())
	assert.Equal(t, existing.ID, w.project.ID)
	assert.Equal(t, "New", w.project.Title)
}

func TestAchievementModes(t *testing.T) {
	w := &recordingWriter{}
	in := NewAchievementInput()
	in.Title, in.Description = "AWS", "Cloud cert"
	in.Type = models.AchievementCertification

	_, err := New(in, w, Callbacks{}, zerolog.Nop()).Submit(context.Background())
	require.NoError(t, err)

	date, err := models.ParseDate("2024-06-01")
	require.NoError(t, err)
	edit := AchievementInputFrom(models.Achievement{ID: uuid.New(), Title: "t", Description: "d", Type: models.AchievementAward, Date: date})
	_, err = New(edit, w, Callbacks{}, zerolog.Nop()).Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"insertAchievement", "updateAchievement"}, w.Calls())
}

func TestEmptyOptionalFieldsBecomeNull(t *testing.T) {
	w := &recordingWriter{}
	in := validProject()
	in.GithubLink = ""
	in.DemoLink = "   "
	in.ImageURL = "https://example.com/shot.png"

	_, err := New(in, w, Callbacks{}, zerolog.Nop()).Submit(context.Background())
	require.NoError(t, err)
	assert.Nil(t, w.project.GithubLink)
	assert.Nil(t, w.project.DemoLink)
	require.NotNil(t, w.project.ImageURL)
	assert.Equal(t, "https://example.com/shot.png", *w.project.ImageURL)
}

func TestValidationFailureIssuesNoCall(t *testing.T) {
	tests := []struct {
		name  string
		input Input
		field string
	}{
		{"missing title", ProjectInput{Description: "d", Category: models.CategoryOther}, "title"},
		{"blank description", ProjectInput{Title: "t", Description: "  ", Category: models.CategoryOther}, "description"},
		{"bad category", ProjectInput{Title: "t", Description: "d", Category: "Gaming"}, "category"},
		{"missing date", AchievementInput{Title: "t", Description: "d", Type: models.AchievementAward}, "date"},
		{"bad date", AchievementInput{Title: "t", Description: "d", Type: models.AchievementAward, Date: "yesterday"}, "date"},
		{"bad type", AchievementInput{Title: "t", Description: "d", Type: "trophy", Date: "2024-01-01"}, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &recordingWriter{}
			e := New(tt.input, w, Callbacks{}, zerolog.Nop())
			_, err := e.Submit(context.Background())
			require.Error(t, err)

			var apiErr *errs.ApiErr
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.field, apiErr.Field)
			assert.Empty(t, w.Calls())
			assert.False(t, e.Closed())
		})
	}
}

func TestFailureKeepsEditorOpen(t *testing.T) {
	w := &recordingWriter{err: errors.New("permission denied for table projects")}
	callbacks := 0
	e := New(validProject(), w, Callbacks{
		OnSuccess: func(context.Context, models.Kind) error { callbacks++; return nil },
		OnClose:   func() { callbacks++ },
	}, zerolog.Nop())

	_, err := e.Submit(context.Background())
	require.Error(t, err)
	assert.False(t, e.Closed())
	assert.Zero(t, callbacks)
	assert.Contains(t, e.State().LastError, "permission denied")

	// retry on the same editor
	w.err = nil
	_, err = e.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, callbacks)
	assert.Len(t, w.Calls(), 2)
}

func TestRefreshFailureStillCloses(t *testing.T) {
	w := &recordingWriter{}
	e := New(validProject(), w, Callbacks{
		OnSuccess: func(context.Context, models.Kind) error { return errors.New("list failed") },
	}, zerolog.Nop())

	_, err := e.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, e.Closed())
}

func TestConcurrentSubmitRejected(t *testing.T) {
	w := &recordingWriter{block: make(chan struct{}), started: make(chan struct{})}
	e := New(validProject(), w, Callbacks{}, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := e.Submit(context.Background())
		done <- err
	}()
	<-w.started

	assert.True(t, e.State().Submitting)
	_, err := e.Submit(context.Background())
	assert.True(t, errs.IsSubmitInFlight(err))

	close(w.block)
	require.NoError(t, <-done)
	assert.Len(t, w.Calls(), 1)
}

func TestSubmitAfterCloseRejected(t *testing.T) {
	w := &recordingWriter{}
	e := New(validProject(), w, Callbacks{}, zerolog.Nop())
	e.Close()

	_, err := e.Submit(context.Background())
	assert.Error(t, err)
	assert.Empty(t, w.Calls())
}

func TestSetInputKeepsRecord(t *testing.T) {
	id := uuid.New()
	in := validProject()
	in.ID = &id
	e := New(in, &recordingWriter{}, Callbacks{}, zerolog.Nop())

	other := uuid.New()
	changed := validProject()
	changed.ID = &other
	assert.Error(t, e.SetInput(changed))
	assert.Error(t, e.SetInput(NewAchievementInput()))

	changed.ID = &id
	changed.Title = "Updated"
	require.NoError(t, e.SetInput(changed))
	assert.Equal(t, "Updated", e.Input().(ProjectInput).Title)
}

func TestInputFromRecord(t *testing.T) {
	link := "https://github.com/x"
	p := models.Project{ID: uuid.New(), TechStack: []string{"Go", "SQL"}, GithubLink: &link}
	in, ok := InputFrom(p).(ProjectInput)
	require.True(t, ok)
	assert.Equal(t, "Go, SQL", in.TechStack)
	assert.Equal(t, link, in.GithubLink)
	assert.Equal(t, "", in.DemoLink)
	assert.Equal(t, ModeEdit, ModeOf(in))

	assert.Equal(t, ModeCreate, ModeOf(NewProjectInput()))
	nilID := uuid.Nil
	assert.Equal(t, ModeCreate, ModeOf(ProjectInput{ID: &nilID}))
}

func TestSessions(t *testing.T) {
	w := &recordingWriter{}
	refreshed := 0
	sessions := NewSessions(w, Callbacks{
		OnSuccess: func(context.Context, models.Kind) error { refreshed++; return nil },
	}, zerolog.Nop())

	e := sessions.Open(validProject())
	got, err := sessions.Get(e.ID())
	require.NoError(t, err)
	assert.Same(t, e, got)

	_, err = e.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)
	assert.Zero(t, sessions.Len())

	_, err = sessions.Get(e.ID())
	assert.True(t, errs.IsNotFound(err))

	cancelled := sessions.Open(NewAchievementInput())
	require.NoError(t, sessions.Close(cancelled.ID()))
	assert.True(t, cancelled.Closed())
	assert.Zero(t, sessions.Len())
	assert.True(t, errs.IsNotFound(sessions.Close(uuid.New())))
}

func TestSessionsCloseIdleEditors(t *testing.T) {
	w := &recordingWriter{}
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(w, Callbacks{}, zerolog.Nop(), WithIdleTimeout(time.Minute))
	sessions.now = func() time.Time { return now }

	abandoned := sessions.Open(validProject())
	now = now.Add(45 * time.Second)
	active := sessions.Open(validProject())
	now = now.Add(45 * time.Second)

	got, err := sessions.Get(active.ID())
	require.NoError(t, err)
	assert.Same(t, active, got)
	assert.True(t, abandoned.Closed())
	assert.False(t, active.Closed())
	assert.Equal(t, 1, sessions.Len())

	_, err = sessions.Get(abandoned.ID())
	assert.True(t, errs.IsNotFound(err))
	assert.Empty(t, w.Calls())
}

func TestSessionsKeepSubmittingEditor(t *testing.T) {
	w := &recordingWriter{block: make(chan struct{}), started: make(chan struct{})}
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(w, Callbacks{}, zerolog.Nop(), WithIdleTimeout(time.Minute))
	sessions.now = func() time.Time { return now }

	e := sessions.Open(validProject())
	done := make(chan error, 1)
	go func() {
		_, err := e.Submit(context.Background())
		done <- err
	}()
	<-w.started

	now = now.Add(5 * time.Minute)
	sessions.Open(validProject())
	assert.False(t, e.Closed())

	close(w.block)
	require.NoError(t, <-done)
	assert.True(t, e.Closed())
	assert.Equal(t, []string{"insertProject"}, w.Calls())
}
