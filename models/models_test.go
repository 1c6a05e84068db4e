package models

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, Category("Games").Valid())
	assert.False(t, Category("").Valid())
}

func TestAchievementTypeValid(t *testing.T) {
	assert.True(t, AchievementCertification.Valid())
	assert.False(t, AchievementType("Award").Valid())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("project")
	require.NoError(t, err)
	assert.Equal(t, KindProject, k)

	k, err = ParseKind("achievements")
	require.NoError(t, err)
	assert.Equal(t, KindAchievement, k)

	_, err = ParseKind("posts")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	d, err := ParseDate("2024-03-09")
	require.NoError(t, err)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-09"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-09T18:30:00Z"`), &back))
	assert.Equal(t, "2024-03-09", back.String())

	assert.Error(t, json.Unmarshal([]byte(`"09/03/2024"`), &back))
}

func TestNewDateTruncates(t *testing.T) {
	d := NewDate(time.Date(2024, 1, 2, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), d.Time())
}

func TestRecordUnion(t *testing.T) {
	id := uuid.New()
	records := []Record{Project{ID: id}, Achievement{}}

	assert.Equal(t, KindProject, records[0].Kind())
	assert.Equal(t, id, records[0].RecordID())
	assert.Equal(t, KindAchievement, records[1].Kind())
	assert.Equal(t, uuid.Nil, records[1].RecordID())
}

func TestProjectJSONShape(t *testing.T) {
	p := Project{Title: "Site", Category: CategoryOther, TechStack: []string{"Go"}}
	b, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Nil(t, raw["github_link"])
	assert.Contains(t, raw, "github_link")
	assert.Equal(t, []any{"Go"}, raw["tech_stack"])
	assert.Equal(t, float64(0), raw["display_order"])
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "models.db")+"?_pragma=busy_timeout(5000)&_time_format=sqlite")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db
}

func TestFindColumnMismatches(t *testing.T) {
	got := findColumnMismatches([]string{"id", "title", "legacy"}, []string{"id", "title"})
	assert.Equal(t, []string{"legacy"}, got)
}

func TestGenerateColumnMismatchReport(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(All()...))
	assert.Equal(t, 0, GenerateColumnMismatchReport(db))

	require.NoError(t, db.Exec("ALTER TABLE projects ADD COLUMN legacy_slug text").Error)
	assert.Equal(t, 1, GenerateColumnMismatchReport(db))
}
