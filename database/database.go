package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/jevonc/portfolio-backend/config"
	"github.com/jevonc/portfolio-backend/errs"
	"github.com/jevonc/portfolio-backend/models"

	_ "modernc.org/sqlite" // pure Go SQLite driver for local runs and tests
)

// Database is the single handle to the record collections. It is built once at startup
// and shared by reference with every component that needs it.
type Database struct {
	db              *gorm.DB
	projectRepo     *ProjectRepo
	achievementRepo *AchievementRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:              db,
		projectRepo:     NewProjectRepo(db),
		achievementRepo: NewAchievementRepo(db),
	}
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) AchievementRepo() *AchievementRepo {
	return d.achievementRepo
}

// GormDB exposes the connection for tooling (migrations, model generation).
func (d Database) GormDB() *gorm.DB {
	return d.db
}

// List returns every record of kind in its service-defined order.
func (d Database) List(ctx context.Context, kind models.Kind) ([]models.Record, error) {
	switch kind {
	case models.KindProject:
		projects, err := d.projectRepo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		records := make([]models.Record, 0, len(projects))
		for _, p := range projects {
			records = append(records, p)
		}
		return records, nil
	case models.KindAchievement:
		achievements, err := d.achievementRepo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		records := make([]models.Record, 0, len(achievements))
		for _, a := range achievements {
			records = append(records, a)
		}
		return records, nil
	}
	return nil, errs.NewBadRequestError(fmt.Sprintf("unknown record kind %q", kind))
}

// Find returns the record of kind with the given id.
func (d Database) Find(ctx context.Context, kind models.Kind, id uuid.UUID) (models.Record, error) {
	var (
		record models.Record
		err    error
	)
	switch kind {
	case models.KindProject:
		var p *models.Project
		if p, err = d.projectRepo.FindByID(ctx, id); err == nil {
			record = *p
		}
	case models.KindAchievement:
		var a *models.Achievement
		if a, err = d.achievementRepo.FindByID(ctx, id); err == nil {
			record = *a
		}
	default:
		return nil, errs.NewBadRequestError(fmt.Sprintf("unknown record kind %q", kind))
	}
	if err != nil {
		return nil, errs.NewDatabaseError("find", kind.Singular(), err)
	}
	return record, nil
}

// Delete removes the record of kind with the given id.
func (d Database) Delete(ctx context.Context, kind models.Kind, id uuid.UUID) error {
	switch kind {
	case models.KindProject:
		return d.projectRepo.Delete(ctx, id)
	case models.KindAchievement:
		return d.achievementRepo.Delete(ctx, id)
	}
	return errs.NewBadRequestError(fmt.Sprintf("unknown record kind %q", kind))
}

func (d Database) InsertProject(ctx context.Context, p *models.Project) error {
	return d.projectRepo.Add(ctx, p)
}

func (d Database) UpdateProject(ctx context.Context, p *models.Project) error {
	return d.projectRepo.Update(ctx, p)
}

func (d Database) InsertAchievement(ctx context.Context, a *models.Achievement) error {
	return d.achievementRepo.Add(ctx, a)
}

func (d Database) UpdateAchievement(ctx context.Context, a *models.Achievement) error {
	return d.achievementRepo.Update(ctx, a)
}

// Ping checks that the connection is usable.
func (d Database) Ping(ctx context.Context) error {
	var result int
	return d.db.WithContext(ctx).Raw("SELECT 1").Scan(&result).Error
}

// Close releases the underlying connection pool.
func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Open connects to the database selected by settings.Type.
func Open(settings config.DatabaseSettings) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	gormConfig := &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
	}

	var (
		db  *gorm.DB
		err error
	)

	switch settings.Type {
	case "supa":
		connStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			settings.Host, settings.User, settings.Password, settings.Name, settings.Port)
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  connStr,
			PreferSimpleProtocol: true,
		}), gormConfig)
	case "postgres":
		if settings.URL == "" {
			return nil, errs.NewConfigMissingError("DATABASE_URL")
		}
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  settings.URL,
			PreferSimpleProtocol: true,
		}), gormConfig)
	case "sqlite":
		db, err = OpenSQLite(settings.SQLitePath, gormConfig)
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", settings.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if settings.ReplicaDSN != "" && settings.Type != "sqlite" {
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.New(postgres.Config{
				DSN:                  settings.ReplicaDSN,
				PreferSimpleProtocol: true,
			})},
			Policy: dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("error registering read replica: %w", err)
		}
	}

	return db, nil
}

// OpenSQLite opens a SQLite database through the modernc driver. SQLite allows a single writer,
// so the pool is capped at one connection.
func OpenSQLite(path string, gormConfig *gorm.Config) (*gorm.DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if gormConfig == nil {
		gormConfig = &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	}
	db, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, gormConfig)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}
