package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jevonc/portfolio-backend/errs"
	"github.com/jevonc/portfolio-backend/models"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// FindAll returns all projects, newest first
func (r *ProjectRepo) FindAll(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

// FindByID returns a project by its ID
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Add inserts a new project; the id and created_at are assigned here
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	project.ID = uuid.Nil
	project.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(project).Error
}

// Update overwrites the editable columns of an existing project by id.
// id, created_at and display_order are never touched.
func (r *ProjectRepo) Update(ctx context.Context, project *models.Project) error {
	result := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", project.ID).
		Select("title", "description", "category", "tech_stack", "github_link", "demo_link", "image_url").
		Updates(project)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFound("project")
	}
	return nil
}

// Delete removes a project from the database by id
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFound("project")
	}
	return nil
}
