package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jevonc/portfolio-backend/errs"
	"github.com/jevonc/portfolio-backend/models"
)

type AchievementRepo struct {
	db *gorm.DB
}

func NewAchievementRepo(db *gorm.DB) *AchievementRepo {
	return &AchievementRepo{db}
}

// FindAll returns all achievements, most recent date first
func (r *AchievementRepo) FindAll(ctx context.Context) ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := r.db.WithContext(ctx).Order("date DESC").Order("created_at DESC").Find(&achievements).Error
	return achievements, err
}

func (r *AchievementRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Achievement, error) {
	var achievement models.Achievement
	err := r.db.WithContext(ctx).First(&achievement, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (r *AchievementRepo) Add(ctx context.Context, achievement *models.Achievement) error {
	achievement.ID = uuid.Nil
	achievement.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(achievement).Error
}

func (r *AchievementRepo) Update(ctx context.Context, achievement *models.Achievement) error {
	result := r.db.WithContext(ctx).
		Model(&models.Achievement{}).
		Where("id = ?", achievement.ID).
		Select("title", "description", "type", "date", "image_url").
		Updates(achievement)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFound("achievement")
	}
	return nil
}

func (r *AchievementRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Achievement{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFound("achievement")
	}
	return nil
}
