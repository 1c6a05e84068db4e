package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AchievementType string

const (
	AchievementMilestone     AchievementType = "milestone"
	AchievementAward         AchievementType = "award"
	AchievementCertification AchievementType = "certification"
)

var AchievementTypes = []AchievementType{AchievementMilestone, AchievementAward, AchievementCertification}

func (t AchievementType) Valid() bool {
	for _, known := range AchievementTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Achievement represents a milestone, award or certification shown on the site
type Achievement struct {
	ID          uuid.UUID       `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title       string          `json:"title" db:"title" gorm:"type:text;not null"`
	Description string          `json:"description" db:"description" gorm:"type:text;not null"`
	Type        AchievementType `json:"type" db:"type" gorm:"type:text;not null"`
	Date        Date            `json:"date" db:"date" gorm:"not null;index"`
	ImageURL    *string         `json:"image_url" db:"image_url" gorm:"type:text"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at" gorm:"not null;autoCreateTime"`
}

func (Achievement) TableName() string { return string(KindAchievement) }

func (Achievement) Kind() Kind { return KindAchievement }

func (a Achievement) RecordID() uuid.UUID { return a.ID }

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
