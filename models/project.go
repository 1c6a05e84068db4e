package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Category is the fixed set of project categories offered by the dashboard.
type Category string

const (
	CategoryWebDevelopment Category = "Web Development"
	CategoryDataAnalysis   Category = "Data Analysis"
	CategoryAutomation     Category = "Automation"
	CategoryOther          Category = "Other"
)

// Categories lists every valid Category in display order.
var Categories = []Category{CategoryWebDevelopment, CategoryDataAnalysis, CategoryAutomation, CategoryOther}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Project represents a portfolio project
type Project struct {
	ID           uuid.UUID                   `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title        string                      `json:"title" db:"title" gorm:"type:text;not null"`
	Description  string                      `json:"description" db:"description" gorm:"type:text;not null"`
	Category     Category                    `json:"category" db:"category" gorm:"type:text;not null"`
	TechStack    datatypes.JSONSlice[string] `json:"tech_stack" db:"tech_stack"`
	GithubLink   *string                     `json:"github_link" db:"github_link" gorm:"type:text"`
	DemoLink     *string                     `json:"demo_link" db:"demo_link" gorm:"type:text"`
	ImageURL     *string                     `json:"image_url" db:"image_url" gorm:"type:text"`
	DisplayOrder int                         `json:"display_order" db:"display_order" gorm:"not null;default:0"`
	CreatedAt    time.Time                   `json:"created_at" db:"created_at" gorm:"not null;autoCreateTime;index"`
}

func (Project) TableName() string { return string(KindProject) }

func (Project) Kind() Kind { return KindProject }

func (p Project) RecordID() uuid.UUID { return p.ID }

// BeforeCreate assigns the id when the dialect has no server-side default.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.TechStack == nil {
		p.TechStack = datatypes.JSONSlice[string]{}
	}
	return nil
}
