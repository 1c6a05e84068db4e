package editor

import (
	"strings"

	"github.com/google/uuid"

	"github.com/jevonc/portfolio-backend/models"
)

// Mode is derived solely from whether the input carries an id.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Input is the form state of one record. Implemented by ProjectInput and AchievementInput.
type Input interface {
	Kind() models.Kind
	RecordID() *uuid.UUID
}

// ProjectInput holds the project form fields as typed by the user.
type ProjectInput struct {
	ID          *uuid.UUID      `json:"id,omitempty"`
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Category    models.Category `json:"category" validate:"required,category"`
	TechStack   string          `json:"tech_stack"`
	GithubLink  string          `json:"github_link"`
	DemoLink    string          `json:"demo_link"`
	ImageURL    string          `json:"image_url"`
}

func (ProjectInput) Kind() models.Kind { return models.KindProject }

func (in ProjectInput) RecordID() *uuid.UUID { return in.ID }

// AchievementInput holds the achievement form fields. Date is YYYY-MM-DD.
type AchievementInput struct {
	ID          *uuid.UUID             `json:"id,omitempty"`
	Title       string                 `json:"title" validate:"required"`
	Description string                 `json:"description" validate:"required"`
	Type        models.AchievementType `json:"type" validate:"required,oneof=milestone award certification"`
	Date        string                 `json:"date" validate:"required,calendar_date"`
	ImageURL    string                 `json:"image_url"`
}

func (AchievementInput) Kind() models.Kind { return models.KindAchievement }

func (in AchievementInput) RecordID() *uuid.UUID { return in.ID }

// NewProjectInput returns an empty create-mode form.
func NewProjectInput() ProjectInput {
	return ProjectInput{Category: models.CategoryWebDevelopment}
}

// NewAchievementInput returns an empty create-mode form dated today.
func NewAchievementInput() AchievementInput {
	return AchievementInput{Type: models.AchievementMilestone, Date: models.Today().String()}
}

// ProjectInputFrom pre-populates an edit-mode form from an existing project.
func ProjectInputFrom(p models.Project) ProjectInput {
	id := p.ID
	return ProjectInput{
		ID:          &id,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		TechStack:   strings.Join(p.TechStack, ", "),
		GithubLink:  deref(p.GithubLink),
		DemoLink:    deref(p.DemoLink),
		ImageURL:    deref(p.ImageURL),
	}
}

// AchievementInputFrom pre-populates an edit-mode form from an existing achievement.
func AchievementInputFrom(a models.Achievement) AchievementInput {
	id := a.ID
	return AchievementInput{
		ID:          &id,
		Title:       a.Title,
		Description: a.Description,
		Type:        a.Type,
		Date:        a.Date.String(),
		ImageURL:    deref(a.ImageURL),
	}
}

// InputFrom pre-populates a form from any record.
func InputFrom(r models.Record) Input {
	switch rec := r.(type) {
	case models.Project:
		return ProjectInputFrom(rec)
	case models.Achievement:
		return AchievementInputFrom(rec)
	}
	return nil
}

// ModeOf reports whether in creates or edits a record.
func ModeOf(in Input) Mode {
	if id := in.RecordID(); id != nil && *id != uuid.Nil {
		return ModeEdit
	}
	return ModeCreate
}

// ParseTechStack splits on commas, trims each token and drops the empty ones.
func ParseTechStack(raw string) []string {
	stack := []string{}
	for _, tok := range strings.Split(raw, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			stack = append(stack, tok)
		}
	}
	return stack
}

// optional turns a blank form field into a null column.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// toProject builds the normalized payload. in must already be valid.
func (in ProjectInput) toProject() *models.Project {
	p := &models.Project{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		TechStack:   ParseTechStack(in.TechStack),
		GithubLink:  optional(in.GithubLink),
		DemoLink:    optional(in.DemoLink),
		ImageURL:    optional(in.ImageURL),
	}
	if in.ID != nil {
		p.ID = *in.ID
	}
	return p
}

func (in AchievementInput) toAchievement() (*models.Achievement, error) {
	date, err := models.ParseDate(in.Date)
	if err != nil {
		return nil, err
	}
	a := &models.Achievement{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Type:        in.Type,
		Date:        date,
		ImageURL:    optional(in.ImageURL),
	}
	if in.ID != nil {
		a.ID = *in.ID
	}
	return a, nil
}
