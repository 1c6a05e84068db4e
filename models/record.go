package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind names a record collection. The value doubles as the table name.
type Kind string

const (
	KindProject     Kind = "projects"
	KindAchievement Kind = "achievements"
)

var Kinds = []Kind{KindProject, KindAchievement}

// ParseKind accepts the plural collection name or its singular form.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "projects", "project":
		return KindProject, nil
	case "achievements", "achievement":
		return KindAchievement, nil
	}
	return "", fmt.Errorf("unknown record kind %q", s)
}

// Singular is used in user-facing messages ("delete this project?").
func (k Kind) Singular() string {
	switch k {
	case KindProject:
		return "project"
	case KindAchievement:
		return "achievement"
	}
	return string(k)
}

// Record is implemented by exactly Project and Achievement.
type Record interface {
	Kind() Kind
	RecordID() uuid.UUID
	isRecord()
}

func (Project) isRecord()     {}
func (Achievement) isRecord() {}

var (
	_ Record = Project{}
	_ Record = Achievement{}
)
