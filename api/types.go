package api

import (
	"time"

	"github.com/jevonc/portfolio-backend/auth"
	"github.com/jevonc/portfolio-backend/editor"
	"github.com/jevonc/portfolio-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	publicHandler  publicHandler
	contactHandler contactHandler
	resumeHandler  resumeHandler
	sessionHandler sessionHandler
	recordHandler  recordHandler
	editorHandler  editorHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

// ListResponse is one record collection as currently known to the server.
type ListResponse struct {
	Kind      models.Kind     `json:"kind"`
	Records   []models.Record `json:"records"`
	Total     int             `json:"total"`
	FetchedAt *time.Time      `json:"fetched_at,omitempty"`
	// Stale is set when the latest refresh failed and the records are from an earlier fetch.
	Stale bool `json:"stale"`
}

// MutationResponse is returned after a create, update or delete, with the refreshed list.
type MutationResponse struct {
	Record models.Record `json:"record,omitempty"`
	List   ListResponse  `json:"list"`
}

// DashboardResponse is everything the dashboard renders on load.
type DashboardResponse struct {
	User         *auth.User   `json:"user"`
	Projects     ListResponse `json:"projects"`
	Achievements ListResponse `json:"achievements"`
}

type EditorResponse struct {
	Editor editor.State  `json:"editor"`
	Record models.Record `json:"record,omitempty"`
}

type openEditorRequest struct {
	Kind string  `json:"kind"`
	ID   *string `json:"id,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type contactResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
	Database  string    `json:"database"`
}
