package api

import (
	"time"

	"github.com/jevonc/portfolio-backend/models"
	"github.com/jevonc/portfolio-backend/store"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, secureCookies bool, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		publicHandler:  newPublicHandler(deps.Store, deps.Database, startupTime),
		contactHandler: newContactHandler(deps.Relay),
		resumeHandler:  newResumeHandler(deps.Resume),
		sessionHandler: newSessionHandler(deps.Auth, deps.Store, secureCookies),
		recordHandler:  newRecordHandler(deps.Store, deps.Database),
		editorHandler:  newEditorHandler(deps.Sessions, deps.Database),
	}
}

func listResponse(snap store.Snapshot) ListResponse {
	resp := ListResponse{
		Kind:    snap.Kind,
		Records: snap.Records,
		Total:   len(snap.Records),
		Stale:   snap.Stale,
	}
	if resp.Records == nil {
		resp.Records = []models.Record{}
	}
	if !snap.FetchedAt.IsZero() {
		fetchedAt := snap.FetchedAt
		resp.FetchedAt = &fetchedAt
	}
	return resp
}
