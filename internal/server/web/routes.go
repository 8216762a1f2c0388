package web

import "net/http"

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/events", s.handleEvents)

	// Configuration
	mux.HandleFunc("GET /api/users/{user}/config", s.handleGetConfig)
	mux.HandleFunc("PUT /api/users/{user}/appearance", s.handleSetAppearance)
	mux.HandleFunc("POST /api/users/{user}/ranges", s.handleAddRange)
	mux.HandleFunc("DELETE /api/users/{user}/ranges/{index}", s.handleRemoveRange)
	mux.HandleFunc("POST /api/users/{user}/stations", s.handleAddStation)
	mux.HandleFunc("DELETE /api/users/{user}/stations/{name}", s.handleRemoveStation)

	// Workshop
	mux.HandleFunc("GET /api/users/{user}/repairs", s.handleListRepairs)
	mux.HandleFunc("POST /api/users/{user}/repairs", s.handleReportRepairs)
	mux.HandleFunc("DELETE /api/users/{user}/repairs", s.handleFixRepairs)

	// Daily ledger
	mux.HandleFunc("GET /api/users/{user}/days/{date}", s.handleGetDay)
	mux.HandleFunc("POST /api/users/{user}/days/{date}/assignments", s.handleCreateAssignment)
	mux.HandleFunc("DELETE /api/users/{user}/days/{date}/assignments/{index}", s.handleDeleteAssignment)
	mux.HandleFunc("POST /api/users/{user}/days/{date}/assignments/{index}/units", s.handleAddUnits)
	mux.HandleFunc("DELETE /api/users/{user}/days/{date}/assignments/{index}/units", s.handleRemoveUnits)
	mux.HandleFunc("PUT /api/users/{user}/days/{date}/assignments/{index}/window", s.handleEditWindow)
	mux.HandleFunc("PUT /api/users/{user}/days/{date}/caption", s.handleSetCaption)
	mux.HandleFunc("POST /api/users/{user}/days/{date}/save", s.handleSaveDay)
	mux.HandleFunc("POST /api/users/{user}/days/{date}/reset", s.handleResetDay)
	mux.HandleFunc("GET /api/users/{user}/days/{date}/report", s.handleReport)

	// History
	mux.HandleFunc("GET /api/users/{user}/history", s.handleHistory)
}
