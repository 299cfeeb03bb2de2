package server

import "net/http"

// registerRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/events", s.handleEvents)

	mux.HandleFunc("GET /api/agents", s.handleListAgents)
	mux.HandleFunc("GET /api/agents/{id}/prompt", s.handleGetPrompt)
	mux.HandleFunc("PUT /api/agents/{id}/prompt", s.handleUpdatePrompt)
	mux.HandleFunc("GET /api/agents/{id}/files", s.listFiles)
	mux.HandleFunc("GET /api/agents/{id}/files/{name}", s.readFile)
	mux.HandleFunc("PUT /api/agents/{id}/files/{name}", s.saveFile)
	mux.HandleFunc("POST /api/agents/{id}/skills", s.handleInstallSkill)
	mux.HandleFunc("DELETE /api/agents/{id}/skills/{name}", s.handleRemoveSkill)

	mux.HandleFunc("GET /api/workspace/files", s.listFiles)
	mux.HandleFunc("GET /api/workspace/file/{name}", s.readFile)
	mux.HandleFunc("PUT /api/workspace/file/{name}", s.saveFile)

	mux.HandleFunc("GET /api/skills", s.handleListSkills)

	mux.HandleFunc("GET /api/cron", s.handleListJobs)
	mux.HandleFunc("POST /api/cron", s.handleCreateJob)
	mux.HandleFunc("PUT /api/cron/{id}", s.handleUpdateJob)
	mux.HandleFunc("DELETE /api/cron/{id}", s.handleRemoveJob)
	mux.HandleFunc("POST /api/cron/{id}/run", s.handleRunJob)
	mux.HandleFunc("GET /api/cron/{id}/preview", s.handlePreviewJob)

	mux.HandleFunc("GET /api/channels", s.handleChannels)
	mux.HandleFunc("GET /api/config", s.handleConfig)
	mux.HandleFunc("GET /api/gateway/status", s.handleGatewayStatus)
	mux.HandleFunc("POST /api/gateway/restart", s.handleGatewayRestart)
	mux.HandleFunc("GET /api/journal", s.handleJournal)

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}
