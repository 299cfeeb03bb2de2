package server

import "net/http"

type promptBody struct {
	Prompt *string `json:"prompt"`
}

type contentBody struct {
	Content *string `json:"content"`
}

type savedResponse struct {
	Name  string `json:"name"`
	Saved bool   `json:"saved"`
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Agents.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Agents.GetPrompt(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	var body promptBody
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.Prompt == nil {
		s.writeError(w, r, missingField("prompt"))
		return
	}
	p, err := s.svc.Agents.UpdatePrompt(r.Context(), r.PathValue("id"), *body.Prompt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// workspaceDir resolves the directory a file route operates on: the agent's
// workspace for /api/agents/{id}/..., the default workspace otherwise.
func (s *Server) workspaceDir(r *http.Request) (string, error) {
	if id := r.PathValue("id"); id != "" {
		return s.svc.Agents.Workspace(r.Context(), id)
	}
	return s.svc.Agents.DefaultWorkspace(r.Context())
}

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	dir, err := s.workspaceDir(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Workspace.List(dir))
}

func (s *Server) readFile(w http.ResponseWriter, r *http.Request) {
	dir, err := s.workspaceDir(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := s.svc.Workspace.Read(dir, r.PathValue("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) saveFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var body contentBody
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.Content == nil {
		s.writeError(w, r, missingField("content"))
		return
	}
	dir, err := s.workspaceDir(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Workspace.Save(r.Context(), dir, name, *body.Content); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, savedResponse{Name: name, Saved: true})
}
