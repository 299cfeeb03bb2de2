package server

import "net/http"

type installBody struct {
	Name *string `json:"name"`
}

func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Skills.List(r.Context(), r.URL.Query().Get("agentId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleInstallSkill(w http.ResponseWriter, r *http.Request) {
	var body installBody
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.Name == nil || *body.Name == "" {
		s.writeError(w, r, missingField("name"))
		return
	}
	m, err := s.svc.Skills.Install(r.Context(), r.PathValue("id"), *body.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleRemoveSkill(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Skills.Remove(r.Context(), r.PathValue("id"), r.PathValue("name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
