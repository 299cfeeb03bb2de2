package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/duanecilliers/openclaw-admin/internal/document"
	"github.com/duanecilliers/openclaw-admin/internal/domain"
)

// ConfigResponse is the masked configuration document.
type ConfigResponse struct {
	Config    *document.Document `json:"config"`
	UpdatedAt string             `json:"updatedAt"`
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	o, err := s.svc.Agents.ChannelOverview(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Config.Read(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	mtime, err := s.svc.Config.Stat()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ConfigResponse{
		Config:    document.Mask(doc),
		UpdatedAt: mtime.UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleGatewayStatus(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Config.Read(r.Context())
	if err != nil {
		s.log.Warn().Err(err).Msg("gateway status without configuration")
		writeJSON(w, http.StatusInternalServerError, s.svc.Gateway.ErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Gateway.Status(r.Context(), doc))
}

func (s *Server) handleGatewayRestart(w http.ResponseWriter, r *http.Request) {
	res := s.svc.Gateway.Restart(r.Context())
	if res.Success {
		s.log.Info().Msg("gateway restart triggered")
	} else {
		s.log.Warn().Str("message", res.Message).Bool("timedOut", res.TimedOut).Msg("gateway restart failed")
	}
	writeResult(w, res)
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "journal disabled"})
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, &domain.ValidationError{Field: "limit", Message: "must be an integer"})
			return
		}
		limit = n
	}
	entries, err := s.journal.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
