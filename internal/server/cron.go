package server

import (
	"net/http"
	"strconv"

	"github.com/duanecilliers/openclaw-admin/internal/cron"
	"github.com/duanecilliers/openclaw-admin/internal/domain"
)

const (
	defaultPreviewRuns = 5
	maxPreviewRuns     = 50
)

// PreviewResponse describes when a job fires next.
type PreviewResponse struct {
	Description string  `json:"description"`
	NextRunsMs  []int64 `json:"nextRunsMs"`
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.svc.Jobs.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var draft domain.CronJob
	if err := decodeBody(w, r, &draft); err != nil {
		s.writeError(w, r, err)
		return
	}
	job, err := s.svc.Jobs.Create(r.Context(), draft)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	var patch domain.CronJob
	if err := decodeBody(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	job, err := s.svc.Jobs.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleRemoveJob(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Jobs.Remove(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Runner.Run(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, res)
}

func (s *Server) handlePreviewJob(w http.ResponseWriter, r *http.Request) {
	n := defaultPreviewRuns
	if v := r.URL.Query().Get("count"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			s.writeError(w, r, &domain.ValidationError{Field: "count", Message: "must be a positive integer"})
			return
		}
		n = min(parsed, maxPreviewRuns)
	}

	job, err := s.svc.Jobs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sched, err := job.Schedule()
	if err != nil {
		s.writeError(w, r, &domain.ValidationError{Field: "schedule", Message: err.Error()})
		return
	}
	runs, err := cron.NextRuns(sched, s.now(), n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := PreviewResponse{Description: cron.Describe(sched), NextRunsMs: make([]int64, 0, len(runs))}
	for _, t := range runs {
		resp.NextRunsMs = append(resp.NextRunsMs, t.UnixMilli())
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeResult reports a trigger outcome; a failed trigger is a 500 with the
// result as body.
func writeResult(w http.ResponseWriter, res domain.RunResult) {
	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, res)
}
