package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/scribeworks/scribe/internal/store"
)

// Launcher starts a bot container for a job.
type Launcher interface {
	Launch(ctx context.Context, jobID uuid.UUID, meetingURL string) error
}

// JobStore is the slice of the persistence layer the API needs.
type JobStore interface {
	CreateMeetingJob(ctx context.Context, meetingURL string) (store.MeetingJob, error)
	GetMeetingJob(ctx context.Context, id uuid.UUID) (store.MeetingJob, error)
	UpdateMeetingJobStatus(ctx context.Context, id uuid.UUID, status string, meetingID *uuid.UUID) error
	GetLatestSummary(ctx context.Context, meetingID uuid.UUID) (store.MeetingSummary, error)
}

// Completer handles a bot's completion report.
type Completer interface {
	Complete(ctx context.Context, jobID, meetingID uuid.UUID) error
}

type Server struct {
	router    *chi.Mux
	port      int
	store     JobStore
	launcher  Launcher
	completer Completer
	logger    *slog.Logger
}

func NewServer(port int, st JobStore, launcher Launcher, completer Completer, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		port:      port,
		store:     st,
		launcher:  launcher,
		completer: completer,
		logger:    logger,
	}

	router.Get("/health", s.health)
	router.Post("/api/v1/meetings", s.createMeeting)
	router.Get("/api/v1/jobs/{jobID}", s.getJob)
	router.Get("/api/v1/meetings/{meetingID}/summary", s.getSummary)
	router.Post("/bot-done", s.botDone)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createMeetingRequest struct {
	MeetingURL string `json:"meeting_url"`
}

// createMeeting records a job and launches a bot for the meeting.
func (s *Server) createMeeting(w http.ResponseWriter, r *http.Request) {
	var req createMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !strings.HasPrefix(req.MeetingURL, "https://meet.google.com") {
		writeError(w, http.StatusBadRequest, "meeting_url must be a Google Meet link")
		return
	}

	job, err := s.store.CreateMeetingJob(r.Context(), req.MeetingURL)
	if err != nil {
		s.logger.Error("failed to create job", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	if err := s.launcher.Launch(r.Context(), job.ID, job.MeetingURL); err != nil {
		s.logger.Error("failed to launch bot", "job_id", job.ID, "error", err)
		if err := s.store.UpdateMeetingJobStatus(r.Context(), job.ID, store.JobFailed, nil); err != nil {
			s.logger.Error("failed to mark job failed", "job_id", job.ID, "error", err)
		}
		writeError(w, http.StatusInternalServerError, "failed to launch bot")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID.String(),
		"status": job.Status,
	})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	job, err := s.store.GetMeetingJob(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	resp := map[string]any{
		"job_id":      job.ID.String(),
		"meeting_url": job.MeetingURL,
		"status":      job.Status,
		"created_at":  job.CreatedAt,
	}
	if job.MeetingID != nil {
		resp["meeting_id"] = job.MeetingID.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	meetingID, err := uuid.Parse(chi.URLParam(r, "meetingID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid meeting id")
		return
	}

	sum, err := s.store.GetLatestSummary(r.Context(), meetingID)
	if err != nil {
		writeError(w, http.StatusNotFound, "summary not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"meeting_id":   sum.MeetingID.String(),
		"generated_at": sum.GeneratedAt,
		"summary":      sum.SummaryText,
		"model":        sum.Model,
	})
}

type botDoneRequest struct {
	JobID     string `json:"job_id"`
	MeetingID string `json:"meeting_id"`
}

// botDone is the HTTP fallback for bots that cannot reach NATS: it reports a
// finished meeting directly to the backend.
func (s *Server) botDone(w http.ResponseWriter, r *http.Request) {
	var req botDoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job_id")
		return
	}
	meetingID, err := uuid.Parse(req.MeetingID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid meeting_id")
		return
	}

	if err := s.completer.Complete(r.Context(), jobID, meetingID); err != nil {
		s.logger.Error("completion processing failed", "job_id", jobID, "error", err)
		writeError(w, http.StatusInternalServerError, "completion processing failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
