package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scribeworks/scribe/internal/store"
)

type fakeJobStore struct {
	jobs      map[uuid.UUID]store.MeetingJob
	summaries map[uuid.UUID]store.MeetingSummary
	statuses  []string
	createErr error
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{
		jobs:      make(map[uuid.UUID]store.MeetingJob),
		summaries: make(map[uuid.UUID]store.MeetingSummary),
	}
}

func (f *fakeJobStore) CreateMeetingJob(_ context.Context, meetingURL string) (store.MeetingJob, error) {
	if f.createErr != nil {
		return store.MeetingJob{}, f.createErr
	}
	job := store.MeetingJob{
		ID:         uuid.New(),
		MeetingURL: meetingURL,
		Status:     store.JobPending,
		CreatedAt:  time.Now().UTC(),
	}
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeJobStore) GetMeetingJob(_ context.Context, id uuid.UUID) (store.MeetingJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return store.MeetingJob{}, errors.New("not found")
	}
	return job, nil
}

func (f *fakeJobStore) UpdateMeetingJobStatus(_ context.Context, id uuid.UUID, status string, meetingID *uuid.UUID) error {
	f.statuses = append(f.statuses, status)
	if job, ok := f.jobs[id]; ok {
		job.Status = status
		job.MeetingID = meetingID
		f.jobs[id] = job
	}
	return nil
}

func (f *fakeJobStore) GetLatestSummary(_ context.Context, meetingID uuid.UUID) (store.MeetingSummary, error) {
	sum, ok := f.summaries[meetingID]
	if !ok {
		return store.MeetingSummary{}, errors.New("not found")
	}
	return sum, nil
}

type fakeLauncher struct {
	launched []string
	err      error
}

func (f *fakeLauncher) Launch(_ context.Context, _ uuid.UUID, meetingURL string) error {
	if f.err != nil {
		return f.err
	}
	f.launched = append(f.launched, meetingURL)
	return nil
}

type fakeCompleter struct {
	jobIDs     []uuid.UUID
	meetingIDs []uuid.UUID
	err        error
}

func (f *fakeCompleter) Complete(_ context.Context, jobID, meetingID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.jobIDs = append(f.jobIDs, jobID)
	f.meetingIDs = append(f.meetingIDs, meetingID)
	return nil
}

func newTestServer(st *fakeJobStore, l *fakeLauncher, c *fakeCompleter) *Server {
	return NewServer(8640, st, l, c, slog.Default())
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(newFakeJobStore(), &fakeLauncher{}, &fakeCompleter{})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestCreateMeeting_LaunchesBot(t *testing.T) {
	st := newFakeJobStore()
	launcher := &fakeLauncher{}
	srv := newTestServer(st, launcher, &fakeCompleter{})

	body, _ := json.Marshal(map[string]string{
		"meeting_url": "https://meet.google.com/abc-defg-hij",
	})
	req := httptest.NewRequest("POST", "/api/v1/meetings", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, err := uuid.Parse(resp["job_id"]); err != nil {
		t.Errorf("expected a job id, got %q", resp["job_id"])
	}
	if resp["status"] != store.JobPending {
		t.Errorf("expected pending status, got %q", resp["status"])
	}
	if len(launcher.launched) != 1 || launcher.launched[0] != "https://meet.google.com/abc-defg-hij" {
		t.Errorf("expected bot launch for meeting url, got %v", launcher.launched)
	}
}

func TestCreateMeeting_RejectsNonMeetURL(t *testing.T) {
	launcher := &fakeLauncher{}
	srv := newTestServer(newFakeJobStore(), launcher, &fakeCompleter{})

	body, _ := json.Marshal(map[string]string{
		"meeting_url": "https://zoom.us/j/123456",
	})
	req := httptest.NewRequest("POST", "/api/v1/meetings", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if len(launcher.launched) != 0 {
		t.Errorf("expected no launch, got %v", launcher.launched)
	}
}

func TestCreateMeeting_LaunchFailureMarksJobFailed(t *testing.T) {
	st := newFakeJobStore()
	launcher := &fakeLauncher{err: errors.New("docker not available")}
	srv := newTestServer(st, launcher, &fakeCompleter{})

	body, _ := json.Marshal(map[string]string{
		"meeting_url": "https://meet.google.com/abc-defg-hij",
	})
	req := httptest.NewRequest("POST", "/api/v1/meetings", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if len(st.statuses) != 1 || st.statuses[0] != store.JobFailed {
		t.Errorf("expected job marked failed, got %v", st.statuses)
	}
}

func TestGetJob(t *testing.T) {
	st := newFakeJobStore()
	job, _ := st.CreateMeetingJob(context.Background(), "https://meet.google.com/abc-defg-hij")
	srv := newTestServer(st, &fakeLauncher{}, &fakeCompleter{})

	req := httptest.NewRequest("GET", "/api/v1/jobs/"+job.ID.String(), nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["job_id"] != job.ID.String() {
		t.Errorf("expected job id %s, got %v", job.ID, resp["job_id"])
	}
	if resp["status"] != store.JobPending {
		t.Errorf("expected pending, got %v", resp["status"])
	}
}

func TestGetJob_NotFound(t *testing.T) {
	srv := newTestServer(newFakeJobStore(), &fakeLauncher{}, &fakeCompleter{})

	req := httptest.NewRequest("GET", "/api/v1/jobs/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestGetSummary(t *testing.T) {
	st := newFakeJobStore()
	meetingID := uuid.New()
	st.summaries[meetingID] = store.MeetingSummary{
		MeetingID:   meetingID,
		GeneratedAt: time.Now().UTC(),
		SummaryText: "## Notes",
		Model:       "test-model",
	}
	srv := newTestServer(st, &fakeLauncher{}, &fakeCompleter{})

	req := httptest.NewRequest("GET", "/api/v1/meetings/"+meetingID.String()+"/summary", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["summary"] != "## Notes" {
		t.Errorf("expected summary text, got %v", resp["summary"])
	}
}

func TestGetSummary_NotFound(t *testing.T) {
	srv := newTestServer(newFakeJobStore(), &fakeLauncher{}, &fakeCompleter{})

	req := httptest.NewRequest("GET", "/api/v1/meetings/"+uuid.New().String()+"/summary", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestBotDone_RunsCompletion(t *testing.T) {
	completer := &fakeCompleter{}
	srv := newTestServer(newFakeJobStore(), &fakeLauncher{}, completer)

	jobID := uuid.New()
	meetingID := uuid.New()
	body, _ := json.Marshal(map[string]string{
		"job_id":     jobID.String(),
		"meeting_id": meetingID.String(),
	})
	req := httptest.NewRequest("POST", "/bot-done", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(completer.jobIDs) != 1 || completer.jobIDs[0] != jobID {
		t.Errorf("expected completion for job %s, got %v", jobID, completer.jobIDs)
	}
	if len(completer.meetingIDs) != 1 || completer.meetingIDs[0] != meetingID {
		t.Errorf("expected completion for meeting %s, got %v", meetingID, completer.meetingIDs)
	}
}

func TestBotDone_RejectsMissingFields(t *testing.T) {
	completer := &fakeCompleter{}
	srv := newTestServer(newFakeJobStore(), &fakeLauncher{}, completer)

	body, _ := json.Marshal(map[string]string{"job_id": uuid.New().String()})
	req := httptest.NewRequest("POST", "/bot-done", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if len(completer.jobIDs) != 0 {
		t.Errorf("expected no completion, got %v", completer.jobIDs)
	}
}
