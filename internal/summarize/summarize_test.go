package summarize

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/scribeworks/scribe/internal/openai"
	"github.com/scribeworks/scribe/internal/store"
	"github.com/scribeworks/scribe/internal/transcript"
)

func testClient(t *testing.T, handler http.HandlerFunc) *openai.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c := openai.NewClient("test-key", "test-model")
	c.SetTestTransport(server.URL)
	return c
}

func TestSummarize_RendersSpeakerLines(t *testing.T) {
	var gotPrompt string
	llm := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Messages []openai.Message `json:"messages"`
		}
		json.Unmarshal(body, &req)
		gotPrompt = req.Messages[1].Content

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"## Notes"},"finish_reason":"stop"}]}`))
	})

	s := New(llm, slog.Default())
	meetingID := uuid.New()
	tr := &store.MeetingTranscript{
		MeetingID: meetingID,
		Segments: []transcript.Segment{
			{Speaker: "Alice", Text: "Hi there", Start: 0, End: 1},
			{Speaker: "Bob", Text: "ok", Start: 2, End: 2},
		},
	}

	sum, err := s.Summarize(context.Background(), tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(gotPrompt, "Alice: Hi there") || !strings.Contains(gotPrompt, "Bob: ok") {
		t.Errorf("prompt missing speaker lines: %q", gotPrompt)
	}
	if sum.SummaryText != "## Notes" {
		t.Errorf("expected summary text, got %q", sum.SummaryText)
	}
	if sum.MeetingID != meetingID {
		t.Errorf("summary not attached to meeting: %s", sum.MeetingID)
	}
	if sum.Model != "test-model" {
		t.Errorf("expected model test-model, got %q", sum.Model)
	}
	if sum.GeneratedAt.IsZero() {
		t.Error("expected GeneratedAt to be set")
	}
}

func TestSummarize_EmptyTranscriptErrors(t *testing.T) {
	llm := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("llm should not be called for an empty transcript")
	})

	s := New(llm, slog.Default())
	tr := &store.MeetingTranscript{MeetingID: uuid.New()}

	if _, err := s.Summarize(context.Background(), tr); err == nil {
		t.Fatal("expected error for empty transcript")
	}
}

func TestSummarize_LLMFailurePropagates(t *testing.T) {
	llm := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"type":"server_error","message":"boom"}}`))
	})

	s := New(llm, slog.Default())
	tr := &store.MeetingTranscript{
		MeetingID: uuid.New(),
		Segments:  []transcript.Segment{{Speaker: "Alice", Text: "Hi", Start: 0, End: 0}},
	}

	if _, err := s.Summarize(context.Background(), tr); err == nil {
		t.Fatal("expected error when the llm call fails")
	}
}
