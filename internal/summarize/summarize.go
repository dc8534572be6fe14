package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/scribeworks/scribe/internal/openai"
	"github.com/scribeworks/scribe/internal/store"
)

const systemPrompt = `You are a meeting notetaker. You are given the raw transcript of a meeting as a sequence of "Speaker: text" lines. Write concise meeting notes in markdown with these sections: a one-paragraph overview, key discussion points as bullets, decisions made, and action items with owners where the transcript names them. Do not invent facts that are not in the transcript. If a section has no content, omit it.`

type Summarizer struct {
	llm    *openai.Client
	logger *slog.Logger
}

func New(llm *openai.Client, logger *slog.Logger) *Summarizer {
	return &Summarizer{llm: llm, logger: logger}
}

// Summarize turns a stored transcript into meeting notes.
func (s *Summarizer) Summarize(ctx context.Context, t *store.MeetingTranscript) (store.MeetingSummary, error) {
	text := renderTranscript(t)
	if text == "" {
		return store.MeetingSummary{}, fmt.Errorf("transcript %s has no segments to summarize", t.MeetingID)
	}

	s.logger.Info("summarizing transcript",
		"meeting_id", t.MeetingID,
		"segments", len(t.Segments),
		"transcript_len", len(text),
	)

	notes, err := s.llm.Complete(ctx, systemPrompt, text, 4096)
	if err != nil {
		return store.MeetingSummary{}, fmt.Errorf("llm summarization: %w", err)
	}

	return store.MeetingSummary{
		MeetingID:   t.MeetingID,
		GeneratedAt: time.Now().UTC(),
		SummaryText: notes,
		Model:       s.llm.Model(),
	}, nil
}

func renderTranscript(t *store.MeetingTranscript) string {
	var b strings.Builder
	for _, seg := range t.Segments {
		if seg.Text == "" {
			continue
		}
		b.WriteString(seg.Speaker)
		b.WriteString(": ")
		b.WriteString(seg.Text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
