package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/scribeworks/scribe/internal/bus"
	"github.com/scribeworks/scribe/internal/store"
)

// Store is the slice of the persistence layer the processor needs.
type Store interface {
	GetTranscript(ctx context.Context, meetingID uuid.UUID) (*store.MeetingTranscript, error)
	UpdateMeetingJobStatus(ctx context.Context, id uuid.UUID, status string, meetingID *uuid.UUID) error
	SaveSummary(ctx context.Context, sum store.MeetingSummary) error
}

type Summarizer interface {
	Summarize(ctx context.Context, t *store.MeetingTranscript) (store.MeetingSummary, error)
}

// Processor runs post-meeting work once a bot reports completion: it marks
// the job, loads the stored transcript and generates meeting notes.
type Processor struct {
	store      Store
	summarizer Summarizer
	logger     *slog.Logger
}

// New builds a Processor. summarizer may be nil, in which case jobs stop at
// transcript_saved.
func New(s Store, sum Summarizer, logger *slog.Logger) *Processor {
	return &Processor{store: s, summarizer: sum, logger: logger}
}

// HandleMeetingCompleted is the NATS handler for scribe.meeting.completed.
func (p *Processor) HandleMeetingCompleted(subject string, data []byte) {
	ctx := context.Background()

	var evt bus.CompletionEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse completion event", "error", err)
		return
	}

	jobID, err := uuid.Parse(evt.JobID)
	if err != nil {
		p.logger.Error("invalid job id", "job_id", evt.JobID, "error", err)
		return
	}
	meetingID, err := uuid.Parse(evt.MeetingID)
	if err != nil {
		p.logger.Error("invalid meeting id", "meeting_id", evt.MeetingID, "error", err)
		return
	}

	if err := p.Complete(ctx, jobID, meetingID); err != nil {
		p.logger.Error("completion processing failed",
			"job_id", jobID,
			"meeting_id", meetingID,
			"error", err,
		)
	}
}

// Complete advances a job through the post-meeting pipeline.
func (p *Processor) Complete(ctx context.Context, jobID, meetingID uuid.UUID) error {
	p.logger.Info("processing completed meeting", "job_id", jobID, "meeting_id", meetingID)

	if err := p.store.UpdateMeetingJobStatus(ctx, jobID, store.JobTranscriptSaved, &meetingID); err != nil {
		return fmt.Errorf("mark transcript saved: %w", err)
	}

	if p.summarizer == nil {
		p.logger.Warn("no summarizer configured, skipping meeting notes", "job_id", jobID)
		return nil
	}

	t, err := p.store.GetTranscript(ctx, meetingID)
	if err != nil {
		p.fail(ctx, jobID)
		return fmt.Errorf("load transcript: %w", err)
	}

	sum, err := p.summarizer.Summarize(ctx, t)
	if err != nil {
		p.fail(ctx, jobID)
		return fmt.Errorf("summarize: %w", err)
	}

	if err := p.store.SaveSummary(ctx, sum); err != nil {
		p.fail(ctx, jobID)
		return fmt.Errorf("save summary: %w", err)
	}

	if err := p.store.UpdateMeetingJobStatus(ctx, jobID, store.JobSummarized, nil); err != nil {
		return fmt.Errorf("mark summarized: %w", err)
	}

	p.logger.Info("meeting notes saved", "job_id", jobID, "meeting_id", meetingID)
	return nil
}

func (p *Processor) fail(ctx context.Context, jobID uuid.UUID) {
	if err := p.store.UpdateMeetingJobStatus(ctx, jobID, store.JobFailed, nil); err != nil {
		p.logger.Error("failed to mark job failed", "job_id", jobID, "error", err)
	}
}
