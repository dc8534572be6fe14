// Package store is the Postgres persistence layer.
//
// Tables: meeting_jobs, meeting_transcripts, transcript_segments,
// meeting_summaries. Segments are keyed by (meeting_id, start_idx) so that
// replaying a flush upserts instead of duplicating.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Meeting job lifecycle statuses.
const (
	JobPending         = "pending"
	JobTranscriptSaved = "transcript_saved"
	JobSummarized      = "summarized"
	JobFailed          = "failed"
)

type MeetingJob struct {
	ID         uuid.UUID
	MeetingURL string
	Status     string
	MeetingID  *uuid.UUID
	CreatedAt  time.Time
}

type MeetingSummary struct {
	MeetingID   uuid.UUID
	GeneratedAt time.Time
	SummaryText string
	Model       string
}

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}
