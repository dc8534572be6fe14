package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/scribeworks/scribe/internal/transcript"
)

type MeetingTranscript struct {
	MeetingID uuid.UUID
	CreatedAt time.Time
	Segments  []transcript.Segment
}

// UpsertTranscriptSegments ensures the owning transcript record exists, then
// upserts each segment by its (meeting_id, start_idx) natural key. Idempotent:
// replaying a batch with newer end/text overwrites the prior rows. An empty
// batch is a no-op unless forceIfEmpty is set (used to create the transcript
// record up front and for the forced final flush).
func (s *Store) UpsertTranscriptSegments(ctx context.Context, meetingID uuid.UUID, createdAt time.Time, segs []transcript.Segment, forceIfEmpty bool) error {
	if len(segs) == 0 && !forceIfEmpty {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO meeting_transcripts (meeting_id, created_at)
		VALUES ($1, $2)
		ON CONFLICT (meeting_id) DO UPDATE SET created_at = EXCLUDED.created_at`,
		meetingID, createdAt,
	)
	if err != nil {
		return fmt.Errorf("upsert transcript: %w", err)
	}

	for _, seg := range segs {
		_, err = tx.Exec(ctx, `
			INSERT INTO transcript_segments (meeting_id, start_idx, end_idx, speaker, text)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (meeting_id, start_idx)
			DO UPDATE SET end_idx = EXCLUDED.end_idx, speaker = EXCLUDED.speaker, text = EXCLUDED.text`,
			meetingID, seg.Start, seg.End, seg.Speaker, seg.Text,
		)
		if err != nil {
			return fmt.Errorf("upsert segment %d: %w", seg.Start, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetTranscript loads a transcript and its segments ordered by start index.
func (s *Store) GetTranscript(ctx context.Context, meetingID uuid.UUID) (*MeetingTranscript, error) {
	t := &MeetingTranscript{MeetingID: meetingID}

	err := s.pool.QueryRow(ctx,
		`SELECT created_at FROM meeting_transcripts WHERE meeting_id = $1`,
		meetingID,
	).Scan(&t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("load transcript %s: %w", meetingID, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT start_idx, end_idx, speaker, text
		FROM transcript_segments
		WHERE meeting_id = $1
		ORDER BY start_idx`,
		meetingID,
	)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		seg := transcript.Segment{MeetingID: meetingID}
		if err := rows.Scan(&seg.Start, &seg.End, &seg.Speaker, &seg.Text); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		t.Segments = append(t.Segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}
	return t, nil
}
