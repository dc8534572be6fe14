package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

func (s *Store) SaveSummary(ctx context.Context, sum MeetingSummary) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO meeting_summaries (id, meeting_id, generated_at, summary_text, model)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), sum.MeetingID, sum.GeneratedAt, sum.SummaryText, sum.Model,
	)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

// GetLatestSummary returns the most recent summary for a meeting.
func (s *Store) GetLatestSummary(ctx context.Context, meetingID uuid.UUID) (MeetingSummary, error) {
	sum := MeetingSummary{MeetingID: meetingID}
	err := s.pool.QueryRow(ctx, `
		SELECT generated_at, summary_text, model
		FROM meeting_summaries
		WHERE meeting_id = $1
		ORDER BY generated_at DESC
		LIMIT 1`,
		meetingID,
	).Scan(&sum.GeneratedAt, &sum.SummaryText, &sum.Model)
	if err != nil {
		return MeetingSummary{}, fmt.Errorf("load summary %s: %w", meetingID, err)
	}
	return sum, nil
}
