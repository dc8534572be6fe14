package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CreateMeetingJob records a new bot-attendance request.
func (s *Store) CreateMeetingJob(ctx context.Context, meetingURL string) (MeetingJob, error) {
	job := MeetingJob{
		ID:         uuid.New(),
		MeetingURL: meetingURL,
		Status:     JobPending,
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO meeting_jobs (id, meeting_url, status, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING created_at`,
		job.ID, job.MeetingURL, job.Status,
	).Scan(&job.CreatedAt)
	if err != nil {
		return MeetingJob{}, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

func (s *Store) GetMeetingJob(ctx context.Context, id uuid.UUID) (MeetingJob, error) {
	job := MeetingJob{ID: id}
	err := s.pool.QueryRow(ctx, `
		SELECT meeting_url, status, meeting_id, created_at
		FROM meeting_jobs WHERE id = $1`,
		id,
	).Scan(&job.MeetingURL, &job.Status, &job.MeetingID, &job.CreatedAt)
	if err != nil {
		return MeetingJob{}, fmt.Errorf("load job %s: %w", id, err)
	}
	return job, nil
}

// UpdateMeetingJobStatus advances a job's status; meetingID is attached when
// non-nil (set once the bot has allocated a meeting id).
func (s *Store) UpdateMeetingJobStatus(ctx context.Context, id uuid.UUID, status string, meetingID *uuid.UUID) error {
	var err error
	if meetingID != nil {
		_, err = s.pool.Exec(ctx,
			`UPDATE meeting_jobs SET status = $1, meeting_id = $2 WHERE id = $3`,
			status, *meetingID, id,
		)
	} else {
		_, err = s.pool.Exec(ctx,
			`UPDATE meeting_jobs SET status = $1 WHERE id = $2`,
			status, id,
		)
	}
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	return nil
}
