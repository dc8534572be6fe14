package bus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HTTPNotifier reports meeting completion through the backend's /bot-done
// endpoint. Fallback path for bots that cannot reach NATS.
type HTTPNotifier struct {
	backendURL string
	client     *http.Client
	logger     *slog.Logger
}

func NewHTTPNotifier(backendURL string, logger *slog.Logger) *HTTPNotifier {
	return &HTTPNotifier{
		backendURL: backendURL,
		client:     &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// MeetingCompleted posts the completion event to the backend.
func (n *HTTPNotifier) MeetingCompleted(jobID string, meetingID uuid.UUID) error {
	event := CompletionEvent{
		JobID:     jobID,
		MeetingID: meetingID.String(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := n.client.Post(n.backendURL+"/bot-done", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("post completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned %d", resp.StatusCode)
	}

	n.logger.Info("completion reported over http", "job_id", jobID, "meeting_id", meetingID)
	return nil
}
