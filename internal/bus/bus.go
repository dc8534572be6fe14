package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// SubjectMeetingCompleted is the NATS subject the bot publishes to once a
// meeting's transcript has been fully flushed.
const SubjectMeetingCompleted = "scribe.meeting.completed"

// CompletionEvent is emitted when a bot finishes a meeting, so the backend
// can pick up the stored transcript and run post-processing.
type CompletionEvent struct {
	JobID     string `json:"job_id"`
	MeetingID string `json:"meeting_id"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

// MeetingCompleted publishes a completion event for a finished meeting and
// confirms the server accepted it. Publish alone only buffers: against a
// disconnected broker it reports success and the event dies with the
// connection, so delivery is verified with an explicit flush.
func (c *Client) MeetingCompleted(jobID string, meetingID uuid.UUID) error {
	if status := c.conn.Status(); status != nats.CONNECTED {
		return fmt.Errorf("nats not connected (%s)", status)
	}
	event := CompletionEvent{
		JobID:     jobID,
		MeetingID: meetingID.String(),
	}
	if err := c.Publish(SubjectMeetingCompleted, event); err != nil {
		return fmt.Errorf("publish completion: %w", err)
	}
	if err := c.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("flush completion: %w", err)
	}
	return nil
}

// CompletionNotifier reports a finished meeting to the job system.
type CompletionNotifier interface {
	MeetingCompleted(jobID string, meetingID uuid.UUID) error
}

// FallbackNotifier tries the primary notifier and, when it fails, retries
// through the fallback. Used by bots to report over HTTP when the broker is
// unreachable.
type FallbackNotifier struct {
	primary  CompletionNotifier
	fallback CompletionNotifier
	logger   *slog.Logger
}

func NewFallbackNotifier(primary, fallback CompletionNotifier, logger *slog.Logger) *FallbackNotifier {
	return &FallbackNotifier{primary: primary, fallback: fallback, logger: logger}
}

func (n *FallbackNotifier) MeetingCompleted(jobID string, meetingID uuid.UUID) error {
	err := n.primary.MeetingCompleted(jobID, meetingID)
	if err == nil {
		return nil
	}
	n.logger.Warn("completion publish failed, falling back", "job_id", jobID, "error", err)
	return n.fallback.MeetingCompleted(jobID, meetingID)
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
