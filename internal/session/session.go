package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/scribeworks/scribe/internal/transcript"
)

// ErrHardTimeout is returned when the session's hard ceiling elapses before
// any other termination condition resolves. Fatal; already-flushed segments
// stay persisted.
var ErrHardTimeout = errors.New("hard timeout exceeded")

// State is the coordinator's position in the termination state machine.
type State int

const (
	StateRunning State = iota
	StateExitRequested
	StateLeaving
	StateFinalized
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateExitRequested:
		return "exit_requested"
	case StateLeaving:
		return "leaving"
	case StateFinalized:
		return "finalized"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SegmentStore is the persistence interface the session flushes through.
// Upserts are keyed by (meetingID, start); replaying the same key with a newer
// end/text overwrites without duplicating. An empty batch is a no-op unless
// forceIfEmpty is set.
type SegmentStore interface {
	UpsertTranscriptSegments(ctx context.Context, meetingID uuid.UUID, createdAt time.Time, segs []transcript.Segment, forceIfEmpty bool) error
}

// Notifier signals the job system that a meeting's transcript is complete.
// Fire-and-forget: failures are logged by the caller, never retried here.
type Notifier interface {
	MeetingCompleted(jobID string, meetingID uuid.UUID) error
}

// Meeting is the slice of the UI driver the coordinator needs: an explicit
// leave action and a wait for the "left the meeting" indicator. A timeout of
// zero waits until the context is done.
type Meeting interface {
	Leave(ctx context.Context) error
	WaitLeft(ctx context.Context, timeout time.Duration) error
}

type Config struct {
	MeetingID     uuid.UUID
	JobID         string
	CreatedAt     time.Time
	FlushInterval time.Duration // default 1s
	HardTimeout   time.Duration // default 100m
	LeaveWait     time.Duration // default 10s
}

type captionEvent struct {
	speaker string
	text    string
}

// Session runs one meeting attendance: it owns the reconciler, arbitrates the
// termination race, and sequences leave + final flush + notify. All reconciler
// mutation happens on the Run goroutine; the browser callback only delivers
// events through a channel.
type Session struct {
	cfg      Config
	store    SegmentStore
	meeting  Meeting
	notifier Notifier
	logger   *slog.Logger

	rec    *transcript.Reconciler
	events chan captionEvent
	done   atomic.Bool

	state         State
	exitRequested bool
	flushedCount  int
}

func New(cfg Config, store SegmentStore, meeting Meeting, notifier Notifier, logger *slog.Logger) *Session {
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.HardTimeout <= 0 {
		cfg.HardTimeout = 100 * time.Minute
	}
	if cfg.LeaveWait <= 0 {
		cfg.LeaveWait = 10 * time.Second
	}
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = time.Now().UTC()
	}
	return &Session{
		cfg:      cfg,
		store:    store,
		meeting:  meeting,
		notifier: notifier,
		logger:   logger,
		rec:      transcript.NewReconciler(cfg.MeetingID),
		events:   make(chan captionEvent, 256),
		state:    StateRunning,
	}
}

// Ingest is the injection point the UI observation layer calls whenever a
// caption node changes. At-least-once delivery: the same growing utterance
// arrives many times. Non-blocking — once the termination race has resolved,
// or under backpressure, events are dropped rather than allowed to stall the
// browser callback.
func (s *Session) Ingest(speaker, text string) {
	if s.done.Load() {
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	select {
	case s.events <- captionEvent{speaker: speaker, text: text}:
	default:
		s.logger.Warn("caption event dropped", "speaker", speaker)
	}
}

// Run drives the session until one of the three termination conditions wins:
// an exit phrase, the spontaneous leave banner, or the hard timeout. Returns
// nil on a finalized session and ErrHardTimeout on the fatal ceiling.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.done.Store(true)

	banner := make(chan struct{}, 1)
	go s.watchLeaveBanner(ctx, banner)

	flush := time.NewTicker(s.cfg.FlushInterval)
	defer flush.Stop()
	ceiling := time.NewTimer(s.cfg.HardTimeout)
	defer ceiling.Stop()

	s.logger.Info("session running",
		"meeting_id", s.cfg.MeetingID,
		"job_id", s.cfg.JobID,
		"flush_interval", s.cfg.FlushInterval,
		"hard_timeout", s.cfg.HardTimeout,
	)

	for {
		select {
		case ev := <-s.events:
			if s.handleCaption(ctx, ev) {
				s.leave(ctx)
				return s.finalize(ctx)
			}
		case <-banner:
			s.logger.Info("leave banner observed, meeting ended externally")
			return s.finalize(ctx)
		case <-flush.C:
			s.flush(ctx, false)
		case <-ceiling.C:
			s.transition(StateFailed)
			return fmt.Errorf("%w after %s", ErrHardTimeout, s.cfg.HardTimeout)
		case <-ctx.Done():
			s.transition(StateFailed)
			return ctx.Err()
		}
	}
}

// State reports the coordinator's current state. Only meaningful from the Run
// goroutine or after Run has returned.
func (s *Session) State() State {
	return s.state
}

// handleCaption reconciles one delivered event and checks it for the exit
// command. Returns true once the exit path should be taken.
func (s *Session) handleCaption(ctx context.Context, ev captionEvent) bool {
	isExit := ContainsExitPhrase(ev.text)
	s.rec.Observe(ev.speaker, ev.text)

	if isExit && !s.exitRequested {
		s.exitRequested = true
		s.transition(StateExitRequested)
		s.logger.Info("exit phrase heard, hanging up", "speaker", ev.speaker)
		// Out-of-band flush so the command and everything before it survive
		// even if the leave sequence goes sideways.
		s.flush(ctx, true)
	}
	return s.exitRequested
}

// flush persists a snapshot of the active segments. Empty snapshots are
// skipped unless forced. Failures are logged and swallowed: the next cycle
// resends the latest state, so loss is bounded by one interval of growth.
func (s *Session) flush(ctx context.Context, force bool) {
	snap := s.rec.Snapshot()
	if len(snap) == 0 && !force {
		return
	}
	if err := s.store.UpsertTranscriptSegments(ctx, s.cfg.MeetingID, s.cfg.CreatedAt, snap, force); err != nil {
		s.logger.Warn("flush failed", "segments", len(snap), "error", err)
		return
	}
	s.flushedCount = len(snap)
	s.logger.Debug("flushed", "segments", len(snap))
}

// leave performs the explicit hang-up sequence for the exit-phrase path:
// leave action, bounded wait for the banner, then a flush of whatever the
// forced exit flush did not cover.
func (s *Session) leave(ctx context.Context) {
	s.transition(StateLeaving)

	if err := s.meeting.Leave(ctx); err != nil {
		s.logger.Warn("leave action failed", "error", err)
	}
	if err := s.meeting.WaitLeft(ctx, s.cfg.LeaveWait); err != nil {
		s.logger.Warn("no leave confirmation", "error", err)
	}

	snap := s.rec.Snapshot()
	if s.flushedCount >= len(snap) {
		return
	}
	tail := snap[s.flushedCount:]
	if err := s.store.UpsertTranscriptSegments(ctx, s.cfg.MeetingID, s.cfg.CreatedAt, tail, false); err != nil {
		s.logger.Warn("post-leave flush failed", "segments", len(tail), "error", err)
		return
	}
	s.flushedCount = len(snap)
}

// finalize runs once the race has a winner on a non-fatal path: filter out
// trailing UI chrome, force one last flush of the full set, and notify the
// job system. Notification failure does not reverse the persisted transcript.
func (s *Session) finalize(ctx context.Context) error {
	final := transcript.FilterFinal(s.rec.Snapshot(), s.rec.Index())

	if err := s.store.UpsertTranscriptSegments(ctx, s.cfg.MeetingID, s.cfg.CreatedAt, final, true); err != nil {
		s.logger.Error("final flush failed", "segments", len(final), "error", err)
	}

	if err := s.notifier.MeetingCompleted(s.cfg.JobID, s.cfg.MeetingID); err != nil {
		s.logger.Error("completion notify failed", "job_id", s.cfg.JobID, "error", err)
	}

	s.transition(StateFinalized)
	s.logger.Info("session finalized",
		"meeting_id", s.cfg.MeetingID,
		"segments", len(final),
		"observations", s.rec.Index(),
	)
	return nil
}

// watchLeaveBanner resolves the spontaneous-end branch of the race. Losing the
// race cancels ctx, which ends the wait; a late resolution after that is
// dropped on the floor.
func (s *Session) watchLeaveBanner(ctx context.Context, banner chan<- struct{}) {
	if err := s.meeting.WaitLeft(ctx, 0); err != nil {
		if ctx.Err() == nil {
			s.logger.Debug("leave banner watch ended", "error", err)
		}
		return
	}
	select {
	case banner <- struct{}{}:
	default:
	}
}

func (s *Session) transition(next State) {
	s.logger.Debug("state transition", "from", s.state.String(), "to", next.String())
	s.state = next
}
