package transcript

import "github.com/google/uuid"

// UnknownSpeaker is the sentinel label used until a real speaker badge is
// observed in the caption region.
const UnknownSpeaker = "Unknown Speaker"

// Segment is one reconciled, speaker-attributed span of caption text.
// Start is assigned at first observation and never changes; (MeetingID, Start)
// is the natural key used for idempotent upserts. End tracks the index of the
// most recent growth, so Start <= End always holds.
type Segment struct {
	MeetingID uuid.UUID
	Speaker   string
	Text      string
	Start     int
	End       int
}
