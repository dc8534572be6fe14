package transcript

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// growthSlack is how many characters longer a restated caption must be to
// replace the active text when it is not a strict prefix extension. Meet
// re-renders captions with minor formatting drift; this tolerates that while
// rejecting unrelated short captions from clobbering a longer one.
const growthSlack = 5

// IsGrowth reports whether next qualifies as a growth of prev: either next
// extends prev verbatim, or next is substantially longer than prev.
func IsGrowth(prev, next string) bool {
	return strings.HasPrefix(next, prev) || len(next) > len(prev)+growthSlack
}

// Reconciler folds raw (speaker, text) caption observations into at most one
// active segment per speaker. It is single-writer: all observations for a
// session must come from one goroutine.
type Reconciler struct {
	meetingID uuid.UUID
	index     int
	active    map[string]*Segment
}

func NewReconciler(meetingID uuid.UUID) *Reconciler {
	return &Reconciler{
		meetingID: meetingID,
		active:    make(map[string]*Segment),
	}
}

// Observe processes one delivered caption event. Text must be pre-trimmed and
// non-empty. Every call consumes one index position, establishing a total
// order over observations regardless of speaker — rejected noise still
// advances the clock. Returns the segment the event landed in, or nil if the
// event was discarded as noise.
func (r *Reconciler) Observe(speaker, text string) *Segment {
	if text == "" {
		return nil
	}
	if speaker == "" {
		speaker = UnknownSpeaker
	}

	idx := r.index
	r.index++

	seg := r.active[speaker]
	if seg == nil {
		seg = &Segment{
			MeetingID: r.meetingID,
			Speaker:   speaker,
			Text:      text,
			Start:     idx,
			End:       idx,
		}
		r.active[speaker] = seg
		return seg
	}

	if !IsGrowth(seg.Text, text) {
		// Only one active segment per speaker is tracked; a caption that is
		// neither an extension nor substantially longer is dropped rather than
		// allowed to regress the segment.
		return nil
	}

	seg.Text = text
	seg.End = idx
	return seg
}

// Index returns the number of observations delivered so far.
func (r *Reconciler) Index() int {
	return r.index
}

// Snapshot returns a copy of the active segments ordered by start index.
// Callers own the returned slice; mutations do not touch reconciler state.
func (r *Reconciler) Snapshot() []Segment {
	segs := make([]Segment, 0, len(r.active))
	for _, seg := range r.active {
		segs = append(segs, *seg)
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })
	return segs
}
