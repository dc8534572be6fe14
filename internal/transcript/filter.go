package transcript

import "strings"

// deniedPhrases is UI chrome that Meet renders inside the caption region
// around meeting end: leave confirmations, feedback prompts, and similar.
var deniedPhrases = []string{
	"you left the meeting",
	"return to home screen",
	"leave call",
	"feedback",
	"audio and video",
	"learn more",
}

// isChrome reports whether text matches the deny list (case-insensitive
// substring match).
func isChrome(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range deniedPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// FilterFinal removes trailing UI noise from a segment set before the final
// flush. A segment whose text matches the deny list is dropped unless its end
// index is at least two observations older than the current index — an old
// enough segment is a real caption that happens to contain a denied phrase,
// not chrome captured right at meeting end.
func FilterFinal(segs []Segment, index int) []Segment {
	kept := make([]Segment, 0, len(segs))
	for _, seg := range segs {
		if isChrome(seg.Text) && index-seg.End < 2 {
			continue
		}
		kept = append(kept, seg)
	}
	return kept
}
