package session

import "strings"

// exitPhrases are the spoken-command variants that ask the notetaker to hang
// up. Captions restate the same utterance with drifting punctuation and
// spacing, so the common mis-transcriptions are listed explicitly.
var exitPhrases = []string{
	"notetaker, please leave",
	"note taker, please leave",
	"no taker please leave",
	"notetaker please leave",
}

// ContainsExitPhrase reports whether text contains any exit-phrase variant.
// Matching is case-insensitive substring matching.
func ContainsExitPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range exitPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
