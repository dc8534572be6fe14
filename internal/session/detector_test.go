package session

import "testing"

func TestContainsExitPhrase(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Notetaker, please leave", true},
		{"NOTETAKER PLEASE LEAVE", true},
		{"ok note taker, please leave now", true},
		{"no taker please leave", true},
		{"I think the notetaker should stay", false},
		{"please leave the document open", false},
		{"", false},
		{"alright everyone, notetaker, please leave, thanks", true},
	}

	for _, tt := range tests {
		if got := ContainsExitPhrase(tt.text); got != tt.want {
			t.Errorf("ContainsExitPhrase(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
