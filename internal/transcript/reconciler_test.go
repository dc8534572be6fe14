package transcript

import (
	"testing"

	"github.com/google/uuid"
)

func TestIsGrowth(t *testing.T) {
	tests := []struct {
		name string
		prev string
		next string
		want bool
	}{
		{"prefix extension", "Hi", "Hi there", true},
		{"exact equality", "Hi there", "Hi there", true},
		{"substantially longer rewrite", "Hi there", "Hello there everyone", true},
		{"short unrelated caption", "we should ship this on friday", "ok", false},
		{"case difference breaks prefix", "Hi there", "hi there!", false},
		{"barely longer rewrite rejected", "hello all", "goodbye all!", false},
		{"six chars longer accepted", "abc", "xxxxxxxxx", true},
		{"empty prev", "", "anything", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsGrowth(tt.prev, tt.next); got != tt.want {
				t.Errorf("IsGrowth(%q, %q) = %v, want %v", tt.prev, tt.next, got, tt.want)
			}
		})
	}
}

func TestReconciler_GrowthScenario(t *testing.T) {
	r := NewReconciler(uuid.New())

	r.Observe("Alice", "Hi")
	r.Observe("Alice", "Hi there")
	r.Observe("Bob", "ok")

	segs := r.Snapshot()
	if len(segs) != 2 {
		t.Fatalf("expected 2 active segments, got %d", len(segs))
	}

	alice := segs[0]
	if alice.Speaker != "Alice" || alice.Text != "Hi there" {
		t.Errorf("unexpected first segment: %+v", alice)
	}
	if alice.Start != 0 || alice.End != 1 {
		t.Errorf("expected Alice start=0 end=1, got start=%d end=%d", alice.Start, alice.End)
	}

	bob := segs[1]
	if bob.Speaker != "Bob" || bob.Text != "ok" {
		t.Errorf("unexpected second segment: %+v", bob)
	}
	if bob.Start != 2 || bob.End != 2 {
		t.Errorf("expected Bob start=2 end=2, got start=%d end=%d", bob.Start, bob.End)
	}

	if r.Index() != 3 {
		t.Errorf("expected index 3, got %d", r.Index())
	}
}

func TestReconciler_NoiseDiscardedButIndexAdvances(t *testing.T) {
	r := NewReconciler(uuid.New())

	r.Observe("Alice", "we should ship this on friday")
	if seg := r.Observe("Alice", "ok"); seg != nil {
		t.Errorf("expected noise event to be discarded, got %+v", seg)
	}

	segs := r.Snapshot()
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if segs[0].Text != "we should ship this on friday" {
		t.Errorf("noise overwrote the segment: %q", segs[0].Text)
	}
	if segs[0].End != 0 {
		t.Errorf("noise moved end to %d", segs[0].End)
	}
	// A delivered event consumes an index position even when discarded.
	if r.Index() != 2 {
		t.Errorf("expected index 2, got %d", r.Index())
	}
}

func TestReconciler_EmptyTextDropped(t *testing.T) {
	r := NewReconciler(uuid.New())

	if seg := r.Observe("Alice", ""); seg != nil {
		t.Errorf("expected empty text to be dropped, got %+v", seg)
	}
	if r.Index() != 0 {
		t.Errorf("empty text consumed an index: %d", r.Index())
	}
}

func TestReconciler_UnknownSpeakerDefault(t *testing.T) {
	r := NewReconciler(uuid.New())

	seg := r.Observe("", "hello from nobody")
	if seg == nil {
		t.Fatal("expected a segment")
	}
	if seg.Speaker != UnknownSpeaker {
		t.Errorf("expected %q, got %q", UnknownSpeaker, seg.Speaker)
	}
}

func TestReconciler_StartImmutableAndOrdered(t *testing.T) {
	r := NewReconciler(uuid.New())

	r.Observe("Alice", "first")
	r.Observe("Bob", "second")
	r.Observe("Alice", "first and then some more words")
	r.Observe("Carol", "third")

	segs := r.Snapshot()
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	prev := -1
	for _, seg := range segs {
		if seg.Start < seg.End && seg.Speaker != "Alice" {
			t.Errorf("unexpected growth on %s: %+v", seg.Speaker, seg)
		}
		if seg.Start > seg.End {
			t.Errorf("start > end on %+v", seg)
		}
		if seg.Start <= prev {
			t.Errorf("starts not strictly increasing: %d after %d", seg.Start, prev)
		}
		prev = seg.Start
	}
	if segs[0].Start != 0 {
		t.Errorf("Alice start moved to %d", segs[0].Start)
	}
}

func TestReconciler_SnapshotIsACopy(t *testing.T) {
	r := NewReconciler(uuid.New())
	r.Observe("Alice", "hello")

	segs := r.Snapshot()
	segs[0].Text = "mutated"

	if got := r.Snapshot()[0].Text; got != "hello" {
		t.Errorf("snapshot mutation leaked into reconciler state: %q", got)
	}
}
