// Package browser exposes the slice of the browser-automation capability the
// bot consumes: navigating, waiting on and acting on named elements, running
// scripts, and receiving callbacks from injected observers. The production
// implementation drives Chrome over CDP; tests substitute fakes.
package browser

import (
	"context"
	"time"
)

// Key literals for Press. These are the CDP key-event encodings; an uppercase
// letter implies the shift modifier.
const (
	KeyEnter  = "\r"
	KeyEscape = "\u001b"
)

// Modifier is a keyboard modifier held during a Press.
type Modifier int

const (
	ModShift Modifier = iota
	ModCtrl
	ModAlt
)

// Page is one browser tab. All waits are bounded: a timeout of zero falls
// back to the implementation's default. Methods return an error when the
// element or condition does not materialize in time; callers decide whether
// that is fatal.
type Page interface {
	Navigate(ctx context.Context, url string) error

	// WaitVisible blocks until the CSS selector matches a visible element.
	WaitVisible(ctx context.Context, sel string, timeout time.Duration) error

	// Click waits for the CSS selector to be visible, then clicks it.
	Click(ctx context.Context, sel string, timeout time.Duration) error

	// ClickText clicks the first button whose text contains the given string.
	ClickText(ctx context.Context, text string, timeout time.Duration) error

	// WaitAnyText blocks until any of the substrings appears in the page body.
	// A timeout of zero waits until ctx is done.
	WaitAnyText(ctx context.Context, substrs []string, timeout time.Duration) error

	Press(ctx context.Context, key string, mods ...Modifier) error

	// Evaluate runs a JS expression; out receives the unmarshalled result and
	// may be nil when the result is irrelevant.
	Evaluate(ctx context.Context, js string, out any) error

	// Expose registers a Go callback reachable from page JS as
	// window.<name>(payload). The payload is an opaque string.
	Expose(name string, fn func(payload string)) error

	Screenshot(ctx context.Context) ([]byte, error)
}
