// Package meet drives the Google Meet UI through the browser capability:
// joining a call, enabling captions, observing the caption region, and
// leaving. Selectors and phrases track the current Meet UI.
package meet

import (
	"context"
	"log/slog"
	"time"

	"github.com/scribeworks/scribe/internal/browser"
)

const (
	leaveButtonSel    = `button[aria-label*="Leave call"], button[aria-label*="Leave meeting"]`
	captionsRegionSel = `div[role="region"][aria-label*="aptions"]`
	captionsOffSel    = `button[aria-label*="Turn off captions"]`
	captionsOnSel     = `button[aria-label*="Turn on captions"]`
	micOffSel         = `button[aria-label*="Turn off microphone"]`
	cameraOffSel      = `button[aria-label*="Turn off camera"]`
)

// leftBannerTexts are the headings Meet shows once the call is over, in both
// phrasings it uses.
var leftBannerTexts = []string{
	"You left the meeting",
	"You’ve left the call",
}

type Driver struct {
	page        browser.Page
	joinTimeout time.Duration
	settle      time.Duration // post-join UI settle before caption shortcuts
	retry       time.Duration // pause between caption-enable attempts
	logger      *slog.Logger
}

func NewDriver(page browser.Page, joinTimeout time.Duration, logger *slog.Logger) *Driver {
	if joinTimeout <= 0 {
		joinTimeout = 60 * time.Second
	}
	return &Driver{
		page:        page,
		joinTimeout: joinTimeout,
		settle:      5 * time.Second,
		retry:       600 * time.Millisecond,
		logger:      logger,
	}
}

// Leave hangs up: the leave button when present, the keyboard shortcut
// otherwise.
func (d *Driver) Leave(ctx context.Context) error {
	if err := d.page.Click(ctx, leaveButtonSel, 3*time.Second); err == nil {
		return nil
	}
	d.logger.Debug("leave button not found, falling back to shortcut")
	return d.page.Press(ctx, "q", browser.ModCtrl, browser.ModAlt)
}

// WaitLeft blocks until the post-call banner appears. A timeout of zero waits
// until ctx is done.
func (d *Driver) WaitLeft(ctx context.Context, timeout time.Duration) error {
	return d.page.WaitAnyText(ctx, leftBannerTexts, timeout)
}

// clickIfVisible clicks best-effort and reports whether it landed.
func (d *Driver) clickIfVisible(ctx context.Context, sel string, timeout time.Duration) bool {
	if err := d.page.Click(ctx, sel, timeout); err != nil {
		return false
	}
	return true
}
