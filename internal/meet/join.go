package meet

import (
	"context"
	"fmt"
	"time"

	"github.com/scribeworks/scribe/internal/browser"
)

// joinButtonTexts are the labels Meet rotates through on its join control,
// most specific first.
var joinButtonTexts = []string{
	"Join now",
	"Ask to join",
	"Join meeting",
	"Join call",
	"Join",
	"Continue",
}

// admittedTexts show up once the bot is actually in the call.
var admittedTexts = []string{
	"You've been admitted",
	"You’re the only one here",
}

// Join navigates to the meeting and clicks through the join flow. Every
// individual UI wait is best-effort; only failing to get admitted within the
// join timeout is fatal.
func (d *Driver) Join(ctx context.Context, url string) error {
	if err := d.page.Navigate(ctx, url); err != nil {
		return fmt.Errorf("open meeting: %w", err)
	}

	// Mute, kill the camera, clear the first-run popup. Any of these may be
	// absent depending on account state.
	d.clickIfVisible(ctx, micOffSel, 3*time.Second)
	d.clickIfVisible(ctx, cameraOffSel, 3*time.Second)
	d.clickTextIfVisible(ctx, "Got it", 2*time.Second)

	d.clickJoin(ctx)
	d.dismissOverlays(ctx)

	if err := d.waitUntilJoined(ctx); err != nil {
		return err
	}
	d.logger.Info("joined meeting", "url", url)
	return nil
}

func (d *Driver) clickJoin(ctx context.Context) {
	// Accounts without mic/camera permission get an interstitial first.
	if d.clickTextIfVisible(ctx, "Continue without microphone and camera", 3*time.Second) {
		d.logger.Debug("dismissed media interstitial")
	}

	for _, text := range joinButtonTexts {
		if d.clickTextIfVisible(ctx, text, 3*time.Second) {
			d.logger.Info("clicked join button", "label", text)
			return
		}
		d.logger.Debug("join label not present", "label", text)
	}

	// Last resort: the join control usually has focus on the lobby page.
	d.logger.Warn("no join button found, pressing enter")
	if err := d.page.Press(ctx, browser.KeyEnter); err != nil {
		d.logger.Warn("enter fallback failed", "error", err)
	}
}

// dismissOverlays clears modal popups that block interaction after joining.
func (d *Driver) dismissOverlays(ctx context.Context) {
	for _, text := range []string{"Got it", "Dismiss", "Continue"} {
		d.clickTextIfVisible(ctx, text, time.Second)
	}
	d.page.Press(ctx, browser.KeyEscape)
	d.page.Press(ctx, browser.KeyEscape)
}

// waitUntilJoined polls for in-call indicators until the join timeout.
// Admission can take as long as a human takes to click "Admit".
func (d *Driver) waitUntilJoined(ctx context.Context) error {
	deadline := time.Now().Add(d.joinTimeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.page.WaitVisible(ctx, leaveButtonSel, time.Second); err == nil {
			return nil
		}
		if err := d.page.WaitAnyText(ctx, admittedTexts, time.Second); err == nil {
			return nil
		}
	}
	return fmt.Errorf("not admitted to the meeting within %s", d.joinTimeout)
}

func (d *Driver) clickTextIfVisible(ctx context.Context, text string, timeout time.Duration) bool {
	if err := d.page.ClickText(ctx, text, timeout); err != nil {
		return false
	}
	return true
}
