package meet

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// captionObserverJS watches the caption region for added nodes and text edits
// and forwards (speaker, text) pairs through the exposed onCaption binding.
// The badge classes are the speaker-name chips Meet renders inside each
// caption block; text nodes without a badge belong to the previous speaker.
const captionObserverJS = `(() => {
	const badgeSel = ".NWpY1d, .xoMHSc";
	let lastSpeaker = "Unknown Speaker";

	const speakerOf = (node) => {
		const badge = node.querySelector(badgeSel);
		const s = badge && badge.textContent ? badge.textContent.trim() : "";
		return s || lastSpeaker;
	};

	const textOf = (node) => {
		const clone = node.cloneNode(true);
		clone.querySelectorAll(badgeSel).forEach((el) => el.remove());
		return clone.textContent ? clone.textContent.trim() : "";
	};

	const send = (node) => {
		if (!(node instanceof HTMLElement)) return;
		const txt = textOf(node);
		const spk = speakerOf(node);
		if (txt && txt.toLowerCase() !== spk.toLowerCase()) {
			window.onCaption(JSON.stringify({ speaker: spk, text: txt }));
			lastSpeaker = spk;
		}
	};

	new MutationObserver((mutations) => {
		for (const m of mutations) {
			m.addedNodes.forEach((n) => send(n));
			if (m.type === "characterData" && m.target && m.target.parentElement) {
				send(m.target.parentElement);
			}
		}
	}).observe(document.body, { childList: true, characterData: true, subtree: true });
})()`

type captionPayload struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// EnableCaptions turns live captions on, preferring the Shift+C shortcut and
// falling back to the CC button. Captions never becoming visible is fatal for
// the session.
func (d *Driver) EnableCaptions(ctx context.Context) error {
	// Let the in-call UI settle before sending shortcuts at it.
	sleepCtx(ctx, d.settle)

	for i := 0; i < 10; i++ {
		if err := d.page.Press(ctx, "C"); err != nil {
			d.logger.Debug("captions shortcut failed", "attempt", i+1, "error", err)
		}
		if d.captionsVisible(ctx, 800*time.Millisecond) {
			d.logger.Info("captions enabled", "via", "shortcut")
			return nil
		}
		// The shortcut toggles; if the off-button is showing, captions were
		// already on and we just need the region to render.
		if err := d.page.WaitVisible(ctx, captionsOffSel, time.Second); err == nil {
			d.logger.Info("captions enabled", "via", "already-on")
			return nil
		}
		sleepCtx(ctx, d.retry)
	}

	d.logger.Warn("captions shortcut exhausted, trying CC button")
	if d.clickIfVisible(ctx, captionsOnSel, 4*time.Second) && d.captionsVisible(ctx, 5*time.Second) {
		d.logger.Info("captions enabled", "via", "button")
		return nil
	}

	d.dumpDebugScreenshot(ctx)
	return fmt.Errorf("could not enable captions via shortcut or button")
}

// ObserveCaptions installs the caption observer and routes each detected
// change into sink. Must be called after EnableCaptions; sink is invoked from
// the browser event goroutine.
func (d *Driver) ObserveCaptions(ctx context.Context, sink func(speaker, text string)) error {
	if err := d.page.WaitVisible(ctx, "[aria-live]", 30*time.Second); err != nil {
		return fmt.Errorf("caption region never appeared: %w", err)
	}

	err := d.page.Expose("onCaption", func(payload string) {
		var p captionPayload
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			d.logger.Warn("bad caption payload", "error", err)
			return
		}
		sink(p.Speaker, p.Text)
	})
	if err != nil {
		return fmt.Errorf("expose caption sink: %w", err)
	}

	if err := d.page.Evaluate(ctx, captionObserverJS, nil); err != nil {
		return fmt.Errorf("install caption observer: %w", err)
	}
	d.logger.Info("caption observer installed")
	return nil
}

func (d *Driver) captionsVisible(ctx context.Context, timeout time.Duration) bool {
	return d.page.WaitVisible(ctx, captionsRegionSel, timeout) == nil
}

func (d *Driver) dumpDebugScreenshot(ctx context.Context) {
	shot, err := d.page.Screenshot(ctx)
	if err != nil {
		d.logger.Warn("debug screenshot failed", "error", err)
		return
	}
	path := fmt.Sprintf("/tmp/scribe-captions-failure-%d.png", time.Now().Unix())
	if err := os.WriteFile(path, shot, 0o644); err != nil {
		d.logger.Warn("debug screenshot write failed", "error", err)
		return
	}
	d.logger.Error("captions could not be enabled", "screenshot", path)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
