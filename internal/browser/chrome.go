package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
)

const defaultWait = 5 * time.Second

// Options configures the Chrome process. ProfileDir points at a
// pre-authenticated Chrome user data dir; without one, Meet will bounce the
// bot to a login page.
type Options struct {
	Headless   bool
	ProfileDir string
}

// Chrome implements Page on top of chromedp. One Chrome owns one browser
// process and one tab.
type Chrome struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

func NewChrome(ctx context.Context, opts Options) (*Chrome, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", opts.Headless),
		// Fake media devices so Meet's mic/camera prompts never block.
		chromedp.Flag("use-fake-ui-for-media-stream", true),
		chromedp.Flag("use-fake-device-for-media-stream", true),
		chromedp.NoSandbox,
	)
	if opts.ProfileDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.ProfileDir))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so a broken install fails here, not on the
	// first navigation.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	return &Chrome{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc}, nil
}

func (c *Chrome) Close() {
	c.cancelTab()
	c.cancelAlloc()
}

// run executes chromedp actions against the tab, bounded by timeout and by
// the caller's context.
func (c *Chrome) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if timeout <= 0 {
		timeout = defaultWait
	}
	runCtx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	if err := c.run(ctx, 60*time.Second, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (c *Chrome) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	return c.run(ctx, timeout, chromedp.WaitVisible(sel, chromedp.ByQuery))
}

func (c *Chrome) Click(ctx context.Context, sel string, timeout time.Duration) error {
	return c.run(ctx, timeout,
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.Click(sel, chromedp.ByQuery),
	)
}

func (c *Chrome) ClickText(ctx context.Context, text string, timeout time.Duration) error {
	xpath := "//button[contains(., " + xpathString(text) + ")]"
	return c.run(ctx, timeout,
		chromedp.WaitVisible(xpath, chromedp.BySearch),
		chromedp.Click(xpath, chromedp.BySearch),
	)
}

func (c *Chrome) WaitAnyText(ctx context.Context, substrs []string, timeout time.Duration) error {
	quoted := make([]string, len(substrs))
	for i, s := range substrs {
		q, _ := json.Marshal(s)
		quoted[i] = string(q)
	}
	js := fmt.Sprintf(
		"!!document.body && [%s].some((q) => document.body.innerText.indexOf(q) !== -1)",
		strings.Join(quoted, ","),
	)

	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}

	for {
		var found bool
		// Evaluation errors (mid-navigation, detached frame) read as "not
		// found yet"; only the caller's deadline or context ends the wait.
		if err := c.run(ctx, defaultWait, chromedp.Evaluate(js, &found)); err == nil && found {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("none of %q appeared within %s", substrs, timeout)
		case <-time.After(250 * time.Millisecond):
		}
	}
}

func (c *Chrome) Press(ctx context.Context, key string, mods ...Modifier) error {
	if len(mods) == 0 {
		return c.run(ctx, defaultWait, chromedp.KeyEvent(key))
	}
	var m input.Modifier
	for _, mod := range mods {
		switch mod {
		case ModShift:
			m |= input.ModifierShift
		case ModCtrl:
			m |= input.ModifierCtrl
		case ModAlt:
			m |= input.ModifierAlt
		}
	}
	return c.run(ctx, defaultWait, chromedp.KeyEvent(key, chromedp.KeyModifiers(m)))
}

func (c *Chrome) Evaluate(ctx context.Context, js string, out any) error {
	return c.run(ctx, defaultWait, chromedp.Evaluate(js, out))
}

func (c *Chrome) Expose(name string, fn func(payload string)) error {
	err := chromedp.Run(c.ctx, chromedp.Expose(name, func(args string) (string, error) {
		fn(args)
		return "", nil
	}))
	if err != nil {
		return fmt.Errorf("expose %s: %w", name, err)
	}
	return nil
}

func (c *Chrome) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := c.run(ctx, 15*time.Second, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return buf, nil
}

// xpathString quotes s as an XPath string literal. XPath 1.0 has no escape
// syntax, so strings containing both quote kinds need concat().
func xpathString(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	for i, p := range parts {
		parts[i] = `"` + p + `"`
	}
	return "concat(" + strings.Join(parts, `,'"',`) + ")"
}
