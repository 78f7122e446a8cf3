// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Options configures a Renderer.
type Options struct {
	// Bin is an explicit browser binary; empty means Locate.
	Bin string

	// AutoDownload lets rod fetch a Chromium build when none is installed.
	AutoDownload bool

	// UserAgent overrides the browser's User-Agent when set.
	UserAgent string

	// Selector is awaited after load so late-inserted photos are present.
	Selector string

	// RenderTimeout bounds navigation and load of one page.
	RenderTimeout time.Duration

	// SettleTimeout bounds the wait for Selector after load.
	SettleTimeout time.Duration
}

// Renderer owns one headless browser process for the duration of a batch.
// Close must be called to release it.
type Renderer struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	opts     Options
}

// New launches a headless browser.
func New(opts Options) (*Renderer, error) {
	l := launcher.New().Headless(true)

	bin, err := Locate(opts.Bin)
	switch {
	case err == nil:
		l = l.Bin(bin)
	case errors.Is(err, ErrNoBrowser) && opts.AutoDownload:
		// launcher downloads a Chromium build when no binary is set.
	default:
		return nil, err
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	return &Renderer{launcher: l, browser: b, opts: opts}, nil
}

// Render loads pageURL in a fresh tab, lets its scripts run, and returns the
// resulting DOM as HTML.
func (r *Renderer) Render(ctx context.Context, pageURL string) (string, error) {
	page, err := r.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("opening tab: %w", err)
	}
	defer page.Close()

	if r.opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.opts.UserAgent}); err != nil {
			return "", fmt.Errorf("setting user agent: %w", err)
		}
	}

	loading := page
	if r.opts.RenderTimeout > 0 {
		loading = page.Timeout(r.opts.RenderTimeout)
		defer loading.CancelTimeout()
	}
	if err := loading.Navigate(pageURL); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", pageURL, err)
	}
	if err := loading.WaitLoad(); err != nil {
		return "", fmt.Errorf("waiting for %s to load: %w", pageURL, err)
	}

	// A missing element is not an error here; the caller decides what an
	// absent photo means.
	if r.opts.Selector != "" && r.opts.SettleTimeout > 0 {
		settle := page.Timeout(r.opts.SettleTimeout)
		_, _ = settle.Element(r.opts.Selector)
		settle.CancelTimeout()
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("reading rendered HTML: %w", err)
	}
	return html, nil
}

// Close shuts the browser down and removes its temporary profile.
func (r *Renderer) Close() error {
	err := r.browser.Close()
	r.launcher.Kill()
	r.launcher.Cleanup()
	return err
}
