// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads journalist profile photos into the image cache.
// Each record's profile page is rendered, the photo URL is resolved, and the
// image is stored under a file name derived from the journalist's name.
package acquire

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/pdiddy/lambelambe/internal/httputil"
	"github.com/pdiddy/lambelambe/internal/imagecache"
	"github.com/pdiddy/lambelambe/internal/logger"
	"github.com/pdiddy/lambelambe/pkg/types"
)

// Renderer returns the HTML of a profile page.
type Renderer interface {
	Render(ctx context.Context, pageURL string) (string, error)
}

// StaticRenderer returns the page as served, without running scripts.
type StaticRenderer struct {
	Client *httputil.Client
}

// Render fetches pageURL over plain HTTP.
func (s StaticRenderer) Render(ctx context.Context, pageURL string) (string, error) {
	body, err := s.Client.Get(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Paced wraps a renderer that does not go through the HTTP client so its
// page loads observe the same per-host spacing as downloads.
func Paced(r Renderer, c *httputil.Client) Renderer {
	return pacedRenderer{next: r, client: c}
}

type pacedRenderer struct {
	next   Renderer
	client *httputil.Client
}

func (p pacedRenderer) Render(ctx context.Context, pageURL string) (string, error) {
	if err := p.client.Wait(ctx, pageURL); err != nil {
		return "", err
	}
	return p.next.Render(ctx, pageURL)
}

// Recorder stores acquisition outcomes. The ledger implements it.
type Recorder interface {
	Record(ctx context.Context, a types.Attempt) error
}

// Deps are the collaborators of a batch. Client and Renderer are required.
type Deps struct {
	Client   *httputil.Client
	Renderer Renderer
	Recorder Recorder
	Log      *slog.Logger
	Now      func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now().UTC()
}

// BatchResult holds the outcome of a batch acquisition run.
type BatchResult struct {
	Downloaded int
	NoImage    int
	NoSource   int
	Failed     int
	Attempts   []types.Attempt
}

// Total returns the number of records processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.NoImage + r.NoSource + r.Failed
}

// HasFailures reports whether any record failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// AcquireImage fetches one journalist's photo into cfg.CacheDir. The returned
// attempt always carries a status; the error explains a failed status.
func AcquireImage(ctx context.Context, d Deps, j types.Journalist, cfg types.AcquisitionConfig) (types.Attempt, error) {
	a := types.Attempt{Name: j.Name, Row: j.Row, ProfileURL: j.ProfileURL, At: d.now()}

	fail := func(err error) (types.Attempt, error) {
		a.Status = types.StatusFailed
		a.Error = err.Error()
		return a, err
	}

	if !j.HasProfile() {
		a.Status = types.StatusNoSource
		return a, nil
	}
	if imagecache.Stem(j.Name) == "" {
		return fail(fmt.Errorf("%q: %w", j.Name, imagecache.ErrEmptyStem))
	}
	if u, err := url.Parse(j.ProfileURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fail(fmt.Errorf("malformed profile URL %q", j.ProfileURL))
	}

	html, err := d.Renderer.Render(ctx, j.ProfileURL)
	if err != nil {
		return fail(fmt.Errorf("rendering profile page: %w", err))
	}

	imageURL, err := ResolveImageURL(html, j.ProfileURL, ResolveOptions{
		Selector:  cfg.Selector,
		LeadImage: cfg.LeadImageFallback,
	})
	if err == ErrNoImage {
		a.Status = types.StatusNoImage
		return a, nil
	}
	if err != nil {
		return fail(err)
	}
	a.ImageURL = imageURL

	ext := imagecache.ExtFromURL(imageURL)
	dest, err := imagecache.Path(cfg.CacheDir, j.Name, ext)
	if err != nil {
		return fail(err)
	}
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return fail(fmt.Errorf("creating directory %s: %w", cfg.CacheDir, err))
	}
	if err := d.Client.Download(ctx, imageURL, dest); err != nil {
		return fail(fmt.Errorf("downloading image: %w", err))
	}
	if err := imagecache.RemoveSiblings(cfg.CacheDir, j.Name, ext); err != nil {
		logger.OrDiscard(d.Log).Warn("stale cache file kept", "name", j.Name, "error", err)
	}

	a.FilePath = dest
	a.Status = types.StatusDownloaded
	return a, nil
}

// AcquireBatch processes records in order, printing per-record status and a
// summary. A failed record never stops the batch; cancelling ctx stops it
// before the next record.
func AcquireBatch(ctx context.Context, d Deps, records []types.Journalist, cfg types.AcquisitionConfig, w io.Writer) BatchResult {
	log := logger.OrDiscard(d.Log)
	var result BatchResult

	for i, j := range records {
		if err := ctx.Err(); err != nil {
			fmt.Fprintf(w, "stopped: %d record(s) not processed (%v)\n", len(records)-i, err)
			break
		}

		fmt.Fprintf(w, "[%d/%d] %s\n", i+1, len(records), j.Name)
		a, err := AcquireImage(ctx, d, j, cfg)

		switch a.Status {
		case types.StatusDownloaded:
			fmt.Fprintf(w, "  downloaded: %s\n", a.FilePath)
			result.Downloaded++
		case types.StatusNoImage:
			fmt.Fprintf(w, "  no image found\n")
			result.NoImage++
		case types.StatusNoSource:
			fmt.Fprintf(w, "  no profile URL\n")
			result.NoSource++
		default:
			fmt.Fprintf(w, "  failed: %v\n", err)
			log.Warn("acquisition failed", "name", j.Name, "row", j.Row, "url", j.ProfileURL, "error", err)
			result.Failed++
		}
		result.Attempts = append(result.Attempts, a)

		if d.Recorder != nil {
			if err := d.Recorder.Record(ctx, a); err != nil {
				log.Error("recording attempt", "name", j.Name, "error", err)
			}
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d no image, %d no profile URL, %d failed (total: %d)\n",
		result.Downloaded, result.NoImage, result.NoSource, result.Failed, result.Total())
	return result
}
