// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gallery harvests portraits from a saved memorial gallery page.
// Each portrait image on the page is followed by a heading carrying the
// person's name; images are stored in the image cache under that name.
package gallery

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/lambelambe/internal/httputil"
	"github.com/pdiddy/lambelambe/internal/imagecache"
	"github.com/pdiddy/lambelambe/pkg/types"
)

// headingSelector matches the name heading under each portrait.
const headingSelector = "h2.elementor-heading-title"

// Entry is one portrait found on the gallery page.
type Entry struct {
	Title    string
	ImageURL string
}

// Parse walks the page in document order and pairs the first image after
// the previous heading with the next name heading. Headings without an
// image before them are ignored. Relative image URLs are resolved against
// baseURL when it is set.
func Parse(r io.Reader, baseURL string) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing gallery page: %w", err)
	}

	var base *url.URL
	if baseURL != "" {
		base, err = url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing base URL: %w", err)
		}
	}

	var entries []Entry
	pending := ""
	doc.Find("img, " + headingSelector).Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "img" {
			if pending == "" {
				pending = strings.TrimSpace(s.AttrOr("src", ""))
			}
			return
		}
		title := strings.Join(strings.Fields(s.Text()), " ")
		if pending == "" || title == "" {
			return
		}
		entries = append(entries, Entry{Title: title, ImageURL: resolve(base, pending)})
		pending = ""
	})
	return entries, nil
}

func resolve(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// Result holds the outcome of a harvest run.
type Result struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Total returns the number of entries processed.
func (r Result) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// Harvest downloads each entry into cfg.CacheDir unless an image with the
// same stem is already cached. Per-entry failures are reported and counted;
// only a cache directory that cannot be read or created is returned as an
// error.
func Harvest(ctx context.Context, client *httputil.Client, entries []Entry, cfg types.GalleryConfig, w io.Writer) (Result, error) {
	var result Result

	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return result, fmt.Errorf("creating directory %s: %w", cfg.CacheDir, err)
	}
	existing, err := imagecache.Index(cfg.CacheDir)
	if err != nil {
		return result, err
	}

	fmt.Fprintf(w, "Found %d entries\n", len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			fmt.Fprintf(w, "stopped: %v\n", err)
			break
		}

		stem := imagecache.Stem(e.Title)
		if _, ok := existing[stem]; ok {
			fmt.Fprintf(w, "  skipped (already cached): %s\n", e.Title)
			result.Skipped++
			continue
		}

		dest, err := imagecache.Path(cfg.CacheDir, e.Title, imagecache.ExtFromURL(e.ImageURL))
		if err == nil {
			err = client.Download(ctx, e.ImageURL, dest)
		}
		if err != nil {
			fmt.Fprintf(w, "  failed: %s: %v\n", e.Title, err)
			result.Failed++
			continue
		}

		fmt.Fprintf(w, "  downloaded: %s\n", e.Title)
		existing[stem] = dest
		result.Downloaded++
	}

	fmt.Fprintf(w, "\nHarvest summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result, nil
}
