// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// ErrNoImage is returned when a profile page carries no usable photo URL.
var ErrNoImage = errors.New("no image found on page")

// DefaultSelector matches the photo element on cpj.org people pages.
const DefaultSelector = "img#photoUrl"

// sourceAttrs are read in order; lazy-loading pages keep the real URL in a
// data attribute and a placeholder in src.
var sourceAttrs = []string{"src", "data-src", "data-lazy-src"}

// ResolveOptions controls how the photo URL is found in a page.
type ResolveOptions struct {
	// Selector is the CSS selector of the photo element (default DefaultSelector).
	Selector string

	// LeadImage falls back to the page's lead image (og:image and similar)
	// when the selector matches nothing usable.
	LeadImage bool
}

// ResolveImageURL finds the photo URL in a rendered profile page and returns
// it as an absolute http(s) URL. Relative URLs are resolved against pageURL.
func ResolveImageURL(html, pageURL string, opts ResolveOptions) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parsing page URL: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	selector := opts.Selector
	if selector == "" {
		selector = DefaultSelector
	}

	var found string
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found = imageSource(s)
		return found == ""
	})

	if found == "" && opts.LeadImage {
		found = leadImage(html, base)
	}
	if found == "" {
		return "", ErrNoImage
	}

	ref, err := url.Parse(found)
	if err != nil {
		return "", fmt.Errorf("malformed image URL %q: %w", found, err)
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", fmt.Errorf("unsupported image URL %q", abs.String())
	}
	return abs.String(), nil
}

func imageSource(s *goquery.Selection) string {
	for _, attr := range sourceAttrs {
		v, ok := s.Attr(attr)
		v = strings.TrimSpace(v)
		if !ok || v == "" || strings.HasPrefix(strings.ToLower(v), "data:") {
			continue
		}
		return v
	}
	return ""
}

func leadImage(html string, base *url.URL) string {
	article, err := readability.FromReader(strings.NewReader(html), base)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.Image)
}
