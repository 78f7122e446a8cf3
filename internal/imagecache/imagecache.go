// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imagecache derives cache file names from journalist names. Image
// Acquisition writes and Document Assembly reads through the same functions,
// so both stages agree on where a journalist's photo lives.
package imagecache

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrEmptyStem is returned when a name has no characters left after sanitising.
var ErrEmptyStem = errors.New("name has no usable filename characters")

// Extensions lists the image extensions the cache recognises, in lookup order.
var Extensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// DefaultExt is used when an image URL carries no recognised extension.
const DefaultExt = ".jpg"

var unsafeChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// Stem returns the filesystem-safe file stem for a journalist name. It is a
// pure function: the same name always yields the same stem.
func Stem(name string) string {
	name = norm.NFC.String(name)
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(name)
}

// Path returns the cache path for name with the given extension.
func Path(dir, name, ext string) (string, error) {
	stem := Stem(name)
	if stem == "" {
		return "", fmt.Errorf("%q: %w", name, ErrEmptyStem)
	}
	return filepath.Join(dir, stem+ext), nil
}

// Lookup returns the cached image for name, trying each known extension in
// order. The second return value is false when no image exists.
func Lookup(dir, name string) (string, bool) {
	stem := Stem(name)
	if stem == "" {
		return "", false
	}
	for _, ext := range Extensions {
		p := filepath.Join(dir, stem+ext)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// Index maps the stem of every cached image in dir to its path. A missing
// directory yields an empty index.
func Index(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading image directory %s: %w", dir, err)
	}

	index := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := knownExt(entry.Name())
		if ext == "" {
			continue
		}
		stem := entry.Name()[:len(entry.Name())-len(ext)]
		if _, seen := index[stem]; !seen {
			index[stem] = filepath.Join(dir, entry.Name())
		}
	}
	return index, nil
}

// ExtFromURL returns the image extension of the URL path, or DefaultExt when
// it is missing or not a recognised image type.
func ExtFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DefaultExt
	}
	if ext := knownExt(path.Base(u.Path)); ext != "" {
		return strings.ToLower(ext)
	}
	return DefaultExt
}

// RemoveSiblings deletes cached images for name whose extension differs from
// keepExt, leaving at most one image per journalist.
func RemoveSiblings(dir, name, keepExt string) error {
	stem := Stem(name)
	if stem == "" {
		return nil
	}
	for _, ext := range Extensions {
		if ext == keepExt {
			continue
		}
		err := os.Remove(filepath.Join(dir, stem+ext))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing stale image %s%s: %w", stem, ext, err)
		}
	}
	return nil
}

// knownExt returns the extension of filename if it is a recognised image
// extension (case-insensitive), or "".
func knownExt(filename string) string {
	ext := filepath.Ext(filename)
	lower := strings.ToLower(ext)
	for _, e := range Extensions {
		if lower == e {
			return ext
		}
	}
	return ""
}
