// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble renders the memorial document: one page per journalist,
// in record order, with the cached photo above the name and details.
package assemble

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/lambelambe/internal/imagecache"
	"github.com/pdiddy/lambelambe/internal/logger"
	"github.com/pdiddy/lambelambe/pkg/types"
)

// ErrNoRecords is returned when there is nothing to put in the document.
var ErrNoRecords = errors.New("no records to assemble")

// ErrPageCount is returned when the written document does not hold one page
// per record.
var ErrPageCount = errors.New("page count does not match record count")

// ImageFinder locates the cached photo for a journalist. The matcher's
// Resolver implements it.
type ImageFinder interface {
	Find(name string) (string, types.ImageSource, error)
}

// ExactFinder finds only images cached under the journalist's exact name.
type ExactFinder struct {
	Dir string
}

// Find looks the name up in the cache directory.
func (e ExactFinder) Find(name string) (string, types.ImageSource, error) {
	if p, ok := imagecache.Lookup(e.Dir, name); ok {
		return p, types.SourceExact, nil
	}
	return "", types.SourceNone, nil
}

// Deps are the collaborators of an assembly run. All are optional.
type Deps struct {
	Finder ImageFinder
	Log    *slog.Logger
	Now    func() time.Time
}

// PageResult describes one rendered page.
type PageResult struct {
	Name      string
	Row       int
	Image     string
	Source    types.ImageSource
	Truncated bool
}

// Result holds the outcome of an assembly run.
type Result struct {
	Output    string
	Pages     []PageResult
	WithImage int
	Exact     int
	Matched   int
	NoImage   int
}

// Assemble writes one page per record to cfg.OutputPath. Missing or
// undecodable photos produce text-only pages. Failing to write the output,
// or a verified page count that differs from the record count, is an error.
func Assemble(ctx context.Context, d Deps, records []types.Journalist, cfg types.AssemblyConfig, w io.Writer) (Result, error) {
	log := logger.OrDiscard(d.Log)
	result := Result{Output: cfg.OutputPath}

	if len(records) == 0 {
		return result, ErrNoRecords
	}
	finder := d.Finder
	if finder == nil {
		finder = ExactFinder{Dir: cfg.CacheDir}
	}
	now := time.Now()
	if d.Now != nil {
		now = d.Now()
	}

	doc, err := newDocument(cfg, now)
	if err != nil {
		return result, err
	}

	fmt.Fprintf(w, "Creating PDF with %d pages...\n", len(records))
	for i, j := range records {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("assembly interrupted after %d of %d pages: %w", i, len(records), err)
		}
		fmt.Fprintf(w, "[%d/%d] Adding page for %s\n", i+1, len(records), j.Name)

		page := PageResult{Name: j.Name, Row: j.Row}
		imageName, p := "", (*photo)(nil)

		path, source, err := finder.Find(j.Name)
		if err != nil {
			log.Warn("image lookup failed", "name", j.Name, "error", err)
		}
		if path != "" {
			p, err = loadPhoto(path)
			if err == nil {
				imageName, err = doc.register(p)
			}
			if err != nil {
				fmt.Fprintf(w, "  Error adding image for %s: %v\n", j.Name, err)
				log.Warn("image skipped", "name", j.Name, "path", path, "error", err)
			}
		}

		plan := doc.addPage(j, imageName, p)
		if plan.HasImage {
			page.Image = path
			page.Source = source
		}
		if plan.Truncated {
			page.Truncated = true
			log.Warn("text truncated to fit page", "name", j.Name, "row", j.Row)
		}
		result.add(page)
	}

	if err := writeOutput(doc, cfg.OutputPath); err != nil {
		return result, err
	}

	if cfg.Verify {
		n, err := CountPages(cfg.OutputPath)
		if err != nil {
			return result, fmt.Errorf("verifying %s: %w", cfg.OutputPath, err)
		}
		if n != len(records) {
			return result, fmt.Errorf("%w: %d pages, %d records", ErrPageCount, n, len(records))
		}
	}

	printSummary(w, result)
	return result, nil
}

func (r *Result) add(p PageResult) {
	r.Pages = append(r.Pages, p)
	switch p.Source {
	case types.SourceExact:
		r.WithImage++
		r.Exact++
	case types.SourceMatched:
		r.WithImage++
		r.Matched++
	default:
		r.NoImage++
	}
}

func writeOutput(doc *document, path string) error {
	if err := doc.pdf.Error(); err != nil {
		return fmt.Errorf("rendering document: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := doc.pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func printSummary(w io.Writer, r Result) {
	total := len(r.Pages)
	fmt.Fprintf(w, "\nPDF created: %s\n", r.Output)
	fmt.Fprintf(w, "Total pages: %d\n", total)
	fmt.Fprintf(w, "Pages with images: %d/%d\n", r.WithImage, total)
	fmt.Fprintf(w, "  - exact name: %d\n", r.Exact)
	fmt.Fprintf(w, "  - fuzzy match: %d\n", r.Matched)
	fmt.Fprintf(w, "Pages without images: %d\n", r.NoImage)
}
