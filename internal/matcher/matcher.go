// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package matcher finds a journalist's cached photo when it was stored under a
// slightly different spelling of the name, for example by a gallery harvest.
package matcher

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/lambelambe/internal/imagecache"
	"github.com/pdiddy/lambelambe/internal/logger"
	"github.com/pdiddy/lambelambe/pkg/types"
)

const (
	DefaultThreshold  = 0.7
	DefaultAutoAccept = 0.85
)

// Candidate is the best fuzzy match for a name.
type Candidate struct {
	Stem  string
	Path  string
	Score float64
}

// Confirmer decides whether a fuzzy candidate is the right person.
type Confirmer interface {
	Confirm(name string, c Candidate) (bool, error)
}

// PromptConfirmer asks on a terminal.
type PromptConfirmer struct {
	In  *bufio.Reader
	Out io.Writer
}

// NewPromptConfirmer returns a confirmer reading answers from in.
func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{In: bufio.NewReader(in), Out: out}
}

// Confirm prints the candidate and reads a y/n answer. End of input is "no".
func (p *PromptConfirmer) Confirm(name string, c Candidate) (bool, error) {
	fmt.Fprintf(p.Out, "  Fuzzy match score: %.2f %-33s %s\n", c.Score, name, filepath.Base(c.Path))
	fmt.Fprint(p.Out, "    Accept this match? (y/n): ")
	line, err := p.In.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	fmt.Fprintln(p.Out, "    Ignored")
	return false, nil
}

type picture struct {
	stem       string
	path       string
	normalized string
}

// Resolver finds the cached image for a journalist. Exact cache hits always
// win; fuzzy matching runs only when enabled.
type Resolver struct {
	dir      string
	cfg      types.MatchConfig
	cross    *CrossRef
	confirm  Confirmer
	pictures []picture
	log      *slog.Logger
}

// NewResolver indexes the images in dir. cross may be nil when matching is
// disabled; confirm may be nil to accept only scores at or above the
// auto-accept level.
func NewResolver(dir string, cfg types.MatchConfig, cross *CrossRef, confirm Confirmer, log *slog.Logger) (*Resolver, error) {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.AutoAccept <= 0 {
		cfg.AutoAccept = DefaultAutoAccept
	}
	if cross == nil {
		cross = NewCrossRef("")
	}

	r := &Resolver{dir: dir, cfg: cfg, cross: cross, confirm: confirm, log: logger.OrDiscard(log)}
	if !cfg.Enabled {
		return r, nil
	}

	index, err := imagecache.Index(dir)
	if err != nil {
		return nil, err
	}
	for stem, path := range index {
		r.pictures = append(r.pictures, picture{stem: stem, path: path, normalized: Normalize(stem)})
	}
	sort.Slice(r.pictures, func(i, j int) bool { return r.pictures[i].stem < r.pictures[j].stem })
	return r, nil
}

// Find returns the image path for name and where it came from. An empty path
// with types.SourceNone means the page is rendered without a photo.
func (r *Resolver) Find(name string) (string, types.ImageSource, error) {
	if p, ok := imagecache.Lookup(r.dir, name); ok {
		return p, types.SourceExact, nil
	}
	if !r.cfg.Enabled {
		return "", types.SourceNone, nil
	}

	if d, ok := r.cross.Get(name); ok {
		if !d.Accepted {
			return "", types.SourceNone, nil
		}
		p := filepath.Join(r.dir, d.Image)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, types.SourceMatched, nil
		}
		r.log.Warn("accepted match no longer cached", "name", name, "image", d.Image)
	}

	c, ok := r.Best(name)
	if !ok {
		return "", types.SourceNone, nil
	}

	accepted := c.Score >= r.cfg.AutoAccept
	if r.confirm != nil {
		var err error
		accepted, err = r.confirm.Confirm(name, c)
		if err != nil {
			return "", types.SourceNone, fmt.Errorf("confirming match for %q: %w", name, err)
		}
		r.cross.Set(Decision{Name: name, Image: filepath.Base(c.Path), Accepted: accepted})
	} else if accepted {
		r.cross.Set(Decision{Name: name, Image: filepath.Base(c.Path), Accepted: true})
	}

	if !accepted {
		r.log.Debug("fuzzy match declined", "name", name, "candidate", c.Stem, "score", c.Score)
		return "", types.SourceNone, nil
	}
	r.log.Info("fuzzy match accepted", "name", name, "candidate", c.Stem, "score", c.Score)
	return c.Path, types.SourceMatched, nil
}

// Best returns the highest scoring cached image for name whose score exceeds
// the threshold. Ties go to the alphabetically first stem.
func (r *Resolver) Best(name string) (Candidate, bool) {
	target := Normalize(name)
	var best Candidate
	found := false
	for _, p := range r.pictures {
		score := Similarity(target, p.normalized)
		if score > r.cfg.Threshold && (!found || score > best.Score) {
			best = Candidate{Stem: p.stem, Path: p.path, Score: score}
			found = true
		}
	}
	return best, found
}

// Save persists new match decisions.
func (r *Resolver) Save() error {
	return r.cross.Save()
}
