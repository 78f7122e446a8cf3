// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package matcher

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var crossRefHeader = []string{"cpj_name", "gigaza_name", "accepted"}

// Decision is a recorded answer to "is this image that journalist?".
type Decision struct {
	// Name is the journalist's name as it appears in the record table.
	Name string
	// Image is the cached image file name, relative to the cache directory.
	Image string
	// Accepted is false for a rejected match; rejected names are never
	// fuzzy matched again.
	Accepted bool
}

// CrossRef is the persistent table of match decisions.
type CrossRef struct {
	path      string
	decisions map[string]Decision
	order     []string
	dirty     bool
}

// NewCrossRef returns an empty table that saves to path. An empty path keeps
// decisions in memory only.
func NewCrossRef(path string) *CrossRef {
	return &CrossRef{path: path, decisions: make(map[string]Decision)}
}

// LoadCrossRef reads the table at path. A missing file yields an empty table.
func LoadCrossRef(path string) (*CrossRef, error) {
	c := NewCrossRef(path)
	if path == "" {
		return c, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening cross-reference %s: %w", path, err)
	}
	defer f.Close()

	if err := c.read(f); err != nil {
		return nil, fmt.Errorf("reading cross-reference %s: %w", path, err)
	}
	return c, nil
}

func (c *CrossRef) read(r io.Reader) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, h := range crossRefHeader {
		if _, ok := col[h]; !ok {
			return fmt.Errorf("missing column %q", h)
		}
	}

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		field := func(name string) string {
			if i := col[name]; i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		name := field("cpj_name")
		switch strings.ToLower(field("accepted")) {
		case "yes":
			c.put(Decision{Name: name, Image: field("gigaza_name"), Accepted: true})
		case "no":
			c.put(Decision{Name: name, Image: field("gigaza_name")})
		}
	}
}

// Get returns the recorded decision for a journalist name.
func (c *CrossRef) Get(name string) (Decision, bool) {
	d, ok := c.decisions[name]
	return d, ok
}

// Set records a decision, replacing any earlier one for the same name.
func (c *CrossRef) Set(d Decision) {
	c.put(d)
	c.dirty = true
}

func (c *CrossRef) put(d Decision) {
	if _, ok := c.decisions[d.Name]; !ok {
		c.order = append(c.order, d.Name)
	}
	c.decisions[d.Name] = d
}

// Len returns the number of recorded decisions.
func (c *CrossRef) Len() int {
	return len(c.decisions)
}

// Write writes the table as CSV in the order decisions were first recorded.
func (c *CrossRef) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(crossRefHeader); err != nil {
		return err
	}
	for _, name := range c.order {
		d := c.decisions[name]
		accepted := "no"
		if d.Accepted {
			accepted = "yes"
		}
		if err := cw.Write([]string{d.Name, d.Image, accepted}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes the table back to its file when decisions have changed.
func (c *CrossRef) Save() error {
	if c.path == "" || !c.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", c.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".crossref-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	writeErr := c.Write(tmp)
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cross-reference: %w", errors.Join(writeErr, closeErr))
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming cross-reference: %w", err)
	}
	c.dirty = false
	return nil
}
