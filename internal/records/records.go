// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package records loads the journalist record set from the CSV export.
package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/pdiddy/lambelambe/pkg/types"
)

// ErrMissingColumn is returned when the header lacks the name column.
var ErrMissingColumn = errors.New("required column missing from header")

// Rejection records a data row that produced no Journalist.
type Rejection struct {
	Row    int
	Reason string
}

// Set is the ordered record set read from one CSV file.
type Set struct {
	Records  []types.Journalist
	Rejected []Rejection
}

// Len returns the number of accepted records.
func (s Set) Len() int {
	return len(s.Records)
}

// Load opens path and reads the record set from it.
func Load(path string, cols types.ColumnConfig) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return Set{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	set, err := Read(f, cols)
	if err != nil {
		return Set{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return set, nil
}

// Read parses a UTF-8 CSV stream (an optional byte order mark is dropped).
// Any syntax error, including a row with the wrong number of fields, fails
// the whole read. Rows with an empty name are rejected, not returned.
func Read(r io.Reader, cols types.ColumnConfig) (Set, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)

	header, err := reader.Read()
	if err == io.EOF {
		return Set{}, fmt.Errorf("empty file: %w", ErrMissingColumn)
	}
	if err != nil {
		return Set{}, fmt.Errorf("reading header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	nameCol, ok := idx[cols.Name]
	if !ok {
		return Set{}, fmt.Errorf("%q: %w", cols.Name, ErrMissingColumn)
	}

	get := func(row []string, column string) string {
		i, ok := idx[column]
		if !ok || column == "" {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var set Set
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Set{}, fmt.Errorf("parsing row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		name := strings.TrimSpace(row[nameCol])
		if name == "" {
			set.Rejected = append(set.Rejected, Rejection{Row: line, Reason: "empty name"})
			continue
		}

		set.Records = append(set.Records, types.Journalist{
			Name:          name,
			ProfileURL:    get(row, cols.ProfileURL),
			Date:          get(row, cols.Date),
			Affiliation:   get(row, cols.Affiliation),
			Location:      get(row, cols.Location),
			Circumstances: get(row, cols.Circumstances),
			Row:           line,
		})
	}
	return set, nil
}
