// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/lambelambe/pkg/types"
)

// ExportYAML writes the latest attempt per name as a YAML list.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, status types.AcquireStatus) error {
	attempts, err := s.Latest(ctx, status)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(nonNil(attempts)); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the latest attempt per name as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, status types.AcquireStatus) error {
	attempts, err := s.Latest(ctx, status)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(nonNil(attempts)); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func nonNil(a []types.Attempt) []types.Attempt {
	if a == nil {
		return []types.Attempt{}
	}
	return a
}
