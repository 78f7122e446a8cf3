// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"fmt"

	pdfreader "github.com/ledongthuc/pdf"
)

// CountPages opens a written PDF and returns its page count.
func CountPages(path string) (int, error) {
	f, r, err := pdfreader.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return r.NumPage(), nil
}
