//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Acquire downloads profile photos for every record in the CSV.
func Acquire() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath, "acquire", "--cache-dir", cacheDir)
}
