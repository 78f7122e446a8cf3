//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Assemble writes the memorial PDF from the CSV and the image cache.
func Assemble() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "assemble", "--cache-dir", cacheDir, "--output", output)
}
