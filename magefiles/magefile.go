//go:build mage

// Package main contains Mage build targets for lambelambe developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/lambelambe/internal/assemble"
	"github.com/pdiddy/lambelambe/internal/imagecache"
)

const (
	binDir   = "bin"
	binName  = "lambelambe"
	cmdPkg   = "./cmd/lambelambe"
	cacheDir = "profile_pictures"
	output   = "lambelambe.pdf"
)

// binPath is the CLI built by Build and run by the stage targets.
var binPath = filepath.Join(binDir, binName)

// Init creates the image cache directory.
func Init() error {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", cacheDir, err)
	}
	fmt.Println("  ", cacheDir)
	fmt.Println("Project directories initialized.")
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	ldflags := "-X main.version=" + strings.TrimSpace(version)
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", binPath)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Pipeline builds the CLI and runs acquisition followed by assembly.
func Pipeline() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath, "pipeline", "--cache-dir", cacheDir, "--output", output)
}

// Stats prints the image cache contents by extension and the page count of
// the last assembled document.
func Stats() error {
	index, err := imagecache.Index(cacheDir)
	if err != nil {
		return err
	}
	byExt := make(map[string]int)
	for _, path := range index {
		byExt[strings.ToLower(filepath.Ext(path))]++
	}
	exts := make([]string, 0, len(byExt))
	for ext := range byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	fmt.Printf("Cached images (%s): %d\n", cacheDir, len(index))
	for _, ext := range exts {
		fmt.Printf("  %-6s %d\n", ext, byExt[ext])
	}

	if _, err := os.Stat(output); err != nil {
		fmt.Printf("Document (%s): not built\n", output)
		return nil
	}
	pages, err := assemble.CountPages(output)
	if err != nil {
		return err
	}
	fmt.Printf("Document (%s): %d pages\n", output, pages)
	return nil
}
