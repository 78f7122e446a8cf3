// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package browser renders JavaScript-driven profile pages in headless Chrome.
package browser

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/go-rod/rod/lib/launcher"
)

// ErrNoBrowser is returned when no Chrome or Chromium binary can be found.
var ErrNoBrowser = errors.New("no Chrome or Chromium browser found")

// candidates are tried in order on PATH.
var candidates = []string{
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"chrome",
}

// executor abstracts command lookup and execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

var defaultExec = &osExecutor{}

// Locate returns the browser binary to launch. An explicit path must exist.
// Otherwise well-known names on PATH are tried, then rod's own lookup of
// standard install locations.
func Locate(explicit string) (string, error) {
	return locate(defaultExec, explicit, launcher.LookPath)
}

func locate(exec executor, explicit string, fallback func() (string, bool)) (string, error) {
	if explicit != "" {
		path, err := exec.LookPath(explicit)
		if err != nil {
			return "", fmt.Errorf("browser %s: %w", explicit, err)
		}
		return path, nil
	}

	for _, name := range candidates {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		if exec.RunSilent(path, "--version") == nil {
			return path, nil
		}
	}

	if fallback != nil {
		if path, ok := fallback(); ok {
			return path, nil
		}
	}
	return "", ErrNoBrowser
}
