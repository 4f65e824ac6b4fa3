// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// helperName returns the platform's toast helper binary name.
func helperName() string {
	if runtime.GOOS == "windows" {
		return "SnoreToast.exe"
	}
	return "snoretoast"
}

// ResolveHelper locates the toast helper binary. Precedence: next to
// our own executable, then the configured helper directory, then PATH.
// The first two make a portable unzip-and-run deployment work without
// touching PATH.
func ResolveHelper(helperDir string) (string, error) {
	name := helperName()

	if executable, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(executable), name)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	if helperDir != "" {
		candidate := filepath.Join(helperDir, name)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("notify: toast helper %q not found beside the executable, in the helper directory, or on PATH", name)
}

// ResolveLogo picks the toast logo. Precedence: the explicitly
// configured path, an assets directory beside our executable, then the
// cached copy in the data directory. Empty means no logo.
func ResolveLogo(configured, cached string) string {
	if configured != "" && fileExists(configured) {
		return configured
	}
	if executable, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(executable), "assets", "logo.png")
		if fileExists(candidate) {
			return candidate
		}
	}
	if cached != "" && fileExists(cached) {
		return cached
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
