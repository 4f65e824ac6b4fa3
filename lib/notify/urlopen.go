// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// openInBrowser hands a URL to the platform launcher. Start, don't
// wait: the browser may outlive the poll cycle.
func openInBrowser(ctx context.Context, url string) error {
	var command *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		command = exec.CommandContext(ctx, "cmd", "/c", "start", "", url)
	case "darwin":
		command = exec.CommandContext(ctx, "open", url)
	default:
		command = exec.CommandContext(ctx, "xdg-open", url)
	}

	if err := command.Start(); err != nil {
		return fmt.Errorf("notify: launching browser: %w", err)
	}
	// Reap the launcher in the background so it does not linger as a
	// zombie.
	go command.Wait()
	return nil
}
