// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/glpinotify/glpinotify/lib/toastdef"
)

// Notification is one ticket announcement.
type Notification struct {
	TicketID  int64
	Title     string
	Requester string
}

// Config holds configuration for creating a Notifier.
type Config struct {
	// AppID is the application identifier the helper registers toasts
	// under. Required.
	AppID string

	// URLTemplate is the ticket URL with a literal "{id}" placeholder.
	// Empty disables the action button's open behavior.
	URLTemplate string

	// LogoPath is the resolved logo image, empty for none.
	LogoPath string

	// HelperPath is the resolved toast helper binary. Required.
	HelperPath string

	// Profile customizes presentation. The zero value behaves like
	// toastdef.Default().
	Profile toastdef.Profile

	// Logger is used for structured logging. Defaults to slog.Default().
	Logger *slog.Logger

	// RunHelper executes the helper and returns its exit code and
	// captured output. Defaults to running the real process. Tests
	// inject this.
	RunHelper func(ctx context.Context, path string, args []string) (int, string, string, error)

	// OpenURL opens a URL in the user's browser. Defaults to the
	// platform launcher. Tests inject this.
	OpenURL func(ctx context.Context, url string) error
}

// Notifier delivers notifications one at a time through the helper.
type Notifier struct {
	appID       string
	urlTemplate string
	logoPath    string
	helperPath  string
	profile     toastdef.Profile
	logger      *slog.Logger
	runHelper   func(ctx context.Context, path string, args []string) (int, string, string, error)
	openURL     func(ctx context.Context, url string) error
}

// New creates a Notifier from the given configuration.
func New(config Config) (*Notifier, error) {
	if config.AppID == "" {
		return nil, fmt.Errorf("notify: AppID is required")
	}
	if config.HelperPath == "" {
		return nil, fmt.Errorf("notify: HelperPath is required")
	}

	profile := config.Profile
	if profile.ButtonLabel == "" {
		profile.ButtonLabel = toastdef.Default().ButtonLabel
	}
	if profile.URLTemplate != "" {
		config.URLTemplate = profile.URLTemplate
	}
	if profile.LogoPath != "" {
		config.LogoPath = profile.LogoPath
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	runHelper := config.RunHelper
	if runHelper == nil {
		runHelper = runHelperProcess
	}
	openURL := config.OpenURL
	if openURL == nil {
		openURL = openInBrowser
	}

	return &Notifier{
		appID:       config.AppID,
		urlTemplate: config.URLTemplate,
		logoPath:    config.LogoPath,
		helperPath:  config.HelperPath,
		profile:     profile,
		logger:      logger,
		runHelper:   runHelper,
		openURL:     openURL,
	}, nil
}

// Deliver shows one toast and blocks until the helper exits. A button
// press opens the ticket URL; that open happens at most once per
// delivery. Exit codes outside the outcome range become a
// *DeliveryError.
func (notifier *Notifier) Deliver(ctx context.Context, notification Notification) (Outcome, error) {
	args := notifier.helperArgs(notification)

	exitCode, stdout, stderr, err := notifier.runHelper(ctx, notifier.helperPath, args)
	if err != nil {
		return 0, fmt.Errorf("notify: running helper: %w", err)
	}
	if exitCode < 0 || exitCode > maxOutcome {
		return 0, &DeliveryError{ExitCode: exitCode, Stdout: stdout, Stderr: stderr}
	}

	outcome := Outcome(exitCode)
	notifier.logger.Debug("toast delivered",
		"ticket_id", notification.TicketID,
		"outcome", outcome.String())

	if outcome == OutcomeButtonPressed && notifier.urlTemplate != "" {
		url := TicketURL(notifier.urlTemplate, notification.TicketID)
		if err := notifier.openURL(ctx, url); err != nil {
			// The toast itself succeeded; a browser that will not start
			// is logged, not fatal.
			notifier.logger.Warn("opening ticket url failed", "url", url, "error", err)
		}
	}

	return outcome, nil
}

// helperArgs builds the SnoreToast command line for one notification.
func (notifier *Notifier) helperArgs(notification Notification) []string {
	title := fmt.Sprintf("New ticket #%d", notification.TicketID)
	message := notification.Title
	if message == "" {
		message = "(no title)"
	}
	if notification.Requester != "" {
		message += "\nRequester: " + notification.Requester
	}

	args := []string{
		"-t", title,
		"-m", message,
		// Stable per-ticket id so the OS collapses repeats of the same
		// notification.
		"-id", strconv.FormatInt(notification.TicketID, 10),
		"-appID", notifier.appID,
	}
	// A button that cannot open anything is worse than no button.
	if notifier.urlTemplate != "" {
		args = append(args, "-b", notifier.profile.ButtonLabel)
	}
	if notifier.logoPath != "" {
		args = append(args, "-p", notifier.logoPath)
	}
	if notifier.profile.Duration != "" {
		args = append(args, "-d", notifier.profile.Duration)
	}
	if notifier.profile.Silent {
		args = append(args, "-silent")
	}
	return args
}

// TicketURL substitutes the ticket id into a URL template.
func TicketURL(template string, ticketID int64) string {
	return strings.ReplaceAll(template, "{id}", strconv.FormatInt(ticketID, 10))
}

// runHelperProcess executes the helper for real, capturing both output
// streams. Outcome exit codes are not errors here; only a process that
// could not run at all is.
func runHelperProcess(ctx context.Context, path string, args []string) (int, string, string, error) {
	command := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	err := command.Run()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return exitError.ExitCode(), stdout.String(), stderr.String(), nil
		}
		return 0, "", "", err
	}
	return 0, stdout.String(), stderr.String(), nil
}
