// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

package notify

import "fmt"

// Outcome is the toast helper's report of what happened to a
// notification, carried in its exit code.
type Outcome int

const (
	// OutcomeSuccess: the toast was shown and ran its course.
	OutcomeSuccess Outcome = 0

	// OutcomeHidden: the toast was hidden before the user saw it.
	OutcomeHidden Outcome = 1

	// OutcomeDismissed: the user actively dismissed the toast.
	OutcomeDismissed Outcome = 2

	// OutcomeTimedOut: the toast expired without interaction.
	OutcomeTimedOut Outcome = 3

	// OutcomeButtonPressed: the user pressed the action button. The
	// notifier responds by opening the ticket URL.
	OutcomeButtonPressed Outcome = 4

	// OutcomeTextEntered: the user submitted text through the toast's
	// input field. The text itself is not retrievable through the exit
	// code and is ignored.
	OutcomeTextEntered Outcome = 5
)

// maxOutcome is the highest exit code that still describes a delivered
// toast. Anything above it is a helper failure.
const maxOutcome = int(OutcomeTextEntered)

func (outcome Outcome) String() string {
	switch outcome {
	case OutcomeSuccess:
		return "success"
	case OutcomeHidden:
		return "hidden"
	case OutcomeDismissed:
		return "dismissed"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeButtonPressed:
		return "button_pressed"
	case OutcomeTextEntered:
		return "text_entered"
	default:
		return fmt.Sprintf("outcome(%d)", int(outcome))
	}
}

// DeliveryError reports a helper invocation that exited outside the
// outcome range. The captured output is the only diagnostic the helper
// leaves behind, so it rides along.
type DeliveryError struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (deliveryError *DeliveryError) Error() string {
	message := fmt.Sprintf("notify: helper exited with code %d", deliveryError.ExitCode)
	if deliveryError.Stderr != "" {
		message += ": " + deliveryError.Stderr
	}
	return message
}
