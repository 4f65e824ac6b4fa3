// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

package toastdef

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"
)

// Profile customizes toast presentation. Zero values mean "use the
// default".
type Profile struct {
	// ButtonLabel is the text on the action button. Defaults to "Open".
	ButtonLabel string `json:"button_label"`

	// Duration is either "short" or "long". Empty means the platform
	// default.
	Duration string `json:"duration"`

	// LogoPath overrides the configured logo for toasts from this
	// profile.
	LogoPath string `json:"logo_path"`

	// URLTemplate overrides the configured ticket URL template. The
	// literal "{id}" is replaced with the ticket id.
	URLTemplate string `json:"url_template"`

	// Silent suppresses the notification sound.
	Silent bool `json:"silent"`
}

// Default returns the built-in presentation.
func Default() Profile {
	return Profile{ButtonLabel: "Open"}
}

// Parse decodes a JSONC profile document.
func Parse(data []byte) (Profile, error) {
	profile := Default()
	if err := json.Unmarshal(jsonc.ToJSON(data), &profile); err != nil {
		return Profile{}, fmt.Errorf("toastdef: parsing profile: %w", err)
	}
	if err := profile.validate(); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// ReadFile loads a profile from path. A missing file returns the
// default profile without error.
func ReadFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Profile{}, fmt.Errorf("toastdef: reading %s: %w", path, err)
	}
	profile, err := Parse(data)
	if err != nil {
		return Profile{}, fmt.Errorf("toastdef: %s: %w", path, err)
	}
	return profile, nil
}

func (profile Profile) validate() error {
	switch profile.Duration {
	case "", "short", "long":
	default:
		return fmt.Errorf("toastdef: duration must be \"short\" or \"long\", got %q", profile.Duration)
	}
	if profile.URLTemplate != "" && !strings.Contains(profile.URLTemplate, "{id}") {
		return fmt.Errorf("toastdef: url_template must contain the {id} placeholder")
	}
	return nil
}
