// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the notifier.
//
// Configuration comes from an optional YAML file (the path in the
// GLPI_NOTIFY_CONFIG environment variable or the --config flag) merged
// over built-in defaults. Credentials and connection settings may also
// be supplied as plain environment variables (GLPI_BASE_URL,
// GLPI_USER_TOKEN, ...), which take precedence over the file; this is
// how the notifier runs under service managers that inject environment
// from a secrets store.
package config
