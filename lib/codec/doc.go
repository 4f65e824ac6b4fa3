// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding used for the notifier's
// durable state files. Encoding is configured for Core Deterministic
// Encoding (RFC 8949 §4.2) so the same seen-set always produces
// identical bytes; an unchanged set rewritten to disk is a byte-for-byte
// no-op, which makes state files diffable and keeps backup tools quiet.
//
// Consumers import only this package, never fxamacker/cbor directly.
package codec
