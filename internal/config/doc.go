// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

// Package config loads the wealthkeeper client configuration from
// environment variables, command-line flags and an optional JSON file,
// merging the sources in that priority order (first non-zero value wins).
//
// [GetClientConfig] is the entry point used by the composition root; it
// returns a validated [ClientConfig] view with sync tunables normalized to
// their defaults.
package config
