// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

// Package client implements the sync engine client runtime.
//
// It wires the durable queue store, the transport adapters, and the sync
// orchestrator into a single process lifecycle with graceful shutdown.
package client
