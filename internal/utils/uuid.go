// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

// Package utils holds small shared helpers with no domain knowledge.
package utils

import "github.com/google/uuid"

// UUIDGenerator produces the globally unique, time-ordered identifiers used
// as operation idempotency keys and conflict ids.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a UUIDv7 string. V7 keeps ids roughly time-ordered, which
// keeps the queue table's primary key index append-friendly. Falls back to a
// random v4 if v7 generation fails.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
