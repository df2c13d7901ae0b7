// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityType identifies one of the closed set of synchronizable domain
// entities. The sync engine is generic over the payload shape behind each
// type and only the conflict resolver ever looks inside a payload.
type EntityType string

const (
	EntityTransaction EntityType = "transaction"
	EntityAccount     EntityType = "account"
	EntityBudget      EntityType = "budget"
	EntityGoal        EntityType = "goal"
	EntityCategory    EntityType = "category"
)

// AllEntityTypes returns the closed set of entity types in a stable order.
// The orchestrator iterates this set when spawning per-type workers.
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityTransaction,
		EntityAccount,
		EntityBudget,
		EntityGoal,
		EntityCategory,
	}
}

// Valid reports whether t is a member of the closed entity type set.
func (t EntityType) Valid() bool {
	switch t {
	case EntityTransaction, EntityAccount, EntityBudget, EntityGoal, EntityCategory:
		return true
	default:
		return false
	}
}

// EntityKey uniquely addresses one entity instance across the engine.
// Per-entity ordering, locking and coalescing are all keyed by this pair.
type EntityKey struct {
	Type EntityType `json:"type"`
	ID   string     `json:"id"`
}

func (k EntityKey) String() string {
	return string(k.Type) + "/" + k.ID
}

// Transaction is the payload shape for EntityTransaction.
// Amounts are decimals to avoid binary-float drift in financial data.
type Transaction struct {
	AccountID  string          `json:"account_id"`
	CategoryID string          `json:"category_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Date       time.Time       `json:"date"`
	Payee      string          `json:"payee,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// Account is the payload shape for EntityAccount.
type Account struct {
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
	Archived bool            `json:"archived,omitempty"`
	Notes    string          `json:"notes,omitempty"`
}

// Budget is the payload shape for EntityBudget.
type Budget struct {
	CategoryID string          `json:"category_id"`
	Period     string          `json:"period"`
	Limit      decimal.Decimal `json:"limit"`
	Rollover   bool            `json:"rollover,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// Goal is the payload shape for EntityGoal.
type Goal struct {
	Name      string          `json:"name"`
	Target    decimal.Decimal `json:"target"`
	Saved     decimal.Decimal `json:"saved"`
	Deadline  *time.Time      `json:"deadline,omitempty"`
	AccountID string          `json:"account_id,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

// Category is the payload shape for EntityCategory. Categories carry only
// structural fields, so conflicts on them resolve by last-write-wins without
// field-level reconciliation.
type Category struct {
	Name     string `json:"name"`
	Color    string `json:"color,omitempty"`
	Icon     string `json:"icon,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
}
