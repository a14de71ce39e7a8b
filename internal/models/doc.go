// Package models defines the core domain models for hearthledger.
//
// # Money
//
// Every monetary value in this package is an int64 count of currency
// minor units (cents). Split arithmetic is never performed in floating
// point: amounts enter as cents at the API boundary and stay cents all
// the way through storage. This is what makes the exact-sum invariant
// (the shares of an obligation always add up to its total) enforceable
// rather than approximate.
//
// # Current Models
//
//   - Obligation: a shared cost to be divided among household members
//   - Share: one member's computed portion of an obligation
//   - SplitResult: the full computed split plus its audit details
//   - Payment: an append-only settlement record against a share
//   - Balance: a member's derived position (owed - paid), never stored
//   - Household: a roster of members who share obligations
//   - User: a registered account
//
// # Design Principles
//
//  1. Balances are always derived from payments, never stored as
//     mutable state, so they cannot drift.
//  2. Relationships are ID strings, not object pointers; no circular
//     references between models.
//  3. Split results are ordered slices, not maps, so output is
//     deterministic and reproducible.
package models
