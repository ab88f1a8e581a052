// Package model defines shared data types used across the relay.
//
// Conventions:
//   - Identities: user-chosen display strings, uniqueness not enforced
//   - Timestamps: time.Time in UTC, serialized as RFC 3339
//   - Connection IDs: uuid.UUID, assigned at upgrade time
package model
