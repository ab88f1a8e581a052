// Package session implements the Session Registry component.
//
// The Session Registry:
//   - Owns the mapping of connection IDs to declared identities
//   - Is the single source of truth for "who is online"
//   - Serializes all reads and writes behind one lock
//   - Does not enforce identity uniqueness; two connections may claim
//     the same identity and coexist as separate entries
package session
