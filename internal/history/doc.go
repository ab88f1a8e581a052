// Package history implements message retention policies.
//
// Backends:
//   - memory: bounded in-process ring, oldest records evicted first
//   - postgres: batched inserts into a messages table via pgx
//   - none: records are discarded
//
// Retention is a policy decision, not a routing concern: the router
// appends every record it constructs and never reads history back.
package history
