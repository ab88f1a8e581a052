// Package database provides the PostgreSQL connection pool used by the
// optional message-history backend.
package database
