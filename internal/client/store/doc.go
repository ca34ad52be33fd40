// Package store is the local persistent store: a synchronous key-value table
// in a SQLite database, holding cached session credentials, cached task and
// document snapshots, and user-added documents for the fully-local mode.
//
// Snapshot entries are written whole or not at all; a snapshot confirmed
// empty by the remote is deleted rather than written as an empty list, so a
// later offline read reports "no cached data" instead of resurfacing stale
// records.
package store
