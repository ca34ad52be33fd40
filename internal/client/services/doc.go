// Package services implements the user-facing data operations over the gate:
// every read and mutation first asks the orchestrator for a route, then runs
// against the remote gateway or the local store accordingly. Remote reads
// that fail mid-flight degrade to the cached snapshot.
package services
