// Package cli provides the interactive liftfield command-line client.
//
// It wires configuration, the local sqlite store, the identity provider, the
// remote document gateway and the asset-cache worker into an interactive
// REPL that supports online and offline operation. Typical flow: restore or
// prompt for credentials, start a background connectivity watcher, and
// execute user commands.
//
// Key features:
//   - Login / Register / Logout (online with offline session restore)
//   - Task list and status actions: accept, reject, complete, reset
//   - Document library: list, add, delete, clear, search
//   - Sync with the remote collections
//   - Debug status and local data wipe
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL and Watch for details.
package cli
