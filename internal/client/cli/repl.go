package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Tasks(ctx context.Context) error
	Accept(ctx context.Context, id string) error
	Reject(ctx context.Context, id, reason string) error
	Complete(ctx context.Context, id string) error
	Reset(ctx context.Context, id string) error
	Docs(ctx context.Context) error
	AddDoc(ctx context.Context) error
	DelDoc(ctx context.Context, id string) error
	ClearDocs(ctx context.Context) error
	Search(ctx context.Context, query string) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
	ClearData(ctx context.Context) error
	SeedTask(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the liftfield CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                     — show available commands
//	  - register                 — create an account
//	  - login                    — authenticate
//	  - exit | quit              — leave the program
//
//	Logged in:
//	  - (t)asks                  — list work orders
//	  - accept <id>              — take a new task into work
//	  - reject <id> [reason]     — reject a new task
//	  - complete <id>            — finish a task in progress
//	  - reset <id>               — return a task to new
//	  - (d)ocs                   — list the document library
//	  - adddoc                   — add a document (interactive)
//	  - deldoc <id>              — delete one document
//	  - cleardocs                — delete the whole library
//	  - search <text>            — filter documents by name or category
//	  - sync                     — refresh from the remote collections
//	  - status                   — show the debug status snapshot
//	  - cleardata                — wipe all local data and sign out
//	  - seedtask                 — create a sample task (test data)
//	  - logout                   — log out
//	  - exit | quit              — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("lift %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (t)asks, accept, reject, complete, reset, (d)ocs, adddoc, deldoc, cleardocs, search, sync, status, cleardata, seedtask, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "t", "tasks":
			_ = a.Tasks(ctx)

		case "accept":
			if len(args) == 0 {
				printlnFn("Usage: accept <id>")
				continue
			}
			_ = a.Accept(ctx, args[0])

		case "reject":
			if len(args) == 0 {
				printlnFn("Usage: reject <id> [reason]")
				continue
			}
			_ = a.Reject(ctx, args[0], strings.Join(args[1:], " "))

		case "complete":
			if len(args) == 0 {
				printlnFn("Usage: complete <id>")
				continue
			}
			_ = a.Complete(ctx, args[0])

		case "reset":
			if len(args) == 0 {
				printlnFn("Usage: reset <id>")
				continue
			}
			_ = a.Reset(ctx, args[0])

		case "d", "docs":
			_ = a.Docs(ctx)

		case "adddoc":
			_ = a.AddDoc(ctx)

		case "deldoc":
			if len(args) == 0 {
				printlnFn("Usage: deldoc <id>")
				continue
			}
			_ = a.DelDoc(ctx, args[0])

		case "cleardocs":
			_ = a.ClearDocs(ctx)

		case "search":
			if len(args) == 0 {
				printlnFn("Usage: search <text>")
				continue
			}
			_ = a.Search(ctx, strings.Join(args, " "))

		case "sync":
			_ = a.Sync(ctx)

		case "status":
			_ = a.Status(ctx)

		case "cleardata":
			_ = a.ClearData(ctx)

		case "seedtask":
			_ = a.SeedTask(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
