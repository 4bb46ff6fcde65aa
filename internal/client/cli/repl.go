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
	Sync(ctx context.Context) error
	Upload(ctx context.Context) error
	Download(ctx context.Context) error
	AutoSync(ctx context.Context, arg string) error
	Status(ctx context.Context) error
	Pins(ctx context.Context) error
	PinCurrency(ctx context.Context, code string) error
	UnpinCurrency(ctx context.Context, code string) error
	Prefs(ctx context.Context) error
	SetPref(ctx context.Context, name, value string) error
	ListItinerary(ctx context.Context) error
	AddItineraryItem(ctx context.Context) error
	RemoveItineraryItem(ctx context.Context, id string) error
	History(ctx context.Context) error
	DeleteAll(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the tripsync CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Sync commands (sync, upload, download, delete-all, autosync, status)
// require a logged-in user; the local data commands work offline too.
//
// Any errors returned by command handlers are ignored here; handlers print
// and log their own errors. This keeps the REPL loop resilient and focused
// on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("tripsync> %s > ", statusFn()))
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
			printlnFn("Data commands: pins, pin <code>, unpin <code>, prefs, set <name> <value>,")
			printlnFn("               trips, addtrip, rmtrip <id>, history")
			if a.isLoggedIn() {
				printlnFn("Sync commands: sync, upload, download, autosync on|off, status, delete-all, logout")
			} else {
				printlnFn("Account:       register, login")
			}
			printlnFn("exit | quit")

		case "register":
			if a.isLoggedIn() {
				printlnFn("Already logged in.")
				continue
			}
			_ = a.Register(ctx)

		case "login":
			if a.isLoggedIn() {
				printlnFn("Already logged in.")
				continue
			}
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "sync":
			if !requireLogin(a) {
				continue
			}
			_ = a.Sync(ctx)

		case "upload":
			if !requireLogin(a) {
				continue
			}
			_ = a.Upload(ctx)

		case "download":
			if !requireLogin(a) {
				continue
			}
			_ = a.Download(ctx)

		case "autosync":
			if !requireLogin(a) {
				continue
			}
			if len(args) == 0 {
				printlnFn("Usage: autosync on|off")
				continue
			}
			_ = a.AutoSync(ctx, args[0])

		case "status":
			_ = a.Status(ctx)

		case "pins":
			_ = a.Pins(ctx)

		case "pin":
			if len(args) == 0 {
				printlnFn("Usage: pin <currency-code>")
				continue
			}
			_ = a.PinCurrency(ctx, args[0])

		case "unpin":
			if len(args) == 0 {
				printlnFn("Usage: unpin <currency-code>")
				continue
			}
			_ = a.UnpinCurrency(ctx, args[0])

		case "prefs":
			_ = a.Prefs(ctx)

		case "set":
			if len(args) < 2 {
				printlnFn("Usage: set <tab|numbers|locale|timezone> <value>")
				continue
			}
			_ = a.SetPref(ctx, args[0], strings.Join(args[1:], " "))

		case "trips":
			_ = a.ListItinerary(ctx)

		case "addtrip":
			_ = a.AddItineraryItem(ctx)

		case "rmtrip":
			if len(args) == 0 {
				printlnFn("Usage: rmtrip <id>")
				continue
			}
			_ = a.RemoveItineraryItem(ctx, args[0])

		case "history":
			_ = a.History(ctx)

		case "delete-all":
			if !requireLogin(a) {
				continue
			}
			_ = a.DeleteAll(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func requireLogin(a execIface) bool {
	if !a.isLoggedIn() {
		printlnFn("Please login first.")
		return false
	}
	return true
}
