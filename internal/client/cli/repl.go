package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Setup(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Go(ctx context.Context, path string) error
	Routes(ctx context.Context) error
}

// runREPL reads commands from reader and dispatches them to a until EOF,
// "exit"/"quit", or ctx cancellation.
//
// Prompt & Commands
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — sign in
//	  - go <path>      — open a screen
//	  - routes         — list reachable paths
//	  - exit | quit    — leave the program
//
//	Logged in, additionally:
//	  - setup          — answer security questions
//	  - whoami         — show the current session
//	  - logout         — sign out
//
// Errors returned by command handlers are ignored here; handlers report
// them to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("syllabify %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: setup, whoami, go <path>, routes, logout, exit")
			} else {
				printlnFn("Available commands: login, go <path>, routes, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "setup":
			_ = a.Setup(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "go":
			if len(args) == 0 {
				printlnFn("Usage: go <path>")
				continue
			}
			_ = a.Go(ctx, args[0])

		case "routes":
			_ = a.Routes(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
