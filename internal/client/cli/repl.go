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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error
	Feed(ctx context.Context) error
	Mine(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Like(ctx context.Context, args []string) error
	Comment(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
}

// runREPL starts a simple read–eval–print loop for the mediashare CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Unknown commands are reported back to the user. The loop exits on EOF,
// when ctx is done, or when the user types "exit" or "quit".
//
// Commands reading further input (titles, passwords) share the same reader,
// so the REPL must not buffer ahead of them.
//
//	Anyone:
//	  - help                  show available commands
//	  - feed                  list all media
//	  - show <id>             show one item with likes and comments
//	  - register | login      create an account / authenticate
//	  - exit | quit           leave the program
//
//	Logged in:
//	  - mine                  list own media
//	  - upload [path]         upload a file
//	  - edit <id>             change title and description
//	  - delete <id>           delete an item
//	  - like <id>             like or unlike an item
//	  - comment <id> [text]   comment on an item
//	  - whoami | profile      show / update the profile
//	  - logout                log out
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("ms%s> ", statusFn()))
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
				printlnFn("Available commands: feed, mine, show, upload, edit, delete, like, comment, whoami, profile, logout, exit")
			} else {
				printlnFn("Available commands: feed, show, register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "feed", "l":
			_ = a.Feed(ctx)

		case "mine":
			_ = a.Mine(ctx)

		case "upload":
			_ = a.Upload(ctx, args)

		case "show", "like", "comment", "edit", "delete":
			if len(args) == 0 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			switch cmd {
			case "show":
				_ = a.Show(ctx, args)
			case "like":
				_ = a.Like(ctx, args)
			case "comment":
				_ = a.Comment(ctx, args)
			case "edit":
				_ = a.Edit(ctx, args)
			case "delete":
				_ = a.Delete(ctx, args)
			}

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
