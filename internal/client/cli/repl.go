package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/deliveryio/internal/client/router"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	location() router.Location
	Login(ctx context.Context) error
	Register(ctx context.Context) error
	List(ctx context.Context, query string) error
	Post(ctx context.Context) error
	Types(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Logout(ctx context.Context) error
	Back(ctx context.Context) error
}

// runREPL reads commands from in until EOF or "exit"/"quit".
//
// The prompt is "dio (<status>)> " and the accepted commands depend on the
// area of the current location:
//
//	Unauthenticated (/login, /register):
//	  - help              show available commands
//	  - login             sign in
//	  - register          create an account
//	  - back              previous screen
//	  - exit | quit       leave the program
//
//	Signed in (/, /post):
//	  - help              show available commands
//	  - (l)ist [query]    list packages, optionally filtered
//	  - post              register a package
//	  - types             show package types
//	  - whoami            show the session
//	  - logout            sign out
//	  - back              previous screen
//	  - exit | quit       leave the program
//
// Errors returned by command handlers are ignored here; handlers report
// them to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("dio (%s)> ", statusFn()))
		line, err := in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if a.location().IsUnauthenticated() {
			runGuest(ctx, a, cmd)
		} else {
			runMember(ctx, a, cmd, args)
		}
	}
}

func runGuest(ctx context.Context, a execIface, cmd string) {
	switch cmd {
	case "help":
		printlnFn("Available commands: login, register, back, exit")
	case "login":
		_ = a.Login(ctx)
	case "register":
		_ = a.Register(ctx)
	case "back":
		_ = a.Back(ctx)
	default:
		printlnFn("Unknown command:", cmd)
	}
}

func runMember(ctx context.Context, a execIface, cmd string, args []string) {
	switch cmd {
	case "help":
		printlnFn("Available commands: (l)ist [query], post, types, whoami, logout, back, exit")
	case "l", "list":
		_ = a.List(ctx, strings.Join(args, " "))
	case "post":
		_ = a.Post(ctx)
	case "types":
		_ = a.Types(ctx)
	case "whoami":
		_ = a.WhoAmI(ctx)
	case "logout":
		_ = a.Logout(ctx)
	case "back":
		_ = a.Back(ctx)
	default:
		printlnFn("Unknown command:", cmd)
	}
}
