package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/favisend/internal/common"
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
	Guest(ctx context.Context) error
	GuestLogout(ctx context.Context) error
	Purchases(ctx context.Context) error
	Verify(ctx context.Context, arg string) error
	Check(ctx context.Context) error
	Download(ctx context.Context, arg string) error
	Checkout(ctx context.Context, fileID string) error
	Open(ctx context.Context, link string) error
}

const (
	helpAnonymous = "Available commands: login, register, guest, purchases, verify <paymentId|url>, check, download [n], checkout <fileId>, open <url>, whoami, exit"
	helpLoggedIn  = "Available commands: whoami, profile, purchases, verify <paymentId|url>, check, download [n], checkout <fileId>, open <url>, guest-logout, logout, exit"
)

// runREPL starts a read–eval–print loop for the favisend CLI.
//
// It reads a line from in, parses the first token as the command and
// dispatches to a. A command error is printed with its user-facing message
// and the loop continues. The loop exits on EOF, on "exit" or "quit", or
// when ctx is cancelled.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("fv> %s > ", statusFn()))
		line, err := in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, arg := parts[0], ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "profile":
			cmdErr = a.Profile(ctx)

		case "guest":
			cmdErr = a.Guest(ctx)

		case "guest-logout":
			cmdErr = a.GuestLogout(ctx)

		case "p", "purchases":
			cmdErr = a.Purchases(ctx)

		case "verify":
			cmdErr = a.Verify(ctx, arg)

		case "check":
			cmdErr = a.Check(ctx)

		case "download":
			cmdErr = a.Download(ctx, arg)

		case "checkout":
			if arg == "" {
				printlnFn("Usage: checkout <fileId>")
				continue
			}
			cmdErr = a.Checkout(ctx, arg)

		case "open":
			if arg == "" {
				printlnFn("Usage: open <url>")
				continue
			}
			cmdErr = a.Open(ctx, arg)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			if errors.Is(cmdErr, context.Canceled) {
				return
			}
			printlnFn("Error:", common.UserMessage(cmdErr))
		}
	}
}
