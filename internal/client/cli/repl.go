package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	Progress(ctx context.Context) error
	List(ctx context.Context) error
	Map(ctx context.Context, args []string) error
	Leaderboard(ctx context.Context) error
	LogLocation(ctx context.Context) error
	AddManual(ctx context.Context) error
	Golden(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context) error
	Stats(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the Toilet Tracker CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                show available commands
//	  - login               authenticate (signs up unknown users)
//	  - exit | quit         leave the program
//
//	Logged in:
//	  - help                show available commands
//	  - refresh             reload progress, entries and leaderboard
//	  - progress            show progress towards the goal
//	  - list | l            list logged toilets
//	  - map [file]          show the map, or export it as GeoJSON
//	  - leaderboard | lb    show the leaderboard
//	  - log                 log the current device position
//	  - add                 log a toilet by hand
//	  - golden <id>         toggle the Golden Bowl mark
//	  - whoami              show the session
//	  - stats               show API request statistics
//	  - logout              log out
//	  - exit | quit         leave the program
//
// Any errors returned by command handlers are ignored here; handlers print
// their own messages.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printFn(fmt.Sprintf("tt %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if !a.isLoggedIn() && needsLogin(cmd) {
			printlnFn("Please log in first (type 'login').")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: refresh, progress, (l)ist, map [file], leaderboard (lb), log, add, golden <id>, whoami, stats, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "progress":
			_ = a.Progress(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "map":
			_ = a.Map(ctx, args)

		case "lb", "leaderboard":
			_ = a.Leaderboard(ctx)

		case "log":
			_ = a.LogLocation(ctx)

		case "add":
			_ = a.AddManual(ctx)

		case "golden":
			if len(args) == 0 {
				printlnFn("Usage: golden <id>")
				continue
			}
			_ = a.Golden(ctx, args)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "stats":
			_ = a.Stats(ctx)

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

// sessionCommands are only offered with a session.
var sessionCommands = map[string]bool{
	"logout": true, "refresh": true, "progress": true, "l": true, "list": true,
	"map": true, "lb": true, "leaderboard": true, "log": true, "add": true,
	"golden": true, "whoami": true, "stats": true,
}

func needsLogin(cmd string) bool {
	return sessionCommands[cmd]
}
