package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/eventbooking/internal/client/client"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	isAdmin(ctx context.Context) bool
	setLocation(loc string)
	loginRequested() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	Events(ctx context.Context, args []string) error
	Event(ctx context.Context, id string) error
	Book(ctx context.Context, eventID string) error
	Bookings(ctx context.Context, args []string) error
	Booking(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) error

	CreateEvent(ctx context.Context) error
	UpdateEvent(ctx context.Context, id string) error
	DeleteEvent(ctx context.Context, id string) error
	UploadImage(ctx context.Context, id, path string) error
	DeleteImage(ctx context.Context, id string) error
}

const (
	helpGuest = "Available commands: events [category] [page], event <id>, register, login, exit"
	helpUser  = "Available commands: events [category] [page], event <id>, book <eventId>, bookings [page], booking <id>, cancel <bookingId>, whoami, logout, exit"
	helpAdmin = "Admin commands: create-event, update-event <id>, delete-event <id>, upload-image <id> <path>, delete-image <id>"
)

// command describes how the REPL validates a line before dispatching it.
type command struct {
	usage    string
	minArgs  int
	login    bool
	admin    bool
	location func(args []string) string
}

func at(loc string) func([]string) string {
	return func([]string) string { return loc }
}

func under(prefix string) func([]string) string {
	return func(args []string) string { return prefix + "/" + args[0] }
}

var commands = map[string]command{
	"register":     {location: at(client.LocationRegister)},
	"login":        {location: at(client.LocationLogin)},
	"logout":       {login: true, location: at(client.LocationHome)},
	"whoami":       {login: true, location: at("/profile")},
	"events":       {location: at("/events")},
	"event":        {usage: "event <id>", minArgs: 1, location: under("/events")},
	"book":         {usage: "book <eventId>", minArgs: 1, login: true, location: under("/events")},
	"bookings":     {login: true, location: at("/my-bookings")},
	"booking":      {usage: "booking <id>", minArgs: 1, login: true, location: under("/my-bookings")},
	"cancel":       {usage: "cancel <bookingId>", minArgs: 1, login: true, location: at("/my-bookings")},
	"create-event": {login: true, admin: true, location: at("/admin/events/new")},
	"update-event": {usage: "update-event <id>", minArgs: 1, login: true, admin: true, location: under("/admin/events")},
	"delete-event": {usage: "delete-event <id>", minArgs: 1, login: true, admin: true, location: under("/admin/events")},
	"upload-image": {usage: "upload-image <id> <path>", minArgs: 2, login: true, admin: true, location: under("/admin/events")},
	"delete-image": {usage: "delete-image <id>", minArgs: 1, login: true, admin: true, location: under("/admin/events")},
}

// runREPL starts a simple read–eval–print loop for the event booking CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Before each dispatch the REPL checks the
// argument count, the login and admin requirements, and moves the current
// location to the command's. Errors returned by handlers are printed and the
// loop continues. The loop exits on EOF, when ctx is done, or when the user
// types "exit" or "quit".
//
// When the API client ended the session since the last prompt, the user is
// asked to log in again before the next command is read.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		if a.loginRequested() {
			printlnFn("Your session has expired. Please log in again.")
			a.setLocation(client.LocationLogin)
			report(a.Login(ctx))
		}

		printlnFn(fmt.Sprintf("eb %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printHelp(ctx, a)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		entry, ok := commands[cmd]
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if len(args) < entry.minArgs {
			printlnFn("Usage:", entry.usage)
			continue
		}
		if entry.login && !a.isLoggedIn(ctx) {
			printlnFn("Please log in first (use 'login').")
			continue
		}
		if entry.admin && !a.isAdmin(ctx) {
			printlnFn("This command requires administrator rights.")
			continue
		}
		a.setLocation(entry.location(args))

		report(dispatch(ctx, a, cmd, args))
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "whoami":
		return a.WhoAmI(ctx)
	case "events":
		return a.Events(ctx, args)
	case "event":
		return a.Event(ctx, args[0])
	case "book":
		return a.Book(ctx, args[0])
	case "bookings":
		return a.Bookings(ctx, args)
	case "booking":
		return a.Booking(ctx, args[0])
	case "cancel":
		return a.Cancel(ctx, args[0])
	case "create-event":
		return a.CreateEvent(ctx)
	case "update-event":
		return a.UpdateEvent(ctx, args[0])
	case "delete-event":
		return a.DeleteEvent(ctx, args[0])
	case "upload-image":
		return a.UploadImage(ctx, args[0], args[1])
	case "delete-image":
		return a.DeleteImage(ctx, args[0])
	}
	return nil
}

func printHelp(ctx context.Context, a execIface) {
	if !a.isLoggedIn(ctx) {
		printlnFn(helpGuest)
		return
	}
	printlnFn(helpUser)
	if a.isAdmin(ctx) {
		printlnFn(helpAdmin)
	}
}

func report(err error) {
	if err != nil {
		printlnFn("Error:", err)
	}
}
