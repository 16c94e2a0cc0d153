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

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	SetServer(ctx context.Context, args []string) error
	ScanQR(ctx context.Context, args []string) error
	ServerInfo(ctx context.Context, args []string) error
	Databases(ctx context.Context, args []string) error
	Reset(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
	Contacts(ctx context.Context, args []string) error
	AddContact(ctx context.Context, args []string) error
	EditContact(ctx context.Context, args []string) error
	DeleteContact(ctx context.Context, args []string) error
	Leads(ctx context.Context, args []string) error
	Employees(ctx context.Context, args []string) error
	Countries(ctx context.Context, args []string) error
	Languages(ctx context.Context, args []string) error
	Branding(ctx context.Context, args []string) error
	Modules(ctx context.Context, args []string) error
}

type command struct {
	run       func(execIface, context.Context, []string) error
	needLogin bool
	usage     string
}

var commands = map[string]command{
	"server":      {run: execIface.SetServer, usage: "server <url>"},
	"qr":          {run: execIface.ScanQR, usage: "qr <payload>"},
	"info":        {run: execIface.ServerInfo},
	"dbs":         {run: execIface.Databases},
	"reset":       {run: execIface.Reset},
	"login":       {run: execIface.Login},
	"logout":      {run: execIface.Logout, needLogin: true},
	"whoami":      {run: execIface.WhoAmI, needLogin: true},
	"status":      {run: execIface.Status},
	"contacts":    {run: execIface.Contacts, needLogin: true},
	"addcontact":  {run: execIface.AddContact, needLogin: true},
	"editcontact": {run: execIface.EditContact, needLogin: true, usage: "editcontact <id>"},
	"delcontact":  {run: execIface.DeleteContact, needLogin: true, usage: "delcontact <id>"},
	"leads":       {run: execIface.Leads, needLogin: true},
	"employees":   {run: execIface.Employees, needLogin: true},
	"countries":   {run: execIface.Countries, needLogin: true},
	"langs":       {run: execIface.Languages, needLogin: true},
	"branding":    {run: execIface.Branding},
	"modules":     {run: execIface.Modules},
}

// errUsage makes the REPL print a command's usage line.
var errUsage = errors.New("usage")

// runREPL starts a simple read–eval–print loop for the Odoo CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Unknown commands are reported back to the user. The loop exits on EOF or
// when the user types "exit" or "quit".
//
// Prompt & Commands
//
//	Always:
//	  - help                 show available commands
//	  - server <url>         set and probe the server address
//	  - qr <payload>         set the server address from a QR payload
//	  - info, dbs, status    server version, databases, session state
//	  - reset                forget the session and the server address
//	  - login                authenticate (prompts for db, login, password)
//	  - branding [json], modules [ids...]
//	  - exit | quit          leave the program
//
//	Logged in:
//	  - contacts [search], addcontact, editcontact <id>, delcontact <id>
//	  - leads, employees, countries, langs
//	  - whoami, logout
//
// Errors returned by command handlers are reported by the handlers
// themselves, except usage errors which print the usage line here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("odoo> %s > ", statusFn()))
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
				printlnFn("Available commands: contacts, addcontact, editcontact, delcontact, leads, employees, countries, langs, whoami, status, branding, modules, logout, reset, exit")
			} else {
				printlnFn("Available commands: server, qr, info, dbs, login, status, branding, modules, reset, exit")
			}
			continue

		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		c, ok := commands[cmd]
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if c.needLogin && !a.isLoggedIn() {
			printlnFn("Please log in first")
			continue
		}
		if err := c.run(a, ctx, args); errors.Is(err, errUsage) {
			printlnFn("Usage:", c.usage)
		}
	}
}
