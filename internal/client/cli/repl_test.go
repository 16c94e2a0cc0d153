package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  map[string][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	if f.args == nil {
		f.args = map[string][]string{}
	}
	f.args[name] = args
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) SetServer(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return f.record("server", args)
}
func (f *fakeExec) ScanQR(ctx context.Context, args []string) error { return f.record("qr", args) }
func (f *fakeExec) ServerInfo(ctx context.Context, args []string) error {
	return f.record("info", args)
}
func (f *fakeExec) Databases(ctx context.Context, args []string) error { return f.record("dbs", args) }
func (f *fakeExec) Reset(ctx context.Context, args []string) error {
	f.loggedIn = false
	return f.record("reset", args)
}
func (f *fakeExec) Login(ctx context.Context, args []string) error {
	f.loggedIn = true
	return f.record("login", args)
}
func (f *fakeExec) Logout(ctx context.Context, args []string) error {
	f.loggedIn = false
	return f.record("logout", args)
}
func (f *fakeExec) WhoAmI(ctx context.Context, args []string) error { return f.record("whoami", args) }
func (f *fakeExec) Status(ctx context.Context, args []string) error { return f.record("status", args) }
func (f *fakeExec) Contacts(ctx context.Context, args []string) error {
	return f.record("contacts", args)
}
func (f *fakeExec) AddContact(ctx context.Context, args []string) error {
	return f.record("addcontact", args)
}
func (f *fakeExec) EditContact(ctx context.Context, args []string) error {
	return f.record("editcontact", args)
}
func (f *fakeExec) DeleteContact(ctx context.Context, args []string) error {
	return f.record("delcontact", args)
}
func (f *fakeExec) Leads(ctx context.Context, args []string) error { return f.record("leads", args) }
func (f *fakeExec) Employees(ctx context.Context, args []string) error {
	return f.record("employees", args)
}
func (f *fakeExec) Countries(ctx context.Context, args []string) error {
	return f.record("countries", args)
}
func (f *fakeExec) Languages(ctx context.Context, args []string) error {
	return f.record("langs", args)
}
func (f *fakeExec) Branding(ctx context.Context, args []string) error {
	return f.record("branding", args)
}
func (f *fakeExec) Modules(ctx context.Context, args []string) error {
	return f.record("modules", args)
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, 0, len(a))
		for _, v := range a {
			parts = append(parts, strings.TrimSpace(fmtAny(v)))
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func fmtAny(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	out := captureOutput(t)

	input := strings.Join([]string{
		"help",
		"contacts",
		"server https://odoo.example.com",
		"login",
		"help",
		"contacts deco addict",
		"editcontact 7",
		"foobar",
		"logout",
		"reset",
		"exit",
		"dbs",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(strings.NewReader(input)))

	require.Equal(t, []string{"server", "login", "contacts", "editcontact", "logout", "reset"}, exec.calls)
	assert.Equal(t, []string{"deco", "addict"}, exec.args["contacts"])
	assert.Equal(t, []string{"7"}, exec.args["editcontact"])
	assert.Contains(t, *out, "Please log in first")
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Contains(t, *out, "Bye!")
}

func TestRunREPL_UsageAndQuit(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("server\nquit\n")))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *out, "Usage: server <url>")
}

func TestRunREPL_StopsAtEOFAfterLastLine(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("status")))

	assert.Equal(t, []string{"status"}, exec.calls)
}
