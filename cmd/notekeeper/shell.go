package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kuitang/notekeeper/internal/auth"
	"github.com/kuitang/notekeeper/internal/errs"
	"github.com/kuitang/notekeeper/internal/logutil"
	"github.com/kuitang/notekeeper/internal/notes"
	"github.com/kuitang/notekeeper/internal/obs"
	"github.com/kuitang/notekeeper/internal/seed"
)

const shellPrompt = "notekeeper> "

// maxLineBytes bounds one command line, memo included.
const maxLineBytes = 16 << 20

var seedFile string

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Read commands from stdin until quit or end of input",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(seedFile)
		if err != nil {
			return err
		}
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.close()

		sh := newShell(a, cmd.OutOrStdout(), cmd.ErrOrStderr())
		interactive := false
		if f, ok := cmd.InOrStdin().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			interactive = true
		}
		if interactive || verbose {
			cfg.PrintStartupSummary(cmd.ErrOrStderr())
		}
		if interactive {
			sh.prompt = shellPrompt
			fmt.Fprintln(sh.out, `Type "help" for commands.`)
		}
		return sh.run(obs.NewSession(cmd.Context()), cmd.InOrStdin())
	},
}

func init() {
	shellCmd.Flags().StringVar(&seedFile, "seed", "", "YAML seed file applied before the first command (overrides SEED_FILE)")
}

// shellCommand is one entry in the command table.
type shellCommand struct {
	name    string
	usage   string
	summary string
	minArgs int
	maxArgs int // -1 for no limit
	run     func(s *shell, args []string) error
}

var shellCommands = []shellCommand{
	{"adduser", "adduser USER PASSWORD", "register a user", 2, 2, (*shell).addUser},
	{"login", "login USER PASSWORD", "log a user in", 2, 2, (*shell).login},
	{"logout", "logout USER", "log a user out", 1, 1, (*shell).logout},
	{"status", "status USER", "show whether a user is logged in", 1, 1, (*shell).status},
	{"users", "users", "list registered users", 0, 0, (*shell).users},
	{"addperm", "addperm NAME", "create a permission", 1, 1, (*shell).addPermission},
	{"permit", "permit NAME USER", "grant a permission to a user", 2, 2, (*shell).permit},
	{"check", "check NAME USER", "check that a logged-in user holds a permission", 2, 2, (*shell).check},
	{"members", "members NAME", "list the users holding a permission", 1, 1, (*shell).members},
	{"perms", "perms", "list permissions", 0, 0, (*shell).permissions},
	{"note", "note MEMO [TAGS...]", "add a note", 1, -1, (*shell).addNote},
	{"memo", "memo ID MEMO", "replace a note's memo", 2, 2, (*shell).modifyMemo},
	{"tags", "tags ID [TAGS...]", "replace a note's tags", 1, -1, (*shell).modifyTags},
	{"search", "search FILTER", "list notes whose memo or tags contain FILTER", 1, 1, (*shell).search},
	{"list", "list", "list all notes", 0, 0, (*shell).list},
	{"export", "export", "print the notebook as YAML", 0, 0, (*shell).export},
}

func lookupCommand(name string) (shellCommand, bool) {
	for _, c := range shellCommands {
		if c.name == name {
			return c, true
		}
	}
	return shellCommand{}, false
}

// shell executes text commands against an app.
type shell struct {
	app    *app
	out    io.Writer
	errOut io.Writer
	prompt string // empty disables the prompt
	echo   bool   // repeat each command before its output
}

func newShell(a *app, out, errOut io.Writer) *shell {
	return &shell{app: a, out: out, errOut: errOut}
}

// run executes lines from in until quit or EOF. Command failures are printed
// and do not stop the loop.
func (s *shell) run(ctx context.Context, in io.Reader) error {
	obs.From(ctx).Info("shell started")
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for {
		if s.prompt != "" {
			fmt.Fprint(s.out, s.prompt)
		}
		if !scanner.Scan() {
			break
		}
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if s.echo {
			fmt.Fprintf(s.out, "> %s\n", line)
		}

		quit, err := s.execute(ctx, lineNo, line)
		if err != nil {
			s.printError(err)
		}
		if quit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	obs.From(ctx).Info("shell finished", "lines", lineNo)
	return nil
}

// execute runs one command line. It reports whether the shell should stop.
func (s *shell) execute(ctx context.Context, lineNo int, line string) (bool, error) {
	args, err := splitArgs(line)
	if err != nil || len(args) == 0 {
		return false, err
	}
	name, args := strings.ToLower(args[0]), args[1:]

	ctx = obs.WithCorrelation(ctx, obs.Correlation{Command: name, Line: lineNo})
	logger := obs.From(ctx)
	logger.Debug("command received", "args", logutil.RedactArgs(name, args))

	switch name {
	case "quit", "exit":
		return true, nil
	case "help":
		s.printHelp()
		return false, nil
	}

	cmd, ok := lookupCommand(name)
	if !ok {
		return false, errs.New(errs.InvalidArgument, fmt.Sprintf("unknown command %q (try help)", name))
	}
	if len(args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(args) > cmd.maxArgs) {
		return false, errs.New(errs.InvalidArgument, "usage: "+cmd.usage)
	}
	if err := cmd.run(s, args); err != nil {
		logger.Warn("command failed", "code", errs.CodeOf(err), "error", err)
		return false, err
	}
	return false, nil
}

func (s *shell) printError(err error) {
	color.New(color.FgRed).Fprintf(s.errOut, "error: %s\n", errs.MessageOf(err))
}

func (s *shell) ok(format string, a ...any) {
	color.New(color.FgGreen).Fprintf(s.out, format+"\n", a...)
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.out, "Commands:")
	for _, c := range shellCommands {
		fmt.Fprintf(s.out, "  %-24s %s\n", c.usage, c.summary)
	}
	fmt.Fprintf(s.out, "  %-24s %s\n", "help", "show this list")
	fmt.Fprintf(s.out, "  %-24s %s\n", "quit", "leave the shell")
	fmt.Fprintln(s.out, `Use double quotes to pass words with spaces, e.g. note "buy milk" errands`)
}

// Accounts

func (s *shell) addUser(args []string) error {
	if err := s.app.authn.AddUser(args[0], args[1]); err != nil {
		return err
	}
	s.ok("added user %s", args[0])
	return nil
}

func (s *shell) login(args []string) error {
	if err := s.app.authn.Login(args[0], args[1]); err != nil {
		return err
	}
	s.ok("%s logged in", args[0])
	return nil
}

func (s *shell) logout(args []string) error {
	if err := s.app.authn.Logout(args[0]); err != nil {
		return err
	}
	s.ok("%s logged out", args[0])
	return nil
}

func (s *shell) status(args []string) error {
	user, ok := s.app.authn.User(args[0])
	if !ok {
		return &auth.Error{Kind: auth.KindInvalidUsername, Username: args[0]}
	}
	state := "logged out"
	if user.LoggedIn {
		state = "logged in"
	}
	fmt.Fprintf(s.out, "%s is %s\n", user.Username, state)
	return nil
}

func (s *shell) users([]string) error {
	printList(s.out, s.app.authn.Usernames(), "no users")
	return nil
}

// Permissions

func (s *shell) addPermission(args []string) error {
	if err := s.app.authz.AddPermission(args[0]); err != nil {
		return err
	}
	s.ok("added permission %s", args[0])
	return nil
}

func (s *shell) permit(args []string) error {
	if err := s.app.authz.PermitUser(args[0], args[1]); err != nil {
		return err
	}
	s.ok("%s may now %s", args[1], args[0])
	return nil
}

func (s *shell) check(args []string) error {
	if err := s.app.authz.CheckPermission(args[0], args[1]); err != nil {
		return err
	}
	s.ok("%s may %s", args[1], args[0])
	return nil
}

func (s *shell) members(args []string) error {
	members, err := s.app.authz.Members(args[0])
	if err != nil {
		return err
	}
	printList(s.out, members, "no members")
	return nil
}

func (s *shell) permissions([]string) error {
	printList(s.out, s.app.authz.Permissions(), "no permissions")
	return nil
}

// Notes

func (s *shell) addNote(args []string) error {
	note := s.app.notebook.NewNote(args[0], strings.Join(args[1:], " "))
	s.ok("created note %d", note.ID)
	return nil
}

func (s *shell) modifyMemo(args []string) error {
	id, err := parseNoteID(args[0])
	if err != nil {
		return err
	}
	if !s.app.notebook.ModifyMemo(id, args[1]) {
		return noteNotFound(id)
	}
	s.ok("updated note %d", id)
	return nil
}

func (s *shell) modifyTags(args []string) error {
	id, err := parseNoteID(args[0])
	if err != nil {
		return err
	}
	if !s.app.notebook.ModifyTags(id, strings.Join(args[1:], " ")) {
		return noteNotFound(id)
	}
	s.ok("updated note %d", id)
	return nil
}

func (s *shell) search(args []string) error {
	printNotes(s.out, s.app.notebook.Search(args[0]))
	return nil
}

func (s *shell) list([]string) error {
	printNotes(s.out, s.app.notebook.Notes())
	return nil
}

func (s *shell) export([]string) error {
	return seed.Export(s.app.notebook, s.out)
}

func parseNoteID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errs.Wrap(errs.InvalidArgument, fmt.Sprintf("note id %q is not an integer", raw), err)
	}
	return id, nil
}

func noteNotFound(id int64) error {
	return errs.New(errs.NotFound, fmt.Sprintf("note %d not found", id))
}

func printNotes(w io.Writer, found []*notes.Note) {
	if len(found) == 0 {
		fmt.Fprintln(w, "no notes")
		return
	}
	for _, n := range found {
		fmt.Fprintf(w, "%4d  %s  %-16s %s\n",
			n.ID, n.CreationDate.Format(time.DateOnly), "["+n.Tags+"]", n.Memo)
	}
}

func printList(w io.Writer, items []string, empty string) {
	if len(items) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	for _, item := range items {
		fmt.Fprintln(w, item)
	}
}
