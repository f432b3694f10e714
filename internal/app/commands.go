package app

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/dshills/quill/internal/engine"
	"github.com/dshills/quill/internal/engine/buffer"
)

// command is one entry of the command table.
type command struct {
	usage string
	help  string
	run   func(app *Application, args []string) error
}

func commandTable() map[string]command {
	return map[string]command{
		// Tabs and files
		"open":     {"PATH", "open a file, or switch to its tab", cmdOpen},
		"new":      {"", "open an untitled tab", cmdNew},
		"close":    {"[!]", "close the active tab; ! discards changes", cmdClose},
		"tab":      {"N", "switch to tab N", cmdTab},
		"next":     {"", "switch to the next tab", cmdNext},
		"prev":     {"", "switch to the previous tab", cmdPrev},
		"move-tab": {"N", "move the active tab to position N", cmdMoveTab},
		"save":     {"[PATH]", "save the active tab, optionally under a new path", cmdSave},
		"saveall":  {"", "save every modified tab", cmdSaveAll},
		"reload":   {"", "reread the active tab from disk", cmdReload},

		// Editing
		"insert":      {"TEXT...", "type text at every cursor", cmdInsert},
		"newline":     {"", "break the line at every cursor", editCmd((*engine.Engine).InsertNewline)},
		"backspace":   {"", "delete before every cursor", editCmd((*engine.Engine).Backspace)},
		"delete":      {"", "delete after every cursor", editCmd((*engine.Engine).DeleteForward)},
		"delete-word": {"", "delete the word before every cursor", editCmd((*engine.Engine).DeleteWordLeft)},
		"indent":      {"", "indent the cursor lines", editCmd((*engine.Engine).Indent)},
		"outdent":     {"", "outdent the cursor lines", editCmd((*engine.Engine).Outdent)},
		"dup-line":    {"", "duplicate the cursor lines", editCmd((*engine.Engine).DuplicateLine)},
		"line-up":     {"", "move the cursor lines up", editCmd((*engine.Engine).MoveLineUp)},
		"line-down":   {"", "move the cursor lines down", editCmd((*engine.Engine).MoveLineDown)},
		"line-ending": {"lf|crlf", "set the line ending written on save", cmdLineEnding},

		// Cursors
		"move":    {"DIR [extend]", "move every cursor; DIR is " + strings.Join(slices.Sorted(maps.Keys(motions)), ", "), cmdMove},
		"goto":    {"LINE[:COL]", "place a single cursor", cmdGoto},
		"select":  {"all|line|word|none", "change the selection", cmdSelect},
		"cursor":  {"above|below|collapse|LINE:COL", "add or collapse cursors", cmdCursor},
		"bracket": {"", "show the bracket matching the cursor", cmdBracket},
		"scroll":  {"LINE", "scroll the viewport to LINE", cmdScroll},

		// History
		"undo":    {"", "undo the last change", editCmd(func(e *engine.Engine, _ time.Time) error { return e.Undo() })},
		"redo":    {"", "redo the last undone change", editCmd(func(e *engine.Engine, _ time.Time) error { return e.Redo() })},
		"history": {"", "list undo steps, oldest first", cmdHistory},

		// Search
		"find":        {"QUERY [regex] [case]", "search the active tab", cmdFind},
		"next-match":  {"", "select the next match", cmdNextMatch},
		"prev-match":  {"", "select the previous match", cmdPrevMatch},
		"replace":     {"TEXT", "replace the current match", cmdReplace},
		"replace-all": {"TEXT", "replace every match", cmdReplaceAll},
		"clear-find":  {"", "clear the search", cmdClearFind},

		// Clipboard
		"copy":  {"", "copy the selection, or the line", cmdCopy},
		"cut":   {"", "cut the selection", cmdCut},
		"paste": {"", "paste at every cursor", cmdPaste},

		// Queries
		"print":  {"", "print the active tab's text", cmdPrint},
		"view":   {"", "print the visible lines with line numbers", cmdView},
		"status": {"", "describe the active tab", cmdStatus},
		"tabs":   {"[PATTERN]", "list tabs, optionally filtered by a glob", cmdTabs},
		"recent": {"", "list recently opened files", cmdRecent},
		"diff":   {"", "show unsaved changes as a unified diff", cmdDiff},

		// Session
		"wait": {"DURATION", "advance the edit clock", cmdWait},
		"help": {"[COMMAND]", "list commands", cmdHelp},
		"quit": {"[!]", "end the session; ! discards changes", cmdQuit},
	}
}

// Execute runs one command line. Blank lines and lines starting with #
// do nothing. It returns ErrQuit when the session should end.
func (app *Application) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	args, err := splitArgs(line)
	if err != nil {
		return err
	}
	name := args[0]
	if len(name) > 1 && strings.HasSuffix(name, "!") {
		// "close!" is "close !".
		name = strings.TrimSuffix(name, "!")
		args = append(args, "!")
	}
	cmd, ok := app.commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	app.logger.Debug("command", "name", name, "args", len(args)-1)
	err = cmd.run(app, args[1:])
	var usage *UsageError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrQuit), errors.As(err, &usage):
		return err
	default:
		return &CommandError{Command: name, Err: err}
	}
}

// usageError builds the UsageError for a command name.
func (app *Application) usageError(name string) error {
	return &UsageError{Command: name, Usage: app.commands[name].usage}
}

// active returns the active tab's engine.
func (app *Application) active() (*engine.Engine, error) {
	tab, err := app.workspace.Active()
	if err != nil {
		return nil, err
	}
	return tab.Engine(), nil
}

func (app *Application) printf(format string, args ...any) {
	fmt.Fprintf(app.out, format, args...)
}

// editCmd adapts an argument-less engine edit to a command.
func editCmd(f func(e *engine.Engine, now time.Time) error) func(*Application, []string) error {
	return func(app *Application, _ []string) error {
		e, err := app.active()
		if err != nil {
			return err
		}
		return f(e, app.now())
	}
}

// ============================================================================
// Tabs and files
// ============================================================================

func cmdOpen(app *Application, args []string) error {
	if len(args) != 1 {
		return app.usageError("open")
	}
	tab, err := app.workspace.Open(args[0])
	if err != nil {
		return err
	}
	app.printf("opened %s\n", tab.Label())
	return nil
}

func cmdNew(app *Application, _ []string) error {
	app.workspace.NewTab()
	return nil
}

func cmdClose(app *Application, args []string) error {
	return app.workspace.CloseActive(hasFlag(args, "!"))
}

func cmdTab(app *Application, args []string) error {
	if len(args) != 1 {
		return app.usageError("tab")
	}
	i, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	return app.workspace.SwitchTo(i)
}

func cmdNext(app *Application, _ []string) error { return app.workspace.Next() }

func cmdPrev(app *Application, _ []string) error { return app.workspace.Previous() }

func cmdMoveTab(app *Application, args []string) error {
	if len(args) != 1 {
		return app.usageError("move-tab")
	}
	to, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	return app.workspace.Move(app.workspace.ActiveIndex(), to)
}

func cmdSave(app *Application, args []string) error {
	if len(args) > 1 {
		return app.usageError("save")
	}
	var path string
	if len(args) == 1 {
		path = args[0]
	}
	if err := app.workspace.SaveActive(path); err != nil {
		return err
	}
	tab, _ := app.workspace.Active()
	app.printf("saved %s\n", tab.Path())
	return nil
}

func cmdSaveAll(app *Application, _ []string) error {
	return app.workspace.SaveAll()
}

func cmdReload(app *Application, _ []string) error {
	return app.workspace.Reload(app.workspace.ActiveIndex())
}

// ============================================================================
// Editing
// ============================================================================

func cmdInsert(app *Application, args []string) error {
	if len(args) == 0 {
		return app.usageError("insert")
	}
	e, err := app.active()
	if err != nil {
		return err
	}
	return e.InsertText(strings.Join(args, " "), app.now())
}

func cmdLineEnding(app *Application, args []string) error {
	if len(args) != 1 {
		return app.usageError("line-ending")
	}
	le, ok := buffer.ParseLineEnding(args[0])
	if !ok {
		return app.usageError("line-ending")
	}
	e, err := app.active()
	if err != nil {
		return err
	}
	return e.SetLineEnding(le)
}

// ============================================================================
// Cursors
// ============================================================================

var motions = map[string]func(e *engine.Engine, extend bool){
	"left":       (*engine.Engine).MoveLeft,
	"right":      (*engine.Engine).MoveRight,
	"up":         (*engine.Engine).MoveUp,
	"down":       (*engine.Engine).MoveDown,
	"home":       (*engine.Engine).MoveToLineStart,
	"smart-home": (*engine.Engine).MoveToLineStartSmart,
	"end":        (*engine.Engine).MoveToLineEnd,
	"word-left":  (*engine.Engine).MoveWordLeft,
	"word-right": (*engine.Engine).MoveWordRight,
	"page-up":    (*engine.Engine).PageUp,
	"page-down":  (*engine.Engine).PageDown,
	"top":        (*engine.Engine).MoveToBufferStart,
	"bottom":     (*engine.Engine).MoveToBufferEnd,
}

func cmdMove(app *Application, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return app.usageError("move")
	}
	motion, ok := motions[args[0]]
	if !ok {
		return app.usageError("move")
	}
	e, err := app.active()
	if err != nil {
		return err
	}
	motion(e, hasFlag(args[1:], "extend", "+"))
	return nil
}

func cmdGoto(app *Application, args []string) error {
	if len(args) != 1 {
		return app.usageError("goto")
	}
	p, hasCol, err := parsePoint(args[0])
	if err != nil {
		return err
	}
	e, err := app.active()
	if err != nil {
		return err
	}
	if hasCol {
		e.SetCursor(p, false)
	} else {
		e.GoToLine(p.Line)
	}
	return nil
}

func cmdSelect(app *Application, args []string) error {
	if len(args) != 1 {
		return app.usageError("select")
	}
	e, err := app.active()
	if err != nil {
		return err
	}
	switch args[0] {
	case "all":
		e.SelectAll()
	case "line":
		e.SelectLine()
	case "word":
		e.SelectWord()
	case "none":
		e.ClearSelection()
	default:
		return app.usageError("select")
	}
	return nil
}

func cmdCursor(app *Application, args []string) error {
	if len(args) != 1 {
		return app.usageError("cursor")
	}
	e, err := app.active()
	if err != nil {
		return err
	}
	switch args[0] {
	case "above":
		if !e.AddCursorAbove() {
			app.printf("no line above\n")
		}
	case "below":
		if !e.AddCursorBelow() {
			app.printf("no line below\n")
		}
	case "collapse":
		e.CollapseCursors()
	default:
		p, _, err := parsePoint(args[0])
		if err != nil {
			return err
		}
		e.AddCursor(p)
	}
	return nil
}

func cmdBracket(app *Application, _ []string) error {
	e, err := app.active()
	if err != nil {
		return err
	}
	at, match, ok := e.MatchingBracket()
	if !ok {
		app.printf("no matching bracket\n")
		return nil
	}
	app.printf("%d:%d -> %d:%d\n", at.Line+1, at.Column+1, match.Line+1, match.Column+1)
	return nil
}

func cmdScroll(app *Application, args []string) error {
	if len(args) != 1 {
		return app.usageError("scroll")
	}
	line, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	e, err := app.active()
	if err != nil {
		return err
	}
	e.ScrollTo(line)
	return nil
}

// ============================================================================
// Search
// ============================================================================

func cmdFind(app *Application, args []string) error {
	if len(args) == 0 {
		return app.usageError("find")
	}
	e, err := app.active()
	if err != nil {
		return err
	}
	opts := engine.SearchOptions{
		Regex:         hasFlag(args[1:], "regex"),
		CaseSensitive: hasFlag(args[1:], "case"),
	}
	if _, err := e.Find(args[0], opts); err != nil {
		return err
	}
	app.printf("%s\n", e.Search().Status())
	return nil
}

func cmdNextMatch(app *Application, _ []string) error {
	return app.stepMatch((*engine.Engine).FindNext)
}

func cmdPrevMatch(app *Application, _ []string) error {
	return app.stepMatch((*engine.Engine).FindPrev)
}

func (app *Application) stepMatch(step func(*engine.Engine) bool) error {
	e, err := app.active()
	if err != nil {
		return err
	}
	if !step(e) {
		app.printf("no matches\n")
		return nil
	}
	app.printf("%s\n", e.Search().Status())
	return nil
}

func cmdReplace(app *Application, args []string) error {
	if len(args) != 1 {
		return app.usageError("replace")
	}
	e, err := app.active()
	if err != nil {
		return err
	}
	ok, err := e.ReplaceCurrent(args[0], app.now())
	if err != nil {
		return err
	}
	if !ok {
		app.printf("no match selected\n")
	}
	return nil
}

func cmdReplaceAll(app *Application, args []string) error {
	if len(args) != 1 {
		return app.usageError("replace-all")
	}
	e, err := app.active()
	if err != nil {
		return err
	}
	n, err := e.ReplaceAll(args[0], app.now())
	if err != nil {
		return err
	}
	app.printf("replaced %d\n", n)
	return nil
}

func cmdClearFind(app *Application, _ []string) error {
	e, err := app.active()
	if err != nil {
		return err
	}
	e.ClearSearch()
	return nil
}

// ============================================================================
// Clipboard
// ============================================================================

func cmdCopy(app *Application, _ []string) error {
	e, err := app.active()
	if err != nil {
		return err
	}
	return app.clipboard.Write(e.Copy())
}

func cmdCut(app *Application, _ []string) error {
	e, err := app.active()
	if err != nil {
		return err
	}
	text, err := e.Cut(app.now())
	if err != nil || text == "" {
		return err
	}
	return app.clipboard.Write(text)
}

func cmdPaste(app *Application, _ []string) error {
	e, err := app.active()
	if err != nil {
		return err
	}
	text, err := app.clipboard.Read()
	if err != nil || text == "" {
		return err
	}
	return e.Paste(text, app.now())
}

// ============================================================================
// Session
// ============================================================================

func cmdWait(app *Application, args []string) error {
	if len(args) != 1 {
		return app.usageError("wait")
	}
	d, err := time.ParseDuration(args[0])
	if err != nil || d < 0 {
		return app.usageError("wait")
	}
	app.skew += d
	return nil
}

func cmdHelp(app *Application, args []string) error {
	names := slices.Sorted(maps.Keys(app.commands))
	if len(args) == 1 {
		if _, ok := app.commands[args[0]]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
		}
		names = args[:1]
	}
	for _, name := range names {
		cmd := app.commands[name]
		app.printf("  %-28s %s\n", strings.TrimSpace(name+" "+cmd.usage), cmd.help)
	}
	return nil
}

func cmdQuit(app *Application, args []string) error {
	if !hasFlag(args, "!") && app.workspace.HasUnsavedChanges() {
		var labels []string
		for _, i := range app.workspace.ModifiedTabs() {
			tab, _ := app.workspace.Tab(i)
			labels = append(labels, tab.Label())
		}
		return fmt.Errorf("%w in %s (quit! discards them)", ErrUnsavedChanges, strings.Join(labels, ", "))
	}
	return ErrQuit
}
