package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/dshills/quill/internal/watcher"
	"github.com/dshills/quill/internal/workspace"
)

// ErrCommandsFailed is returned by Run when a script had failing
// commands.
var ErrCommandsFailed = errors.New("commands failed")

// Run reads command lines from in until it is exhausted, a quit command
// runs, or ctx is done. File changes reported by the watcher are handled
// between commands, on the same goroutine.
//
// A failing command is reported on the output and the loop goes on; when
// in is not a terminal, Run then returns an error wrapping
// ErrCommandsFailed once the input ends.
func (app *Application) Run(ctx context.Context, in io.Reader) error {
	interactive := isTerminal(in)
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	var events <-chan watcher.Event
	var watchErrs <-chan error
	if app.watcher != nil {
		events = app.watcher.Events()
		watchErrs = app.watcher.Errors()
	}

	failed := 0
	for {
		if interactive {
			app.prompt()
		}
		select {
		case <-ctx.Done():
			app.logger.Info("interrupted")
			return nil

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("reading commands: %w", err)
					}
				default:
				}
				if failed > 0 && !interactive {
					return fmt.Errorf("%w: %d", ErrCommandsFailed, failed)
				}
				return nil
			}
			err := app.Execute(line)
			if errors.Is(err, ErrQuit) {
				return nil
			}
			if err != nil {
				failed++
				app.printf("error: %v\n", err)
				app.logger.Debug("command failed", "line", line, "error", err)
			}

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			app.handleFileEvent(ev)

		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			app.logger.Warn("file watcher error", "error", err)
		}
	}
}

// handleFileEvent applies the workspace's policy to a changed file and
// tells the user what happened.
func (app *Application) handleFileEvent(ev watcher.Event) {
	action, err := app.workspace.FileChanged(ev.Path)
	if err != nil {
		app.logger.Warn("handling file change", "path", ev.Path, "op", ev.Op.String(), "error", err)
		app.printf("error: reloading %s: %v\n", ev.Path, err)
		return
	}
	app.logger.Debug("file changed", "path", ev.Path, "op", ev.Op.String(), "action", action.String())
	switch action {
	case workspace.ChangeReloaded:
		app.printf("reloaded %s\n", ev.Path)
	case workspace.ChangeConflict:
		app.printf("%s changed on disk; save to overwrite or reload to discard\n", ev.Path)
	case workspace.ChangeRemoved:
		app.printf("%s was removed from disk\n", ev.Path)
	}
}

func (app *Application) prompt() {
	label := "-"
	if tab, err := app.workspace.Active(); err == nil {
		label = tab.Label()
		if tab.Dirty() {
			label += "+"
		}
	}
	app.printf("%s> ", label)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
