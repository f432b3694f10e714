package app

import (
	"fmt"
	"strings"

	"github.com/tidwall/match"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/quill/internal/engine"
)

// jsonDoc builds a JSON document one path at a time. The first error
// sticks.
type jsonDoc struct {
	b   []byte
	err error
}

func newJSONDoc(root string) *jsonDoc {
	return &jsonDoc{b: []byte(root)}
}

func (d *jsonDoc) set(path string, v any) {
	if d.err != nil {
		return
	}
	d.b, d.err = sjson.SetBytes(d.b, path, v)
}

func (d *jsonDoc) setRaw(path string, raw []byte) {
	if d.err != nil {
		return
	}
	d.b, d.err = sjson.SetRawBytes(d.b, path, raw)
}

// writeJSON prints a document, indented when Pretty is set.
func (app *Application) writeJSON(d *jsonDoc) error {
	if d.err != nil {
		return d.err
	}
	out := d.b
	if app.opts.Pretty {
		out = pretty.Pretty(out)
	} else {
		out = append(out, '\n')
	}
	_, err := app.out.Write(out)
	return err
}

func cmdPrint(app *Application, _ []string) error {
	e, err := app.active()
	if err != nil {
		return err
	}
	text := e.Text()
	app.printf("%s", text)
	if text != "" && !strings.HasSuffix(text, "\n") {
		app.printf("\n")
	}
	return nil
}

func cmdView(app *Application, _ []string) error {
	e, err := app.active()
	if err != nil {
		return err
	}
	lines := e.VisibleLines()
	width := len(fmt.Sprint(e.LineCount()))
	for _, l := range lines {
		app.printf("%*d  %s\n", width, l.Number+1, l.Text)
	}
	pos := e.CursorScreenPosition()
	app.printf("cursor at row %d, col %d\n", pos.Row+1, pos.Col+1)
	return nil
}

func cmdStatus(app *Application, _ []string) error {
	tab, err := app.workspace.Active()
	if err != nil {
		return err
	}
	e := tab.Engine()
	primary := e.PrimaryCursor()
	search := e.Search()

	if !app.opts.JSON {
		var flags string
		if tab.Dirty() {
			flags += " [+]"
		}
		if tab.Conflict() {
			flags += " [changed on disk]"
		}
		if e.IsReadOnly() {
			flags += " [ro]"
		}
		app.printf("%s%s  %d:%d  %d lines  %d cursor(s)  undo %d  redo %d",
			tab.Label(), flags,
			primary.Head.Line+1, primary.Head.Column+1,
			e.LineCount(), e.CursorCount(), e.UndoCount(), e.RedoCount())
		if s := search.Status(); s != "" {
			app.printf("  find %q: %s", search.Query(), s)
		}
		app.printf("\n")
		return nil
	}

	d := newJSONDoc("{}")
	d.set("tab", app.workspace.ActiveIndex()+1)
	d.set("tabs", app.workspace.Len())
	d.set("label", tab.Label())
	d.set("path", tab.Path())
	d.set("dirty", tab.Dirty())
	d.set("conflict", tab.Conflict())
	d.set("readOnly", e.IsReadOnly())
	d.set("lines", e.LineCount())
	d.set("length", e.Len())
	d.set("revision", e.Revision())
	d.set("lineEnding", e.LineEnding().String())
	d.set("encoding", string(e.Encoding()))
	d.set("cursor.line", primary.Head.Line+1)
	d.set("cursor.column", primary.Head.Column+1)
	d.setRaw("cursors", cursorsJSON(e.Cursors()))
	d.set("selection", e.SelectedText())
	d.set("undo", e.UndoCount())
	d.set("redo", e.RedoCount())
	if search.Active() {
		d.set("search.query", search.Query())
		d.set("search.count", search.Count())
		d.set("search.current", search.CurrentIndex()+1)
	}
	top, _, height, width := e.Viewport()
	d.set("viewport.top", top+1)
	d.set("viewport.height", height)
	d.set("viewport.width", width)
	return app.writeJSON(d)
}

func cursorsJSON(cursors []engine.Cursor) []byte {
	d := newJSONDoc("[]")
	for i, c := range cursors {
		prefix := fmt.Sprintf("%d.", i)
		d.set(prefix+"line", c.Head.Line+1)
		d.set(prefix+"column", c.Head.Column+1)
		if c.HasSelection() {
			d.set(prefix+"anchor.line", c.Anchor.Line+1)
			d.set(prefix+"anchor.column", c.Anchor.Column+1)
		}
	}
	return d.b
}

func cmdTabs(app *Application, args []string) error {
	if len(args) > 1 {
		return app.usageError("tabs")
	}
	pattern := "*"
	if len(args) == 1 {
		pattern = args[0]
	}

	d := newJSONDoc("[]")
	n := 0
	for i, info := range app.workspace.Tabs() {
		if !match.Match(info.Label, pattern) && !match.Match(info.Path, pattern) {
			continue
		}
		if !app.opts.JSON {
			marker := " "
			if info.Active {
				marker = "*"
			}
			var flags string
			if info.Dirty {
				flags += " [+]"
			}
			if info.Conflict {
				flags += " [changed on disk]"
			}
			app.printf("%s%d %s%s\n", marker, i+1, info.Label, flags)
			continue
		}
		prefix := fmt.Sprintf("%d.", n)
		d.set(prefix+"index", i+1)
		d.set(prefix+"id", info.ID)
		d.set(prefix+"label", info.Label)
		d.set(prefix+"path", info.Path)
		d.set(prefix+"dirty", info.Dirty)
		d.set(prefix+"active", info.Active)
		d.set(prefix+"conflict", info.Conflict)
		n++
	}
	if app.opts.JSON {
		return app.writeJSON(d)
	}
	return nil
}

func cmdRecent(app *Application, _ []string) error {
	recent := app.workspace.RecentFiles()
	if app.opts.JSON {
		d := newJSONDoc("[]")
		for i, p := range recent {
			d.set(fmt.Sprint(i), p)
		}
		return app.writeJSON(d)
	}
	for _, p := range recent {
		app.printf("%s\n", p)
	}
	return nil
}

func cmdDiff(app *Application, _ []string) error {
	diff, err := app.workspace.UnsavedDiff(app.workspace.ActiveIndex())
	if err != nil {
		return err
	}
	if diff == "" {
		app.printf("no unsaved changes\n")
		return nil
	}
	app.printf("%s", diff)
	return nil
}

func cmdHistory(app *Application, _ []string) error {
	e, err := app.active()
	if err != nil {
		return err
	}
	steps := e.UndoInfo()
	if app.opts.JSON {
		d := newJSONDoc("[]")
		for i, op := range steps {
			prefix := fmt.Sprintf("%d.", i)
			d.set(prefix+"description", op.Description)
			d.set(prefix+"time", op.Timestamp.Format("15:04:05.000"))
		}
		return app.writeJSON(d)
	}
	for i, op := range steps {
		app.printf("%3d  %s  %s\n", i+1, op.Timestamp.Format("15:04:05.000"), op.Description)
	}
	return nil
}
