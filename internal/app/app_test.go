package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var testClock = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// newTestApp starts an application with an isolated config directory,
// an in-process clipboard and a fixed clock.
func newTestApp(t *testing.T, opts Options) (*Application, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("[clipboard]\nsystem = false\n"), 0o644))

	var out bytes.Buffer
	opts.ConfigDir = dir
	opts.LogFile = filepath.Join(dir, "quill.log")
	opts.Output = &out
	opts.Clock = func() time.Time { return testClock }

	app, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(app.Shutdown)
	return app, &out
}

func run(t *testing.T, app *Application, script string) error {
	t.Helper()
	return app.Run(t.Context(), strings.NewReader(script))
}

func activeText(t *testing.T, app *Application) string {
	t.Helper()
	tab, err := app.Workspace().Active()
	require.NoError(t, err)
	return tab.Engine().Text()
}

func TestNewOpensUntitledTab(t *testing.T) {
	app, _ := newTestApp(t, Options{NoWatch: true})

	assert.Equal(t, 1, app.Workspace().Len())
	assert.Equal(t, "", activeText(t, app))
	assert.False(t, app.Config().Clipboard().System)
}

func TestNewOpensFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("alpha\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("beta\n"), 0o644))

	app, _ := newTestApp(t, Options{Files: []string{a, b}, NoWatch: true})

	assert.Equal(t, 2, app.Workspace().Len())
	assert.Equal(t, 1, app.Workspace().ActiveIndex())
	assert.Equal(t, "beta\n", activeText(t, app))
}

func TestNewMissingFileFails(t *testing.T) {
	dir := t.TempDir()
	_, err := New(Options{
		ConfigDir: dir,
		LogFile:   filepath.Join(dir, "quill.log"),
		NoWatch:   true,
		Files:     []string{filepath.Join(dir, "missing.txt")},
		Output:    &bytes.Buffer{},
	})

	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "documents", initErr.Component)
}

func TestNewInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[editor]\ntabWidth = 0\n"), 0o644))

	_, err := New(Options{ConfigDir: dir, ConfigPath: cfg, NoWatch: true, Output: &bytes.Buffer{}})

	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "config", initErr.Component)
}

func TestScriptEditing(t *testing.T) {
	app, out := newTestApp(t, Options{NoWatch: true})

	err := run(t, app, `
# a comment
insert "hello world"
newline
insert 'second line'
move top
move end extend
print
`)

	require.NoError(t, err)
	assert.Equal(t, "hello world\nsecond line", activeText(t, app))
	assert.Equal(t, "hello world\nsecond line\n", out.String())

	tab, _ := app.Workspace().Active()
	assert.Equal(t, "hello world", tab.Engine().SelectedText())
}

func TestTypingCoalescesUntilPause(t *testing.T) {
	app, _ := newTestApp(t, Options{NoWatch: true})

	require.NoError(t, run(t, app, "insert a\ninsert b\nwait 1s\ninsert c\n"))
	assert.Equal(t, "abc", activeText(t, app))

	require.NoError(t, app.Execute("undo"))
	assert.Equal(t, "ab", activeText(t, app))

	require.NoError(t, app.Execute("undo"))
	assert.Equal(t, "", activeText(t, app))

	require.NoError(t, app.Execute("redo"))
	assert.Equal(t, "ab", activeText(t, app))
}

func TestMultiCursorInsert(t *testing.T) {
	app, _ := newTestApp(t, Options{NoWatch: true})

	err := run(t, app, `
insert "one\ntwo\nthree"
goto 1
cursor below
cursor below
insert "- "
`)

	require.NoError(t, err)
	assert.Equal(t, "- one\n- two\n- three", activeText(t, app))
}

func TestSearchAndReplace(t *testing.T) {
	app, out := newTestApp(t, Options{NoWatch: true})

	err := run(t, app, `
insert "cat hat cat"
find cat
replace-all dog
`)

	require.NoError(t, err)
	assert.Equal(t, "dog hat dog", activeText(t, app))
	assert.Contains(t, out.String(), "replaced 2")
}

func TestClipboardCommands(t *testing.T) {
	app, _ := newTestApp(t, Options{NoWatch: true})

	err := run(t, app, `
insert "word"
select all
cut
paste
paste
`)

	require.NoError(t, err)
	assert.Equal(t, "wordword", activeText(t, app))
}

func TestStatusJSON(t *testing.T) {
	app, out := newTestApp(t, Options{NoWatch: true, JSON: true})

	require.NoError(t, run(t, app, "insert \"ab\\ncd\"\nstatus\n"))

	doc := out.String()
	require.True(t, gjson.Valid(doc), doc)
	assert.Equal(t, "Untitled", gjson.Get(doc, "label").String())
	assert.True(t, gjson.Get(doc, "dirty").Bool())
	assert.EqualValues(t, 2, gjson.Get(doc, "lines").Int())
	assert.EqualValues(t, 2, gjson.Get(doc, "cursor.line").Int())
	assert.EqualValues(t, 3, gjson.Get(doc, "cursor.column").Int())
	assert.EqualValues(t, 1, gjson.Get(doc, "cursors.#").Int())
	assert.Equal(t, "lf", gjson.Get(doc, "lineEnding").String())
	assert.False(t, gjson.Get(doc, "search").Exists())
}

func TestTabsCommands(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.go")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("package a\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("b\n"), 0o644))

	app, out := newTestApp(t, Options{NoWatch: true, JSON: true})

	// The startup Untitled tab stays first, so a.go is tab 2.
	require.NoError(t, run(t, app, "open "+a+"\nopen "+b+"\ntab 2\ntabs *.go\n"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	doc := lines[len(lines)-1]
	require.True(t, gjson.Valid(doc), doc)
	assert.EqualValues(t, 1, gjson.Get(doc, "#").Int())
	assert.Equal(t, "a.go", gjson.Get(doc, "0.label").String())
	assert.True(t, gjson.Get(doc, "0.active").Bool())
	assert.EqualValues(t, 2, gjson.Get(doc, "0.index").Int())
	assert.Equal(t, 3, app.Workspace().Len())
}

func TestSaveCommand(t *testing.T) {
	app, out := newTestApp(t, Options{NoWatch: true})
	path := filepath.Join(t.TempDir(), "new.txt")

	require.NoError(t, run(t, app, "insert text\nsave "+path+"\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "text", string(data))
	assert.Contains(t, out.String(), "saved ")
	assert.False(t, app.Workspace().HasUnsavedChanges())
	assert.Len(t, app.Workspace().RecentFiles(), 1)
}

func TestQuit(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		app, _ := newTestApp(t, Options{NoWatch: true})
		assert.ErrorIs(t, app.Execute("quit"), ErrQuit)
	})

	t.Run("unsaved", func(t *testing.T) {
		app, _ := newTestApp(t, Options{NoWatch: true})
		require.NoError(t, app.Execute("insert x"))

		err := app.Execute("quit")
		assert.ErrorIs(t, err, ErrUnsavedChanges)
		assert.ErrorIs(t, app.Execute("quit!"), ErrQuit)
	})

	t.Run("stops the script", func(t *testing.T) {
		app, _ := newTestApp(t, Options{NoWatch: true})
		require.NoError(t, run(t, app, "insert a\nquit!\ninsert b\n"))
		assert.Equal(t, "a", activeText(t, app))
	})
}

func TestScriptFailuresAreCounted(t *testing.T) {
	app, out := newTestApp(t, Options{NoWatch: true})

	err := run(t, app, "bogus\nundo\ninsert ok\n")

	assert.ErrorIs(t, err, ErrCommandsFailed)
	assert.Equal(t, "ok", activeText(t, app))
	assert.Contains(t, out.String(), "unknown command: bogus")
	assert.Contains(t, out.String(), "undo: ")
}

func TestExecuteErrors(t *testing.T) {
	app, _ := newTestApp(t, Options{NoWatch: true})

	assert.ErrorIs(t, app.Execute("frobnicate"), ErrUnknownCommand)

	var usage *UsageError
	require.ErrorAs(t, app.Execute("goto"), &usage)
	assert.Equal(t, "goto", usage.Command)

	var cmdErr *CommandError
	require.ErrorAs(t, app.Execute("redo"), &cmdErr)
	assert.Equal(t, "redo", cmdErr.Command)

	assert.ErrorIs(t, app.Execute(`insert "open`), errUnterminatedQuote)
	assert.NoError(t, app.Execute("   "))
}

func TestReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.txt")
	require.NoError(t, os.WriteFile(path, []byte("fixed"), 0o644))
	app, _ := newTestApp(t, Options{NoWatch: true, ReadOnly: true, Files: []string{path}})

	err := app.Execute("insert x")

	require.Error(t, err)
	assert.Equal(t, "fixed", activeText(t, app))
}

func TestWatcherReloadsCleanTab(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.txt")
	require.NoError(t, os.WriteFile(path, []byte("before\n"), 0o644))
	app, _ := newTestApp(t, Options{Files: []string{path}})
	if app.watcher == nil {
		t.Skip("file watching unavailable")
	}

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.WriteFile(path, []byte("after\n"), 0o644))
	require.NoError(t, os.Chtimes(path, later, later))

	select {
	case ev := <-app.watcher.Events():
		app.handleFileEvent(ev)
	case <-time.After(5 * time.Second):
		t.Fatal("no file event")
	}
	assert.Equal(t, "after\n", activeText(t, app))
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{`insert hello`, []string{"insert", "hello"}},
		{`insert "a b\tc"`, []string{"insert", "a b\tc"}},
		{`insert 'no \n escape'`, []string{"insert", `no \n escape`}},
		{`find "say \"hi\""`, []string{"find", `say "hi"`}},
		{`insert ""`, []string{"insert", ""}},
		{`  a   b  `, []string{"a", "b"}},
		{`pre"fix"`, []string{"prefix"}},
	}
	for _, tt := range tests {
		got, err := splitArgs(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := splitArgs(`'open`)
	assert.True(t, errors.Is(err, errUnterminatedQuote))
}

func TestParsePoint(t *testing.T) {
	p, hasCol, err := parsePoint("3:5")
	require.NoError(t, err)
	assert.True(t, hasCol)
	assert.Equal(t, 2, p.Line)
	assert.Equal(t, 4, p.Column)

	p, hasCol, err = parsePoint("7")
	require.NoError(t, err)
	assert.False(t, hasCol)
	assert.Equal(t, 6, p.Line)

	_, _, err = parsePoint("0")
	assert.Error(t, err)
	_, _, err = parsePoint("2:x")
	assert.Error(t, err)
}
