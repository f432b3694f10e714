// Package main is the entry point for the Quill editor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dshills/quill/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, script := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	var in io.Reader = os.Stdin
	if script != "" {
		f, err := os.Open(script)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		in = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx, in); err != nil {
		if errors.Is(err, app.ErrCommandsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 2
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (app.Options, string) {
	var opts app.Options
	var script string
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.ProjectDir, "workspace", "", "Project directory searched for .quill config")
	flag.StringVar(&opts.ProjectDir, "w", "", "Project directory (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.LogFile, "log-file", "", "Write logs to this file instead of stderr")
	flag.BoolVar(&opts.ReadOnly, "readonly", false, "Open files in read-only mode")
	flag.BoolVar(&opts.ReadOnly, "R", false, "Open files in read-only mode (shorthand)")
	flag.BoolVar(&opts.NoWatch, "no-watch", false, "Do not reload files changed on disk")
	flag.BoolVar(&opts.JSON, "json", false, "Print query results as JSON")
	flag.BoolVar(&opts.Pretty, "pretty", false, "Indent JSON output")
	flag.StringVar(&script, "script", "", "Read commands from this file instead of stdin")
	flag.StringVar(&script, "s", "", "Read commands from this file (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Quill - a multi-cursor text editing core\n\n")
		fmt.Fprintf(os.Stderr, "Usage: quill [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  quill                       Edit an untitled buffer\n")
		fmt.Fprintf(os.Stderr, "  quill file.go               Open a file\n")
		fmt.Fprintf(os.Stderr, "  quill -s edits.txt a.go     Apply a command script to a file\n")
		fmt.Fprintf(os.Stderr, "  quill -R file.go            Open file read-only\n")
		fmt.Fprintf(os.Stderr, "\nType \"help\" at the prompt to list commands.\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Quill %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	opts.Files = flag.Args()

	// Without -w, the first file's directory is the project.
	if opts.ProjectDir == "" && len(opts.Files) > 0 {
		if absPath, err := filepath.Abs(opts.Files[0]); err == nil {
			opts.ProjectDir = filepath.Dir(absPath)
		}
	}

	return opts, script
}
