// Package main is the entry point for the jsondoc script runner.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/jsondoc/internal/app"
	"github.com/dshills/jsondoc/internal/logging"
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
	opts := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		if errors.Is(err, app.ErrNoScripts) {
			flag.Usage()
			return 2
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags() app.Options {
	var opts app.Options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.Watch, "watch", false, "Re-run scripts when they change")
	flag.BoolVar(&opts.Watch, "w", false, "Re-run scripts when they change (shorthand)")
	flag.StringVar(&opts.Inline, "e", "", "Run Lua source before the script files")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "jsondoc - path-addressable document engine with undo/redo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: jsondoc [options] [scripts...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  jsondoc demo.lua                     Run a script\n")
		fmt.Fprintf(os.Stderr, "  jsondoc -w demo.lua                  Re-run on every save\n")
		fmt.Fprintf(os.Stderr, "  jsondoc -e 'jsondoc.new({a=1}):log()'  Run inline Lua\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("jsondoc %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" {
		if _, ok := logging.ParseLogLevel(opts.LogLevel); !ok {
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
			os.Exit(1)
		}
	}

	// Remaining arguments are scripts to run
	opts.Scripts = flag.Args()
	opts.Terminal = term.IsTerminal(int(os.Stderr.Fd()))

	return opts
}
