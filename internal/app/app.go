// Package app wires configuration, logging, the Lua runtime and the file
// watcher into the jsondoc command.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dshills/jsondoc/internal/config"
	"github.com/dshills/jsondoc/internal/engine"
	"github.com/dshills/jsondoc/internal/logging"
	"github.com/dshills/jsondoc/internal/script"
	"github.com/dshills/jsondoc/internal/watch"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// LogLevel overrides the configured log level when set.
	LogLevel string

	// Scripts are Lua files to run, in order.
	Scripts []string

	// Inline is Lua source run before the script files.
	Inline string

	// Watch re-runs the scripts whenever one of them changes.
	Watch bool

	// Terminal reports whether Stderr is a terminal, for the auto color mode.
	Terminal bool

	// Stdout receives script output. Defaults to os.Stdout.
	Stdout io.Writer

	// Stderr receives log output and doc:log() dumps. Defaults to os.Stderr.
	Stderr io.Writer

	// Load is passed to config.Load. Path is taken from ConfigPath.
	Load config.LoadOptions
}

// Application runs jsondoc scripts.
type Application struct {
	opts   Options
	config *config.Config
	logger *logging.Logger
	color  bool
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	app := &Application{opts: opts}
	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}
	return app, nil
}

// bootstrap loads configuration in layers and creates the logger. Flags
// are the last layer.
func (a *Application) bootstrap() error {
	loadOpts := a.opts.Load
	loadOpts.Path = a.opts.ConfigPath
	cfg, err := config.Load(loadOpts)
	if err != nil {
		return err
	}
	if a.opts.LogLevel != "" {
		if err := cfg.Set("log.level", a.opts.LogLevel); err != nil {
			return err
		}
	}

	a.config = cfg
	a.color = cfg.Dump.Color.Enabled(a.opts.Terminal)
	a.logger = logging.New(logging.Config{
		Level:  cfg.LogLevel(),
		Output: a.opts.Stderr,
		Prefix: "jsondoc",
	})
	a.logger.Debug("config loaded from %q", a.opts.ConfigPath)
	return nil
}

// Config returns the resolved configuration.
func (a *Application) Config() *config.Config {
	return a.config
}

// Logger returns the application logger.
func (a *Application) Logger() *logging.Logger {
	return a.logger
}

// Run runs the inline script and the script files. In watch mode it then
// re-runs them on every change until ctx is done; failures are logged and
// watching continues.
func (a *Application) Run(ctx context.Context) error {
	if a.opts.Inline == "" && len(a.opts.Scripts) == 0 {
		return ErrNoScripts
	}
	if !a.opts.Watch {
		return a.runOnce(ctx)
	}
	if len(a.opts.Scripts) == 0 {
		return ErrNothingToWatch
	}

	w, err := watch.New(
		watch.WithDebounce(a.config.Watch.Debounce),
		watch.WithLogger(a.logger.WithComponent("watch")),
	)
	if err != nil {
		return NewOperationError("watch", "", err)
	}
	for _, path := range a.opts.Scripts {
		if err := w.Add(path); err != nil {
			w.Close()
			return NewOperationError("watch", path, err)
		}
	}

	if err := a.runOnce(ctx); err != nil {
		a.logger.Error("%v", err)
	}
	a.logger.Info("watching %d file(s)", len(a.opts.Scripts))

	return w.Run(ctx, func(path string) {
		a.logger.Info("%s changed, re-running", path)
		if err := a.runOnce(ctx); err != nil {
			a.logger.Error("%v", err)
		}
	})
}

// runOnce runs everything in a fresh Lua state, stopping at the first
// failure.
func (a *Application) runOnce(ctx context.Context) error {
	state := a.newState()
	defer state.Close()

	if a.opts.Inline != "" {
		if err := state.DoString(ctx, a.opts.Inline); err != nil {
			return NewOperationError("run", "-e", err)
		}
	}
	for _, path := range a.opts.Scripts {
		if err := state.DoFile(ctx, path); err != nil {
			return NewOperationError("run", path, err)
		}
	}
	return nil
}

func (a *Application) newState() *script.State {
	cfg := a.config
	return script.NewState(
		script.WithOutput(a.opts.Stdout),
		script.WithDiagnosticOutput(a.opts.Stderr),
		script.WithExecutionTimeout(cfg.Script.Timeout),
		script.WithCallStackSize(cfg.Script.CallStackSize),
		script.WithLogger(a.logger.WithComponent("script")),
		script.WithEngineOptions(
			engine.WithHistoryLimit(cfg.History.Limit),
			engine.WithColor(a.color),
		),
	)
}
