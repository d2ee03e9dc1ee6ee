package config

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/jsondoc/internal/logging"
)

// Default values.
const (
	DefaultLogLevel      = "info"
	DefaultHistoryLimit  = 0
	DefaultScriptTimeout = 5 * time.Second
	DefaultCallStackSize = 256
	DefaultWatchDebounce = 200 * time.Millisecond
)

// ColorMode controls colored debug dumps.
type ColorMode string

// Color modes.
const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Enabled resolves the mode for an output that is or is not a terminal.
func (m ColorMode) Enabled(isTerminal bool) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return isTerminal
	}
}

// Config holds all jsondoc settings.
type Config struct {
	Log     LogConfig
	History HistoryConfig
	Dump    DumpConfig
	Script  ScriptConfig
	Watch   WatchConfig
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is the minimum level name.
	Level string
}

// HistoryConfig configures undo history.
type HistoryConfig struct {
	// Limit is the maximum number of undo entries. Zero is unlimited.
	Limit int
}

// DumpConfig configures debug dumps.
type DumpConfig struct {
	Color ColorMode
}

// ScriptConfig configures the Lua runtime.
type ScriptConfig struct {
	// Timeout bounds one script run. Zero disables the limit.
	Timeout time.Duration

	// CallStackSize is the Lua call stack size.
	CallStackSize int
}

// WatchConfig configures script watching.
type WatchConfig struct {
	// Debounce is the quiet period after a file event before re-running.
	Debounce time.Duration
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: DefaultLogLevel},
		History: HistoryConfig{Limit: DefaultHistoryLimit},
		Dump:    DumpConfig{Color: ColorAuto},
		Script: ScriptConfig{
			Timeout:       DefaultScriptTimeout,
			CallStackSize: DefaultCallStackSize,
		},
		Watch: WatchConfig{Debounce: DefaultWatchDebounce},
	}
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLogLevel(c.Log.Level)
	return level
}

type setting struct {
	set func(c *Config, v any) error
	get func(c *Config) any
}

var settings = map[string]setting{
	"log.level": {
		set: func(c *Config, v any) error {
			s, err := toString(v)
			if err != nil {
				return err
			}
			if _, ok := logging.ParseLogLevel(s); !ok {
				return fmt.Errorf("%w: unknown level %q", ErrValidationFailed, s)
			}
			c.Log.Level = strings.ToLower(strings.TrimSpace(s))
			return nil
		},
		get: func(c *Config) any { return c.Log.Level },
	},
	"history.limit": {
		set: func(c *Config, v any) error {
			n, err := toInt(v)
			if err != nil {
				return err
			}
			if n < 0 {
				return fmt.Errorf("%w: must not be negative", ErrValidationFailed)
			}
			c.History.Limit = n
			return nil
		},
		get: func(c *Config) any { return c.History.Limit },
	},
	"dump.color": {
		set: func(c *Config, v any) error {
			if b, ok := v.(bool); ok {
				c.Dump.Color = ColorNever
				if b {
					c.Dump.Color = ColorAlways
				}
				return nil
			}
			s, err := toString(v)
			if err != nil {
				return err
			}
			switch m := ColorMode(strings.ToLower(s)); m {
			case ColorAuto, ColorAlways, ColorNever:
				c.Dump.Color = m
				return nil
			default:
				return fmt.Errorf("%w: want auto, always or never", ErrValidationFailed)
			}
		},
		get: func(c *Config) any { return string(c.Dump.Color) },
	},
	"script.timeout": {
		set: func(c *Config, v any) error {
			d, err := toDuration(v)
			if err != nil {
				return err
			}
			if d < 0 {
				return fmt.Errorf("%w: must not be negative", ErrValidationFailed)
			}
			c.Script.Timeout = d
			return nil
		},
		get: func(c *Config) any { return c.Script.Timeout },
	},
	"script.callStackSize": {
		set: func(c *Config, v any) error {
			n, err := toInt(v)
			if err != nil {
				return err
			}
			if n < 16 {
				return fmt.Errorf("%w: must be at least 16", ErrValidationFailed)
			}
			c.Script.CallStackSize = n
			return nil
		},
		get: func(c *Config) any { return c.Script.CallStackSize },
	},
	"watch.debounce": {
		set: func(c *Config, v any) error {
			d, err := toDuration(v)
			if err != nil {
				return err
			}
			if d < 0 {
				return fmt.Errorf("%w: must not be negative", ErrValidationFailed)
			}
			c.Watch.Debounce = d
			return nil
		},
		get: func(c *Config) any { return c.Watch.Debounce },
	},
}

// Set assigns the setting at path, converting v to the setting's type.
// Strings are accepted for every setting.
func (c *Config) Set(path string, v any) error {
	s, ok := settings[path]
	if !ok {
		return &SettingError{Path: path, Value: v, Err: ErrSettingNotFound}
	}
	if err := s.set(c, v); err != nil {
		return &SettingError{Path: path, Value: v, Err: err}
	}
	return nil
}

// Get returns the value of the setting at path.
func (c *Config) Get(path string) (any, error) {
	s, ok := settings[path]
	if !ok {
		return nil, &SettingError{Path: path, Err: ErrSettingNotFound}
	}
	return s.get(c), nil
}

// Keys returns all setting paths, sorted.
func Keys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case fmt.Stringer:
		return x.String(), nil
	default:
		return "", fmt.Errorf("%w: want string, got %T", ErrTypeMismatch, v)
	}
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case uint64:
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%w: want integer, got %v", ErrTypeMismatch, x)
		}
		return int(x), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("%w: want integer, got %q", ErrTypeMismatch, x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: want integer, got %T", ErrTypeMismatch, v)
	}
}

// toDuration accepts durations, duration strings ("1.5s") and integers,
// which are read as milliseconds.
func toDuration(v any) (time.Duration, error) {
	switch x := v.(type) {
	case time.Duration:
		return x, nil
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("%w: want duration, got %q", ErrTypeMismatch, x)
		}
		return d, nil
	default:
		n, err := toInt(v)
		if err != nil {
			return 0, fmt.Errorf("%w: want duration, got %T", ErrTypeMismatch, v)
		}
		return time.Duration(n) * time.Millisecond, nil
	}
}
