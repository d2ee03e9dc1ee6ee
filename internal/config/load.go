package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dshills/jsondoc/internal/config/loader"
)

// LoadOptions selects the configuration sources.
type LoadOptions struct {
	// Path is the config file. Empty skips the file layer; a missing file
	// is not an error.
	Path string

	// EnvPrefix is the environment variable prefix. Defaults to
	// loader.DefaultEnvPrefix.
	EnvPrefix string

	// SkipEnv disables the environment layer.
	SkipEnv bool

	// FS is the file system for the config file. Defaults to the OS.
	FS loader.FileSystem
}

// Load resolves the configuration from defaults, the config file and the
// environment. Unknown settings in the file are errors; unknown
// environment variables are ignored.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.Path != "" {
		l, err := loader.ForFile(opts.FS, opts.Path)
		if err != nil {
			return nil, err
		}
		data, err := l.Load()
		if err != nil {
			return nil, err
		}
		if err := cfg.apply(opts.Path, data, true); err != nil {
			return nil, err
		}
	}

	if !opts.SkipEnv {
		prefix := opts.EnvPrefix
		if prefix == "" {
			prefix = loader.DefaultEnvPrefix
		}
		data, err := loader.NewEnvLoader(prefix).Load()
		if err != nil {
			return nil, err
		}
		if err := cfg.apply("environment", data, false); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// apply sets every leaf of data. Paths are applied in sorted order so the
// first error reported is stable.
func (c *Config) apply(source string, data map[string]any, strict bool) error {
	flat := loader.Flatten(data)
	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		err := c.Set(p, flat[p])
		if err == nil {
			continue
		}
		if !strict && errors.Is(err, ErrSettingNotFound) {
			continue
		}
		var serr *SettingError
		if errors.As(err, &serr) {
			serr.Source = source
			return serr
		}
		return fmt.Errorf("%s: %w", source, err)
	}
	return nil
}
