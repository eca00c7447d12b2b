// Package config loads the CLI configuration: confmap defaults, then an
// optional YAML file, then IFCPEEK_ environment variables, then explicit
// flags, unmarshalled into Config. It also builds the process logger
// shared through the command context.
package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	intconfig "github.com/ifcpeek/ifcpeek/internal/config"
	"github.com/ifcpeek/ifcpeek/internal/format"
	"github.com/ifcpeek/ifcpeek/internal/peekerr"
)

// envPrefix namespaces the environment variables read by Load.
const envPrefix = "IFCPEEK_"

// Config holds all CLI configuration options. Color and Format are kept
// as validated strings; the typed accessors below cannot fail after Load.
type Config struct {
	HistoryFile      string `koanf:"history_file"`
	CacheDir         string `koanf:"cache_dir"`
	NoCache          bool   `koanf:"no_cache"`
	Color            string `koanf:"color"`
	Format           string `koanf:"format"`
	Prompt           string `koanf:"prompt"`
	Verbose          bool   `koanf:"verbose"`
	Debug            bool   `koanf:"debug"`
	ForceInteractive bool   `koanf:"force_interactive"`

	// File is the config file the values came from, "" when none was
	// found. Not a config key.
	File string `koanf:"-"`
}

// Default returns the built-in configuration, before any file, env or
// flag layer. HistoryFile and CacheDir stay empty here; Load resolves
// them to the per-user directories only when no layer set them.
func Default() *Config {
	return &Config{
		Color:  string(format.ColorAuto),
		Format: string(format.ModeTSV),
		Prompt: "> ",
	}
}

// Load builds the configuration. cfgFile forces a specific config file
// (an error if missing); otherwise the working directory and the user
// config directory are searched. flags may be nil; only flags the user
// changed override lower layers.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	def := Default()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"history_file":      def.HistoryFile,
		"cache_dir":         def.CacheDir,
		"no_cache":          def.NoCache,
		"color":             def.Color,
		"format":            def.Format,
		"prompt":            def.Prompt,
		"verbose":           def.Verbose,
		"debug":             def.Debug,
		"force_interactive": def.ForceInteractive,
	}, "."), nil); err != nil {
		return nil, peekerr.Wrap(peekerr.KindConfiguration, err, "failed to load defaults")
	}

	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return nil, peekerr.Wrap(peekerr.KindConfiguration, err, "config file %s", cfgFile)
		}
	} else {
		cfgFile = intconfig.FindConfigFile()
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, peekerr.Wrap(peekerr.KindConfiguration, err, "failed to read config file %s", cfgFile)
		}
	}

	// IFCPEEK_HISTORY_FILE -> history_file
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, peekerr.Wrap(peekerr.KindConfiguration, err, "failed to load environment")
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, peekerr.Wrap(peekerr.KindConfiguration, err, "failed to load flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, peekerr.Wrap(peekerr.KindConfiguration, err, "unable to decode config")
	}
	cfg.File = cfgFile

	cfg.HistoryFile = expandEnvVars(cfg.HistoryFile)
	cfg.CacheDir = expandEnvVars(cfg.CacheDir)

	if _, err := format.ParseColorMode(cfg.Color); err != nil {
		return nil, peekerr.Wrap(peekerr.KindConfiguration, err, "config value color")
	}
	if _, err := format.ParseMode(cfg.Format); err != nil {
		return nil, peekerr.Wrap(peekerr.KindConfiguration, err, "config value format")
	}

	if cfg.HistoryFile == "" {
		path, err := intconfig.HistoryFile()
		if err != nil {
			return nil, err
		}
		cfg.HistoryFile = path
	}
	if cfg.CacheDir == "" && !cfg.NoCache {
		dir, err := intconfig.CacheDir()
		if err != nil {
			return nil, err
		}
		cfg.CacheDir = dir
	}

	return &cfg, nil
}

// ColorMode returns the validated color mode.
func (c *Config) ColorMode() format.ColorMode {
	mode, err := format.ParseColorMode(c.Color)
	if err != nil {
		return format.ColorAuto
	}
	return mode
}

// Mode returns the validated rendering mode.
func (c *Config) Mode() format.Mode {
	mode, err := format.ParseMode(c.Format)
	if err != nil {
		return format.ModeTSV
	}
	return mode
}

// EffectiveCacheDir returns the cache directory the loader should use,
// "" when caching is disabled.
func (c *Config) EffectiveCacheDir() string {
	if c.NoCache {
		return ""
	}
	return c.CacheDir
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns with environment variable values,
// leaving unset variables untouched.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if val := os.Getenv(name); val != "" {
			return val
		}
		return match
	})
}
