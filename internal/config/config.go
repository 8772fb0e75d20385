// Package config resolves dirsize options from flags, environment and an optional
// config file.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by dirsize, e.g. DIRSIZE_WORKERS.
const EnvPrefix = "DIRSIZE"

// Outputs lists the supported output formats.
//
//nolint:gochecknoglobals // Config constant
var Outputs = []string{"table", "json", "tsv"}

// Options configures a dirsize run.
type Options struct {
	// Path is the directory to list. Empty lists the drives.
	Path string
	// Drives lists logical drives instead of Path.
	Drives bool
	// Output is the output format, one of Outputs.
	Output string
	// Fast walks each entry with parallel fastwalk traversal.
	Fast bool
	// Workers caps concurrent entry walks (0 = one per entry).
	Workers int
	// Live prints each size as soon as it is resolved.
	Live bool
	// ProgressInterval controls progress line cadence.
	ProgressInterval time.Duration
	// Debug enables debug logging.
	Debug bool
	// LogLevel is the log level when Debug is off.
	LogLevel string
	// LogFormat is console or json.
	LogFormat string
	// Version indicates whether to show version and exit.
	Version bool
	// Integration indicates whether to output the shell integration script.
	Integration bool
}

// Register adds all option flags to flags.
func Register(flags *pflag.FlagSet) {
	flags.String("config", "", "Config file (yaml, json or toml)")
	flags.StringP("output", "o", "table", "Output format: "+strings.Join(Outputs, ", "))
	flags.Bool("drives", false, "List logical drives instead of a directory")
	flags.Bool("fast", false, "Walk each entry with parallel traversal")
	flags.IntP("workers", "w", 0, "Maximum concurrent entry walks (0=one per entry)")
	flags.Bool("live", false, "Print each size as soon as it is known")
	flags.Duration("progress-interval", 0, "Progress line refresh interval (0=default)")
	flags.Bool("debug", false, "Enable debug output")
	flags.String("log-level", "warn", "Log level: debug, info, warn, error")
	flags.String("log-format", "console", "Log format: console or json")
	flags.BoolP("version", "v", false, "Show version and exit")
	flags.BoolP("init", "i", false, "Output init script for shell usage")
}

// Load resolves options with precedence flag > environment > config file > default.
// args are the positional arguments; the first one is the path.
func Load(v *viper.Viper, flags *pflag.FlagSet, args []string) (Options, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return Options{}, fmt.Errorf("binding flags: %w", err)
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)

		if err := v.ReadInConfig(); err != nil {
			return Options{}, fmt.Errorf("reading config file %q: %w", file, err)
		}
	}

	options := Options{
		Drives:           v.GetBool("drives"),
		Output:           strings.ToLower(v.GetString("output")),
		Fast:             v.GetBool("fast"),
		Workers:          v.GetInt("workers"),
		Live:             v.GetBool("live"),
		ProgressInterval: v.GetDuration("progress-interval"),
		Debug:            v.GetBool("debug"),
		LogLevel:         v.GetString("log-level"),
		LogFormat:        v.GetString("log-format"),
		Version:          v.GetBool("version"),
		Integration:      v.GetBool("init"),
	}

	if options.Debug {
		options.LogLevel = "debug"
	}

	if options.Drives && len(args) > 0 {
		return options, fmt.Errorf("--drives cannot be combined with path %q", args[0])
	}

	if !options.Drives {
		options.Path = "."
		if len(args) > 0 {
			options.Path = args[0]
		}

		// Normalize to native format to handle both C:/Path and C:\Path inputs
		options.Path = filepath.Clean(options.Path)
	}

	return options, options.Validate()
}

// Validate checks option values.
func (o Options) Validate() error {
	if !slices.Contains(Outputs, o.Output) {
		return fmt.Errorf("invalid output format %q: must be one of %v", o.Output, Outputs)
	}

	if o.Workers < 0 {
		return errors.New("workers cannot be negative")
	}

	if o.ProgressInterval < 0 {
		return errors.New("progress interval cannot be negative")
	}

	return nil
}
