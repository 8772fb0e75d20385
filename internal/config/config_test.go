package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/dirsize/internal/config"
)

func load(t *testing.T, argv ...string) (config.Options, error) {
	t.Helper()

	flags := pflag.NewFlagSet("dirsize", pflag.ContinueOnError)
	config.Register(flags)
	require.NoError(t, flags.Parse(argv))

	return config.Load(viper.New(), flags, flags.Args())
}

func TestLoadDefaults(t *testing.T) {
	options, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, config.Options{
		Path:      ".",
		Output:    "table",
		LogLevel:  "warn",
		LogFormat: "console",
	}, options)
}

func TestLoadFlags(t *testing.T) {
	options, err := load(t, "-o", "JSON", "--workers", "3", "--fast", "--debug", "some/dir/")
	require.NoError(t, err)

	assert.Equal(t, "json", options.Output)
	assert.Equal(t, 3, options.Workers)
	assert.True(t, options.Fast)
	assert.Equal(t, "debug", options.LogLevel)
	assert.Equal(t, filepath.Clean("some/dir"), options.Path)
}

func TestLoadDrives(t *testing.T) {
	options, err := load(t, "--drives")
	require.NoError(t, err)

	assert.True(t, options.Drives)
	assert.Empty(t, options.Path)
}

func TestLoadDrivesRejectsPath(t *testing.T) {
	_, err := load(t, "--drives", "somewhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `--drives cannot be combined with path "somewhere"`)
}

func TestLoadPrecedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "dirsize.yaml")
	require.NoError(t, os.WriteFile(file, []byte("workers: 2\noutput: tsv\nprogress-interval: 2s\n"), 0o644))

	t.Setenv("DIRSIZE_WORKERS", "5")

	options, err := load(t, "--config", file)
	require.NoError(t, err)

	assert.Equal(t, 5, options.Workers, "environment beats config file")
	assert.Equal(t, "tsv", options.Output, "config file beats default")
	assert.Equal(t, 2*time.Second, options.ProgressInterval)

	options, err = load(t, "--config", file, "--workers", "7")
	require.NoError(t, err)

	assert.Equal(t, 7, options.Workers, "flag beats environment")
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := load(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := config.Options{Output: "table"}

	tests := []struct {
		name   string
		mutate func(*config.Options)
		errMsg string
	}{
		{"valid", func(*config.Options) {}, ""},
		{"bad output", func(o *config.Options) { o.Output = "xml" }, `invalid output format "xml"`},
		{"negative workers", func(o *config.Options) { o.Workers = -1 }, "workers cannot be negative"},
		{"negative interval", func(o *config.Options) { o.ProgressInterval = -time.Second }, "progress interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			options := valid
			tt.mutate(&options)

			err := options.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
