package config

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags gives each test a fresh flag set and viper state
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

func clearEnvVars() {
	os.Unsetenv("FORMSPEC_MODE")
	os.Unsetenv("FORMSPEC_HOST")
	os.Unsetenv("FORMSPEC_PORT")
	os.Unsetenv("FORMSPEC_DIR")
	os.Unsetenv("FORMSPEC_OUT")
	os.Unsetenv("FORMSPEC_PROVIDER")
	os.Unsetenv("FORMSPEC_LOGLEVEL")
	os.Unsetenv("FORMSPEC_MAXFILESIZE")
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Args = []string{"formspec"}
	resetFlags()
	clearEnvVars()

	cfg, err := LoadFromFlags()
	require.NoError(t, err)

	assert.Equal(t, ModeConvert, cfg.Mode)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(50*1024*1024), cfg.MaxFileSize)
	assert.NotEmpty(t, cfg.FormsDirectory)
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantMode string
		wantHost string
		wantPort int
	}{
		{
			name:     "convert mode with custom directory",
			args:     []string{"formspec", "--dir=DIR"},
			wantMode: ModeConvert,
			wantHost: "127.0.0.1",
			wantPort: 8080,
		},
		{
			name:     "stdio mode",
			args:     []string{"formspec", "--mode=stdio", "--dir=DIR"},
			wantMode: ModeStdio,
			wantHost: "127.0.0.1",
			wantPort: 8080,
		},
		{
			name:     "server mode with custom host and port",
			args:     []string{"formspec", "--mode=server", "--host=0.0.0.0", "--port=9090", "--dir=DIR"},
			wantMode: ModeServer,
			wantHost: "0.0.0.0",
			wantPort: 9090,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalArgs := os.Args
			defer func() {
				os.Args = originalArgs
				resetFlags()
				clearEnvVars()
			}()

			tempDir := t.TempDir()
			args := make([]string, len(tt.args))
			for i, arg := range tt.args {
				if arg == "--dir=DIR" {
					args[i] = "--dir=" + tempDir
				} else {
					args[i] = arg
				}
			}

			os.Args = args
			resetFlags()
			clearEnvVars()

			cfg, err := LoadFromFlags()
			require.NoError(t, err)

			assert.Equal(t, tt.wantMode, cfg.Mode)
			assert.Equal(t, tt.wantHost, cfg.Host)
			assert.Equal(t, tt.wantPort, cfg.Port)
			assert.Equal(t, tempDir, cfg.FormsDirectory)
		})
	}
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	tempDir := t.TempDir()
	os.Setenv("FORMSPEC_MODE", "server")
	os.Setenv("FORMSPEC_HOST", "192.168.1.1")
	os.Setenv("FORMSPEC_PORT", "3000")
	os.Setenv("FORMSPEC_DIR", tempDir)
	os.Setenv("FORMSPEC_PROVIDER", "Dr. Rivera")
	os.Setenv("FORMSPEC_LOGLEVEL", "warn")
	os.Setenv("FORMSPEC_MAXFILESIZE", "200000000")

	os.Args = []string{"formspec"}
	resetFlags()

	cfg, err := LoadFromFlags()
	require.NoError(t, err)

	assert.Equal(t, ModeServer, cfg.Mode)
	assert.Equal(t, "192.168.1.1", cfg.Host)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "Dr. Rivera", cfg.Provider)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, int64(200000000), cfg.MaxFileSize)
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Setenv("FORMSPEC_MODE", "server")
	os.Setenv("FORMSPEC_HOST", "192.168.1.1")
	os.Setenv("FORMSPEC_PORT", "3000")

	os.Args = []string{"formspec", "--mode=stdio", "--host=localhost", "--port=8888"}
	resetFlags()

	cfg, err := LoadFromFlags()
	require.NoError(t, err)

	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8888, cfg.Port)
}

func TestLoadFromFlags_InvalidMode(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Args = []string{"formspec", "--mode=daemon", "--dir=" + t.TempDir()}
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mode must be one of")
}

func TestLoadFromFlags_InvalidPort(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Args = []string{"formspec", "--mode=server", "--port=99999", "--dir=" + t.TempDir()}
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port must be between 1 and 65535")
}

func TestLoadFromFlags_InvalidLogLevel(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Args = []string{"formspec", "--loglevel=trace", "--dir=" + t.TempDir()}
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestLoadFromFlags_VersionFlag(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Args = []string{"formspec", "--version"}
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	require.Error(t, err)
	assert.Equal(t, "version requested", err.Error())
}
