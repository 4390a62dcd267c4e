package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ModeConvert, cfg.Mode)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, "formspec", cfg.ServerName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(50*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, DefaultProvider, cfg.Provider)

	currentDir, _ := os.Getwd()
	assert.Equal(t, currentDir, cfg.FormsDirectory)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Mode:           ModeConvert,
			Host:           "127.0.0.1",
			Port:           8080,
			FormsDirectory: t.TempDir(),
			LogLevel:       "info",
			MaxFileSize:    1024,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid convert mode", func(c *Config) {}, false},
		{"valid stdio mode", func(c *Config) { c.Mode = ModeStdio }, false},
		{"valid server mode", func(c *Config) { c.Mode = ModeServer }, false},
		{"invalid mode", func(c *Config) { c.Mode = "daemon" }, true},
		{"invalid port in server mode", func(c *Config) { c.Mode = ModeServer; c.Port = 0 }, true},
		{"port too high in server mode", func(c *Config) { c.Mode = ModeServer; c.Port = 70000 }, true},
		{"invalid port ignored outside server mode", func(c *Config) { c.Port = 0 }, false},
		{"empty forms directory", func(c *Config) { c.FormsDirectory = "" }, true},
		{"invalid log level", func(c *Config) { c.LogLevel = "trace" }, true},
		{"zero max file size", func(c *Config) { c.MaxFileSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigValidateDoesNotRequireDirectory(t *testing.T) {
	// Placeholder paths like ${workspaceRoot} must survive validation
	cfg := &Config{
		Mode:           ModeConvert,
		FormsDirectory: "/definitely/not/a/real/path",
		LogLevel:       "info",
		MaxFileSize:    1024,
	}
	require.NoError(t, cfg.Validate())

	_, err := os.Stat(cfg.FormsDirectory)
	assert.True(t, os.IsNotExist(err), "validation must not create the directory")
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{Host: "192.168.1.1", Port: 9090}
	assert.Equal(t, "192.168.1.1:9090", cfg.Address())
}

func TestConfigIsDebug(t *testing.T) {
	assert.True(t, (&Config{LogLevel: "debug"}).IsDebug())
	assert.False(t, (&Config{LogLevel: "info"}).IsDebug())
}

func TestConfigString(t *testing.T) {
	cfg := &Config{
		Mode:            ModeServer,
		Host:            "localhost",
		Port:            8080,
		FormsDirectory:  "/home/user/forms",
		OutputDirectory: "/home/user/out",
		LogLevel:        "debug",
		MaxFileSize:     1024,
	}

	s := cfg.String()
	for _, substr := range []string{
		"Mode: server",
		"Host: localhost",
		"Port: 8080",
		"FormsDirectory: /home/user/forms",
		"OutputDirectory: /home/user/out",
		"LogLevel: debug",
		"MaxFileSize: 1024",
	} {
		assert.Contains(t, s, substr)
	}
}

func TestConfigModeHelpers(t *testing.T) {
	assert.True(t, (&Config{Mode: ModeServer}).IsServerMode())
	assert.False(t, (&Config{Mode: ModeStdio}).IsServerMode())
	assert.True(t, (&Config{Mode: ModeStdio}).IsStdioMode())
	assert.True(t, (&Config{Mode: ModeConvert}).IsConvertMode())
	assert.False(t, (&Config{Mode: ModeServer}).IsConvertMode())
}
