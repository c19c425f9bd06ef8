package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestMustLoadPath_Defaults(t *testing.T) {
	path := writeConfig(t, "env: dev\n")

	cfg := MustLoadPath(path)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, BackendSimulated, cfg.Commit.Backend)
	assert.Equal(t, 2*time.Second, cfg.Commit.Delay)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "/uploads", cfg.FileStorage.BaseURL)
	assert.False(t, cfg.SkipSeed)
}

func TestMustLoadPath_LocalFile(t *testing.T) {
	cfg := MustLoadPath("../../config/local.yaml")

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "Maria Silva", cfg.Identity.DefaultUser.Name)
	assert.Equal(t, time.Hour, cfg.Identity.TokenTTL)
}

func TestMustLoadPath_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown backend", body: "commit:\n  backend: kafka\n"},
		{name: "postgres without dsn", body: "commit:\n  backend: postgres\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.body)

			assert.Panics(t, func() { MustLoadPath(path) })
		})
	}

	assert.Panics(t, func() { MustLoadPath(filepath.Join(t.TempDir(), "missing.yaml")) })
}
