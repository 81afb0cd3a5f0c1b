package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("returns defaults when the file does not exist", func(tt *testing.T) {
		tt.Setenv("MORPH_DT_API_KEY", "")
		tt.Setenv("ARCHIVER_DB_PATH", "")
		tt.Setenv("ARCHIVER_IDENTITY_URL", "")

		cfg, err := Load(filepath.Join(tt.TempDir(), "missing.yaml"))
		assert.NoError(tt, err)
		assert.Equal(tt, DefaultDatabasePath, cfg.DatabasePath)
		assert.Equal(tt, DefaultIdentityURL, cfg.IdentityURL)
		assert.Empty(tt, cfg.APIKey)
	})

	t.Run("reads settings from yaml", func(tt *testing.T) {
		tt.Setenv("MORPH_DT_API_KEY", "")
		tt.Setenv("ARCHIVER_DB_PATH", "")
		tt.Setenv("ARCHIVER_IDENTITY_URL", "")

		path := filepath.Join(tt.TempDir(), "archiver.yaml")
		require.NoError(tt, os.WriteFile(path, []byte(
			"database_path: staged.sqlite\nidentity_url: https://ident.example.org\napi_key: abc123\n"), 0644))

		cfg, err := Load(path)
		assert.NoError(tt, err)
		assert.Equal(tt, "staged.sqlite", cfg.DatabasePath)
		assert.Equal(tt, "https://ident.example.org", cfg.IdentityURL)
		assert.Equal(tt, "abc123", cfg.APIKey)
	})

	t.Run("fills defaults for unset yaml fields", func(tt *testing.T) {
		tt.Setenv("MORPH_DT_API_KEY", "")
		tt.Setenv("ARCHIVER_DB_PATH", "")
		tt.Setenv("ARCHIVER_IDENTITY_URL", "")

		path := filepath.Join(tt.TempDir(), "archiver.yaml")
		require.NoError(tt, os.WriteFile(path, []byte("api_key: abc123\n"), 0644))

		cfg, err := Load(path)
		assert.NoError(tt, err)
		assert.Equal(tt, DefaultDatabasePath, cfg.DatabasePath)
		assert.Equal(tt, DefaultIdentityURL, cfg.IdentityURL)
	})

	t.Run("environment overrides the file", func(tt *testing.T) {
		tt.Setenv("MORPH_DT_API_KEY", "env-key")
		tt.Setenv("ARCHIVER_DB_PATH", "env.sqlite")
		tt.Setenv("ARCHIVER_IDENTITY_URL", "")

		path := filepath.Join(tt.TempDir(), "archiver.yaml")
		require.NoError(tt, os.WriteFile(path, []byte(
			"database_path: staged.sqlite\napi_key: abc123\n"), 0644))

		cfg, err := Load(path)
		assert.NoError(tt, err)
		assert.Equal(tt, "env-key", cfg.APIKey)
		assert.Equal(tt, "env.sqlite", cfg.DatabasePath)
	})

	t.Run("errors on malformed yaml", func(tt *testing.T) {
		path := filepath.Join(tt.TempDir(), "archiver.yaml")
		require.NoError(tt, os.WriteFile(path, []byte("database_path: [unclosed"), 0644))
		_, err := Load(path)
		assert.Error(tt, err)
	})
}
