package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/moot/internal/config"
)

func chdirTemp(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(originalDir) })
	require.NoError(t, os.Chdir(tmpDir))
	return tmpDir
}

func TestInitialize(t *testing.T) {
	t.Run("fresh initialization", func(t *testing.T) {
		tmpDir := chdirTemp(t)

		require.NoError(t, Initialize(false))

		// The scaffolded config must load cleanly with defaults applied.
		cfg, err := config.Load(filepath.Join(tmpDir, "moot.yml"))
		require.NoError(t, err)
		assert.Equal(t, "1.0", cfg.Version)
		assert.Equal(t, "localhost:6379", cfg.Redis.URL)
		assert.Equal(t, []string{"llama3.1:8b"}, cfg.Model.Models)
		assert.Equal(t, 4, cfg.Orchestrator.MaxRounds)
		assert.True(t, cfg.GenerateExperts())

		gitignore, err := os.ReadFile(filepath.Join(tmpDir, ".gitignore"))
		require.NoError(t, err)
		assert.Contains(t, string(gitignore), GitignoreEntry)
	})

	t.Run("force initialization replaces existing config", func(t *testing.T) {
		tmpDir := chdirTemp(t)
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "moot.yml"), []byte("old content"), 0644))

		require.NoError(t, Initialize(true))

		content, err := os.ReadFile(filepath.Join(tmpDir, "moot.yml"))
		require.NoError(t, err)
		assert.NotContains(t, string(content), "old content")
		assert.Contains(t, string(content), `version: "1.0"`)
	})

	t.Run("existing gitignore is appended not replaced", func(t *testing.T) {
		tmpDir := chdirTemp(t)
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("*.log\n"), 0644))

		require.NoError(t, Initialize(false))

		content, err := os.ReadFile(filepath.Join(tmpDir, ".gitignore"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "*.log")
		assert.Contains(t, string(content), GitignoreEntry)
	})

	t.Run("gitignore entry is not duplicated", func(t *testing.T) {
		tmpDir := chdirTemp(t)
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("traces/\n"), 0644))

		require.NoError(t, Initialize(false))

		content, err := os.ReadFile(filepath.Join(tmpDir, ".gitignore"))
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(string(content), GitignoreEntry))
	})
}
