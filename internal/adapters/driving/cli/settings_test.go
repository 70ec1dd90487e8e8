package cli

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidentia-labs/evidentia/internal/adapters/driven/config/file"
)

func setupTestConfigStore(t *testing.T) func() {
	t.Helper()
	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	prev := configStore
	configStore = store
	return func() { configStore = prev }
}

func TestSettingsCmd_ShowPrintsDefaults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	restore := setupTestConfigStore(t)
	defer restore()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "workers: 2")
	assert.Contains(t, buf.String(), "weight_lexical: 0.60")
	assert.Contains(t, buf.String(), "provider: anthropic")
}

func TestSettingsCmd_InitWritesFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	restore := setupTestConfigStore(t)
	defer restore()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "init"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	data, err := os.ReadFile(configStore.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "workers = 2")
}
