package config_manager

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigManager(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")

	cm, err := NewConfigManager(configPath)
	require.NoError(t, err)

	// Missing file loads as nil
	config, err := cm.LoadConfig()
	require.NoError(t, err)
	assert.Nil(t, config)

	config, err = cm.EnsureDefaultConfig()
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, CurrentConfigVersion, config.ConfigVersion)
	assert.Equal(t, 30*time.Second, config.RecipeAPI.ConnectTimeout)
	assert.Equal(t, 30*time.Second, config.RecipeAPI.ReadTimeout)

	config.LogLevel = "debug"
	config.RecipeAPI.APIKey = "test_key"
	config.NetworkMonitor.OnlyInterfaces = []string{"wlan0"}
	require.NoError(t, cm.SaveConfig(config))

	loaded, err := cm.LoadConfig()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, config, loaded)
}

func TestNewConfigManagerRejectsEmptyPath(t *testing.T) {
	_, err := NewConfigManager("  ")
	assert.Error(t, err)
}

func TestLoadConfigMalformedTreatedAsMissing(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte("{not json"), 0644))

	cm, err := NewConfigManager(configPath)
	require.NoError(t, err)

	config, err := cm.LoadConfig()
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestEnsureDefaultConfig_VersionMismatchIsBackedUp(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"config_version":"v0.0.1","log_level":"debug"}`), 0644))

	config, err := EnsureDefaultConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, CurrentConfigVersion, config.ConfigVersion)
	assert.Equal(t, "info", config.LogLevel)

	backups, err := os.ReadDir(filepath.Join(dir, "config_backups"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	onDisk, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, CurrentConfigVersion, onDisk.ConfigVersion)
}

func TestEnsureDefaultConfig_KeepsCurrentVersion(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	custom := NewDefaultConfig()
	custom.LogLevel = "warn"
	require.NoError(t, SaveConfig(configPath, custom))

	config, err := EnsureDefaultConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "warn", config.LogLevel)
}

func TestEnsureInitializedConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.json")
	cm, err := NewConfigManager(configPath)
	require.NoError(t, err)

	t.Setenv(APIKeyEnv, "env_key")

	config, err := cm.EnsureInitializedConfig()
	require.NoError(t, err)
	assert.Len(t, config.Analytics.PrivateKey, 64)
	assert.Equal(t, "env_key", config.RecipeAPI.APIKey)

	// The identity is persisted, the env override is not.
	onDisk, err := cm.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.Analytics.PrivateKey, onDisk.Analytics.PrivateKey)
	assert.Empty(t, onDisk.RecipeAPI.APIKey)

	again, err := cm.EnsureInitializedConfig()
	require.NoError(t, err)
	assert.Equal(t, config.Analytics.PrivateKey, again.Analytics.PrivateKey)
}

func TestEnsureDefaultConfig_VersionHandling(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		backedUp  bool
		wantLevel string
	}{
		{"older version", "v0.0.9", true, "info"},
		{"missing version", "", true, "info"},
		{"unparsable version", "latest", true, "info"},
		{"current version", CurrentConfigVersion, false, "debug"},
		{"newer version", "v0.2.0", false, "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			configPath := filepath.Join(dir, "config.json")
			body := `{"config_version":"` + tt.version + `","log_level":"debug"}`
			require.NoError(t, os.WriteFile(configPath, []byte(body), 0644))

			config, err := EnsureDefaultConfig(configPath)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, config.LogLevel)

			_, err = os.Stat(filepath.Join(dir, "config_backups"))
			assert.Equal(t, tt.backedUp, err == nil)
		})
	}
}

func TestEnsureDefaultConfig_FillsMissingTimeouts(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	body := `{"config_version":"` + CurrentConfigVersion + `","recipe_api":{"api_key":"k"}}`
	require.NoError(t, os.WriteFile(configPath, []byte(body), 0644))

	config, err := EnsureDefaultConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "k", config.RecipeAPI.APIKey)
	assert.Equal(t, DefaultTimeout, config.RecipeAPI.ConnectTimeout)
	assert.Equal(t, DefaultTimeout, config.RecipeAPI.ReadTimeout)

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, loaded.RecipeAPI.ReadTimeout)
}

func TestConfigManagerLoadConfigReadError(t *testing.T) {
	// A directory cannot be read as a file.
	cm, err := NewConfigManager(t.TempDir())
	require.NoError(t, err)

	_, err = cm.LoadConfig()
	assert.Error(t, err)
}
