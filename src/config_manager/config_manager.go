package config_manager

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"github.com/sirupsen/logrus"
)

// APIKeyEnv overrides recipe_api.api_key when set.
const APIKeyEnv = "SPOONACULAR_API_KEY"

var logger = logrus.WithField("module", "config_manager")

// ConfigManager manages the configuration file
type ConfigManager struct {
	FilePath string
}

// NewConfigManager creates a new ConfigManager instance
func NewConfigManager(filePath string) (*ConfigManager, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, fmt.Errorf("config file path is empty")
	}
	return &ConfigManager{FilePath: filePath}, nil
}

// LoadConfig reads the configuration from the managed file
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	config, err := LoadConfig(cm.FilePath)

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		// Malformed JSON is treated as a missing file so defaults get recreated.
		logger.WithError(err).WithField("file", cm.FilePath).Warn("Error unmarshalling config file, treating as empty")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return config, nil
}

// SaveConfig writes the configuration to the managed file with pretty formatting
func (cm *ConfigManager) SaveConfig(config *Config) error {
	return SaveConfig(cm.FilePath, config)
}

// EnsureDefaultConfig ensures a default configuration exists, creating it if necessary
func (cm *ConfigManager) EnsureDefaultConfig() (*Config, error) {
	return EnsureDefaultConfig(cm.FilePath)
}

// EnsureInitializedConfig loads the config, creating defaults and an analytics
// identity when missing, and applies environment overrides to the returned copy.
func (cm *ConfigManager) EnsureInitializedConfig() (*Config, error) {
	config, err := cm.EnsureDefaultConfig()
	if err != nil {
		return nil, err
	}

	if config.Analytics.PrivateKey == "" {
		config.Analytics.PrivateKey = cm.generatePrivateKey()
		if err := cm.SaveConfig(config); err != nil {
			return nil, fmt.Errorf("failed to persist analytics identity: %w", err)
		}
		logger.Info("Generated new analytics identity")
	}

	applyEnvOverrides(config)
	return config, nil
}

func (cm *ConfigManager) generatePrivateKey() string {
	return nostr.GeneratePrivateKey()
}

func applyEnvOverrides(config *Config) {
	if key := os.Getenv(APIKeyEnv); key != "" {
		config.RecipeAPI.APIKey = key
	}
}
