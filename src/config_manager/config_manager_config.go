package config_manager

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/sirupsen/logrus"
)

// CurrentConfigVersion is the latest version of the config.json format.
const CurrentConfigVersion = "v0.1.0"

// DefaultTimeout applies to connect and read when the config leaves them unset.
const DefaultTimeout = 30 * time.Second

// DefaultAPIBaseURL is the Spoonacular API root every recipe request is resolved against.
const DefaultAPIBaseURL = "https://api.spoonacular.com/"

// Config represents the main configuration for the awareness-food service.
type Config struct {
	ConfigVersion  string               `json:"config_version"`
	LogLevel       string               `json:"log_level"`
	RecipeAPI      RecipeAPIConfig      `json:"recipe_api"`
	NetworkMonitor NetworkMonitorConfig `json:"network_monitor"`
	Analytics      AnalyticsConfig      `json:"analytics"`
	CLI            CLIConfig            `json:"cli"`
}

// RecipeAPIConfig holds the transport settings for the recipe source.
type RecipeAPIConfig struct {
	BaseURL        string        `json:"base_url"`
	APIKey         string        `json:"api_key"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
	ReadTimeout    time.Duration `json:"read_timeout"`
}

// NetworkMonitorConfig holds interface filtering for the connectivity service.
type NetworkMonitorConfig struct {
	IgnoreInterfaces []string `json:"ignore_interfaces"`
	OnlyInterfaces   []string `json:"only_interfaces"`
}

// AnalyticsConfig controls whether analytics events are published as nostr notes.
type AnalyticsConfig struct {
	Enabled    bool     `json:"enabled"`
	PrivateKey string   `json:"private_key"`
	Relays     []string `json:"relays"`
}

// CLIConfig holds settings for the local control socket.
type CLIConfig struct {
	SocketPath string `json:"socket_path"`
}

// LoadConfig loads and parses config.json.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Return nil config if file does not exist
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil // Return nil config if file is empty
	}
	var config Config
	err = json.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}
	config.applyDefaults()
	return &config, nil
}

// applyDefaults fills settings whose zero value would disable them.
func (c *Config) applyDefaults() {
	if c.RecipeAPI.ConnectTimeout <= 0 {
		c.RecipeAPI.ConnectTimeout = DefaultTimeout
	}
	if c.RecipeAPI.ReadTimeout <= 0 {
		c.RecipeAPI.ReadTimeout = DefaultTimeout
	}
}

// isOutdated reports whether configVersion is unparsable or older than
// CurrentConfigVersion.
func isOutdated(configVersion string) bool {
	current := version.Must(version.NewVersion(CurrentConfigVersion))
	v, err := version.NewVersion(configVersion)
	if err != nil {
		return true
	}
	return v.LessThan(current)
}

// SaveConfig saves config.json.
func SaveConfig(filePath string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(filePath, data, 0644)
}

// NewDefaultConfig creates a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		ConfigVersion: CurrentConfigVersion,
		LogLevel:      "info",
		RecipeAPI: RecipeAPIConfig{
			BaseURL:        DefaultAPIBaseURL,
			APIKey:         "",
			ConnectTimeout: DefaultTimeout,
			ReadTimeout:    DefaultTimeout,
		},
		NetworkMonitor: NetworkMonitorConfig{
			IgnoreInterfaces: []string{"lo", "docker0"},
			OnlyInterfaces:   []string{},
		},
		Analytics: AnalyticsConfig{
			Enabled: false,
			Relays: []string{
				"wss://relay.damus.io",
				"wss://nos.lol",
			},
		},
		CLI: CLIConfig{
			SocketPath: "/var/run/awareness-food.sock",
		},
	}
}

// EnsureDefaultConfig ensures a default config.json exists, loading from file if present.
func EnsureDefaultConfig(filePath string) (*Config, error) {
	defaultConfig := NewDefaultConfig()
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig, SaveConfig(filePath, defaultConfig)
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil || isOutdated(config.ConfigVersion) {
		backupDir := filepath.Join(filepath.Dir(filePath), "config_backups")
		if backupErr := backupAndLog(filePath, backupDir, "config", defaultConfig.ConfigVersion); backupErr != nil {
			logger.WithError(backupErr).Error("Failed to backup and remove invalid config")
			return nil, backupErr
		}
		return defaultConfig, SaveConfig(filePath, defaultConfig)
	}

	if config.ConfigVersion != CurrentConfigVersion {
		logger.WithFields(logrus.Fields{
			"file":    filePath,
			"version": config.ConfigVersion,
		}).Warn("Config file is newer than this build, loading as is")
	}

	config.applyDefaults()
	return &config, nil
}

// backupAndLog moves an outdated or corrupt file into backupDir, stamping the
// backup name with the time and the version that replaces it.
func backupAndLog(filePath, backupDir, name, newVersion string) error {
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory %s: %w", backupDir, err)
	}

	backupPath := filepath.Join(backupDir,
		fmt.Sprintf("%s_%s_pre_%s.json", name, time.Now().Format("20060102T150405"), newVersion))
	if err := os.Rename(filePath, backupPath); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", filePath, backupPath, err)
	}

	logger.WithFields(logrus.Fields{
		"file":        filePath,
		"backup":      backupPath,
		"new_version": newVersion,
	}).Warn("Replaced outdated config file with defaults")
	return nil
}
