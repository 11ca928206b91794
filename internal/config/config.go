package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Library  LibraryConfig  `mapstructure:"library"`
	Triage   TriageConfig   `mapstructure:"triage"`
	Progress ProgressConfig `mapstructure:"progress"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// LibraryConfig locates the media library and local data
type LibraryConfig struct {
	Root    string `mapstructure:"root"`     // Media library root directory
	DataDir string `mapstructure:"data_dir"` // Overlay database directory
}

// TriageConfig holds swipe behavior settings
type TriageConfig struct {
	DailyLimit   int `mapstructure:"daily_limit"`    // Free swipes per day
	FlushDelayMS int `mapstructure:"flush_delay_ms"` // Persistence debounce window
}

// ProgressConfig holds progress cache settings
type ProgressConfig struct {
	FreshnessSec int `mapstructure:"freshness_sec"` // Cache freshness window
	BatchSize    int `mapstructure:"batch_size"`    // Group enumeration page size
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			Root:    "",
			DataDir: defaultDataPath(),
		},
		Triage: TriageConfig{
			DailyLimit:   50,
			FlushDelayMS: 1000,
		},
		Progress: ProgressConfig{
			FreshnessSec: 300,
			BatchSize:    500,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "sift", "sift.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "sift", "sift.log")
	}
}

// defaultDataPath returns the default overlay database directory
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "sift", "data")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "sift", "data")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "sift")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "sift")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("SIFT")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("library.root", cfg.Library.Root)
	viper.Set("library.data_dir", cfg.Library.DataDir)

	viper.Set("triage.daily_limit", cfg.Triage.DailyLimit)
	viper.Set("triage.flush_delay_ms", cfg.Triage.FlushDelayMS)

	viper.Set("progress.freshness_sec", cfg.Progress.FreshnessSec)
	viper.Set("progress.batch_size", cfg.Progress.BatchSize)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if a library root is set
func (c *Config) IsConfigured() bool {
	return c.Library.Root != ""
}
