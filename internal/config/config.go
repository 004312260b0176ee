// Package config provides configuration management for olmkit, including
// loading configuration with precedence, environment variable overrides,
// and get/set/list operations for configuration values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/olmkit/olmkit/internal/core"
	"github.com/olmkit/olmkit/internal/provision"
	"github.com/olmkit/olmkit/internal/retry"
	"github.com/olmkit/olmkit/internal/subscription"
)

// Pinned helper binary releases and their artifact locations. The templates
// are parameterized by {version}, {os}, and {arch}.
const (
	DefaultUmociVersion     = "v0.4.7"
	DefaultUmociURLTemplate = "https://github.com/opencontainers/umoci/releases/download/{version}/umoci.{os}.{arch}"
	DefaultOpmVersion       = "v1.47.0"
	DefaultOpmURLTemplate   = "https://github.com/operator-framework/operator-registry/releases/download/{version}/{os}-{arch}-opm"
	DefaultInstallerURL     = "https://raw.githubusercontent.com/redhat-developer/rhdh-operator/main/.rhdh/scripts/install-rhdh-catalog-source.sh"
)

const (
	DefaultMaxAttempts      = 3
	DefaultRetryWaitSeconds = 120
)

type LogFormat string

const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

func ValidLogFormats() map[LogFormat]struct{} {
	return map[LogFormat]struct{}{
		LogFormatPretty: {},
		LogFormatJSON:   {},
	}
}

func IsValidLogFormat(format LogFormat) bool {
	_, ok := ValidLogFormats()[format]
	return ok
}

// Config represents the olmkit configuration: the helper binary pins, the
// installer script location, the retry policy for the installer invocation,
// the subscription values handed to the external configuration step, and the
// logging setup.
type Config struct {
	LogFormat LogFormat `yaml:"log_format,omitempty" mapstructure:"log_format"` // "pretty" or "json"
	LogLevel  string    `yaml:"log_level,omitempty" mapstructure:"log_level"`   // "debug", "info", "warn", "error", "fatal"

	UmociVersion     string `yaml:"umoci_version,omitempty" mapstructure:"umoci_version"`
	UmociURLTemplate string `yaml:"umoci_url_template,omitempty" mapstructure:"umoci_url_template"`
	OpmVersion       string `yaml:"opm_version,omitempty" mapstructure:"opm_version"`
	OpmURLTemplate   string `yaml:"opm_url_template,omitempty" mapstructure:"opm_url_template"`

	InstallerURL string `yaml:"installer_url,omitempty" mapstructure:"installer_url"`

	MaxAttempts      int `yaml:"max_attempts,omitempty" mapstructure:"max_attempts"`
	RetryWaitSeconds int `yaml:"retry_wait_seconds,omitempty" mapstructure:"retry_wait_seconds"`

	Subscription     string `yaml:"subscription,omitempty" mapstructure:"subscription"`
	Channel          string `yaml:"channel,omitempty" mapstructure:"channel"`
	Source           string `yaml:"source,omitempty" mapstructure:"source"`
	ConfigureCommand string `yaml:"configure_command,omitempty" mapstructure:"configure_command"`
}

// ToolSpecs returns the helper binaries to provision, in provisioning order.
func (cfg *Config) ToolSpecs() []provision.ToolSpec {
	return []provision.ToolSpec{
		{Name: "umoci", Version: cfg.UmociVersion, URLTemplate: cfg.UmociURLTemplate},
		{Name: "opm", Version: cfg.OpmVersion, URLTemplate: cfg.OpmURLTemplate},
	}
}

// RetryPolicy returns the retry policy for the installer invocation.
func (cfg *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: cfg.MaxAttempts,
		Wait:        time.Duration(cfg.RetryWaitSeconds) * time.Second,
	}
}

// SubscriptionSettings returns the values exported for the external
// configuration step.
func (cfg *Config) SubscriptionSettings() subscription.Settings {
	return subscription.Settings{
		Subscription: cfg.Subscription,
		Channel:      cfg.Channel,
		Source:       cfg.Source,
	}
}

// ConfigValue represents a configuration value with its source
type ConfigValue struct {
	Value  any
	Source string // "env", "project", "user", or "default"
}

// GetUserConfigPath returns the path to the user-specific config file (~/.olmkit/config.yaml)
func GetUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".olmkit", "config.yaml"), nil
}

// GetProjectConfigPath returns the path to the project-specific config file
// (./olmkit.yaml) relative to the current working directory
func GetProjectConfigPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}
	return filepath.Join(cwd, "olmkit.yaml"), nil
}

// setupViper configures Viper with defaults, config file locations, and environment variables
// If configPath is provided (non-empty), loads from that specific path instead of using precedence
func setupViper(configPath string) error {
	viper.Reset()
	setViperDefaults()
	viper.SetEnvPrefix("OLMKIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// If specific path provided, load only that file
	if configPath != "" {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		return nil
	}

	// Otherwise use precedence: user config first, then project config
	userPath, userErr := GetUserConfigPath()
	if userErr == nil {
		if _, userStatErr := os.Stat(userPath); userStatErr == nil {
			viper.SetConfigFile(userPath)
			if userReadErr := viper.ReadInConfig(); userReadErr != nil {
				zap.L().Debug("Failed to read user config file", zap.String("path", userPath), zap.Error(userReadErr))
			}
		}
	}

	projectPath, projectErr := GetProjectConfigPath()
	if projectErr == nil {
		if _, projectStatErr := os.Stat(projectPath); projectStatErr == nil {
			viper.SetConfigFile(projectPath)
			if projectReadErr := viper.MergeInConfig(); projectReadErr != nil {
				zap.L().Debug("Failed to merge project config file", zap.String("path", projectPath), zap.Error(projectReadErr))
			}
		}
	}

	return nil
}

// setViperDefaults sets default values in Viper
func setViperDefaults() {
	// Pretty logs only when a human is watching.
	defaultFormat := LogFormatJSON
	if term.IsTerminal(int(os.Stdout.Fd())) {
		defaultFormat = LogFormatPretty
	}
	viper.SetDefault("log_format", string(defaultFormat))
	viper.SetDefault("log_level", "info")

	viper.SetDefault("umoci_version", DefaultUmociVersion)
	viper.SetDefault("umoci_url_template", DefaultUmociURLTemplate)
	viper.SetDefault("opm_version", DefaultOpmVersion)
	viper.SetDefault("opm_url_template", DefaultOpmURLTemplate)
	viper.SetDefault("installer_url", DefaultInstallerURL)

	viper.SetDefault("max_attempts", DefaultMaxAttempts)
	viper.SetDefault("retry_wait_seconds", DefaultRetryWaitSeconds)

	viper.SetDefault("subscription", subscription.DefaultSubscription)
	viper.SetDefault("channel", subscription.DefaultChannel)
	viper.SetDefault("source", subscription.DefaultSource)
	viper.SetDefault("configure_command", subscription.DefaultConfigureCommand)
}

// LoadConfig loads configuration with precedence: project config > user config > defaults
// Environment variables override config file values
// If configPath is provided, loads from that specific path instead
func LoadConfig(configPath string) (*Config, error) {
	if err := setupViper(configPath); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.LogFormat != "" && !IsValidLogFormat(cfg.LogFormat) {
		return fmt.Errorf("log_format must be one of: %s, got '%s'", core.JoinMapKeys(ValidLogFormats()), cfg.LogFormat)
	}
	if cfg.LogLevel != "" {
		if _, err := core.ParseLogLevel(cfg.LogLevel); err != nil {
			return err
		}
	}

	for _, spec := range cfg.ToolSpecs() {
		if err := spec.Validate(); err != nil {
			return err
		}
	}

	if cfg.InstallerURL == "" {
		return fmt.Errorf("installer_url cannot be empty")
	}

	if err := cfg.RetryPolicy().Validate(); err != nil {
		return err
	}

	if err := cfg.SubscriptionSettings().Validate(); err != nil {
		return err
	}

	if cfg.ConfigureCommand == "" {
		return fmt.Errorf("configure_command cannot be empty")
	}

	return nil
}

// getValueSource determines the source of a config value
func getValueSource(key string) string {
	// Check if environment variable is set
	envKey := "OLMKIT_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	if os.Getenv(envKey) != "" {
		return "env"
	}

	// Check project config
	projectPath, err := GetProjectConfigPath()
	if err == nil {
		if _, projectStatErr := os.Stat(projectPath); projectStatErr == nil {
			projectViper := viper.New()
			projectViper.SetConfigFile(projectPath)
			if projectReadErr := projectViper.ReadInConfig(); projectReadErr == nil {
				if projectViper.IsSet(key) {
					return "project"
				}
			}
		}
	}

	// Check user config
	userPath, userErr := GetUserConfigPath()
	if userErr == nil {
		if _, userStatErr := os.Stat(userPath); userStatErr == nil {
			userViper := viper.New()
			userViper.SetConfigFile(userPath)
			if userReadErr := userViper.ReadInConfig(); userReadErr == nil {
				if userViper.IsSet(key) {
					return "user"
				}
			}
		}
	}

	return "default"
}

// GetConfigValue retrieves a configuration value by key, checking environment variables first
// Returns the value and its source ("env", "project", "user", or "default")
func GetConfigValue(key string) (*ConfigValue, error) {
	if err := setupViper(""); err != nil {
		return nil, err
	}

	// Viper handles defaults, so Get will return default if not set
	value := viper.Get(key)
	if value == nil {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}

	source := getValueSource(key)
	return &ConfigValue{Value: value, Source: source}, nil
}

// SetConfigValue sets a configuration value and saves it to the appropriate config file
func SetConfigValue(key, value string) error {
	// Determine which config file to update
	projectPath, projectErr := GetProjectConfigPath()
	var configPath string

	if projectErr == nil {
		if _, projectStatErr := os.Stat(projectPath); projectStatErr == nil {
			configPath = projectPath
		}
	}

	if configPath == "" {
		// Use user config
		userPath, userErr := GetUserConfigPath()
		if userErr != nil {
			return fmt.Errorf("failed to get user config path: %w", userErr)
		}
		// Ensure directory exists
		configDir := filepath.Dir(userPath)
		// #nosec G301 -- config directory permissions 0755 are acceptable for user config directory
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configPath = userPath
	}

	// Load existing config using Viper
	if err := setupViper(configPath); err != nil {
		// A missing file is fine, we are about to create it.
		if _, statErr := os.Stat(configPath); statErr == nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		if setupErr := setupViper(""); setupErr != nil {
			return setupErr
		}
	}

	// Set the value in Viper
	viper.Set(key, value)

	// Unmarshal into config struct and validate before persisting
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	// Save to file
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// #nosec G306 -- config file permissions 0644 are acceptable for user config files
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ListConfig returns all configuration keys and values with their sources
func ListConfig() (map[string]*ConfigValue, error) {
	if err := setupViper(""); err != nil {
		return nil, err
	}

	result := make(map[string]*ConfigValue)

	allSettings := viper.AllSettings()
	for key := range allSettings {
		// Skip nested maps
		if _, ok := allSettings[key].(map[string]interface{}); ok {
			continue
		}
		configVal, err := GetConfigValue(key)
		if err != nil {
			continue
		}
		result[key] = configVal
	}

	return result, nil
}
