package config

import (
	"fmt"
	"os"

	"azt-exchange/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyDefaults fills in values that most deployments never need to change.
func (c *Config) applyDefaults() {
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 10
	}
	if c.Feed.CacheTTLMinutes == 0 {
		c.Feed.CacheTTLMinutes = 5
	}
	if c.Market.TickIntervalSeconds == 0 {
		c.Market.TickIntervalSeconds = 60
	}
	if c.Market.RetentionLimit == 0 {
		// about 16 hours of minute data
		c.Market.RetentionLimit = 1000
	}
	if c.Market.DefaultPrice == 0 {
		c.Market.DefaultPrice = 100
	}
	if c.Market.BackfillDays == 0 {
		c.Market.BackfillDays = 30
	}
	if c.Market.Calendar == "" {
		c.Market.Calendar = "simple"
	}
	if c.Market.OpenHour == 0 && c.Market.CloseHour == 0 {
		c.Market.OpenHour = 9
		c.Market.CloseHour = 16
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "json", "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for %s", c.Storage.DBType)
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unknown database type: %s", c.Storage.DBType)
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Validate Feed configuration
	if c.Feed.URL == "" {
		return fmt.Errorf("feed url cannot be empty")
	}
	if c.Feed.CacheTTLMinutes <= 0 {
		return fmt.Errorf("feed cache ttl must be greater than 0")
	}

	// Validate Market configuration
	if c.Market.TickIntervalSeconds <= 0 {
		return fmt.Errorf("tick interval must be greater than 0")
	}
	if c.Market.RetentionLimit <= 0 {
		return fmt.Errorf("retention limit must be greater than 0")
	}
	if c.Market.OpenHour < 0 || c.Market.CloseHour > 23 || c.Market.OpenHour > c.Market.CloseHour {
		return fmt.Errorf("invalid market hours: %d-%d", c.Market.OpenHour, c.Market.CloseHour)
	}

	// Validate Data configuration
	if c.Data.AuthorsFile == "" {
		return fmt.Errorf("authors file cannot be empty")
	}
	if c.Data.UsersFile == "" {
		return fmt.Errorf("users file cannot be empty")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
