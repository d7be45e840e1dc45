package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Database.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("invalid database environment: %w", err)
	}
	applyDefaults(&cfg)

	if err := cfg.Database.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.HealthPort == 0 {
		cfg.Server.HealthPort = 8081
	}
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = 100
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = 200
	}

	cfg.Database.ApplyDefaults()

	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 5 * time.Minute
	}

	if cfg.Accounts.OTPTTL == 0 {
		cfg.Accounts.OTPTTL = 5 * time.Minute
	}
	if cfg.Accounts.MinAccountAge == 0 {
		cfg.Accounts.MinAccountAge = 30 * 24 * time.Hour
	}
}
