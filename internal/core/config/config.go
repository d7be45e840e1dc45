package config

import (
	"time"

	redisclient "github.com/vietddude/sparki/internal/infra/redis"
	"github.com/vietddude/sparki/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Database postgres.Config    `yaml:"database"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Accounts AccountsConfig     `yaml:"accounts"`
}

// ServerConfig holds HTTP and gRPC listener settings.
type ServerConfig struct {
	Port           int     `yaml:"port"`
	HealthPort     int     `yaml:"health_port"`
	GRPCPort       int     `yaml:"grpc_port"` // 0 disables the gRPC health service
	RateLimit      float64 `yaml:"rate_limit"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// AccountsConfig holds account lifecycle settings.
type AccountsConfig struct {
	OTPTTL        time.Duration `yaml:"otp_ttl"`
	OTPRetention  time.Duration `yaml:"otp_retention"` // 0 = never prune
	MinAccountAge time.Duration `yaml:"min_account_age"`
}
