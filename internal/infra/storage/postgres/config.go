package postgres

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds PostgreSQL connection and resilience configuration.
type Config struct {
	URL string `yaml:"url"`
	// Driver selects the database/sql driver: "pgx" (default) or "postgres" (lib/pq).
	Driver     string `yaml:"driver"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	SocketPath string `yaml:"socket_path"`
	SSLMode    string `yaml:"sslmode"`

	MaxConns int `yaml:"max_conns"`
	MinConns int `yaml:"min_conns"`

	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	QueryTimeout   time.Duration `yaml:"query_timeout"`

	// MaxRetries and ReconnectMaxAttempts use 0 for the default and
	// Disabled (-1) to turn retries or automatic reconnects off.
	MaxRetries      int           `yaml:"max_retries"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
	RetryMultiplier float64       `yaml:"retry_multiplier"`

	ReconnectMaxAttempts int           `yaml:"reconnect_max_attempts"`
	ReconnectDelay       time.Duration `yaml:"reconnect_delay"`
}

const (
	DriverPGX = "pgx"
	DriverPQ  = "postgres"
)

// Disabled turns off executor retries or automatic reconnects when set as
// max_retries or reconnect_max_attempts.
const Disabled = -1

// ApplyEnv fills unset connection fields from DB_HOST, DB_USER, DB_PASSWORD,
// DB_NAME, DB_PORT and DB_SOCKET_PATH.
func (c *Config) ApplyEnv() error {
	if c.URL != "" {
		return nil
	}
	setIfEmpty(&c.Host, "DB_HOST")
	setIfEmpty(&c.User, "DB_USER")
	setIfEmpty(&c.Password, "DB_PASSWORD")
	setIfEmpty(&c.Name, "DB_NAME")
	setIfEmpty(&c.SocketPath, "DB_SOCKET_PATH")

	if c.Port == 0 {
		if v := os.Getenv("DB_PORT"); v != "" {
			port, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid DB_PORT %q: %w", v, err)
			}
			c.Port = port
		}
	}
	return nil
}

func setIfEmpty(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

// ApplyDefaults sets the resilience defaults.
func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverPGX
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.MaxConns == 0 {
		c.MaxConns = 10
	}
	if c.MinConns == 0 {
		c.MinConns = 2
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.QueryTimeout == 0 {
		c.QueryTimeout = 10 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = time.Second
	}
	if c.RetryMultiplier == 0 {
		c.RetryMultiplier = 1
	}
	if c.ReconnectMaxAttempts == 0 {
		c.ReconnectMaxAttempts = 5
	}
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = 2 * time.Second
	}
}

// Validate checks that a connection target is configured.
func (c *Config) Validate() error {
	if c.URL == "" && c.Host == "" && c.SocketPath == "" {
		return errors.New("database url, host or socket_path is required")
	}
	if c.Driver != DriverPGX && c.Driver != DriverPQ {
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.RetryMultiplier < 1 {
		return fmt.Errorf("retry_multiplier must be >= 1, got %v", c.RetryMultiplier)
	}
	return nil
}

// DSN returns the connection string. An explicit URL wins over the individual fields.
func (c *Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	if c.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(c.ConnectTimeout.Seconds())))
	}

	u := url.URL{
		Scheme: "postgres",
		Path:   "/" + c.Name,
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	if c.SocketPath != "" {
		// libpq convention: a directory in host= selects the unix socket
		q.Set("host", c.SocketPath)
	} else {
		u.Host = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
