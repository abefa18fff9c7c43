package config

import "time"

// History backends.
const (
	HistoryMemory   = "memory"
	HistorySQLite   = "sqlite"
	HistoryRedis    = "redis"
	HistoryPostgres = "postgres"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	MaxMessageBytes   int64    `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	MessagesPerMinute int      `mapstructure:"messages_per_minute" yaml:"messages_per_minute"`
	OriginPatterns    []string `mapstructure:"origin_patterns" yaml:"origin_patterns"`

	DatabasePath    string `mapstructure:"database_path" yaml:"database_path"`
	HistoryBackend  string `mapstructure:"history_backend" yaml:"history_backend"`
	HistoryLimit    int    `mapstructure:"history_limit" yaml:"history_limit"`
	HistoryCapacity int    `mapstructure:"history_capacity" yaml:"history_capacity"`
	RedisURL        string `mapstructure:"redis_url" yaml:"redis_url"`
	PostgresURL     string `mapstructure:"postgres_url" yaml:"postgres_url"`

	// JWTSecret enables token identities; empty means hello names are trusted.
	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL      time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`

	Admins      []string      `mapstructure:"admins" yaml:"admins"`
	Observers   []string      `mapstructure:"observers" yaml:"observers"`
	DefaultMute time.Duration `mapstructure:"default_mute" yaml:"default_mute"`
	NotifyMuted bool          `mapstructure:"notify_muted" yaml:"notify_muted"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		MaxMessageBytes:   64 << 10,
		MessagesPerMinute: 120,
		DatabasePath:      "lobbychat.db",
		HistoryBackend:    HistorySQLite,
		HistoryLimit:      50,
		HistoryCapacity:   500,
		JWTIssuer:         "lobbychat",
		JWTAudience:       "lobbychat",
		JWTTTL:            24 * time.Hour,
		Admins:            []string{"DEV"},
		DefaultMute:       60 * time.Second,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.HistoryBackend != "" {
		c.HistoryBackend = other.HistoryBackend
	}
	if other.JWTSecret != "" {
		c.JWTSecret = other.JWTSecret
	}
	if len(other.Admins) > 0 {
		c.Admins = other.Admins
	}
}

// IsAdmin reports whether username is a configured administrator.
func (c *Config) IsAdmin(username string) bool {
	return contains(c.Admins, username)
}

// IsObserver reports whether username is a configured observer.
func (c *Config) IsObserver(username string) bool {
	return contains(c.Observers, username)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
