// Package config loads application settings from environment variables.
// Every setting has a default except the optional integrations (database,
// MQTT), which stay disabled until their URL is set. Validation runs at
// startup and reports every problem at once.
package config

import (
	"net"
	"strconv"
	"time"
	_ "time/tzdata" // SOLAT_TIMEZONE must resolve on hosts without zoneinfo
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Source   SourceConfig
	Fetch    FetchConfig
	Clock    ClockConfig
	Database DatabaseConfig
	MQTT     MQTTConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout bounds a request, including any e-solat fallback fetch.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"45s"`
}

// SourceConfig selects where timetables come from.
type SourceConfig struct {
	// Zone is the JAKIM zone served by default (SGR01 covers Ampang).
	Zone string `env:"SOLAT_ZONE" default:"SGR01"`

	// DataDir holds tables saved by "solat fetch" or dropped in by hand.
	DataDir string `env:"SOLAT_DATA_DIR" envAlt:"SOLAT_OUTDIR" default:"data"`

	// FilePrefix starts every table file name.
	FilePrefix string `env:"SOLAT_FILE_PREFIX" default:"waktusolat"`

	// Period is what "solat fetch" downloads by default: week, month, year or duration.
	Period string `env:"SOLAT_PERIOD" default:"month"`

	// Delimiter pins the table delimiter: auto, comma, semicolon or tab.
	Delimiter string `env:"SOLAT_DELIMITER" default:"auto"`

	// UseAPI falls back to the e-solat API when no file covers the date.
	UseAPI bool `env:"SOLAT_USE_API" default:"true"`
}

// FetchConfig configures the e-solat client.
type FetchConfig struct {
	BaseURL string        `env:"ESOLAT_URL" default:"https://www.e-solat.gov.my/index.php?r=esolatApi/takwimsolat"`
	Timeout time.Duration `env:"ESOLAT_TIMEOUT" default:"30s"`
	Retries int           `env:"ESOLAT_RETRIES" default:"3"`
	Backoff time.Duration `env:"ESOLAT_BACKOFF" default:"2s"`
}

// ClockConfig decides which calendar day "today" is.
type ClockConfig struct {
	Timezone string `env:"SOLAT_TIMEZONE" default:"Asia/Kuala_Lumpur"`
}

// DatabaseConfig holds the optional lookup log database.
type DatabaseConfig struct {
	// URL enables the lookup log. Supports DATABASE_URL and DB_URL.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Retention is how long lookups are kept (0 keeps them forever).
	Retention     time.Duration `env:"LOOKUP_RETENTION" default:"2160h"`
	PurgeInterval time.Duration `env:"LOOKUP_PURGE_INTERVAL" default:"24h"`
}

// Enabled reports whether the lookup log is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// MQTTConfig holds the optional display publisher.
type MQTTConfig struct {
	// Broker enables publishing, e.g. tcp://localhost:1883.
	Broker   string `env:"MQTT_BROKER"`
	ClientID string `env:"MQTT_CLIENT_ID" default:"waktu-solat"`
	Username string `env:"MQTT_USERNAME"`
	Password string `env:"MQTT_PASSWORD"`

	// Topic may contain {zone}.
	Topic    string        `env:"MQTT_TOPIC" default:"solat/{zone}/today"`
	QoS      int           `env:"MQTT_QOS" default:"1"`
	Retained bool          `env:"MQTT_RETAINED" default:"true"`
	Interval time.Duration `env:"MQTT_PUBLISH_INTERVAL" default:"15m"`
	Timeout  time.Duration `env:"MQTT_TIMEOUT" default:"10s"`
}

// Enabled reports whether MQTT publishing is configured.
func (c MQTTConfig) Enabled() bool {
	return c.Broker != ""
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
	Burst             int  `env:"RATE_LIMIT_BURST" default:"20"`

	// FetchPerMinute limits POST /api/fetch, which hits the e-solat API.
	FetchPerMinute int `env:"RATE_LIMIT_FETCH" default:"4"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// APIKeys guard /api/lookups and /api/fetch when RequireAPIKey is set.
	APIKeys       []string `env:"API_KEYS"`
	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
