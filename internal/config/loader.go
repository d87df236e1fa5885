package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/source"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/timetable"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/zone"
)

// Load reads the environment, applies defaults and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested config sections
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		// Get tags
		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		// Apply default if not set
		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		// Set the field value
		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// time.Duration is an int64 kind
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			// Split comma-separated values, dropping empty entries
			parts := strings.Split(value, ",")
			result := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					result = append(result, p)
				}
			}
			field.Set(reflect.ValueOf(result))
		} else {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT and SERVER_WRITE_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}

	// Source
	if !zone.ValidCode(c.Source.Zone) {
		errs = append(errs, fmt.Sprintf("SOLAT_ZONE (%q) must look like a JAKIM zone code, e.g. SGR01", c.Source.Zone))
	} else if _, ok := zone.Get(c.Source.Zone); !ok {
		errs = append(errs, fmt.Sprintf("SOLAT_ZONE (%q) is not a known zone", c.Source.Zone))
	}
	if _, err := source.ParsePeriod(c.Source.Period); err != nil {
		errs = append(errs, fmt.Sprintf("SOLAT_PERIOD (%q) must be one of: week, month, year, duration", c.Source.Period))
	}
	if _, ok := timetable.ParseDelimiter(c.Source.Delimiter); !ok {
		errs = append(errs, fmt.Sprintf("SOLAT_DELIMITER (%q) must be one of: auto, comma, semicolon, tab", c.Source.Delimiter))
	}
	if c.Source.DataDir == "" {
		errs = append(errs, "SOLAT_DATA_DIR must not be empty")
	}
	if c.Source.FilePrefix == "" {
		errs = append(errs, "SOLAT_FILE_PREFIX must not be empty")
	}

	// Fetch
	if u, err := url.Parse(c.Fetch.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("ESOLAT_URL (%q) must be an absolute URL", c.Fetch.BaseURL))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, "ESOLAT_TIMEOUT must be positive")
	}
	if c.Fetch.Retries <= 0 {
		errs = append(errs, "ESOLAT_RETRIES must be positive")
	}
	if c.Fetch.Backoff < 0 {
		errs = append(errs, "ESOLAT_BACKOFF must be non-negative")
	}

	// Clock
	if _, err := time.LoadLocation(c.Clock.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("SOLAT_TIMEZONE (%q) is not a known timezone", c.Clock.Timezone))
	}

	// Database
	if c.Database.Enabled() {
		if c.Database.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Database.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
		if c.Database.MaxConns < c.Database.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Database.MaxConns, c.Database.MinConns))
		}
		if c.Database.Retention < 0 {
			errs = append(errs, "LOOKUP_RETENTION must be non-negative")
		}
	}

	// MQTT
	if c.MQTT.Enabled() {
		if c.MQTT.QoS < 1 || c.MQTT.QoS > 2 {
			errs = append(errs, fmt.Sprintf("MQTT_QOS (%d) must be 1 or 2", c.MQTT.QoS))
		}
		if c.MQTT.Topic == "" {
			errs = append(errs, "MQTT_TOPIC must not be empty")
		}
		if c.MQTT.Interval <= 0 {
			errs = append(errs, "MQTT_PUBLISH_INTERVAL must be positive")
		}
	}

	// Rate limits
	if c.Rate.Enabled {
		if c.Rate.RequestsPerMinute <= 0 {
			errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
		}
		if c.Rate.Burst <= 0 {
			errs = append(errs, "RATE_LIMIT_BURST must be positive when rate limiting is enabled")
		}
		if c.Rate.FetchPerMinute <= 0 {
			errs = append(errs, "RATE_LIMIT_FETCH must be positive when rate limiting is enabled")
		}
	}

	// Security
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}
	for _, cidr := range c.Security.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil && net.ParseIP(cidr) == nil {
			errs = append(errs, fmt.Sprintf("TRUSTED_PROXIES entry %q is not an IP or CIDR", cidr))
		}
	}

	// Logging
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns the config for logging with credentials masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Addr: %q}, ", c.Server.Addr())
	fmt.Fprintf(&b, "Source: {Zone: %q, DataDir: %q, Period: %q, Delimiter: %q, UseAPI: %v}, ",
		c.Source.Zone, c.Source.DataDir, c.Source.Period, c.Source.Delimiter, c.Source.UseAPI)
	fmt.Fprintf(&b, "Clock: {Timezone: %q}, ", c.Clock.Timezone)
	fmt.Fprintf(&b, "Database: {URL: %s, MaxConns: %d}, ", mask(c.Database.URL), c.Database.MaxConns)
	fmt.Fprintf(&b, "MQTT: {Broker: %q, Username: %q, Password: %s, Topic: %q}, ",
		c.MQTT.Broker, c.MQTT.Username, mask(c.MQTT.Password), c.MQTT.Topic)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ", c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Security: {APIKeys: %d, RequireAPIKey: %v}, ", len(c.Security.APIKeys), c.Security.RequireAPIKey)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}

func mask(secret string) string {
	if secret == "" {
		return "[UNSET]"
	}
	return "[MASKED]"
}
