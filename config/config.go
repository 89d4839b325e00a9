// Package config loads the service configuration from a YAML file, with
// environment variables taking precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    Server    `yaml:"server"`
	Mongo     Mongo     `yaml:"mongo"`
	Auth      Auth      `yaml:"auth"`
	Uploads   Uploads   `yaml:"uploads"`
	SMTP      SMTP      `yaml:"smtp"`
	Kafka     Kafka     `yaml:"kafka"`
	Telemetry Telemetry `yaml:"telemetry"`
	Log       Log       `yaml:"log"`
}

type Server struct {
	Port            string `yaml:"port"`
	PublicBaseURL   string `yaml:"public_base_url"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	MaxUploadMB     int64  `yaml:"max_upload_mb"`
}

type Mongo struct {
	URI            string `yaml:"uri"`
	Database       string `yaml:"database"`
	ConnectTimeout string `yaml:"connect_timeout"`
}

type Auth struct {
	JWTSecret   string `yaml:"jwt_secret"`
	AdminAPIKey string `yaml:"admin_api_key"`
	TokenTTL    string `yaml:"token_ttl"`
}

type Uploads struct {
	Dir             string `yaml:"dir"`
	ProfileDir      string `yaml:"profile_dir"`
	BackupDir       string `yaml:"backup_dir"`
	BackupHour      int    `yaml:"backup_hour"`
	BackupRetention string `yaml:"backup_retention"`
}

type SMTP struct {
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
}

// Enabled reports whether delivery emails can be sent.
func (s SMTP) Enabled() bool {
	return s.Server != "" && s.Address != ""
}

type Kafka struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type Telemetry struct {
	Tracing     bool   `yaml:"tracing"`
	ServiceName string `yaml:"service_name"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: Server{
			Port:            "5000",
			PublicBaseURL:   "http://localhost:5000",
			ShutdownTimeout: "10s",
			MaxUploadMB:     32,
		},
		Mongo: Mongo{
			URI:            "mongodb://localhost:27017",
			Database:       "supermarket_db",
			ConnectTimeout: "10s",
		},
		Auth: Auth{TokenTTL: "24h"},
		Uploads: Uploads{
			Dir:             "uploads",
			ProfileDir:      "static/profiles",
			BackupHour:      2,
			BackupRetention: "96h",
		},
		SMTP:      SMTP{Server: "smtp.gmail.com", Port: 587},
		Kafka:     Kafka{Topic: "orders"},
		Telemetry: Telemetry{ServiceName: "grocery-backend"},
		Log:       Log{Level: "info", Format: "text"},
	}
}

// LoadConfig reads path over the defaults, applies environment overrides
// and validates the result. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("MONGO_URI", &c.Mongo.URI)
	str("MONGO_DATABASE", &c.Mongo.Database)
	str("JWT_SECRET_KEY", &c.Auth.JWTSecret)
	str("ADMIN_API_KEY", &c.Auth.AdminAPIKey)
	str("UPLOAD_FOLDER", &c.Uploads.Dir)
	str("PROFILE_FOLDER", &c.Uploads.ProfileDir)
	str("PORT", &c.Server.Port)
	str("PUBLIC_BASE_URL", &c.Server.PublicBaseURL)
	str("EMAIL_ADDRESS", &c.SMTP.Address)
	str("EMAIL_PASSWORD", &c.SMTP.Password)
	str("SMTP_SERVER", &c.SMTP.Server)
	str("LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup("SMTP_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SMTP_PORT %q: %w", v, err)
		}
		c.SMTP.Port = port
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = nil
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.Kafka.Brokers = append(c.Kafka.Brokers, b)
			}
		}
	}
	return nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret (JWT_SECRET_KEY) is required"))
	}
	if c.Mongo.URI == "" {
		errs = append(errs, errors.New("mongo.uri (MONGO_URI) is required"))
	}
	for name, v := range map[string]string{
		"server.shutdown_timeout":  c.Server.ShutdownTimeout,
		"mongo.connect_timeout":    c.Mongo.ConnectTimeout,
		"auth.token_ttl":           c.Auth.TokenTTL,
		"uploads.backup_retention": c.Uploads.BackupRetention,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if c.Uploads.BackupHour < 0 || c.Uploads.BackupHour > 23 {
		errs = append(errs, fmt.Errorf("uploads.backup_hour must be 0-23, got %d", c.Uploads.BackupHour))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if f := c.Log.Format; f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", f))
	}
	return errors.Join(errs...)
}

// Parsed durations. Validate has already rejected unparsable values.

func (c *Config) ShutdownTimeout() time.Duration { return duration(c.Server.ShutdownTimeout) }
func (c *Config) ConnectTimeout() time.Duration  { return duration(c.Mongo.ConnectTimeout) }
func (c *Config) TokenTTL() time.Duration        { return duration(c.Auth.TokenTTL) }
func (c *Config) BackupRetention() time.Duration { return duration(c.Uploads.BackupRetention) }

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// SlogLevel parses the configured level name.
func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
