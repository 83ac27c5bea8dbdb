// Package config loads the CLI configuration file.
package config

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full CLI configuration.
type Config struct {
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Storage   StorageConfig   `yaml:"storage"`
	Load      LoadConfig      `yaml:"load"`
	LogLevel  string          `yaml:"log_level"`
	LogFormat string          `yaml:"log_format"`
}

// WarehouseConfig describes the warehouse connection.
type WarehouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
}

// DSN builds the connection string, URL-escaping credentials so passwords
// with reserved characters survive.
func (w WarehouseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(w.User), url.QueryEscape(w.Password),
		w.Host, w.Port, w.Database, w.SSLMode)
}

// StorageConfig describes the staging bucket and the credentials the
// warehouse uses to fetch from it. Leaving the key fields empty makes the
// uploader fall back to the default AWS credential chain, but COPY always
// needs either the key pair or an IAM role.
type StorageConfig struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Prefix          string `yaml:"prefix"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
	IAMRole         string `yaml:"iam_role"`
}

// LoadConfig holds load-shaping options.
type LoadConfig struct {
	TextWidth   int      `yaml:"text_width"`
	CopyOptions []string `yaml:"copy_options"`
}

const (
	// EnvWarehousePassword overrides warehouse.password.
	EnvWarehousePassword = "P2R_WAREHOUSE_PASSWORD"
	// EnvSecretAccessKey overrides storage.secret_access_key.
	EnvSecretAccessKey = "P2R_SECRET_ACCESS_KEY"
)

// Load reads, defaults and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Warehouse.Port == 0 {
		c.Warehouse.Port = 5439
	}
	if c.Warehouse.SSLMode == "" {
		c.Warehouse.SSLMode = "require"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.Warehouse.Password == "" {
		c.Warehouse.Password = os.Getenv(EnvWarehousePassword)
	}
	if c.Storage.SecretAccessKey == "" {
		c.Storage.SecretAccessKey = os.Getenv(EnvSecretAccessKey)
	}
}

// Validate checks the fields the loader cannot work without.
func (c *Config) Validate() error {
	if c.Warehouse.Host == "" {
		return fmt.Errorf("warehouse.host is required")
	}
	if c.Warehouse.Database == "" {
		return fmt.Errorf("warehouse.database is required")
	}
	if c.Warehouse.User == "" {
		return fmt.Errorf("warehouse.user is required")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	if c.Storage.IAMRole == "" && (c.Storage.AccessKeyID == "" || c.Storage.SecretAccessKey == "") {
		return fmt.Errorf("storage needs either iam_role or access_key_id + secret_access_key")
	}
	return nil
}
