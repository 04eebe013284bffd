// Package config resolves the GNS3 server connection settings from
// environment variables, an optional JSON config file, and defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Defaults used when neither the environment nor the config file
// provides a value.
const (
	DefaultHost     = "localhost"
	DefaultPort     = 3080
	DefaultProtocol = "http"
	DefaultTimeout  = 30 * time.Second

	defaultConfigFile = "gns3_config.json"
)

// Config is the resolved GNS3 connection configuration. It is built
// once at startup and read-only afterwards, so it may be shared
// across concurrent calls without locking.
type Config struct {
	Host         string
	Port         int
	Protocol     string
	VerifySSL    bool
	Timeout      time.Duration
	AuthRequired bool
	Username     string
	Password     string
}

// BaseURL returns the root of the GNS3 v2 REST API.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("%s://%s:%d/v2", c.Protocol, c.Host, c.Port)
}

// fileSettings mirrors the "gns3" object of the config file. Pointer
// fields distinguish an absent key from a zero value so the merge
// stays field-by-field. Credentials are deliberately not read from
// the file; they come from the environment only.
type fileSettings struct {
	Host         *string `json:"host"`
	Port         *int    `json:"port"`
	Protocol     *string `json:"protocol"`
	VerifySSL    *bool   `json:"verify_ssl"`
	Timeout      *int    `json:"timeout"`
	AuthRequired *bool   `json:"auth_required"`
}

// envSettings is the environment overlay, with the same pointer
// convention as fileSettings: a variable that is not set leaves the
// lower layers untouched.
type envSettings struct {
	Host         *string `envconfig:"GNS3_HOST"`
	Port         *int    `envconfig:"GNS3_PORT"`
	Protocol     *string `envconfig:"GNS3_PROTOCOL"`
	VerifySSL    *bool   `envconfig:"GNS3_VERIFY_SSL"`
	Timeout      *int    `envconfig:"GNS3_TIMEOUT"`
	AuthRequired *bool   `envconfig:"GNS3_AUTH_REQUIRED"`
	Username     *string `envconfig:"GNS3_USERNAME"`
	Password     *string `envconfig:"GNS3_PASSWORD"`
}

// Load resolves the configuration. Precedence per field: environment
// variables over the config file over defaults. A missing config file
// is fine; a malformed one is a fatal configuration error, as is
// auth_required without credentials.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Host:      DefaultHost,
		Port:      DefaultPort,
		Protocol:  DefaultProtocol,
		VerifySSL: true,
		Timeout:   DefaultTimeout,
	}

	if err := applyFile(cfg, configPath()); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.AuthRequired && (cfg.Username == "" || cfg.Password == "") {
		return nil, fmt.Errorf("auth_required is set but GNS3_USERNAME or GNS3_PASSWORD is missing")
	}
	return cfg, nil
}

func configPath() string {
	if path := os.Getenv("GNS3_CONFIG_PATH"); path != "" {
		return path
	}
	return defaultConfigFile
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var file struct {
		GNS3 fileSettings `json:"gns3"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	settings := file.GNS3
	if settings.Host != nil {
		cfg.Host = *settings.Host
	}
	if settings.Port != nil {
		cfg.Port = *settings.Port
	}
	if settings.Protocol != nil {
		cfg.Protocol = *settings.Protocol
	}
	if settings.VerifySSL != nil {
		cfg.VerifySSL = *settings.VerifySSL
	}
	if settings.Timeout != nil {
		cfg.Timeout = time.Duration(*settings.Timeout) * time.Second
	}
	if settings.AuthRequired != nil {
		cfg.AuthRequired = *settings.AuthRequired
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var env envSettings
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	if env.Host != nil {
		cfg.Host = *env.Host
	}
	if env.Port != nil {
		cfg.Port = *env.Port
	}
	if env.Protocol != nil {
		cfg.Protocol = *env.Protocol
	}
	if env.VerifySSL != nil {
		cfg.VerifySSL = *env.VerifySSL
	}
	if env.Timeout != nil {
		cfg.Timeout = time.Duration(*env.Timeout) * time.Second
	}
	if env.AuthRequired != nil {
		cfg.AuthRequired = *env.AuthRequired
	}
	if env.Username != nil {
		cfg.Username = *env.Username
	}
	if env.Password != nil {
		cfg.Password = *env.Password
	}
	return nil
}
