// Package config loads the console configuration from defaults, an optional
// YAML file, a .env file and ARB_* environment variables, in that order.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rxtech-lab/arb-console/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// LogStreamPath is the v2 websocket endpoint that streams engine logs.
	LogStreamPath = "/api/v2/engine/logs/stream"

	DefaultAPIURL         = "http://localhost:8000"
	DefaultRequestTimeout = 30 * time.Second
	DefaultReconnectDelay = 3 * time.Second
	DefaultBufferCapacity = 1000
)

// PollIntervals are the refresh periods of the polling views.
type PollIntervals struct {
	Engine     time.Duration `yaml:"engine" validate:"gt=0"`
	Dashboard  time.Duration `yaml:"dashboard" validate:"gt=0"`
	Portfolio  time.Duration `yaml:"portfolio" validate:"gt=0"`
	Operations time.Duration `yaml:"operations" validate:"gt=0"`
	AI         time.Duration `yaml:"ai" validate:"gt=0"`
}

// Config is the console configuration.
type Config struct {
	APIURL          string        `yaml:"api_url" validate:"required,url"`
	StreamURL       string        `yaml:"stream_url" validate:"omitempty,url"`
	CredentialsPath string        `yaml:"credentials_path" validate:"required"`
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"gt=0"`
	ReconnectDelay  time.Duration `yaml:"reconnect_delay" validate:"gt=0"`
	BufferCapacity  int           `yaml:"buffer_capacity" validate:"min=1"`
	Poll            PollIntervals `yaml:"poll"`
	LogLevel        string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	ArchivePath     string        `yaml:"archive_path"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return Config{
		APIURL:          DefaultAPIURL,
		StreamURL:       "",
		CredentialsPath: filepath.Join(home, ".arb-console", "credentials.yaml"),
		RequestTimeout:  DefaultRequestTimeout,
		ReconnectDelay:  DefaultReconnectDelay,
		BufferCapacity:  DefaultBufferCapacity,
		Poll: PollIntervals{
			Engine:     3 * time.Second,
			Dashboard:  5 * time.Second,
			Portfolio:  10 * time.Second,
			Operations: 15 * time.Second,
			AI:         15 * time.Second,
		},
		LogLevel:    "info",
		ArchivePath: "",
	}
}

// Load builds the configuration. path may be empty; a missing file at an
// explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to read config file", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config file", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ARB_API_URL"); v != "" {
		c.APIURL = v
	}

	if v := os.Getenv("ARB_STREAM_URL"); v != "" {
		c.StreamURL = v
	}

	if v := os.Getenv("ARB_CREDENTIALS_PATH"); v != "" {
		c.CredentialsPath = v
	}

	if v := os.Getenv("ARB_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}

	if v := os.Getenv("ARB_ARCHIVE_PATH"); v != "" {
		c.ArchivePath = v
	}
}

// Validate checks every field.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	return nil
}

// V1BaseURL is the legacy API prefix.
func (c Config) V1BaseURL() string {
	return strings.TrimRight(c.APIURL, "/") + "/api/v1"
}

// V2BaseURL is the current API prefix.
func (c Config) V2BaseURL() string {
	return strings.TrimRight(c.APIURL, "/") + "/api/v2"
}

// LogStreamURL returns the configured stream URL, or derives it from the API
// URL by switching http(s) to ws(s).
func (c Config) LogStreamURL() (string, error) {
	if c.StreamURL != "" {
		return c.StreamURL, nil
	}

	u, err := url.Parse(strings.TrimRight(c.APIURL, "/"))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid api url", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported api url scheme %q", u.Scheme)
	}

	u.Path += LogStreamPath

	return u.String(), nil
}

// String renders the configuration as YAML.
func (c Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("%+v", map[string]any{"error": err.Error()})
	}

	return string(data)
}
