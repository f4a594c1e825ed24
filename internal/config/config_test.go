package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/arb-console/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	for _, key := range []string{"ARB_API_URL", "ARB_STREAM_URL", "ARB_CREDENTIALS_PATH", "ARB_LOG_LEVEL", "ARB_ARCHIVE_PATH"} {
		suite.T().Setenv(key, "")
	}
}

func (suite *ConfigTestSuite) TestDefaults() {
	cfg, err := Load("")
	suite.Require().NoError(err)

	suite.Equal(DefaultAPIURL, cfg.APIURL)
	suite.Equal(3*time.Second, cfg.ReconnectDelay)
	suite.Equal(1000, cfg.BufferCapacity)
	suite.Equal(3*time.Second, cfg.Poll.Engine)
	suite.Equal(5*time.Second, cfg.Poll.Dashboard)
	suite.Equal(15*time.Second, cfg.Poll.Operations)
	suite.Equal("http://localhost:8000/api/v1", cfg.V1BaseURL())
	suite.Equal("http://localhost:8000/api/v2", cfg.V2BaseURL())
}

func (suite *ConfigTestSuite) TestLoadFile() {
	path := filepath.Join(suite.T().TempDir(), "console.yaml")
	content := `
api_url: https://arb.example.com/
reconnect_delay: 5s
buffer_capacity: 200
poll:
  engine: 1s
log_level: debug
`
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	suite.Require().NoError(err)

	suite.Equal("https://arb.example.com/", cfg.APIURL)
	suite.Equal(5*time.Second, cfg.ReconnectDelay)
	suite.Equal(200, cfg.BufferCapacity)
	suite.Equal(time.Second, cfg.Poll.Engine)
	// untouched keys keep their defaults
	suite.Equal(5*time.Second, cfg.Poll.Dashboard)
	suite.Equal("debug", cfg.LogLevel)
	suite.Equal("https://arb.example.com/api/v2", cfg.V2BaseURL())

	streamURL, err := cfg.LogStreamURL()
	suite.NoError(err)
	suite.Equal("wss://arb.example.com/api/v2/engine/logs/stream", streamURL)
}

func (suite *ConfigTestSuite) TestEnvOverridesFile() {
	suite.T().Setenv("ARB_API_URL", "http://10.0.0.5:8000")
	suite.T().Setenv("ARB_LOG_LEVEL", "WARN")

	cfg, err := Load("")
	suite.Require().NoError(err)
	suite.Equal("http://10.0.0.5:8000", cfg.APIURL)
	suite.Equal("warn", cfg.LogLevel)

	streamURL, err := cfg.LogStreamURL()
	suite.NoError(err)
	suite.Equal("ws://10.0.0.5:8000/api/v2/engine/logs/stream", streamURL)
}

func (suite *ConfigTestSuite) TestExplicitStreamURL() {
	cfg := Default()
	cfg.StreamURL = "ws://stream.local/logs"

	streamURL, err := cfg.LogStreamURL()
	suite.NoError(err)
	suite.Equal("ws://stream.local/logs", streamURL)
}

func (suite *ConfigTestSuite) TestInvalidConfig() {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "bad url", mutate: func(c *Config) { c.APIURL = "not a url" }},
		{name: "zero capacity", mutate: func(c *Config) { c.BufferCapacity = 0 }},
		{name: "zero delay", mutate: func(c *Config) { c.ReconnectDelay = 0 }},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "trace" }},
		{name: "zero poll", mutate: func(c *Config) { c.Poll.Dashboard = 0 }},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
		})
	}
}

func (suite *ConfigTestSuite) TestMissingFile() {
	_, err := Load(filepath.Join(suite.T().TempDir(), "missing.yaml"))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestUnsupportedScheme() {
	cfg := Default()
	cfg.APIURL = "ftp://example.com"

	_, err := cfg.LogStreamURL()
	suite.Error(err)
}
