package api

import (
	"context"

	"github.com/rxtech-lab/arb-console/internal/types"
)

// EngineStatus returns the engine runtime status.
func (c *Client) EngineStatus(ctx context.Context) (types.EngineStatus, error) {
	var status types.EngineStatus
	err := c.get(ctx, c.v2, "/engine/status", nil, &status)

	return status, err
}

// EngineConfig returns the active engine configuration.
func (c *Client) EngineConfig(ctx context.Context) (types.EngineConfig, error) {
	var cfg types.EngineConfig
	err := c.get(ctx, c.v2, "/engine/config", nil, &cfg)

	return cfg, err
}

// SaveEngineConfig validates cfg locally, then submits it.
// Invalid configurations never reach the backend.
func (c *Client) SaveEngineConfig(ctx context.Context, cfg types.EngineConfig) (types.EngineCommandResult, error) {
	if err := cfg.Validate(); err != nil {
		c.notifier.Error(userMessage(err))

		return types.EngineCommandResult{}, err
	}

	var result types.EngineCommandResult
	if err := c.post(ctx, c.v2, "/engine/config", nil, cfg, &result); err != nil {
		return types.EngineCommandResult{}, err
	}

	c.notifier.Success("Configuration saved")

	return result, nil
}

// StartEngine starts the engine.
func (c *Client) StartEngine(ctx context.Context) (types.EngineCommandResult, error) {
	return c.engineCommand(ctx, "/engine/start", "Engine started")
}

// StopEngine stops the engine.
func (c *Client) StopEngine(ctx context.Context) (types.EngineCommandResult, error) {
	return c.engineCommand(ctx, "/engine/stop", "Engine stopped")
}

// RestartEngine restarts the engine.
func (c *Client) RestartEngine(ctx context.Context) (types.EngineCommandResult, error) {
	return c.engineCommand(ctx, "/engine/restart", "Engine restarted")
}

func (c *Client) engineCommand(ctx context.Context, path, success string) (types.EngineCommandResult, error) {
	var result types.EngineCommandResult
	if err := c.post(ctx, c.v2, path, nil, nil, &result); err != nil {
		return types.EngineCommandResult{}, err
	}

	if result.Message != "" {
		success = result.Message
	}

	c.notifier.Success(success)

	return result, nil
}

// EngineHealth reports backend liveness. It does not require authentication.
func (c *Client) EngineHealth(ctx context.Context) (types.EngineHealth, error) {
	var health types.EngineHealth
	err := c.get(ctx, c.v2, "/engine/health", nil, &health)

	return health, err
}
