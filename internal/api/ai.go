package api

import (
	"context"
	"strconv"
	"strings"

	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/rxtech-lab/arb-console/pkg/errors"
)

// AIDecisions returns the most recent AI trading decisions.
func (c *Client) AIDecisions(ctx context.Context, limit int) ([]types.AIDecision, error) {
	if limit <= 0 {
		limit = DefaultOperationsLimit
	}

	var decisions []types.AIDecision
	if err := c.get(ctx, c.v1, "/ai/decisions", map[string]string{"limit": strconv.Itoa(limit)}, &decisions); err != nil {
		return nil, err
	}

	return decisions, nil
}

// RequestAIAnalysis asks the AI service for a fresh analysis.
func (c *Client) RequestAIAnalysis(ctx context.Context) (types.AIAnalysis, error) {
	var analysis types.AIAnalysis
	err := c.post(ctx, c.v1, "/ai/analyze", nil, nil, &analysis)

	return analysis, err
}

// AISessionStatus returns the autonomous AI session state.
func (c *Client) AISessionStatus(ctx context.Context) (types.AISessionStatus, error) {
	var status types.AISessionStatus
	err := c.get(ctx, c.v1, "/ai-session/status", nil, &status)

	return status, err
}

// LatestAIAnalysis returns the last analysis produced by the autonomous session.
func (c *Client) LatestAIAnalysis(ctx context.Context) (types.AIAnalysis, error) {
	var analysis types.AIAnalysis
	err := c.get(ctx, c.v1, "/ai-analysis/latest", nil, &analysis)

	return analysis, err
}

// StartAISession starts an autonomous AI session for the given number of hours.
func (c *Client) StartAISession(ctx context.Context, hours int) error {
	if hours <= 0 {
		err := errors.New(errors.ErrCodeInvalidParameter, "session duration must be at least one hour")
		c.notifier.Error(err.Message)

		return err
	}

	query := map[string]string{"duration_hours": strconv.Itoa(hours)}
	if err := c.post(ctx, c.v1, "/ai-session/start", query, nil, nil); err != nil {
		return err
	}

	c.notifier.Success("AI session started")

	return nil
}

// StopAISession stops the running autonomous AI session.
func (c *Client) StopAISession(ctx context.Context) error {
	if err := c.post(ctx, c.v1, "/ai-session/stop", nil, nil, nil); err != nil {
		return err
	}

	c.notifier.Success("AI session stopped")

	return nil
}

// ChatHistory returns the stored assistant conversation, oldest first.
func (c *Client) ChatHistory(ctx context.Context) ([]types.ChatMessage, error) {
	var history types.ChatHistory
	if err := c.get(ctx, c.v1, "/chat/history", nil, &history); err != nil {
		return nil, err
	}

	return history.Messages, nil
}

// SendChatMessage sends one message to the assistant and returns its reply.
// Blank messages are rejected without a request.
func (c *Client) SendChatMessage(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		err := errors.New(errors.ErrCodeMissingParameter, "message cannot be empty")
		c.notifier.Error(err.Message)

		return "", err
	}

	var reply types.ChatReply
	if err := c.post(ctx, c.v1, "/chat/message", nil, types.ChatRequest{Message: message}, &reply); err != nil {
		return "", err
	}

	return reply.Response, nil
}
