package api

import (
	"context"

	"github.com/rxtech-lab/arb-console/internal/types"
)

// ManualTrade submits a manual market order. The request is validated first;
// an invalid request is reported and never sent.
func (c *Client) ManualTrade(ctx context.Context, req types.ManualTradeRequest) (types.ManualTradeResult, error) {
	if err := req.Validate(); err != nil {
		c.notifier.Error(userMessage(err))

		return nil, err
	}

	var result types.ManualTradeResult
	if err := c.post(ctx, c.v1, "/trading/manual-trade", nil, req, &result); err != nil {
		return nil, err
	}

	c.notifier.Success(string(req.Action) + " order executed")

	return result, nil
}
