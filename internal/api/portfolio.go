package api

import (
	"context"
	"io"

	"github.com/rxtech-lab/arb-console/internal/types"
)

// PortfolioReportFileName is the name the markdown report is saved under.
const PortfolioReportFileName = "draizer_report.md"

// Portfolio returns the user's portfolio.
func (c *Client) Portfolio(ctx context.Context) (types.Portfolio, error) {
	var portfolio types.Portfolio
	err := c.get(ctx, c.v1, "/portfolio", nil, &portfolio)

	return portfolio, err
}

// PortfolioStats returns the portfolio performance summary.
func (c *Client) PortfolioStats(ctx context.Context) (types.PortfolioStats, error) {
	var stats types.PortfolioStats
	err := c.get(ctx, c.v1, "/portfolio/stats", nil, &stats)

	return stats, err
}

// Positions returns the open spot positions.
func (c *Client) Positions(ctx context.Context) (types.Positions, error) {
	var positions types.Positions
	err := c.get(ctx, c.v1, "/portfolio/positions", nil, &positions)

	return positions, err
}

// FuturesPositions returns the open futures positions.
func (c *Client) FuturesPositions(ctx context.Context) (types.FuturesPositions, error) {
	var positions types.FuturesPositions
	err := c.get(ctx, c.v1, "/portfolio/futures-positions", nil, &positions)

	return positions, err
}

// TradeHistory returns the executed transactions.
func (c *Client) TradeHistory(ctx context.Context) (types.TradeHistory, error) {
	var history types.TradeHistory
	err := c.get(ctx, c.v1, "/trading/history", nil, &history)

	return history, err
}

// ResetPortfolio resets the paper portfolio to its initial balance.
func (c *Client) ResetPortfolio(ctx context.Context) error {
	if err := c.post(ctx, c.v1, "/portfolio/reset", nil, nil, nil); err != nil {
		return err
	}

	c.notifier.Success("Portfolio reset")

	return nil
}

// ExportPortfolioMarkdown streams the markdown portfolio report into w.
func (c *Client) ExportPortfolioMarkdown(ctx context.Context, w io.Writer, progress io.Writer) (int64, error) {
	return c.download(ctx, c.v1, "/portfolio/export-md", w, progress)
}
