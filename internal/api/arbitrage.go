package api

import (
	"context"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/rxtech-lab/arb-console/pkg/errors"
)

// ArbitrageStats returns the dashboard statistics.
func (c *Client) ArbitrageStats(ctx context.Context) (types.DashboardStats, error) {
	var stats types.DashboardStats
	err := c.get(ctx, c.v2, "/arbitrage/stats", nil, &stats)

	return stats, err
}

// ProfitHistory returns the cumulative profit series.
func (c *Client) ProfitHistory(ctx context.Context) ([]types.ProfitPoint, error) {
	var points []types.ProfitPoint
	if err := c.get(ctx, c.v2, "/arbitrage/profit-history", nil, &points); err != nil {
		return nil, err
	}

	return points, nil
}

// ArbitrageHistory returns one page of executed operations.
func (c *Client) ArbitrageHistory(ctx context.Context, params types.HistoryParams) (types.ArbitrageHistory, error) {
	var history types.ArbitrageHistory
	err := c.get(ctx, c.v2, "/arbitrage/history", params.QueryParams(), &history)

	return history, err
}

// ExportArbitrageHistory streams the server-side CSV export into w.
// progress, when not nil, also receives every byte (e.g. a progress bar).
func (c *Client) ExportArbitrageHistory(ctx context.Context, w io.Writer, progress io.Writer) (int64, error) {
	return c.download(ctx, c.v2, "/arbitrage/history/export", w, progress)
}

func (c *Client) download(ctx context.Context, client *resty.Client, path string, w io.Writer, progress io.Writer) (int64, error) {
	resp, err := c.execute(ctx, call{client: client, method: http.MethodGet, path: path, query: nil, body: nil, result: nil, quiet: false, raw: true})
	if err != nil {
		return 0, err
	}

	body := resp.RawBody()
	defer body.Close()

	dst := w
	if progress != nil {
		dst = io.MultiWriter(w, progress)
	}

	n, err := io.Copy(dst, body)
	if err != nil {
		c.notifier.Error(DefaultErrorMessage)

		return n, errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to download %s", path)
	}

	return n, nil
}
