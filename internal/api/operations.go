package api

import (
	"context"
	"strconv"

	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/rxtech-lab/arb-console/pkg/errors"
)

const (
	DefaultOperationsLimit = 50
	MaxOperationsLimit     = 500
)

// LatestOperations returns up to limit recent operations, newest first.
// A zero limit means DefaultOperationsLimit.
func (c *Client) LatestOperations(ctx context.Context, limit int) ([]types.Operation, error) {
	if limit == 0 {
		limit = DefaultOperationsLimit
	}

	if limit < 1 || limit > MaxOperationsLimit {
		err := errors.Newf(errors.ErrCodeInvalidParameter, "limit must be between 1 and %d", MaxOperationsLimit)
		c.notifier.Error(err.Message)

		return nil, err
	}

	var list types.OperationList
	if err := c.get(ctx, c.v2, "/operations/latest", map[string]string{"limit": strconv.Itoa(limit)}, &list); err != nil {
		return nil, err
	}

	return list.Operations, nil
}

// OperationStats returns aggregate operation statistics.
func (c *Client) OperationStats(ctx context.Context) (types.OperationStats, error) {
	var stats types.OperationStats
	err := c.get(ctx, c.v2, "/operations/stats", nil, &stats)

	return stats, err
}
