package history

import (
	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/shopspring/decimal"
)

// Summary aggregates a set of operations.
type Summary struct {
	Count       int
	OpenCount   int
	ClosedCount int
	TotalProfit decimal.Decimal
	// WinRate is the percentage of closed operations with a positive PnL.
	WinRate decimal.Decimal
}

// Summarize computes the summary of ops.
func Summarize(ops []types.Operation) Summary {
	summary := Summary{
		Count:       len(ops),
		OpenCount:   0,
		ClosedCount: 0,
		TotalProfit: decimal.Zero,
		WinRate:     WinRate(ops),
	}

	for _, op := range ops {
		if op.IsOpen {
			summary.OpenCount++
		} else {
			summary.ClosedCount++
		}

		summary.TotalProfit = summary.TotalProfit.Add(decimal.NewFromFloat(op.PnL))
	}

	return summary
}

// WinRate returns the percentage of closed operations with PnL > 0.
// With no closed operation the rate is zero.
func WinRate(ops []types.Operation) decimal.Decimal {
	closed := 0
	wins := 0

	for _, op := range ops {
		if op.IsOpen {
			continue
		}

		closed++

		if op.PnL > 0 {
			wins++
		}
	}

	if closed == 0 {
		return decimal.Zero
	}

	return decimal.NewFromInt(int64(wins)).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(int64(closed)))
}
