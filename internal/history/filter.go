// Package history filters, summarizes and exports arbitrage operations.
package history

import (
	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/rxtech-lab/arb-console/pkg/utils"
)

// StatusFilter selects open or closed operations.
type StatusFilter string

const (
	StatusAll    StatusFilter = "ALL"
	StatusOpen   StatusFilter = "OPEN"
	StatusClosed StatusFilter = "CLOSED"
)

// ExchangeAll disables the exchange filter.
const ExchangeAll = "ALL"

// Filter selects operations for the history table. The zero value matches everything.
type Filter struct {
	// Text is matched case-insensitively against symbol, buy exchange and sell exchange.
	Text string
	// Status is StatusAll (or empty), StatusOpen or StatusClosed.
	Status StatusFilter
	// Exchange must equal the buy or the sell exchange unless it is ExchangeAll or empty.
	Exchange string
}

// Match reports whether op passes the filter.
func (f Filter) Match(op types.Operation) bool {
	switch f.Status {
	case StatusOpen:
		if !op.IsOpen {
			return false
		}
	case StatusClosed:
		if op.IsOpen {
			return false
		}
	}

	if f.Exchange != "" && f.Exchange != ExchangeAll && op.ExchangeBuy != f.Exchange && op.ExchangeSell != f.Exchange {
		return false
	}

	if f.Text == "" {
		return true
	}

	return utils.ContainsFold(op.Symbol, f.Text) ||
		utils.ContainsFold(op.ExchangeBuy, f.Text) ||
		utils.ContainsFold(op.ExchangeSell, f.Text)
}

// Apply returns the matching operations in their original order.
func (f Filter) Apply(ops []types.Operation) []types.Operation {
	out := make([]types.Operation, 0, len(ops))

	for _, op := range ops {
		if f.Match(op) {
			out = append(out, op)
		}
	}

	return out
}

// Exchanges lists the distinct exchanges seen on either side, in first-seen order.
func Exchanges(ops []types.Operation) []string {
	seen := map[string]bool{}
	out := []string{}

	for _, op := range ops {
		for _, exchange := range []string{op.ExchangeBuy, op.ExchangeSell} {
			if exchange != "" && !seen[exchange] {
				seen[exchange] = true
				out = append(out, exchange)
			}
		}
	}

	return out
}
