package types

import (
	"encoding/json"
	"strings"

	"github.com/rxtech-lab/arb-console/pkg/errors"
	"github.com/shopspring/decimal"
)

// TradeAction is the side of a manual trade.
type TradeAction string

const (
	TradeActionBuy  TradeAction = "BUY"
	TradeActionSell TradeAction = "SELL"
)

// ManualTradeRequest is a virtual trade submitted by the user.
type ManualTradeRequest struct {
	Action    TradeAction
	Symbol    string
	AmountUSD decimal.Decimal
}

// Validate checks the request before it reaches the backend.
func (r ManualTradeRequest) Validate() error {
	if r.Action != TradeActionBuy && r.Action != TradeActionSell {
		return errors.Newf(errors.ErrCodeInvalidParameter, "invalid trade action %q", r.Action)
	}

	if strings.TrimSpace(r.Symbol) == "" {
		return errors.New(errors.ErrCodeMissingParameter, "symbol is required")
	}

	if !r.AmountUSD.IsPositive() {
		return errors.New(errors.ErrCodeInvalidAmount, "Please enter a valid amount")
	}

	return nil
}

// MarshalJSON sends the amount as a JSON number, which is what the backend expects.
func (r ManualTradeRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Action    TradeAction `json:"action"`
		Symbol    string      `json:"symbol"`
		AmountUSD float64     `json:"amount_usd"`
	}{
		Action:    r.Action,
		Symbol:    strings.ToUpper(strings.TrimSpace(r.Symbol)),
		AmountUSD: r.AmountUSD.InexactFloat64(),
	})
}

// ParseTradeAmount parses a user-entered amount.
func ParseTradeAmount(input string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return decimal.Zero, errors.Wrap(errors.ErrCodeInvalidAmount, "Please enter a valid amount", err)
	}

	return amount, nil
}

// ManualTradeResult is the backend acknowledgement of a manual trade.
type ManualTradeResult map[string]any
