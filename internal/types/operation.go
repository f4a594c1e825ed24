package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Operation is one arbitrage operation recorded by the engine.
type Operation struct {
	ID           int64   `json:"id"`
	Timestamp    string  `json:"timestamp"`
	Type         string  `json:"type"`
	Strategy     string  `json:"strategy"`
	Symbol       string  `json:"symbol"`
	ExchangeBuy  string  `json:"exchange_buy"`
	ExchangeSell string  `json:"exchange_sell"`
	Quantity     float64 `json:"quantity"`
	EntryPrice   float64 `json:"entry_price"`
	ExitPrice    float64 `json:"exit_price"`
	PnL          float64 `json:"pnl"`
	PnLPercent   float64 `json:"pnl_percent"`
	SpreadBps    float64 `json:"spread_bps"`
	FeesPaid     float64 `json:"fees_paid"`
	IsOpen       bool    `json:"is_open"`
}

// Time parses the operation timestamp.
func (o Operation) Time() time.Time {
	return ParseBackendTime(o.Timestamp)
}

// StatusLabel returns OPEN or CLOSED.
func (o Operation) StatusLabel() string {
	if o.IsOpen {
		return "OPEN"
	}

	return "CLOSED"
}

// OperationList wraps the latest-operations payload.
// The backend has shipped both a bare array and an {"operations": [...]} envelope;
// both decode into Operations.
type OperationList struct {
	Operations []Operation `json:"operations"`
}

// UnmarshalJSON accepts either payload shape.
func (l *OperationList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &l.Operations)
	}

	var envelope struct {
		Operations []Operation `json:"operations"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return err
	}

	l.Operations = envelope.Operations

	return nil
}

// OperationStats is the aggregated operations summary. The engine decides its shape.
type OperationStats map[string]any

func itoa(v int) string {
	return strconv.Itoa(v)
}
