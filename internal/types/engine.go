package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/arb-console/pkg/errors"
)

// EngineStatus is the runtime state reported by the arbitrage engine.
type EngineStatus struct {
	Running            bool     `json:"running"`
	UptimeSeconds      int64    `json:"uptime_seconds"`
	ConnectedExchanges []string `json:"connected_exchanges"`
	ActivePositions    int      `json:"active_positions"`
	PendingOrders      int      `json:"pending_orders"`
}

// EngineConfig is the editable engine configuration.
// Every field is optional; zero values are omitted so a partial update
// leaves the remaining backend settings untouched.
type EngineConfig struct {
	CapitalUSD         float64  `json:"capital_usd,omitempty" jsonschema:"title=Capital (USD),description=Capital allocated to the engine" validate:"gte=0"`
	PaperMode          *bool    `json:"paper_mode,omitempty" jsonschema:"title=Paper mode,description=Simulate fills without touching exchanges"`
	MinSpreadBps       float64  `json:"min_spread_bps,omitempty" jsonschema:"title=Minimum spread (bps),description=Smallest spread considered an opportunity" validate:"gte=0"`
	MaxPositionSizeUSD float64  `json:"max_position_size_usd,omitempty" jsonschema:"title=Max position size (USD)" validate:"gte=0"`
	MaxOpenPositions   int      `json:"max_open_positions,omitempty" jsonschema:"title=Max open positions" validate:"gte=0"`
	RiskPercent        float64  `json:"risk_percent,omitempty" jsonschema:"title=Risk percent,description=Capital fraction risked per trade" validate:"gte=0,lte=100"`
	EnabledSymbols     []string `json:"enabled_symbols,omitempty" jsonschema:"title=Enabled symbols,description=Pairs the engine is allowed to trade" validate:"dive,required,uppercase"`
}

// Validate checks the configuration before it is sent to the backend.
func (c *EngineConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid engine config: "+err.Error(), err)
	}

	return nil
}

// Merge returns a copy of c with the non-zero fields of updates applied.
func (c EngineConfig) Merge(updates EngineConfig) EngineConfig {
	merged := c
	if updates.CapitalUSD != 0 {
		merged.CapitalUSD = updates.CapitalUSD
	}

	if updates.PaperMode != nil {
		paper := *updates.PaperMode
		merged.PaperMode = &paper
	}

	if updates.MinSpreadBps != 0 {
		merged.MinSpreadBps = updates.MinSpreadBps
	}

	if updates.MaxPositionSizeUSD != 0 {
		merged.MaxPositionSizeUSD = updates.MaxPositionSizeUSD
	}

	if updates.MaxOpenPositions != 0 {
		merged.MaxOpenPositions = updates.MaxOpenPositions
	}

	if updates.RiskPercent != 0 {
		merged.RiskPercent = updates.RiskPercent
	}

	if updates.EnabledSymbols != nil {
		merged.EnabledSymbols = append([]string(nil), updates.EnabledSymbols...)
	}

	return merged
}

// EngineCommandResult is the acknowledgement returned by start/stop/restart/config calls.
type EngineCommandResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// EngineHealth is the unauthenticated health probe payload.
type EngineHealth struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Engine  string `json:"engine,omitempty"`
}

// FormatUptime renders seconds as "Hh Mm Ss".
func FormatUptime(seconds int64) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
}
