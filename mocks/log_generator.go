package mocks

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/arb-console/internal/types"
)

// LogGenerator generates realistic engine log entries for testing and benchmarking.
type LogGenerator struct {
	rng *rand.Rand
}

// NewLogGenerator creates a new LogGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewLogGenerator(seed int64) *LogGenerator {
	return &LogGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how log entries are generated.
type GeneratorConfig struct {
	// StartTime is the timestamp of the first entry
	StartTime time.Time
	// Interval is the duration between entries
	Interval time.Duration
	// Count is the number of entries to generate
	Count int
	// Exchanges are the exchange tags to pick from
	Exchanges []string
	// Symbols are the symbol tags to pick from
	Symbols []string
	// ErrorRate is the share of ERROR entries (0.0 to 1.0)
	ErrorRate float64
	// OpportunityRate is the share of OPPORTUNITY entries (0.0 to 1.0)
	OpportunityRate float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartTime:       time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		Interval:        250 * time.Millisecond,
		Count:           1000,
		Exchanges:       []string{"Binance", "Kraken", "OKX", "Bybit"},
		Symbols:         []string{"BTC/USDT", "ETH/USDT", "SOL/USDT"},
		ErrorRate:       0.05,
		OpportunityRate: 0.15,
	}
}

// Generate creates a slice of log entries in emission order.
func (g *LogGenerator) Generate(config GeneratorConfig) []types.LogEntry {
	entries := make([]types.LogEntry, config.Count)
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		exchange := pick(g.rng, config.Exchanges)
		symbol := pick(g.rng, config.Symbols)
		level, message, data := g.event(config, exchange, symbol)

		entries[i] = types.LogEntry{
			ID:        uuid.NewString(),
			Timestamp: currentTime.UnixMilli(),
			Level:     level,
			Message:   message,
			Exchange:  optional.Some(exchange),
			Symbol:    optional.Some(symbol),
			Data:      data,
		}

		currentTime = currentTime.Add(config.Interval)
	}

	return entries
}

// GenerateFrames generates entries already encoded as stream frames.
func (g *LogGenerator) GenerateFrames(config GeneratorConfig) [][]byte {
	entries := g.Generate(config)
	frames := make([][]byte, len(entries))

	for i, entry := range entries {
		frames[i] = EncodeFrame(entry)
	}

	return frames
}

// EncodeFrame encodes an entry the way the engine sends it over the stream.
func EncodeFrame(entry types.LogEntry) []byte {
	frame := map[string]any{
		"id":        entry.ID,
		"timestamp": entry.Timestamp,
		"level":     string(entry.Level),
		"message":   entry.Message,
	}

	if entry.Exchange.IsSome() {
		frame["exchange"] = entry.ExchangeOrEmpty()
	}

	if entry.Symbol.IsSome() {
		frame["symbol"] = entry.SymbolOrEmpty()
	}

	if len(entry.Data) > 0 {
		frame["data"] = entry.Data
	}

	data, err := json.Marshal(frame)
	if err != nil {
		panic(err)
	}

	return data
}

func (g *LogGenerator) event(config GeneratorConfig, exchange, symbol string) (types.LogLevel, string, json.RawMessage) {
	roll := g.rng.Float64()

	switch {
	case roll < config.ErrorRate:
		return types.LogLevelError, fmt.Sprintf("Order rejected on %s for %s: insufficient balance", exchange, symbol), nil
	case roll < config.ErrorRate+config.OpportunityRate:
		spread := 5 + g.rng.Float64()*45
		data, _ := json.Marshal(map[string]any{"spread_bps": roundToDecimals(spread, 2)})

		return types.LogLevelOpportunity, fmt.Sprintf("Spread %.2f bps on %s via %s", spread, symbol, exchange), data
	case roll < config.ErrorRate+config.OpportunityRate+0.1:
		return types.LogLevelSuccess, fmt.Sprintf("Filled %s on %s", symbol, exchange), nil
	case roll < config.ErrorRate+config.OpportunityRate+0.2:
		return types.LogLevelWarn, fmt.Sprintf("High latency from %s (%dms)", exchange, 200+g.rng.Intn(800)), nil
	default:
		return types.LogLevelInfo, fmt.Sprintf("Scanning %s on %s", symbol, exchange), nil
	}
}

func pick(rng *rand.Rand, values []string) string {
	if len(values) == 0 {
		return ""
	}

	return values[rng.Intn(len(values))]
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
