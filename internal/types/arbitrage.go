package types

import "time"

// DashboardStats is the arbitrage dashboard summary.
type DashboardStats struct {
	EngineStatus          string  `json:"engine_status"`
	UptimeSeconds         int64   `json:"uptime_seconds"`
	ConnectedExchanges    int     `json:"connected_exchanges"`
	TotalExchanges        int     `json:"total_exchanges"`
	BalanceUSD            float64 `json:"balance_usd"`
	TotalOperations       int     `json:"total_operations"`
	TotalProfit           float64 `json:"total_profit"`
	AvgSpreadBps          float64 `json:"avg_spread_bps"`
	AvgExecutionTimeUs    float64 `json:"avg_execution_time_us"`
	OpportunitiesFound    int     `json:"opportunities_found"`
	OpportunitiesExecuted int     `json:"opportunities_executed"`
	WinRatePercent        float64 `json:"win_rate_percent"`
	BestPair              *string `json:"best_pair"`
	WorstPair             *string `json:"worst_pair"`
}

// ProfitPoint is one sample of the profit history chart.
type ProfitPoint struct {
	Timestamp  int64   `json:"timestamp"`
	Profit     float64 `json:"profit"`
	Cumulative float64 `json:"cumulative"`
}

// Time returns the sample time.
func (p ProfitPoint) Time() time.Time {
	return time.UnixMilli(p.Timestamp)
}

// HistoryParams are the query parameters of the arbitrage history endpoint.
type HistoryParams struct {
	// Limit is the number of operations requested (1..500). Zero leaves the backend default.
	Limit    int
	Symbol   string
	Exchange string
}

// QueryParams renders the non-empty parameters.
func (p HistoryParams) QueryParams() map[string]string {
	params := map[string]string{}
	if p.Limit > 0 {
		params["limit"] = itoa(p.Limit)
	}

	if p.Symbol != "" {
		params["symbol"] = p.Symbol
	}

	if p.Exchange != "" {
		params["exchange"] = p.Exchange
	}

	return params
}

// ArbitrageHistory is one page of the arbitrage history.
type ArbitrageHistory struct {
	Operations []Operation `json:"operations"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
}
