package types

import "github.com/shopspring/decimal"

// Portfolio is the virtual portfolio of the current user.
type Portfolio struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	BalanceUSD     decimal.Decimal `json:"balance_usd"`
	TotalPnL       decimal.Decimal `json:"total_pnl"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	TotalTrades    int             `json:"total_trades"`
	WinningTrades  int             `json:"winning_trades"`
	LosingTrades   int             `json:"losing_trades"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

// PortfolioStats are the derived portfolio statistics.
type PortfolioStats struct {
	BalanceUSD      decimal.Decimal `json:"balance_usd"`
	TotalPnL        decimal.Decimal `json:"total_pnl"`
	TotalPnLPercent decimal.Decimal `json:"total_pnl_percent"`
	TotalTrades     int             `json:"total_trades"`
	WinningTrades   int             `json:"winning_trades"`
	LosingTrades    int             `json:"losing_trades"`
	WinRate         decimal.Decimal `json:"win_rate"`
	BestTrade       decimal.Decimal `json:"best_trade"`
	WorstTrade      decimal.Decimal `json:"worst_trade"`
	AvgWin          decimal.Decimal `json:"avg_win"`
	AvgLoss         decimal.Decimal `json:"avg_loss"`
}

// Positions wraps the spot positions payload. Positions are rendered as-is.
type Positions struct {
	Positions []map[string]any `json:"positions"`
}

// FuturesPositions wraps the futures positions payload.
type FuturesPositions struct {
	FuturesPositions []map[string]any `json:"futures_positions"`
}

// TradeHistory wraps the executed transactions payload.
type TradeHistory struct {
	Transactions []map[string]any `json:"transactions"`
}
