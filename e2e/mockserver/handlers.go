package mockserver

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rxtech-lab/arb-console/internal/history"
	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/shopspring/decimal"
)

// Auth

func (s *MockArbServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string  `json:"username"`
		Password string  `json:"password"`
		MFACode  *string `json:"mfa_code"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]any{{"loc": []string{"body"}, "msg": "invalid JSON"}})

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	password, ok := s.users[req.Username]
	if !ok || password != req.Password {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")

		return
	}

	access, refresh := s.issueLocked(req.Username)
	writeJSON(w, http.StatusOK, types.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"})
}

func (s *MockArbServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.refreshTokens[req.RefreshToken]
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")

		return
	}

	delete(s.refreshTokens, req.RefreshToken)

	access, refresh := s.issueLocked(user)
	writeJSON(w, http.StatusOK, types.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"})
}

func (s *MockArbServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	s.mu.Lock()
	delete(s.accessTokens, token)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Engine

func (s *MockArbServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	engine := "stopped"
	if s.engineRunning {
		engine = "running"
	}

	writeJSON(w, http.StatusOK, types.EngineHealth{Status: "ok", Version: s.backendVersion, Engine: engine})
}

func (s *MockArbServer) handleEngineStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	writeJSON(w, http.StatusOK, s.engineStatusLocked())
}

func (s *MockArbServer) engineStatusLocked() types.EngineStatus {
	status := types.EngineStatus{
		Running:            s.engineRunning,
		UptimeSeconds:      0,
		ConnectedExchanges: []string{},
		ActivePositions:    0,
		PendingOrders:      0,
	}

	if s.engineRunning {
		status.UptimeSeconds = int64(time.Since(s.engineStarted).Seconds())
		status.ConnectedExchanges = []string{"binance", "kraken"}

		for _, op := range s.operations {
			if op.IsOpen {
				status.ActivePositions++
			}
		}
	}

	return status
}

func (s *MockArbServer) handleGetEngineConfig(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	writeJSON(w, http.StatusOK, s.engineConfig)
}

func (s *MockArbServer) handleSaveEngineConfig(w http.ResponseWriter, r *http.Request) {
	var cfg types.EngineConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]any{{"loc": []string{"body"}, "msg": "invalid JSON"}})

		return
	}

	if cfg.RiskPercent > 100 {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]any{{"loc": []string{"body", "risk_percent"}, "msg": "ensure this value is less than or equal to 100"}})

		return
	}

	s.mu.Lock()
	s.engineConfig = cfg
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, types.EngineCommandResult{Success: true, Message: "Configuration updated"})
}

func (s *MockArbServer) handleEngineCommand(running bool, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		s.engineRunning = running
		if running {
			s.engineStarted = time.Now()
		}
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, types.EngineCommandResult{Success: true, Message: message})
	}
}

// Arbitrage and operations

func (s *MockArbServer) handleArbitrageStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := history.Summarize(s.operations)
	status := s.engineStatusLocked()

	engine := "stopped"
	if status.Running {
		engine = "running"
	}

	writeJSON(w, http.StatusOK, types.DashboardStats{
		EngineStatus:          engine,
		UptimeSeconds:         status.UptimeSeconds,
		ConnectedExchanges:    len(status.ConnectedExchanges),
		TotalExchanges:        2,
		BalanceUSD:            s.balance.InexactFloat64(),
		TotalOperations:       summary.Count,
		TotalProfit:           summary.TotalProfit.InexactFloat64(),
		AvgSpreadBps:          0,
		AvgExecutionTimeUs:    0,
		OpportunitiesFound:    summary.Count,
		OpportunitiesExecuted: summary.ClosedCount,
		WinRatePercent:        summary.WinRate.InexactFloat64(),
		BestPair:              nil,
		WorstPair:             nil,
	})
}

func (s *MockArbServer) handleProfitHistory(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := make([]types.ProfitPoint, 0, len(s.operations))
	cumulative := 0.0

	// oldest first
	for i := len(s.operations) - 1; i >= 0; i-- {
		op := s.operations[i]
		cumulative += op.PnL
		points = append(points, types.ProfitPoint{Timestamp: op.Time().UnixMilli(), Profit: op.PnL, Cumulative: cumulative})
	}

	writeJSON(w, http.StatusOK, points)
}

func (s *MockArbServer) filteredOperations(r *http.Request) ([]types.Operation, int, error) {
	query := r.URL.Query()

	limit := 100
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			return nil, 0, fmt.Errorf("limit must be between 1 and 500")
		}

		limit = n
	}

	symbol := query.Get("symbol")
	exchange := query.Get("exchange")

	s.mu.RLock()
	defer s.mu.RUnlock()

	ops := make([]types.Operation, 0, len(s.operations))
	for _, op := range s.operations {
		if symbol != "" && op.Symbol != symbol {
			continue
		}

		if exchange != "" && op.ExchangeBuy != exchange && op.ExchangeSell != exchange {
			continue
		}

		ops = append(ops, op)
	}

	total := len(ops)
	if len(ops) > limit {
		ops = ops[:limit]
	}

	return ops, total, nil
}

func (s *MockArbServer) handleArbitrageHistory(w http.ResponseWriter, r *http.Request) {
	ops, total, err := s.filteredOperations(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())

		return
	}

	writeJSON(w, http.StatusOK, types.ArbitrageHistory{Operations: ops, Total: total, Page: 1, PerPage: len(ops)})
}

func (s *MockArbServer) handleArbitrageExport(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	ops := append([]types.Operation(nil), s.operations...)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=arbitrage_history.csv")
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "timestamp", "symbol", "pnl"})

	for _, op := range ops {
		_ = cw.Write([]string{strconv.FormatInt(op.ID, 10), op.Timestamp, op.Symbol, strconv.FormatFloat(op.PnL, 'f', -1, 64)})
	}

	cw.Flush()
}

func (s *MockArbServer) handleLatestOperations(w http.ResponseWriter, r *http.Request) {
	ops, _, err := s.filteredOperations(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"operations": ops})
}

func (s *MockArbServer) handleOperationStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := history.Summarize(s.operations)
	writeJSON(w, http.StatusOK, map[string]any{
		"total":        summary.Count,
		"open":         summary.OpenCount,
		"closed":       summary.ClosedCount,
		"total_profit": summary.TotalProfit.InexactFloat64(),
		"win_rate":     summary.WinRate.InexactFloat64(),
	})
}

// Portfolio and trading

func (s *MockArbServer) handlePortfolio(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	writeJSON(w, http.StatusOK, types.Portfolio{
		ID:             "portfolio-1",
		UserID:         "user-1",
		BalanceUSD:     s.balance,
		TotalPnL:       s.balance.Sub(s.initial),
		InitialBalance: s.initial,
		TotalTrades:    len(s.transactions),
		WinningTrades:  0,
		LosingTrades:   0,
		CreatedAt:      "2024-01-01T00:00:00",
		UpdatedAt:      time.Now().UTC().Format("2006-01-02T15:04:05"),
	})
}

func (s *MockArbServer) handlePortfolioStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pnl := s.balance.Sub(s.initial)

	writeJSON(w, http.StatusOK, types.PortfolioStats{
		BalanceUSD:      s.balance,
		TotalPnL:        pnl,
		TotalPnLPercent: pnl.Div(s.initial).Mul(decimal.NewFromInt(100)),
		TotalTrades:     len(s.transactions),
		WinningTrades:   0,
		LosingTrades:    0,
		WinRate:         decimal.Zero,
		BestTrade:       decimal.Zero,
		WorstTrade:      decimal.Zero,
		AvgWin:          decimal.Zero,
		AvgLoss:         decimal.Zero,
	})
}

func (s *MockArbServer) handlePositions(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	writeJSON(w, http.StatusOK, types.Positions{Positions: append([]map[string]any{}, s.transactions...)})
}

func (s *MockArbServer) handleFuturesPositions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, types.FuturesPositions{FuturesPositions: []map[string]any{}})
}

func (s *MockArbServer) handleTradeHistory(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	writeJSON(w, http.StatusOK, types.TradeHistory{Transactions: append([]map[string]any{}, s.transactions...)})
}

func (s *MockArbServer) handlePortfolioReset(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.balance = s.initial
	s.transactions = make([]map[string]any, 0)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "Portfolio reset"})
}

func (s *MockArbServer) handlePortfolioExport(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/markdown")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "# Portfolio report\n\nBalance: $%s\nTrades: %d\n", s.balance.StringFixed(2), len(s.transactions))
}

func (s *MockArbServer) handleManualTrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action    string  `json:"action"`
		Symbol    string  `json:"symbol"`
		AmountUSD float64 `json:"amount_usd"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]any{{"loc": []string{"body"}, "msg": "invalid JSON"}})

		return
	}

	if req.AmountUSD <= 0 {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]any{{"loc": []string{"body", "amount_usd"}, "msg": "ensure this value is greater than 0"}})

		return
	}

	amount := decimal.NewFromFloat(req.AmountUSD)

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Action == string(types.TradeActionBuy) {
		if amount.GreaterThan(s.balance) {
			writeDetail(w, http.StatusBadRequest, "Insufficient balance")

			return
		}

		s.balance = s.balance.Sub(amount)
	} else {
		s.balance = s.balance.Add(amount)
	}

	trade := map[string]any{
		"id":         len(s.transactions) + 1,
		"action":     req.Action,
		"symbol":     req.Symbol,
		"amount_usd": req.AmountUSD,
		"created_at": time.Now().UTC().Format("2006-01-02T15:04:05"),
	}
	s.transactions = append(s.transactions, trade)

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "trade": trade, "balance_usd": s.balance.InexactFloat64()})
}

// AI

func (s *MockArbServer) handleAIDecisions(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = 50
	}

	decisions := []types.AIDecision{
		{ID: "d-1", Symbol: "BTCUSDT", Decision: "BUY", Confidence: 72, Reasoning: "spread widening on kraken", Executed: true, CreatedAt: "2024-03-05T14:30:15", MarketData: nil},
		{ID: "d-2", Symbol: "ETHUSDT", Decision: "HOLD", Confidence: 41, Reasoning: "insufficient liquidity", Executed: false, CreatedAt: "2024-03-05T14:28:00", MarketData: nil},
	}

	if len(decisions) > limit {
		decisions = decisions[:limit]
	}

	writeJSON(w, http.StatusOK, decisions)
}

func (s *MockArbServer) handleAIAnalyze(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"market_sentiment": "neutral", "pairs_analyzed": 8})
}

func (s *MockArbServer) handleAISessionStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	writeJSON(w, http.StatusOK, s.aiSession)
}

func (s *MockArbServer) handleAISessionStart(w http.ResponseWriter, r *http.Request) {
	hours, err := strconv.Atoi(r.URL.Query().Get("duration_hours"))
	if err != nil || hours < 1 {
		writeDetail(w, http.StatusUnprocessableEntity, "duration_hours must be a positive integer")

		return
	}

	s.mu.Lock()
	s.aiSession = map[string]any{"active": true, "duration_hours": hours}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"message": "AI session started"})
}

func (s *MockArbServer) handleAISessionStop(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.aiSession = map[string]any{"active": false}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"message": "AI session stopped"})
}

// Chat

func (s *MockArbServer) handleChatHistory(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	writeJSON(w, http.StatusOK, types.ChatHistory{Messages: append([]types.ChatMessage(nil), s.chat...)})
}

// handleChatMessage answers with a canned reply that echoes the question.
func (s *MockArbServer) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "message is required")

		return
	}

	reply := "You asked: " + req.Message

	s.mu.Lock()
	now := time.Now().UTC().Format("2006-01-02T15:04:05")
	s.chat = append(s.chat,
		types.ChatMessage{ID: strconv.Itoa(len(s.chat) + 1), Role: "user", Content: req.Message, CreatedAt: now},
		types.ChatMessage{ID: strconv.Itoa(len(s.chat) + 2), Role: "assistant", Content: reply, CreatedAt: now},
	)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, types.ChatReply{Response: reply})
}
