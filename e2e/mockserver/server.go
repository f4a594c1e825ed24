// Package mockserver provides a mock arbitrage backend for testing.
// It serves the v1 and v2 REST APIs and the engine log stream websocket.
package mockserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/shopspring/decimal"
)

// Unauthorized is the detail returned with every 401.
const Unauthorized = "Could not validate credentials"

// LogStreamPath is the websocket route of the engine log stream.
const LogStreamPath = "/api/v2/engine/logs/stream"

// ServerConfig holds configuration for the mock server.
type ServerConfig struct {
	// Users maps username to password. Empty means {"admin": "admin"}.
	Users map[string]string
	// Operations seeds the operation history, newest first.
	Operations []types.Operation
	// InitialBalance is the virtual portfolio balance. Zero means 10000.
	InitialBalance decimal.Decimal
	// BackendVersion is reported by the health endpoint.
	BackendVersion string
	// StreamRequiresAuth rejects log stream handshakes without a valid bearer token.
	StreamRequiresAuth bool
}

// MockArbServer is an in-process arbitrage backend.
type MockArbServer struct {
	mu sync.RWMutex

	httpServer *http.Server
	listener   net.Listener
	upgrader   websocket.Upgrader

	users          map[string]string
	accessTokens   map[string]string
	refreshTokens  map[string]string
	backendVersion string
	streamAuth     bool
	forceAuthError bool
	hits           map[string]int

	engineRunning bool
	engineStarted time.Time
	engineConfig  types.EngineConfig
	operations    []types.Operation
	balance       decimal.Decimal
	initial       decimal.Decimal
	transactions  []map[string]any
	aiSession     map[string]any
	chat          []types.ChatMessage

	wsConnections map[*websocket.Conn]bool
	wsMu          sync.Mutex
	streamHeaders []http.Header
	stopped       bool
}

// NewMockArbServer creates a new mock backend.
func NewMockArbServer(config ServerConfig) *MockArbServer {
	users := config.Users
	if len(users) == 0 {
		users = map[string]string{"admin": "admin"}
	}

	balance := config.InitialBalance
	if balance.IsZero() {
		balance = decimal.NewFromInt(10000)
	}

	paper := true

	return &MockArbServer{
		mu:         sync.RWMutex{},
		httpServer: nil,
		listener:   nil,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		users:          users,
		accessTokens:   make(map[string]string),
		refreshTokens:  make(map[string]string),
		backendVersion: config.BackendVersion,
		streamAuth:     config.StreamRequiresAuth,
		forceAuthError: false,
		hits:           make(map[string]int),
		engineRunning:  false,
		engineStarted:  time.Time{},
		engineConfig: types.EngineConfig{
			CapitalUSD:         balance.InexactFloat64(),
			PaperMode:          &paper,
			MinSpreadBps:       5,
			MaxPositionSizeUSD: 1000,
			MaxOpenPositions:   3,
			RiskPercent:        2,
			EnabledSymbols:     []string{"BTCUSDT", "ETHUSDT"},
		},
		operations:    append([]types.Operation(nil), config.Operations...),
		balance:       balance,
		initial:       balance,
		transactions:  make([]map[string]any, 0),
		aiSession:     map[string]any{"active": false},
		chat:          make([]types.ChatMessage, 0),
		wsConnections: make(map[*websocket.Conn]bool),
		wsMu:          sync.Mutex{},
		streamHeaders: nil,
		stopped:       false,
	}
}

// Start starts the mock server on the given address.
// If address is empty or ":0", a random available port is used.
func (s *MockArbServer) Start(address string) error {
	if address == "" {
		address = "127.0.0.1:0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			fmt.Printf("HTTP server error: %v\n", err)
		}
	}()

	return nil
}

// Router builds the route table. It is exported so tests can mount it on httptest.
func (s *MockArbServer) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(s.countHits)

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	v1.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)
	v1.HandleFunc("/auth/logout", s.authed(s.handleLogout)).Methods(http.MethodPost)
	v1.HandleFunc("/portfolio", s.authed(s.handlePortfolio)).Methods(http.MethodGet)
	v1.HandleFunc("/portfolio/stats", s.authed(s.handlePortfolioStats)).Methods(http.MethodGet)
	v1.HandleFunc("/portfolio/positions", s.authed(s.handlePositions)).Methods(http.MethodGet)
	v1.HandleFunc("/portfolio/futures-positions", s.authed(s.handleFuturesPositions)).Methods(http.MethodGet)
	v1.HandleFunc("/portfolio/reset", s.authed(s.handlePortfolioReset)).Methods(http.MethodPost)
	v1.HandleFunc("/portfolio/export-md", s.authed(s.handlePortfolioExport)).Methods(http.MethodGet)
	v1.HandleFunc("/trading/history", s.authed(s.handleTradeHistory)).Methods(http.MethodGet)
	v1.HandleFunc("/trading/manual-trade", s.authed(s.handleManualTrade)).Methods(http.MethodPost)
	v1.HandleFunc("/ai/decisions", s.authed(s.handleAIDecisions)).Methods(http.MethodGet)
	v1.HandleFunc("/ai/analyze", s.authed(s.handleAIAnalyze)).Methods(http.MethodPost)
	v1.HandleFunc("/ai-session/status", s.authed(s.handleAISessionStatus)).Methods(http.MethodGet)
	v1.HandleFunc("/ai-session/start", s.authed(s.handleAISessionStart)).Methods(http.MethodPost)
	v1.HandleFunc("/ai-session/stop", s.authed(s.handleAISessionStop)).Methods(http.MethodPost)
	v1.HandleFunc("/ai-analysis/latest", s.authed(s.handleAIAnalyze)).Methods(http.MethodGet)
	v1.HandleFunc("/chat/history", s.authed(s.handleChatHistory)).Methods(http.MethodGet)
	v1.HandleFunc("/chat/message", s.authed(s.handleChatMessage)).Methods(http.MethodPost)

	v2 := router.PathPrefix("/api/v2").Subrouter()
	v2.HandleFunc("/engine/health", s.handleHealth).Methods(http.MethodGet)
	v2.HandleFunc("/engine/status", s.authed(s.handleEngineStatus)).Methods(http.MethodGet)
	v2.HandleFunc("/engine/config", s.authed(s.handleGetEngineConfig)).Methods(http.MethodGet)
	v2.HandleFunc("/engine/config", s.authed(s.handleSaveEngineConfig)).Methods(http.MethodPost)
	v2.HandleFunc("/engine/start", s.authed(s.handleEngineCommand(true, "Engine started"))).Methods(http.MethodPost)
	v2.HandleFunc("/engine/stop", s.authed(s.handleEngineCommand(false, "Engine stopped"))).Methods(http.MethodPost)
	v2.HandleFunc("/engine/restart", s.authed(s.handleEngineCommand(true, "Engine restarted"))).Methods(http.MethodPost)
	v2.HandleFunc("/engine/logs/stream", s.handleLogStream)
	v2.HandleFunc("/arbitrage/stats", s.authed(s.handleArbitrageStats)).Methods(http.MethodGet)
	v2.HandleFunc("/arbitrage/profit-history", s.authed(s.handleProfitHistory)).Methods(http.MethodGet)
	v2.HandleFunc("/arbitrage/history", s.authed(s.handleArbitrageHistory)).Methods(http.MethodGet)
	v2.HandleFunc("/arbitrage/history/export", s.authed(s.handleArbitrageExport)).Methods(http.MethodGet)
	v2.HandleFunc("/operations/latest", s.authed(s.handleLatestOperations)).Methods(http.MethodGet)
	v2.HandleFunc("/operations/stats", s.authed(s.handleOperationStats)).Methods(http.MethodGet)

	return router
}

// Stop closes every stream connection and shuts the server down.
func (s *MockArbServer) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()

		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	s.DropConnections()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// Address returns the address the server is listening on.
func (s *MockArbServer) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// BaseURL returns the API base URL, i.e. the console's api_url.
func (s *MockArbServer) BaseURL() string {
	return "http://" + s.Address()
}

// LogStreamURL returns the websocket URL of the log stream.
func (s *MockArbServer) LogStreamURL() string {
	return "ws://" + s.Address() + LogStreamPath
}

// IssueToken logs username in without going through the API and returns the access token.
func (s *MockArbServer) IssueToken(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	access, _ := s.issueLocked(username)

	return access
}

func (s *MockArbServer) issueLocked(username string) (string, string) {
	access := "access-" + uuid.NewString()
	refresh := "refresh-" + uuid.NewString()
	s.accessTokens[access] = username
	s.refreshTokens[refresh] = username

	return access, refresh
}

// ExpireTokens revokes every issued access token, as if they all expired.
func (s *MockArbServer) ExpireTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessTokens = make(map[string]string)
}

// ForceUnauthorized makes every authenticated route answer 401.
func (s *MockArbServer) ForceUnauthorized(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.forceAuthError = enabled
}

// Hits returns how many requests reached path.
func (s *MockArbServer) Hits(path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.hits[path]
}

// EngineRunning reports the mock engine state.
func (s *MockArbServer) EngineRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.engineRunning
}

// EngineConfig returns the stored engine configuration.
func (s *MockArbServer) EngineConfig() types.EngineConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.engineConfig
}

// Balance returns the virtual portfolio balance.
func (s *MockArbServer) Balance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.balance
}

// AddOperation records an operation as the newest one.
func (s *MockArbServer) AddOperation(op types.Operation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.operations = append([]types.Operation{op}, s.operations...)
}

func (s *MockArbServer) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// authed rejects requests without a known bearer token.
func (s *MockArbServer) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.userFor(r.Header); !ok {
			writeDetail(w, http.StatusUnauthorized, Unauthorized)

			return
		}

		next(w, r)
	}
}

func (s *MockArbServer) userFor(header http.Header) (string, bool) {
	token, ok := strings.CutPrefix(header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.forceAuthError {
		return "", false
	}

	user, ok := s.accessTokens[token]

	return user, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}
