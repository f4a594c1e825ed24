package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/arb-console/internal/config"
	"github.com/rxtech-lab/arb-console/internal/logger"
	"github.com/rxtech-lab/arb-console/internal/session"
	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/rxtech-lab/arb-console/mocks"
	"github.com/rxtech-lab/arb-console/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ClientTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	notifier *mocks.MockNotifier
	store    *session.MemoryStore
	session  *session.Session
	router   *mux.Router
	server   *httptest.Server
	client   *Client
	hits     atomic.Int32
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (suite *ClientTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.notifier = mocks.NewMockNotifier(suite.ctrl)
	suite.store = session.NewMemoryStore()
	suite.hits.Store(0)

	sess, err := session.New(suite.store, logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.Require().NoError(sess.SetCredentials(session.Credentials{AccessToken: "access-1", RefreshToken: "refresh-1", User: nil}))
	suite.session = sess

	suite.router = mux.NewRouter()
	suite.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.hits.Add(1)
		suite.router.ServeHTTP(w, r)
	}))

	cfg := config.Default()
	cfg.APIURL = suite.server.URL
	cfg.RequestTimeout = 5 * time.Second

	suite.client = NewClient(cfg, suite.session, suite.notifier, logger.NewNopLogger())
}

func (suite *ClientTestSuite) TearDownTest() {
	suite.server.Close()
	suite.ctrl.Finish()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (suite *ClientTestSuite) TestAttachesBearerToken() {
	var auth string
	suite.router.HandleFunc("/api/v2/engine/status", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]any{"running": true, "uptime_seconds": 3725, "connected_exchanges": []string{"binance"}})
	}).Methods(http.MethodGet)

	status, err := suite.client.EngineStatus(context.Background())
	suite.Require().NoError(err)
	suite.Equal("Bearer access-1", auth)
	suite.True(status.Running)
	suite.Equal([]string{"binance"}, status.ConnectedExchanges)
}

func (suite *ClientTestSuite) TestNoTokenWhenUnauthenticated() {
	suite.session.Invalidate("test")

	var auth string
	suite.router.HandleFunc("/api/v2/engine/health", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "version": "1.4.0"})
	})

	health, err := suite.client.EngineHealth(context.Background())
	suite.Require().NoError(err)
	suite.Empty(auth)
	suite.Equal("ok", health.Status)
}

func (suite *ClientTestSuite) TestUnauthorizedPurgesSessionFromAnyEndpoint() {
	endpoints := []struct {
		name string
		path string
		call func() error
	}{
		{"v2 engine status", "/api/v2/engine/status", func() error {
			_, err := suite.client.EngineStatus(context.Background())
			return err
		}},
		{"v1 portfolio", "/api/v1/portfolio", func() error {
			_, err := suite.client.Portfolio(context.Background())
			return err
		}},
		{"v2 operations", "/api/v2/operations/latest", func() error {
			_, err := suite.client.LatestOperations(context.Background(), 10)
			return err
		}},
	}

	for _, endpoint := range endpoints {
		suite.Run(endpoint.name, func() {
			suite.Require().NoError(suite.session.SetCredentials(session.Credentials{AccessToken: "a", RefreshToken: "r", User: nil}))

			suite.router = mux.NewRouter()
			suite.router.HandleFunc(endpoint.path, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Could not validate credentials"})
			})

			var reasons []string
			suite.session.OnInvalidate(func(reason string) { reasons = append(reasons, reason) })

			suite.notifier.EXPECT().Error("Could not validate credentials")

			err := endpoint.call()
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeUnauthorized))
			suite.True(errors.IsUnauthorized(err))

			suite.False(suite.session.IsAuthenticated())
			suite.Empty(suite.session.RefreshToken())

			stored, loadErr := suite.store.Load()
			suite.Require().NoError(loadErr)
			suite.Empty(stored.AccessToken)
			suite.Empty(stored.RefreshToken)
			suite.Contains(reasons, InvalidateReasonUnauthorized)
		})
	}
}

func (suite *ClientTestSuite) TestErrorDetailIsNotified() {
	suite.router.HandleFunc("/api/v2/engine/start", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]any{"detail": "Engine already running"})
	}).Methods(http.MethodPost)

	suite.notifier.EXPECT().Error("Engine already running")

	_, err := suite.client.StartEngine(context.Background())
	suite.Require().Error(err)

	var apiErr *errors.APIError
	suite.Require().True(errors.As(err, &apiErr))
	suite.Equal(http.StatusConflict, apiErr.StatusCode)
	suite.True(suite.session.IsAuthenticated())
}

func (suite *ClientTestSuite) TestErrorWithoutDetailFallsBack() {
	suite.router.HandleFunc("/api/v2/arbitrage/stats", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	suite.notifier.EXPECT().Error(DefaultErrorMessage)

	_, err := suite.client.ArbitrageStats(context.Background())
	suite.True(errors.IsAPIError(err))
}

func (suite *ClientTestSuite) TestNetworkErrorIsNotified() {
	suite.server.Close()

	suite.notifier.EXPECT().Error(DefaultErrorMessage)

	_, err := suite.client.OperationStats(context.Background())
	suite.True(errors.HasCode(err, errors.ErrCodeRequestFailed))
}

func (suite *ClientTestSuite) TestCancelledContextIsNotNotified() {
	suite.router.HandleFunc("/api/v2/engine/config", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.client.EngineConfig(ctx)
	suite.True(errors.HasCode(err, errors.ErrCodeRequestFailed))
}

func (suite *ClientTestSuite) TestInvalidTradeNeverReachesBackend() {
	suite.notifier.EXPECT().Error("Please enter a valid amount")

	_, err := suite.client.ManualTrade(context.Background(), types.ManualTradeRequest{
		Action:    types.TradeActionBuy,
		Symbol:    "BTCUSDT",
		AmountUSD: decimal.Zero,
	})

	suite.True(errors.HasCode(err, errors.ErrCodeInvalidAmount))
	suite.Equal(int32(0), suite.hits.Load())
}

func (suite *ClientTestSuite) TestManualTradeSubmitsPayload() {
	var body map[string]any
	suite.router.HandleFunc("/api/v1/trading/manual-trade", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]any{"status": "filled"})
	}).Methods(http.MethodPost)

	suite.notifier.EXPECT().Success("SELL order executed")

	result, err := suite.client.ManualTrade(context.Background(), types.ManualTradeRequest{
		Action:    types.TradeActionSell,
		Symbol:    "ethusdt",
		AmountUSD: decimal.NewFromInt(250),
	})
	suite.Require().NoError(err)
	suite.Equal("filled", result["status"])
	suite.Equal("SELL", body["action"])
	suite.Equal("ETHUSDT", body["symbol"])
	suite.Equal(250.0, body["amount_usd"])
}

func (suite *ClientTestSuite) TestValidationDetailListIsJoined() {
	suite.router.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]any{
			{"loc": []string{"body", "username"}, "msg": "field required"},
			{"loc": []string{"body", "password"}, "msg": "too short"},
		}})
	})

	suite.notifier.EXPECT().Error("field required; too short")

	_, err := suite.client.Login(context.Background(), types.LoginRequest{Username: "u", Password: "p", MFACode: nil})
	suite.Error(err)
}

func (suite *ClientTestSuite) TestLoginStoresCredentials() {
	suite.session.Invalidate("test")

	var body map[string]any
	suite.router.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "new-access", "refresh_token": "new-refresh", "token_type": "bearer"})
	}).Methods(http.MethodPost)

	suite.notifier.EXPECT().Success("Login successful!")

	empty := ""
	tokens, err := suite.client.Login(context.Background(), types.LoginRequest{Username: "alice", Password: "secret", MFACode: &empty})
	suite.Require().NoError(err)
	suite.Equal("bearer", tokens.TokenType)
	suite.Nil(body["mfa_code"])
	suite.Equal("new-access", suite.session.AccessToken())
	suite.Equal("alice", suite.session.User().Username)

	stored, err := suite.store.Load()
	suite.Require().NoError(err)
	suite.Equal("new-refresh", stored.RefreshToken)
}

func (suite *ClientTestSuite) TestLogoutClearsSessionEvenOnFailure() {
	suite.router.HandleFunc("/api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "boom"})
	})

	suite.Require().NoError(suite.client.Logout(context.Background()))
	suite.False(suite.session.IsAuthenticated())
}

func (suite *ClientTestSuite) TestLatestOperationsAcceptsBothShapes() {
	calls := 0
	suite.router.HandleFunc("/api/v2/operations/latest", func(w http.ResponseWriter, r *http.Request) {
		suite.Equal("25", r.URL.Query().Get("limit"))

		calls++
		if calls == 1 {
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "symbol": "BTCUSDT", "is_open": true}})

			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"operations": []map[string]any{{"id": 2, "symbol": "ETHUSDT"}}})
	})

	ops, err := suite.client.LatestOperations(context.Background(), 25)
	suite.Require().NoError(err)
	suite.Require().Len(ops, 1)
	suite.Equal("BTCUSDT", ops[0].Symbol)

	ops, err = suite.client.LatestOperations(context.Background(), 25)
	suite.Require().NoError(err)
	suite.Equal(int64(2), ops[0].ID)
}

func (suite *ClientTestSuite) TestLatestOperationsRejectsOutOfRangeLimit() {
	suite.notifier.EXPECT().Error(gomock.Any())

	_, err := suite.client.LatestOperations(context.Background(), 501)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
	suite.Equal(int32(0), suite.hits.Load())
}

func (suite *ClientTestSuite) TestExportStreamsBody() {
	csv := "timestamp,type\n2024-01-01,cross_exchange\n"
	suite.router.HandleFunc("/api/v2/arbitrage/history/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(csv))
	})

	var out, progress bytes.Buffer
	n, err := suite.client.ExportArbitrageHistory(context.Background(), &out, &progress)
	suite.Require().NoError(err)
	suite.Equal(int64(len(csv)), n)
	suite.Equal(csv, out.String())
	suite.Equal(csv, progress.String())
}

func (suite *ClientTestSuite) TestExportUnauthorized() {
	suite.router.HandleFunc("/api/v1/portfolio/export-md", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Not authenticated"})
	})

	suite.notifier.EXPECT().Error("Not authenticated")

	var out bytes.Buffer
	_, err := suite.client.ExportPortfolioMarkdown(context.Background(), &out, nil)
	suite.True(errors.IsUnauthorized(err))
	suite.False(suite.session.IsAuthenticated())
	suite.Zero(out.Len())
}

func (suite *ClientTestSuite) TestSaveEngineConfigValidatesLocally() {
	suite.notifier.EXPECT().Error(gomock.Any())

	_, err := suite.client.SaveEngineConfig(context.Background(), types.EngineConfig{RiskPercent: 500})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
	suite.Equal(int32(0), suite.hits.Load())
}

func (suite *ClientTestSuite) TestStartAISessionSendsDuration() {
	var hours string
	suite.router.HandleFunc("/api/v1/ai-session/start", func(w http.ResponseWriter, r *http.Request) {
		hours = r.URL.Query().Get("duration_hours")
		writeJSON(w, http.StatusOK, map[string]any{"status": "started"})
	}).Methods(http.MethodPost)

	suite.notifier.EXPECT().Success("AI session started")

	suite.Require().NoError(suite.client.StartAISession(context.Background(), 6))
	suite.Equal("6", hours)
}

func (suite *ClientTestSuite) TestChatRoundTrip() {
	var sent types.ChatRequest
	suite.router.HandleFunc("/api/v1/chat/message", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		writeJSON(w, http.StatusOK, map[string]any{"response": "spreads are below 5 bps"})
	}).Methods(http.MethodPost)
	suite.router.HandleFunc("/api/v1/chat/history", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"messages": []map[string]any{
			{"id": "1", "role": "user", "content": "why no trades?", "created_at": "2024-03-05T14:30:15"},
		}})
	}).Methods(http.MethodGet)

	reply, err := suite.client.SendChatMessage(context.Background(), "  why no trades? ")
	suite.Require().NoError(err)
	suite.Equal("spreads are below 5 bps", reply)
	suite.Equal("why no trades?", sent.Message)

	history, err := suite.client.ChatHistory(context.Background())
	suite.Require().NoError(err)
	suite.Require().Len(history, 1)
	suite.Equal("user", history[0].Role)
}

func (suite *ClientTestSuite) TestBlankChatMessageNeverReachesBackend() {
	suite.notifier.EXPECT().Error("message cannot be empty")

	_, err := suite.client.SendChatMessage(context.Background(), "   ")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))
	suite.Equal(int32(0), suite.hits.Load())
}

func TestDetailMessage(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"string detail", `{"detail":"Insufficient balance"}`, "Insufficient balance"},
		{"list detail", `{"detail":[{"msg":"a"},{"msg":"b"}]}`, "a; b"},
		{"object detail", `{"detail":{"code":7}}`, `{"code":7}`},
		{"null detail", `{"detail":null}`, DefaultErrorMessage},
		{"empty string", `{"detail":""}`, DefaultErrorMessage},
		{"no detail", `{"error":"x"}`, DefaultErrorMessage},
		{"not json", `<html>502</html>`, DefaultErrorMessage},
		{"empty body", ``, DefaultErrorMessage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetailMessage([]byte(tc.body)); got != tc.want {
				t.Errorf("DetailMessage(%q) = %q, want %q", tc.body, got, tc.want)
			}
		})
	}
}
