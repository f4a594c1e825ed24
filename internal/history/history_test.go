package history

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type HistoryTestSuite struct {
	suite.Suite
	ops []types.Operation
}

func TestHistorySuite(t *testing.T) {
	suite.Run(t, new(HistoryTestSuite))
}

func (suite *HistoryTestSuite) SetupTest() {
	suite.ops = []types.Operation{
		{ID: 1, Timestamp: "2025-10-23 21:40:19.462254", Type: "cross_exchange", Strategy: "spread", Symbol: "BTCUSDT", ExchangeBuy: "binance", ExchangeSell: "kraken", Quantity: 0.5, EntryPrice: 67000.1, ExitPrice: 67050.25, PnL: 25.07, PnLPercent: 0.07, SpreadBps: 7.5, FeesPaid: 1.2, IsOpen: false},
		{ID: 2, Timestamp: "2025-10-23 21:41:00", Type: "triangular", Strategy: "tri", Symbol: "ETHUSDT", ExchangeBuy: "okx", ExchangeSell: "okx", Quantity: 2, EntryPrice: 3500, ExitPrice: 0, PnL: 0, PnLPercent: 0, SpreadBps: 3, FeesPaid: 0.4, IsOpen: true},
		{ID: 3, Timestamp: "2025-10-23T21:42:00Z", Type: "cross_exchange", Strategy: "spread", Symbol: "SOLUSDT", ExchangeBuy: "kraken", ExchangeSell: "bybit", Quantity: 10, EntryPrice: 150, ExitPrice: 149, PnL: -10, PnLPercent: -0.66, SpreadBps: 4, FeesPaid: 0.3, IsOpen: false},
		{ID: 4, Timestamp: "2025-10-23 21:43:00", Type: "cross_exchange", Strategy: "spread", Symbol: "BTCUSDT", ExchangeBuy: "bybit", ExchangeSell: "Binance", Quantity: 0.1, EntryPrice: 67010, ExitPrice: 67020, PnL: 1, PnLPercent: 0.01, SpreadBps: 2, FeesPaid: 0.1, IsOpen: false},
	}
}

func ids(ops []types.Operation) []int64 {
	out := make([]int64, len(ops))
	for i, op := range ops {
		out[i] = op.ID
	}

	return out
}

func (suite *HistoryTestSuite) TestZeroFilterMatchesAll() {
	suite.Equal([]int64{1, 2, 3, 4}, ids(Filter{}.Apply(suite.ops)))
}

func (suite *HistoryTestSuite) TestStatusFilter() {
	suite.Equal([]int64{2}, ids(Filter{Status: StatusOpen}.Apply(suite.ops)))
	suite.Equal([]int64{1, 3, 4}, ids(Filter{Status: StatusClosed}.Apply(suite.ops)))
	suite.Equal([]int64{1, 2, 3, 4}, ids(Filter{Status: StatusAll}.Apply(suite.ops)))
}

func (suite *HistoryTestSuite) TestExchangeFilterMatchesEitherSideExactly() {
	suite.Equal([]int64{1, 3}, ids(Filter{Exchange: "kraken"}.Apply(suite.ops)))
	suite.Equal([]int64{1}, ids(Filter{Exchange: "binance"}.Apply(suite.ops)))
	suite.Equal([]int64{1, 2, 3, 4}, ids(Filter{Exchange: ExchangeAll}.Apply(suite.ops)))
}

func (suite *HistoryTestSuite) TestTextFilterIsCaseInsensitive() {
	suite.Equal([]int64{1, 4}, ids(Filter{Text: "binance"}.Apply(suite.ops)))
	suite.Equal([]int64{1, 4}, ids(Filter{Text: "btc"}.Apply(suite.ops)))
	suite.Equal([]int64{4}, ids(Filter{Text: "btc", Exchange: "bybit"}.Apply(suite.ops)))
}

func (suite *HistoryTestSuite) TestExchanges() {
	suite.Equal([]string{"binance", "kraken", "okx", "bybit", "Binance"}, Exchanges(suite.ops))
}

func (suite *HistoryTestSuite) TestWinRate() {
	suite.True(decimal.RequireFromString("66.6666666666666667").Sub(WinRate(suite.ops)).Abs().LessThan(decimal.RequireFromString("0.0001")))
	suite.True(WinRate(nil).IsZero())
	suite.True(WinRate(suite.ops[1:2]).IsZero())
}

func (suite *HistoryTestSuite) TestSummarize() {
	summary := Summarize(suite.ops)
	suite.Equal(4, summary.Count)
	suite.Equal(1, summary.OpenCount)
	suite.Equal(3, summary.ClosedCount)
	suite.Equal("16.07", summary.TotalProfit.StringFixed(2))
}

func (suite *HistoryTestSuite) TestWriteCSV() {
	var buf bytes.Buffer
	suite.Require().NoError(WriteCSV(&buf, suite.ops, time.UTC))

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	suite.Require().NoError(err)
	suite.Require().Len(rows, len(suite.ops)+1)

	suite.Equal("ID,Timestamp,Type,Strategy,Symbol,Exchange Buy,Exchange Sell,Quantity,Entry Price,Exit Price,PnL,PnL %,Spread BPS,Fees,Status", strings.Join(rows[0], ","))
	suite.Equal([]string{"1", "2025-10-23 21:40:19", "cross_exchange", "spread", "BTCUSDT", "binance", "kraken", "0.5", "67000.1", "67050.25", "25.07", "0.07", "7.5", "1.2", "CLOSED"}, rows[1])
	suite.Equal("OPEN", rows[2][14])
	suite.Equal("2025-10-23 21:42:00", rows[3][1])
}

func (suite *HistoryTestSuite) TestWriteCSVRendersInLocation() {
	loc := time.FixedZone("UTC+3", 3*3600)

	var buf bytes.Buffer
	suite.Require().NoError(WriteCSV(&buf, suite.ops[:1], loc))
	suite.Contains(buf.String(), "2025-10-24 00:40:19")
}

func (suite *HistoryTestSuite) TestCSVFileName() {
	suite.Equal("arbitrage-history-2024-03-05.csv", CSVFileName(time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC)))
}
