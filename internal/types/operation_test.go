package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationListDecodesBothShapes(t *testing.T) {
	var bare OperationList
	require.NoError(t, json.Unmarshal([]byte(`[{"id":1,"symbol":"BTCUSDT"},{"id":2,"symbol":"ETHUSDT"}]`), &bare))
	require.Len(t, bare.Operations, 2)
	assert.Equal(t, "ETHUSDT", bare.Operations[1].Symbol)

	var envelope OperationList
	require.NoError(t, json.Unmarshal([]byte(`{"operations":[{"id":7,"is_open":true}]}`), &envelope))
	require.Len(t, envelope.Operations, 1)
	assert.Equal(t, int64(7), envelope.Operations[0].ID)
	assert.Equal(t, "OPEN", envelope.Operations[0].StatusLabel())

	var empty OperationList
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.Empty(t, empty.Operations)
}

func TestOperationTime(t *testing.T) {
	op := Operation{Timestamp: "2025-10-23 21:40:19"}
	assert.True(t, time.Date(2025, 10, 23, 21, 40, 19, 0, time.UTC).Equal(op.Time()))
	assert.Equal(t, "CLOSED", op.StatusLabel())
}

func TestHistoryParams(t *testing.T) {
	assert.Empty(t, HistoryParams{}.QueryParams())
	assert.Equal(t, map[string]string{
		"limit":    "50",
		"symbol":   "BTCUSDT",
		"exchange": "kraken",
	}, HistoryParams{Limit: 50, Symbol: "BTCUSDT", Exchange: "kraken"}.QueryParams())
}
