package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/rxtech-lab/arb-console/pkg/errors"
)

// CSVTimeLayout is the timestamp layout of the CSV export.
const CSVTimeLayout = "2006-01-02 15:04:05"

// CSVHeader is the header row of the CSV export.
var CSVHeader = []string{
	"ID", "Timestamp", "Type", "Strategy", "Symbol", "Exchange Buy", "Exchange Sell",
	"Quantity", "Entry Price", "Exit Price", "PnL", "PnL %", "Spread BPS", "Fees", "Status",
}

// WriteCSV writes ops as CSV. Timestamps are rendered in loc (UTC when nil).
func WriteCSV(w io.Writer, ops []types.Operation, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	writer := csv.NewWriter(w)

	if err := writer.Write(CSVHeader); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to write CSV header", err)
	}

	for _, op := range ops {
		if err := writer.Write(record(op, loc)); err != nil {
			return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to write operation %d", op.ID)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to flush CSV", err)
	}

	return nil
}

func record(op types.Operation, loc *time.Location) []string {
	timestamp := ""
	if t := op.Time(); !t.IsZero() {
		timestamp = t.In(loc).Format(CSVTimeLayout)
	}

	return []string{
		strconv.FormatInt(op.ID, 10),
		timestamp,
		op.Type,
		op.Strategy,
		op.Symbol,
		op.ExchangeBuy,
		op.ExchangeSell,
		formatFloat(op.Quantity),
		formatFloat(op.EntryPrice),
		formatFloat(op.ExitPrice),
		formatFloat(op.PnL),
		formatFloat(op.PnLPercent),
		formatFloat(op.SpreadBps),
		formatFloat(op.FeesPaid),
		op.StatusLabel(),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CSVFileName returns the download name for an export created at now.
func CSVFileName(now time.Time) string {
	return fmt.Sprintf("arbitrage-history-%s.csv", now.Format("2006-01-02"))
}
