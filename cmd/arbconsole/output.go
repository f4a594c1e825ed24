package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/shopspring/decimal"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	profitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))
)

func printTitle(w io.Writer, title string) {
	fmt.Fprintln(w, titleStyle.Render(title))
}

// kv is one labelled value of a summary block.
type kv struct {
	label string
	value string
}

func printFields(w io.Writer, fields []kv) {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.label))
	}

	for _, f := range fields {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-*s", width+1, f.label+":")), f.value)
	}
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, labelStyle.Render("(no data)"))

		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		})

	fmt.Fprintln(w, t.String())
}

// printJSON renders payloads whose shape belongs to the backend.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// mapRows renders a list of opaque records as a table with the union of their keys.
func mapRows(records []map[string]any) ([]string, [][]string) {
	keys := map[string]struct{}{}
	for _, record := range records {
		for k := range record {
			keys[k] = struct{}{}
		}
	}

	headers := make([]string, 0, len(keys))
	for k := range keys {
		headers = append(headers, k)
	}

	sort.Strings(headers)

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		row := make([]string, len(headers))
		for i, k := range headers {
			if v, ok := record[k]; ok && v != nil {
				row[i] = fmt.Sprint(v)
			}
		}

		rows = append(rows, row)
	}

	return headers, rows
}

func usd(v decimal.Decimal) string {
	return "$" + v.StringFixed(2)
}

func usdFloat(v float64) string {
	return usd(decimal.NewFromFloat(v))
}

func signed(v decimal.Decimal) string {
	text := usd(v.Abs())
	if v.IsNegative() {
		return lossStyle.Render("-" + text)
	}

	return profitStyle.Render("+" + text)
}

func orDash(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}

	return *v
}

func operationRows(ops []types.Operation) [][]string {
	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		rows = append(rows, []string{
			fmt.Sprint(op.ID),
			types.FormatLocalDateTime(op.Timestamp),
			op.Symbol,
			op.ExchangeBuy + " → " + op.ExchangeSell,
			decimal.NewFromFloat(op.Quantity).String(),
			usdFloat(op.EntryPrice),
			usdFloat(op.ExitPrice),
			signed(decimal.NewFromFloat(op.PnL)),
			decimal.NewFromFloat(op.SpreadBps).StringFixed(1),
			op.StatusLabel(),
		})
	}

	return rows
}

var operationHeaders = []string{"ID", "Time", "Symbol", "Route", "Qty", "Entry", "Exit", "PnL", "Spread (bps)", "Status"}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}

	return strings.Join(values, ", ")
}
