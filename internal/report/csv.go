package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"quantlab/types"
)

// WriteTradesCSV writes the trade log as CSV with a header row.
func WriteTradesCSV(w io.Writer, trades []types.Trade) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"entry_date", "exit_date", "entry_price", "exit_price", "shares",
		"entry_value", "exit_value", "profit", "profit_pct", "duration_days",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, t := range trades {
		row := []string{
			t.EntryDate.Format("2006-01-02T15:04:05Z07:00"),
			t.ExitDate.Format("2006-01-02T15:04:05Z07:00"),
			t.EntryPrice.String(),
			t.ExitPrice.String(),
			t.Shares.String(),
			t.EntryValue.String(),
			t.ExitValue.String(),
			t.Profit.String(),
			strconv.FormatFloat(t.ProfitPct, 'f', -1, 64),
			strconv.FormatFloat(t.Duration.Hours()/24, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
