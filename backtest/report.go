package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/avhal/scout/shared"
)

// Record represents one triggered verdict observed during a backtest.
type Record struct {
	shared.AlertPayload

	// Index is the simulated point-in-time index of the candle the verdict
	// triggered on.
	Index int
}

// Report represents the ordered output of one backtest run.
type Report struct {
	// Instrument is the backtested instrument.
	Instrument string
	// Timeframe is the backtested timeframe.
	Timeframe shared.Timeframe
	// Start is the inclusive start of the backtested range.
	Start time.Time
	// End is the inclusive end of the backtested range.
	End time.Time
	// Candles is the number of completed candles replayed.
	Candles int
	// Records holds every triggered verdict in chronological order.
	Records []Record
	// Triggers counts triggered verdicts per strategy name.
	Triggers map[string]int
}

// String summarizes the report.
func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Backtest results for %s (%s), %s to %s, %d candles:\n",
		r.Instrument, r.Timeframe.String(), r.Start.UTC().Format(time.RFC3339),
		r.End.UTC().Format(time.RFC3339), r.Candles)

	if len(r.Records) == 0 {
		b.WriteString("no signals were generated during the backtest period\n")
		return b.String()
	}

	// Keep the summary ordering stable across runs.
	names := make([]string, 0, len(r.Triggers))
	for name := range r.Triggers {
		names = append(names, name)
	}
	sort.Strings(names)

	for idx := range names {
		fmt.Fprintf(&b, "- %s: %d signals generated\n", names[idx], r.Triggers[names[idx]])
	}

	return b.String()
}

// WriteCSV writes the report records to the provided writer as CSV.
func (r *Report) WriteCSV(w io.Writer) error {
	csvw := csv.NewWriter(w)

	err := csvw.Write([]string{"index", "time", "strategy", "instrument", "timeframe", "reason"})
	if err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for idx := range r.Records {
		record := &r.Records[idx]
		err = csvw.Write([]string{
			strconv.Itoa(record.Index),
			record.Time.UTC().Format(time.RFC3339),
			record.Strategy,
			record.Instrument,
			record.Timeframe.String(),
			record.Reason,
		})
		if err != nil {
			return fmt.Errorf("writing csv record: %w", err)
		}
	}

	csvw.Flush()
	return csvw.Error()
}
