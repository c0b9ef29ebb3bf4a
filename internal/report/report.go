// Package report renders a resolved metric snapshot as plain text for the
// CLI. Value shapes follow the catalog conventions: rolling drawdowns are
// (dates, magnitudes) curves, annual figures are (years, values) pairs.
package report

import (
	"fmt"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/quantrail/riskstats/internal/engine"
	"github.com/quantrail/riskstats/internal/pipeline"
)

// scalar rows in display order, with human labels
var scalarRows = []struct {
	name    string
	label   string
	percent bool
}{
	{pipeline.MetricGMean, "Annual return (geometric)", true},
	{pipeline.MetricAMean, "Annual return (arithmetic)", true},
	{pipeline.MetricStd, "Period volatility", true},
	{pipeline.MetricSharpe, "Sharpe ratio", false},
	{pipeline.MetricSortino, "Sortino ratio", false},
	{pipeline.MetricKRatio, "K-ratio", false},
	{pipeline.MetricMAR, "MAR ratio", false},
	{pipeline.MetricCalmar, "Calmar ratio (3yr)", false},
	{pipeline.MetricMaxDDPct, "Max drawdown", true},
	{pipeline.MetricMaxDDPct3Yr, "Max drawdown (3yr)", true},
	{pipeline.MetricPeriodsPerYear, "Periods per year", false},
	{pipeline.MetricNumPeriods, "Periods spanned", false},
}

var dateRows = []struct {
	name  string
	label string
}{
	{pipeline.MetricMaxDDStart, "Max drawdown began"},
	{pipeline.MetricMaxDDDate, "Max drawdown trough"},
	{pipeline.MetricMaxDDStart3Yr, "3yr drawdown began"},
	{pipeline.MetricMaxDDDate3Yr, "3yr drawdown trough"},
}

// Render formats the engine's resolved metrics as an aligned table.
func Render(eng *engine.Engine) (string, error) {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	for _, row := range scalarRows {
		v, err := eng.Get(row.name)
		if err != nil {
			return "", err
		}
		s, err := v.AsScalar()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(w, "%s\t%s\n", row.label, formatScalar(s, row.percent))
	}

	for _, row := range dateRows {
		v, err := eng.Get(row.name)
		if err != nil {
			return "", err
		}
		ts, err := v.AsTime()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(w, "%s\t%s\n", row.label, formatDate(ts))
	}

	if err := writeAnnual(w, eng); err != nil {
		return "", err
	}

	if err := w.Flush(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeAnnual(w *tabwriter.Writer, eng *engine.Engine) error {
	v, err := eng.Get(pipeline.MetricAnnualReturns)
	if err != nil {
		return err
	}
	years, values, err := v.AsAnnual()
	if err != nil {
		return err
	}
	for i, y := range years {
		fmt.Fprintf(w, "Return %d\t%s\n", y, formatScalar(values[i], true))
	}
	return nil
}

func formatScalar(v float64, percent bool) string {
	if math.IsNaN(v) {
		return "-"
	}
	if percent {
		return fmt.Sprintf("%.2f%%", v*100)
	}
	return fmt.Sprintf("%.4f", v)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
