package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantrail/riskstats/internal/config"
	"github.com/quantrail/riskstats/internal/logger"
	"github.com/quantrail/riskstats/internal/pipeline"
	"github.com/quantrail/riskstats/internal/report"
)

var (
	computeEquity   float64
	computeHalfLife float64
)

var computeCmd = &cobra.Command{
	Use:   "compute [returns.csv]",
	Short: "Compute metrics for a return series CSV",
	Long: `Read a two-column CSV of date,return rows (a fraction per period,
e.g. 0.01 for 1%; blank or NaN cells are allowed) and print the full
statistics table.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompute,
}

func init() {
	computeCmd.Flags().Float64Var(&computeEquity, "equity", 0, "starting equity (overrides config)")
	computeCmd.Flags().Float64Var(&computeHalfLife, "half-life", 0, "K-ratio half-life in years (overrides config)")

	rootCmd.AddCommand(computeCmd)
}

func runCompute(cmd *cobra.Command, args []string) error {
	cfg := config.Defaults()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if computeEquity > 0 {
		cfg.Input.StartingEquity = computeEquity
	}
	if computeHalfLife > 0 {
		cfg.Metrics.KRatioHalfLifeYears = computeHalfLife
	}
	if debug {
		cfg.Log.Mode = "development"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.Must(cfg.Log.Mode)
	defer log.Sync()

	timestamps, returns, err := readSeries(args[0], cfg.Input.DateLayout)
	if err != nil {
		return err
	}
	log.Debug("series loaded", zap.String("file", args[0]), zap.Int("rows", len(returns)))

	opts := pipeline.Options{
		LeadingToZero:       cfg.Sanitize.LeadingToZero,
		InteriorToZero:      cfg.Sanitize.InteriorToZero,
		KRatioHalfLifeYears: cfg.Metrics.KRatioHalfLifeYears,
	}
	eng, err := pipeline.Compute(timestamps, returns, cfg.Input.StartingEquity, opts, log)
	if err != nil {
		return err
	}

	out, err := report.Render(eng)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// readSeries parses a date,return CSV. A header row is skipped when its
// second column does not parse as a number. Blank return cells read as NaN
// so the sanitizer can apply the configured policy.
func readSeries(path, dateLayout string) ([]time.Time, []float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening series: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading series: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("series file %s is empty", path)
	}

	if _, err := strconv.ParseFloat(strings.TrimSpace(records[0][1]), 64); err != nil {
		records = records[1:] // header row
	}

	timestamps := make([]time.Time, 0, len(records))
	returns := make([]float64, 0, len(records))
	for i, rec := range records {
		ts, err := time.Parse(dateLayout, strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: bad date %q: %w", i+1, rec[0], err)
		}
		cell := strings.TrimSpace(rec[1])
		val := math.NaN()
		if cell != "" {
			val, err = strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d: bad return %q: %w", i+1, rec[1], err)
			}
		}
		timestamps = append(timestamps, ts)
		returns = append(returns, val)
	}
	return timestamps, returns, nil
}
