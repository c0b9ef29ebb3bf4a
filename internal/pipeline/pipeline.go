// Package pipeline wires the full metric catalog onto an engine seeded with
// one sanitized return series and resolves it.
package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quantrail/riskstats/internal/core"
	"github.com/quantrail/riskstats/internal/engine"
	"github.com/quantrail/riskstats/internal/series"
	"github.com/quantrail/riskstats/internal/stats"
)

// Seed and metric names. Downstream consumers rely on these names and the
// value shape each one carries.
const (
	SeedTimestamps     = "timestamps"
	SeedReturns        = "returns"
	SeedStartingEquity = "starting_equity"

	MetricPeriodsPerYear  = "periods_per_year"
	MetricAMean           = "amean"
	MetricNumPeriods      = "num_periods"
	MetricGMean           = "gmean"
	MetricStd             = "std"
	MetricSortino         = "sortino"
	MetricSharpe          = "sharpe"
	MetricEquity          = "equity"
	MetricKRatio          = "k_ratio"
	MetricRollingDD       = "rolling_dd"
	MetricMaxDDPct        = "mdd_pct"
	MetricMaxDDDate       = "mdd_date"
	MetricMaxDDStart      = "mdd_start"
	MetricMAR             = "mar"
	MetricDates3Yr        = "dates_3yr"
	MetricReturns3Yr      = "returns_3yr"
	MetricEquity3Yr       = "equity_3yr"
	MetricRollingDD3Yr    = "rolling_dd_3yr"
	MetricMaxDDPct3Yr     = "mdd_pct_3yr"
	MetricMaxDDDate3Yr    = "mdd_date_3yr"
	MetricMaxDDStart3Yr   = "mdd_start_3yr"
	MetricCalmar          = "calmar"
	MetricBucketedReturns = "bucketed_returns"
	MetricAnnualReturns   = "annual_returns"
)

// Options selects the sanitization policy and K-ratio weighting.
type Options struct {
	// LeadingToZero zeroes non-finite entries before the first finite
	// return instead of dropping them.
	LeadingToZero bool
	// InteriorToZero zeroes remaining non-finite entries instead of
	// dropping them.
	InteriorToZero bool
	// KRatioHalfLifeYears enables the exponentially weighted K-ratio when
	// positive; zero selects the unweighted form.
	KRatioHalfLifeYears float64
}

// DefaultOptions matches the reference policy: drop leading garbage, zero
// interior garbage, unweighted K-ratio.
func DefaultOptions() Options {
	return Options{LeadingToZero: false, InteriorToZero: true}
}

// Compute sanitizes the input series, seeds an engine, registers the whole
// catalog and resolves it. The returned engine holds the full name→value
// map. Structural precondition violations (misaligned slices, non-monotonic
// timestamps, non-positive starting equity) fail immediately with a
// CONTRACT_VIOLATION-coded error; numeric degeneracies instead surface as
// NaN metric values.
func Compute(timestamps []time.Time, returns []float64, startingEquity float64, opts Options, logger ...*zap.Logger) (*engine.Engine, error) {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}

	if startingEquity <= 0 {
		return nil, core.WrapError(core.ErrContractViolation,
			fmt.Errorf("starting equity must be positive, got %v", startingEquity))
	}
	if len(timestamps) != len(returns) {
		return nil, core.WrapError(core.ErrContractViolation,
			fmt.Errorf("timestamps (%d) and returns (%d) must be equal length", len(timestamps), len(returns)))
	}
	if !series.IsStrictlyIncreasing(timestamps) {
		return nil, core.WrapError(core.ErrContractViolation,
			fmt.Errorf("timestamps must be strictly increasing with no duplicates"))
	}

	ts, rs := series.Sanitize(timestamps, returns, opts.LeadingToZero, opts.InteriorToZero)
	l.Debug("series sanitized",
		zap.Int("input_rows", len(returns)),
		zap.Int("kept_rows", len(rs)))

	eng, err := engine.New(map[string]engine.Value{
		SeedTimestamps:     engine.Times(ts),
		SeedReturns:        engine.Floats(rs),
		SeedStartingEquity: engine.Scalar(startingEquity),
	}, l)
	if err != nil {
		return nil, err
	}

	registerCatalog(eng, opts)

	if err := eng.ResolveAll(); err != nil {
		return nil, err
	}
	l.Debug("metrics resolved", zap.Int("metrics", len(eng.Registered())))
	return eng, nil
}

// registerCatalog declares every metric recipe with its dependency edges.
func registerCatalog(eng *engine.Engine, opts Options) {
	eng.Register(MetricPeriodsPerYear, func(args []engine.Value) (engine.Value, error) {
		ts, err := args[0].AsTimes()
		if err != nil {
			return engine.Value{}, err
		}
		return engine.Scalar(stats.PeriodsPerYear(ts)), nil
	}, SeedTimestamps)

	eng.Register(MetricAMean, func(args []engine.Value) (engine.Value, error) {
		rs, err := args[0].AsFloats()
		if err != nil {
			return engine.Value{}, err
		}
		ppy, err := args[1].AsScalar()
		if err != nil {
			return engine.Value{}, err
		}
		return engine.Scalar(stats.AnnualizedMean(rs, ppy)), nil
	}, SeedReturns, MetricPeriodsPerYear)

	eng.Register(MetricNumPeriods, func(args []engine.Value) (engine.Value, error) {
		ts, err := args[0].AsTimes()
		if err != nil {
			return engine.Value{}, err
		}
		ppy, err := args[1].AsScalar()
		if err != nil {
			return engine.Value{}, err
		}
		return engine.Scalar(stats.NumPeriods(ts, ppy)), nil
	}, SeedTimestamps, MetricPeriodsPerYear)

	eng.Register(MetricGMean, gmeanRecipe, SeedTimestamps, SeedReturns, MetricPeriodsPerYear)

	eng.Register(MetricStd, func(args []engine.Value) (engine.Value, error) {
		rs, err := args[0].AsFloats()
		if err != nil {
			return engine.Value{}, err
		}
		return engine.Scalar(stats.StdDev(rs)), nil
	}, SeedReturns)

	eng.Register(MetricSortino, ratioRecipe(stats.Sortino), SeedReturns, MetricAMean, MetricPeriodsPerYear)
	eng.Register(MetricSharpe, ratioRecipe(stats.Sharpe), SeedReturns, MetricAMean, MetricPeriodsPerYear)

	eng.Register(MetricEquity, equityRecipe, SeedTimestamps, SeedStartingEquity, SeedReturns)

	eng.Register(MetricKRatio, func(args []engine.Value) (engine.Value, error) {
		eq, err := args[0].AsFloats()
		if err != nil {
			return engine.Value{}, err
		}
		ppy, err := args[1].AsScalar()
		if err != nil {
			return engine.Value{}, err
		}
		if opts.KRatioHalfLifeYears > 0 {
			return engine.Scalar(stats.WeightedKRatio(eq, ppy, opts.KRatioHalfLifeYears)), nil
		}
		return engine.Scalar(stats.KRatio(eq, ppy)), nil
	}, MetricEquity, MetricPeriodsPerYear)

	eng.Register(MetricRollingDD, rollingDDRecipe, SeedTimestamps, MetricEquity)
	eng.Register(MetricMaxDDPct, maxDDPctRecipe, MetricRollingDD)
	eng.Register(MetricMaxDDDate, maxDDDateRecipe, MetricRollingDD)
	eng.Register(MetricMaxDDStart, maxDDStartRecipe, MetricRollingDD, MetricMaxDDDate)

	eng.Register(MetricMAR, marRecipe, SeedReturns, MetricPeriodsPerYear, MetricMaxDDPct)

	eng.Register(MetricDates3Yr, func(args []engine.Value) (engine.Value, error) {
		ts, err := args[0].AsTimes()
		if err != nil {
			return engine.Value{}, err
		}
		return engine.Times(ts[stats.ThreeYearStart(ts):]), nil
	}, SeedTimestamps)

	eng.Register(MetricReturns3Yr, func(args []engine.Value) (engine.Value, error) {
		ts, err := args[0].AsTimes()
		if err != nil {
			return engine.Value{}, err
		}
		rs, err := args[1].AsFloats()
		if err != nil {
			return engine.Value{}, err
		}
		return engine.Floats(rs[stats.ThreeYearStart(ts):]), nil
	}, SeedTimestamps, SeedReturns)

	eng.Register(MetricEquity3Yr, equityRecipe, MetricDates3Yr, SeedStartingEquity, MetricReturns3Yr)
	eng.Register(MetricRollingDD3Yr, rollingDDRecipe, MetricDates3Yr, MetricEquity3Yr)
	eng.Register(MetricMaxDDPct3Yr, maxDDPctRecipe, MetricRollingDD3Yr)
	eng.Register(MetricMaxDDDate3Yr, maxDDDateRecipe, MetricRollingDD3Yr)
	eng.Register(MetricMaxDDStart3Yr, maxDDStartRecipe, MetricRollingDD3Yr, MetricMaxDDDate3Yr)
	eng.Register(MetricCalmar, marRecipe, MetricReturns3Yr, MetricPeriodsPerYear, MetricMaxDDPct3Yr)

	eng.Register(MetricBucketedReturns, func(args []engine.Value) (engine.Value, error) {
		ts, err := args[0].AsTimes()
		if err != nil {
			return engine.Value{}, err
		}
		rs, err := args[1].AsFloats()
		if err != nil {
			return engine.Value{}, err
		}
		years, _, bucketRS := stats.BucketByYear(ts, rs)
		return engine.Buckets(years, bucketRS), nil
	}, SeedTimestamps, SeedReturns)

	eng.Register(MetricAnnualReturns, func(args []engine.Value) (engine.Value, error) {
		ts, err := args[0].AsTimes()
		if err != nil {
			return engine.Value{}, err
		}
		rs, err := args[1].AsFloats()
		if err != nil {
			return engine.Value{}, err
		}
		ppy, err := args[2].AsScalar()
		if err != nil {
			return engine.Value{}, err
		}
		years, values := stats.AnnualReturns(ts, rs, ppy)
		return engine.Annual(years, values), nil
	}, SeedTimestamps, SeedReturns, MetricPeriodsPerYear)
}

// Shared recipe bodies for the all-time and trailing-3yr metric families.

func gmeanRecipe(args []engine.Value) (engine.Value, error) {
	ts, err := args[0].AsTimes()
	if err != nil {
		return engine.Value{}, err
	}
	rs, err := args[1].AsFloats()
	if err != nil {
		return engine.Value{}, err
	}
	ppy, err := args[2].AsScalar()
	if err != nil {
		return engine.Value{}, err
	}
	return engine.Scalar(stats.GeometricMean(ts, rs, ppy)), nil
}

func ratioRecipe(fn func(returns []float64, annualizedMean, periodsPerYear float64) float64) engine.ComputeFunc {
	return func(args []engine.Value) (engine.Value, error) {
		rs, err := args[0].AsFloats()
		if err != nil {
			return engine.Value{}, err
		}
		mean, err := args[1].AsScalar()
		if err != nil {
			return engine.Value{}, err
		}
		ppy, err := args[2].AsScalar()
		if err != nil {
			return engine.Value{}, err
		}
		return engine.Scalar(fn(rs, mean, ppy)), nil
	}
}

func equityRecipe(args []engine.Value) (engine.Value, error) {
	if _, err := args[0].AsTimes(); err != nil {
		return engine.Value{}, err
	}
	start, err := args[1].AsScalar()
	if err != nil {
		return engine.Value{}, err
	}
	rs, err := args[2].AsFloats()
	if err != nil {
		return engine.Value{}, err
	}
	return engine.Floats(stats.Equity(rs, start)), nil
}

func rollingDDRecipe(args []engine.Value) (engine.Value, error) {
	ts, err := args[0].AsTimes()
	if err != nil {
		return engine.Value{}, err
	}
	eq, err := args[1].AsFloats()
	if err != nil {
		return engine.Value{}, err
	}
	return engine.Curve(ts, stats.RollingDrawdown(eq)), nil
}

func maxDDPctRecipe(args []engine.Value) (engine.Value, error) {
	_, dd, err := args[0].AsCurve()
	if err != nil {
		return engine.Value{}, err
	}
	return engine.Scalar(stats.MaxDrawdown(dd)), nil
}

func maxDDDateRecipe(args []engine.Value) (engine.Value, error) {
	dates, dd, err := args[0].AsCurve()
	if err != nil {
		return engine.Value{}, err
	}
	idx := stats.MaxDrawdownIndex(dd)
	if idx < 0 {
		return engine.Time(time.Time{}), nil
	}
	return engine.Time(dates[idx]), nil
}

func maxDDStartRecipe(args []engine.Value) (engine.Value, error) {
	dates, dd, err := args[0].AsCurve()
	if err != nil {
		return engine.Value{}, err
	}
	trough, err := args[1].AsTime()
	if err != nil {
		return engine.Value{}, err
	}
	if trough.IsZero() {
		return engine.Time(time.Time{}), nil
	}
	troughIdx := -1
	for i, d := range dates {
		if d.Equal(trough) {
			troughIdx = i
			break
		}
	}
	idx := stats.DrawdownStartIndex(dd, troughIdx)
	if idx < 0 {
		return engine.Time(time.Time{}), nil
	}
	return engine.Time(dates[idx]), nil
}

func marRecipe(args []engine.Value) (engine.Value, error) {
	rs, err := args[0].AsFloats()
	if err != nil {
		return engine.Value{}, err
	}
	ppy, err := args[1].AsScalar()
	if err != nil {
		return engine.Value{}, err
	}
	mdd, err := args[2].AsScalar()
	if err != nil {
		return engine.Value{}, err
	}
	return engine.Scalar(stats.MAR(rs, ppy, mdd)), nil
}
