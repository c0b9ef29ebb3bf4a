package pipeline_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantrail/riskstats/internal/core"
	"github.com/quantrail/riskstats/internal/engine"
	"github.com/quantrail/riskstats/internal/pipeline"
)

func d(y, m, dd int) time.Time {
	return time.Date(y, time.Month(m), dd, 0, 0, 0, 0, time.UTC)
}

func scalar(t *testing.T, eng *engine.Engine, name string) float64 {
	t.Helper()
	v, err := eng.Get(name)
	require.NoError(t, err, name)
	s, err := v.AsScalar()
	require.NoError(t, err, name)
	return s
}

var (
	e2eTimestamps = []time.Time{d(2015, 1, 1), d(2015, 3, 1), d(2015, 5, 1), d(2015, 9, 1)}
	e2eReturns    = []float64{0.01, 0.02, math.NaN(), -0.015}
)

func TestCompute_EndToEnd(t *testing.T) {
	eng, err := pipeline.Compute(e2eTimestamps, e2eReturns, 1e6, pipeline.DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 252.0/59.0, scalar(t, eng, pipeline.MetricPeriodsPerYear), 1e-9)
	assert.InDelta(t, 0.021061, scalar(t, eng, pipeline.MetricGMean), 1e-5)
	assert.InDelta(t, 0.599382, scalar(t, eng, pipeline.MetricSharpe), 1e-5)
	assert.InDelta(t, 0.016017, scalar(t, eng, pipeline.MetricAMean), 1e-5)
	assert.InDelta(t, 1.193201, scalar(t, eng, pipeline.MetricSortino), 1e-5)
	assert.InDelta(t, 0.012930, scalar(t, eng, pipeline.MetricStd), 1e-5)

	// The embedded NaN is zeroed by the default interior policy.
	v, err := eng.Get(pipeline.MetricReturns3Yr)
	require.NoError(t, err)
	rs, err := v.AsFloats()
	require.NoError(t, err)
	assert.Equal(t, []float64{0.01, 0.02, 0, -0.015}, rs)
}

func TestCompute_DrawdownFamily(t *testing.T) {
	eng, err := pipeline.Compute(e2eTimestamps, e2eReturns, 1e6, pipeline.DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 0.015, scalar(t, eng, pipeline.MetricMaxDDPct), 1e-9)
	assert.InDelta(t, 1.067797, scalar(t, eng, pipeline.MetricMAR), 1e-5)

	v, err := eng.Get(pipeline.MetricMaxDDDate)
	require.NoError(t, err)
	trough, err := v.AsTime()
	require.NoError(t, err)
	assert.True(t, trough.Equal(d(2015, 9, 1)))

	v, err = eng.Get(pipeline.MetricMaxDDStart)
	require.NoError(t, err)
	start, err := v.AsTime()
	require.NoError(t, err)
	assert.True(t, start.Equal(d(2015, 5, 1)))

	dates, dd, err := mustCurve(eng, pipeline.MetricRollingDD)
	require.NoError(t, err)
	require.Len(t, dd, 4)
	assert.Equal(t, len(dates), len(dd))
	for i, v := range dd {
		assert.GreaterOrEqual(t, v, 0.0, "dd[%d]", i)
	}
}

func mustCurve(eng *engine.Engine, name string) ([]time.Time, []float64, error) {
	v, err := eng.Get(name)
	if err != nil {
		return nil, nil, err
	}
	return v.AsCurve()
}

func TestCompute_ThreeYearWindowMatchesAllTimeForShortSeries(t *testing.T) {
	eng, err := pipeline.Compute(e2eTimestamps, e2eReturns, 1e6, pipeline.DefaultOptions())
	require.NoError(t, err)

	// Under three years of data: the windowed family equals the all-time one.
	assert.Equal(t, scalar(t, eng, pipeline.MetricMaxDDPct), scalar(t, eng, pipeline.MetricMaxDDPct3Yr))
	assert.Equal(t, scalar(t, eng, pipeline.MetricMAR), scalar(t, eng, pipeline.MetricCalmar))

	v, err := eng.Get(pipeline.MetricDates3Yr)
	require.NoError(t, err)
	ts, err := v.AsTimes()
	require.NoError(t, err)
	assert.Len(t, ts, 4)
}

func TestCompute_ThreeYearWindowTrimsOldData(t *testing.T) {
	ts := []time.Time{
		d(2018, 1, 1), d(2019, 1, 1), d(2020, 1, 1),
		d(2021, 1, 2), d(2022, 1, 1), d(2023, 1, 1),
	}
	rs := []float64{0.10, -0.20, 0.05, 0.03, -0.08, 0.04}

	eng, err := pipeline.Compute(ts, rs, 1e6, pipeline.DefaultOptions())
	require.NoError(t, err)

	v, err := eng.Get(pipeline.MetricDates3Yr)
	require.NoError(t, err)
	kept, err := v.AsTimes()
	require.NoError(t, err)
	// Cutoff is 2020-01-01; only strictly later timestamps remain.
	require.Len(t, kept, 3)
	assert.True(t, kept[0].Equal(d(2021, 1, 2)))

	// The -0.20 crash predates the window, so the windowed drawdown is
	// strictly smaller than the all-time one.
	assert.Less(t,
		scalar(t, eng, pipeline.MetricMaxDDPct3Yr),
		scalar(t, eng, pipeline.MetricMaxDDPct))
}

func TestCompute_AnnualBuckets(t *testing.T) {
	ts := []time.Time{
		d(2020, 3, 1), d(2020, 9, 1),
		d(2021, 3, 1), d(2021, 9, 1),
	}
	rs := []float64{0.01, 0.02, -0.01, 0.03}

	eng, err := pipeline.Compute(ts, rs, 1e6, pipeline.DefaultOptions())
	require.NoError(t, err)

	v, err := eng.Get(pipeline.MetricBucketedReturns)
	require.NoError(t, err)
	years, series, err := v.AsBuckets()
	require.NoError(t, err)
	assert.Equal(t, []int{2020, 2021}, years)
	assert.Equal(t, []float64{0.01, 0.02}, series[0])
	assert.Equal(t, []float64{-0.01, 0.03}, series[1])

	v, err = eng.Get(pipeline.MetricAnnualReturns)
	require.NoError(t, err)
	annYears, values, err := v.AsAnnual()
	require.NoError(t, err)
	assert.Equal(t, years, annYears)
	require.Len(t, values, 2)
	assert.Positive(t, values[0])
}

func TestCompute_ContractViolations(t *testing.T) {
	ts := []time.Time{d(2020, 1, 1), d(2020, 1, 2)}
	rs := []float64{0.01, 0.02}

	_, err := pipeline.Compute(ts, rs, 0, pipeline.DefaultOptions())
	assert.ErrorIs(t, err, core.ErrContractViolation, "non-positive starting equity")

	_, err = pipeline.Compute(ts, rs[:1], 1e6, pipeline.DefaultOptions())
	assert.ErrorIs(t, err, core.ErrContractViolation, "length mismatch")

	_, err = pipeline.Compute([]time.Time{d(2020, 1, 2), d(2020, 1, 1)}, rs, 1e6, pipeline.DefaultOptions())
	assert.ErrorIs(t, err, core.ErrContractViolation, "non-monotonic timestamps")

	_, err = pipeline.Compute([]time.Time{d(2020, 1, 1), d(2020, 1, 1)}, rs, 1e6, pipeline.DefaultOptions())
	assert.ErrorIs(t, err, core.ErrContractViolation, "duplicate timestamps")
}

func TestCompute_PathologicalInputYieldsNaNsNotErrors(t *testing.T) {
	ts := []time.Time{d(2020, 1, 1), d(2020, 1, 2), d(2020, 1, 3)}
	rs := []float64{math.NaN(), math.NaN(), math.NaN()}

	eng, err := pipeline.Compute(ts, rs, 1e6, pipeline.DefaultOptions())
	require.NoError(t, err, "degenerate numerics must not abort the run")

	assert.True(t, math.IsNaN(scalar(t, eng, pipeline.MetricStd)))
	assert.True(t, math.IsNaN(scalar(t, eng, pipeline.MetricGMean)))
	assert.True(t, math.IsNaN(scalar(t, eng, pipeline.MetricSharpe)))
}

func TestCompute_LeadingPolicy(t *testing.T) {
	ts := []time.Time{d(2020, 1, 1), d(2020, 1, 2), d(2020, 1, 3)}
	rs := []float64{math.NaN(), 0.01, 0.02}

	opts := pipeline.DefaultOptions()
	eng, err := pipeline.Compute(ts, rs, 1e6, opts)
	require.NoError(t, err)
	v, _ := eng.Get(pipeline.SeedReturns)
	kept, _ := v.AsFloats()
	assert.Equal(t, []float64{0.01, 0.02}, kept, "leading NaN dropped by default")

	opts.LeadingToZero = true
	eng, err = pipeline.Compute(ts, rs, 1e6, opts)
	require.NoError(t, err)
	v, _ = eng.Get(pipeline.SeedReturns)
	kept, _ = v.AsFloats()
	assert.Equal(t, []float64{0, 0.01, 0.02}, kept, "leading NaN zeroed, length preserved")
}

func TestCompute_WeightedKRatioOption(t *testing.T) {
	ts := []time.Time{
		d(2020, 1, 1), d(2020, 1, 2), d(2020, 1, 3),
		d(2020, 1, 6), d(2020, 1, 7), d(2020, 1, 8),
	}
	rs := []float64{0.01, -0.005, 0.02, 0.015, -0.01, 0.012}

	opts := pipeline.DefaultOptions()
	unweighted, err := pipeline.Compute(ts, rs, 100, opts)
	require.NoError(t, err)

	opts.KRatioHalfLifeYears = 0.5
	weighted, err := pipeline.Compute(ts, rs, 100, opts)
	require.NoError(t, err)

	ku := scalar(t, unweighted, pipeline.MetricKRatio)
	kw := scalar(t, weighted, pipeline.MetricKRatio)
	assert.False(t, math.IsNaN(ku))
	assert.False(t, math.IsNaN(kw))
	assert.NotEqual(t, ku, kw)
}

func TestCompute_SnapshotCoversWholeCatalog(t *testing.T) {
	eng, err := pipeline.Compute(e2eTimestamps, e2eReturns, 1e6, pipeline.DefaultOptions())
	require.NoError(t, err)

	snap := eng.Snapshot()
	for _, name := range eng.Registered() {
		_, ok := snap[name]
		assert.True(t, ok, "metric %q missing from snapshot", name)
	}
	// 3 seeds + 24 registered metrics
	assert.Len(t, snap, 27)
}
