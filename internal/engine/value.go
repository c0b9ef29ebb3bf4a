package engine

import (
	"fmt"
	"time"

	"github.com/quantrail/riskstats/internal/core"
)

// Kind discriminates the closed set of metric value shapes.
type Kind int

const (
	// KindScalar is a single float64 (ratios, annualized returns).
	KindScalar Kind = iota
	// KindTime is a single timestamp (drawdown dates).
	KindTime
	// KindTimes is an ordered timestamp sequence.
	KindTimes
	// KindFloats is an ordered float sequence aligned with some timestamp sequence.
	KindFloats
	// KindCurve is a (dates, values) pair, e.g. a rolling drawdown.
	KindCurve
	// KindBuckets is a (years, per-year return arrays) pair.
	KindBuckets
	// KindAnnual is a (years, per-year scalars) pair.
	KindAnnual
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindTime:
		return "time"
	case KindTimes:
		return "times"
	case KindFloats:
		return "floats"
	case KindCurve:
		return "curve"
	case KindBuckets:
		return "buckets"
	case KindAnnual:
		return "annual"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is a tagged union holding one metric result. Only the fields
// belonging to Kind are meaningful; accessors enforce the tag.
type Value struct {
	kind Kind

	scalar float64
	time   time.Time
	times  []time.Time
	floats []float64
	years  []int
	series [][]float64
}

// Scalar wraps a single float.
func Scalar(v float64) Value { return Value{kind: KindScalar, scalar: v} }

// Time wraps a single timestamp. The zero time denotes "undefined".
func Time(t time.Time) Value { return Value{kind: KindTime, time: t} }

// Times wraps a timestamp sequence.
func Times(ts []time.Time) Value { return Value{kind: KindTimes, times: ts} }

// Floats wraps a float sequence.
func Floats(vs []float64) Value { return Value{kind: KindFloats, floats: vs} }

// Curve wraps an aligned (dates, values) pair.
func Curve(dates []time.Time, values []float64) Value {
	return Value{kind: KindCurve, times: dates, floats: values}
}

// Buckets wraps a (years, per-year return arrays) pair.
func Buckets(years []int, series [][]float64) Value {
	return Value{kind: KindBuckets, years: years, series: series}
}

// Annual wraps a (years, per-year scalars) pair.
func Annual(years []int, values []float64) Value {
	return Value{kind: KindAnnual, years: years, floats: values}
}

// Kind reports which shape the value holds.
func (v Value) Kind() Kind { return v.kind }

func (v Value) mismatch(want Kind) error {
	return core.WrapError(core.ErrContractViolation,
		fmt.Errorf("value is %s, want %s", v.kind, want))
}

// AsScalar returns the scalar payload.
func (v Value) AsScalar() (float64, error) {
	if v.kind != KindScalar {
		return 0, v.mismatch(KindScalar)
	}
	return v.scalar, nil
}

// AsTime returns the timestamp payload.
func (v Value) AsTime() (time.Time, error) {
	if v.kind != KindTime {
		return time.Time{}, v.mismatch(KindTime)
	}
	return v.time, nil
}

// AsTimes returns the timestamp-sequence payload.
func (v Value) AsTimes() ([]time.Time, error) {
	if v.kind != KindTimes {
		return nil, v.mismatch(KindTimes)
	}
	return v.times, nil
}

// AsFloats returns the float-sequence payload.
func (v Value) AsFloats() ([]float64, error) {
	if v.kind != KindFloats {
		return nil, v.mismatch(KindFloats)
	}
	return v.floats, nil
}

// AsCurve returns the (dates, values) payload.
func (v Value) AsCurve() ([]time.Time, []float64, error) {
	if v.kind != KindCurve {
		return nil, nil, v.mismatch(KindCurve)
	}
	return v.times, v.floats, nil
}

// AsBuckets returns the (years, per-year arrays) payload.
func (v Value) AsBuckets() ([]int, [][]float64, error) {
	if v.kind != KindBuckets {
		return nil, nil, v.mismatch(KindBuckets)
	}
	return v.years, v.series, nil
}

// AsAnnual returns the (years, per-year scalars) payload.
func (v Value) AsAnnual() ([]int, []float64, error) {
	if v.kind != KindAnnual {
		return nil, nil, v.mismatch(KindAnnual)
	}
	return v.years, v.floats, nil
}

// MustScalar is a test/report convenience that panics on kind mismatch.
func (v Value) MustScalar() float64 {
	s, err := v.AsScalar()
	if err != nil {
		panic(err)
	}
	return s
}
