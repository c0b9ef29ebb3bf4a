package stats

import (
	"math"
	"testing"
	"time"
)

func TestThreeYearStart(t *testing.T) {
	ts := []time.Time{
		d(2019, 6, 1),
		d(2020, 6, 1), // exactly on the cutoff: excluded (strictly after)
		d(2020, 6, 2),
		d(2021, 6, 1),
		d(2023, 6, 1),
	}
	if idx := ThreeYearStart(ts); idx != 2 {
		t.Errorf("ThreeYearStart = %d, want 2", idx)
	}
}

func TestThreeYearStart_AllInside(t *testing.T) {
	ts := []time.Time{d(2023, 1, 1), d(2023, 6, 1), d(2024, 1, 1)}
	if idx := ThreeYearStart(ts); idx != 0 {
		t.Errorf("ThreeYearStart = %d, want 0", idx)
	}
}

func TestThreeYearStart_Empty(t *testing.T) {
	if idx := ThreeYearStart(nil); idx != 0 {
		t.Errorf("ThreeYearStart(nil) = %d, want 0", idx)
	}
}

func TestBucketByYear(t *testing.T) {
	ts := []time.Time{d(2020, 3, 1), d(2020, 9, 1), d(2021, 3, 1), d(2022, 3, 1), d(2022, 9, 1)}
	rs := []float64{0.01, 0.02, 0.03, 0.04, 0.05}

	years, bucketTS, bucketRS := BucketByYear(ts, rs)

	wantYears := []int{2020, 2021, 2022}
	if len(years) != len(wantYears) {
		t.Fatalf("years = %v, want %v", years, wantYears)
	}
	for i := range wantYears {
		if years[i] != wantYears[i] {
			t.Errorf("years[%d] = %d, want %d", i, years[i], wantYears[i])
		}
	}
	if len(bucketRS[0]) != 2 || bucketRS[0][1] != 0.02 {
		t.Errorf("2020 bucket = %v, want [0.01 0.02]", bucketRS[0])
	}
	if len(bucketTS[2]) != 2 || !bucketTS[2][0].Equal(d(2022, 3, 1)) {
		t.Errorf("2022 bucket timestamps = %v", bucketTS[2])
	}
}

func TestBucketByYear_Empty(t *testing.T) {
	years, _, _ := BucketByYear(nil, nil)
	if len(years) != 0 {
		t.Errorf("years = %v, want empty", years)
	}
}

func TestAnnualReturns(t *testing.T) {
	ts := []time.Time{
		d(2020, 1, 1), d(2020, 7, 1), d(2020, 12, 31),
		d(2021, 1, 31), d(2021, 12, 31),
	}
	rs := []float64{0.01, 0.02, 0.03, 0.04, 0.05}

	years, values := AnnualReturns(ts, rs, 12)

	if len(years) != 2 || years[0] != 2020 || years[1] != 2021 {
		t.Fatalf("years = %v, want [2020 2021]", years)
	}
	want2020 := GeometricMean(ts[:3], rs[:3], 12)
	approx(t, "AnnualReturns[2020]", values[0], want2020, 1e-12)
	if math.IsNaN(values[1]) {
		t.Errorf("AnnualReturns[2021] = NaN, want finite")
	}
}
