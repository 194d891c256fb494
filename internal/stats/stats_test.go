package stats

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fxreport/internal/series"
)

func TestRateOfChange(t *testing.T) {
	s := buildSeries(t, map[string][]float64{"aud": {100, 100, 120}}, "aud")

	roc, err := RateOfChange(s, "aud")
	if err != nil {
		t.Fatalf("rate of change: %v", err)
	}
	if got := roc.InexactFloat64(); math.Abs(got-50.0/3.0) > 1e-9 {
		t.Fatalf("want 16.666..., got %s", roc)
	}
}

func TestRateOfChangeZeroLatest(t *testing.T) {
	s := buildSeries(t, map[string][]float64{"aud": {1, 2, 0}}, "aud")

	if _, err := RateOfChange(s, "aud"); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("want ErrDivisionByZero, got %v", err)
	}
	if _, err := RatesOfChange(s); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("RatesOfChange should propagate ErrDivisionByZero, got %v", err)
	}
	if _, err := RateOfChange(s, "cad"); !errors.Is(err, ErrUnknownCurrency) {
		t.Fatalf("want ErrUnknownCurrency, got %v", err)
	}
}

func TestMovingAverage(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		window int
		want   []float64
	}{
		{name: "ramp", values: []float64{1.0, 1.1, 1.2, 1.3, 1.4}, window: 3, want: []float64{1.10, 1.20, 1.30}},
		{name: "rounded", values: []float64{1, 2, 2}, window: 3, want: []float64{1.67}},
		{name: "exact length", values: []float64{3, 4, 5}, window: 3, want: []float64{4}},
		{name: "too short", values: []float64{1, 2}, window: 3, want: []float64{}},
		{name: "window one", values: []float64{1.234, 5.678}, window: 1, want: []float64{1.23, 5.68}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := buildSeries(t, map[string][]float64{"aud": tc.values}, "aud")

			got, err := MovingAverage(s, tc.window)
			if err != nil {
				t.Fatalf("moving average: %v", err)
			}

			wantLen := len(tc.values) - tc.window + 1
			if wantLen < 0 {
				wantLen = 0
			}
			if len(got["aud"]) != wantLen {
				t.Fatalf("length: want %d, got %d", wantLen, len(got["aud"]))
			}
			for i, w := range tc.want {
				if !got["aud"][i].Equal(decimal.NewFromFloat(w)) {
					t.Fatalf("[%d]: want %v, got %s", i, w, got["aud"][i])
				}
			}
		})
	}
}

func TestMovingAverageInvalidWindow(t *testing.T) {
	s := buildSeries(t, map[string][]float64{"aud": {1, 2, 3}}, "aud")
	if _, err := MovingAverage(s, 0); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("want ErrInvalidWindow, got %v", err)
	}
}

func TestMovingAverageDoesNotMutateSeries(t *testing.T) {
	s := buildSeries(t, map[string][]float64{"aud": {1.0, 1.1, 1.2, 1.3}}, "aud")
	before, _ := s.Rates("aud")

	if _, err := StandardDeviation(s, 4); err != nil {
		t.Fatalf("standard deviation: %v", err)
	}
	if _, err := MovingAverage(s, 3); err != nil {
		t.Fatalf("moving average: %v", err)
	}

	after, _ := s.Rates("aud")
	for i := range before {
		if !before[i].Equal(after[i]) {
			t.Fatalf("统计计算不应修改原始序列: %v -> %v", before, after)
		}
	}
}

func TestStandardDeviation(t *testing.T) {
	s := buildSeries(t, map[string][]float64{"aud": {1.0, 1.1, 1.2, 1.3, 1.4}}, "aud")

	sd, err := StandardDeviation(s, 5)
	if err != nil {
		t.Fatalf("standard deviation: %v", err)
	}
	if math.Abs(sd["aud"]-math.Sqrt(0.025)) > 1e-9 {
		t.Fatalf("want ~0.1581, got %v", sd["aud"])
	}
}

func TestStandardDeviationOffsetInvariant(t *testing.T) {
	base := []float64{1.52, 1.48, 1.55, 1.61, 1.47, 1.50}
	shifted := make([]float64, len(base))
	for i, v := range base {
		shifted[i] = v + 250
	}
	s := buildSeries(t, map[string][]float64{"aud": base, "pkr": shifted}, "aud", "pkr")

	sd, err := StandardDeviation(s, len(base))
	if err != nil {
		t.Fatalf("standard deviation: %v", err)
	}
	if math.Abs(sd["aud"]-sd["pkr"]) > 1e-9 {
		t.Fatalf("offset changed deviation: %v vs %v", sd["aud"], sd["pkr"])
	}
}

func TestStandardDeviationErrors(t *testing.T) {
	single := buildSeries(t, map[string][]float64{"aud": {1.5}}, "aud")
	if _, err := StandardDeviation(single, 1); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("N=1 should fail with ErrDivisionByZero, got %v", err)
	}

	s := buildSeries(t, map[string][]float64{"aud": {1, 2, 3}}, "aud")
	_, err := StandardDeviation(s, 5)
	var misaligned *series.MisalignedSeriesError
	if !errors.As(err, &misaligned) {
		t.Fatalf("sample count mismatch should fail, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	s := buildSeries(t, map[string][]float64{"aud": {1.0, 1.1, 1.2, 1.3, 1.4}}, "aud")

	sum, err := Summarize(s, DefaultWindow)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if got := sum.RateOfChange["aud"].InexactFloat64(); math.Abs(got-0.4/1.4*100) > 1e-9 {
		t.Fatalf("rate of change: want ~28.57, got %v", got)
	}
	if len(sum.MovingAverage["aud"]) != 3 {
		t.Fatalf("moving average length: %d", len(sum.MovingAverage["aud"]))
	}
	if math.Abs(sum.StandardDeviation["aud"]-0.158113883) > 1e-6 {
		t.Fatalf("standard deviation: %v", sum.StandardDeviation["aud"])
	}
	if sum.Window != DefaultWindow || len(sum.Currencies) != 1 {
		t.Fatalf("unexpected summary metadata: %+v", sum)
	}
}

func buildSeries(t *testing.T, values map[string][]float64, order ...string) *series.Series {
	t.Helper()

	n := len(values[order[0]])
	dates := make([]time.Time, n)
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}

	rates := make(map[string][]decimal.Decimal, len(values))
	for code, vs := range values {
		seq := make([]decimal.Decimal, len(vs))
		for i, v := range vs {
			seq[i] = decimal.NewFromFloat(v)
		}
		rates[code] = seq
	}

	s, err := series.New(dates, order, rates)
	if err != nil {
		t.Fatalf("build series: %v", err)
	}
	return s
}
