// Package stats derives rate of change, moving averages and sample standard
// deviation from a Series. Every function reads its input and returns fresh
// values; a Series is never rewritten in place.
package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"fxreport/internal/series"
)

// DefaultWindow is the moving-average window used by the report.
const DefaultWindow = 3

var (
	// ErrDivisionByZero is returned when a statistic's divisor is zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrInvalidWindow is returned for a non-positive moving-average window.
	ErrInvalidWindow = errors.New("moving average window must be positive")
	// ErrUnknownCurrency is returned when the currency is not part of the series.
	ErrUnknownCurrency = errors.New("currency not in series")
)

var hundred = decimal.NewFromInt(100)

// RateOfChange returns (last - first) / last * 100 for one currency.
func RateOfChange(s *series.Series, currency string) (decimal.Decimal, error) {
	rates, ok := s.Rates(currency)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, currency)
	}
	if len(rates) == 0 {
		return decimal.Decimal{}, fmt.Errorf("rate of change %s: no samples", currency)
	}

	first, last := rates[0], rates[len(rates)-1]
	if last.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("rate of change %s: latest rate is zero: %w", currency, ErrDivisionByZero)
	}
	return last.Sub(first).Div(last).Mul(hundred), nil
}

// RatesOfChange applies RateOfChange to every currency of the series.
func RatesOfChange(s *series.Series) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	for _, code := range s.Currencies() {
		roc, err := RateOfChange(s, code)
		if err != nil {
			return nil, err
		}
		out[code] = roc
	}
	return out, nil
}

// MovingAverage returns, per currency, the mean of every contiguous window
// rounded to two decimals. Series shorter than window yield an empty sequence.
func MovingAverage(s *series.Series, window int) (map[string][]decimal.Decimal, error) {
	if window <= 0 {
		return nil, ErrInvalidWindow
	}

	size := decimal.NewFromInt(int64(window))
	out := make(map[string][]decimal.Decimal)
	for _, code := range s.Currencies() {
		rates, _ := s.Rates(code)

		count := len(rates) - window + 1
		if count < 0 {
			count = 0
		}
		averages := make([]decimal.Decimal, 0, count)
		for i := 0; i < count; i++ {
			sum := decimal.Zero
			for _, v := range rates[i : i+window] {
				sum = sum.Add(v)
			}
			averages = append(averages, sum.Div(size).Round(2))
		}
		out[code] = averages
	}
	return out, nil
}

// StandardDeviation returns the sample standard deviation (divisor n-1) of
// every currency. n must match the number of samples in the series.
func StandardDeviation(s *series.Series, n int) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, code := range s.Currencies() {
		values, _ := s.Floats(code)
		if len(values) != n {
			return nil, &series.MisalignedSeriesError{Currency: code, Want: n, Got: len(values)}
		}
		if n < 2 {
			return nil, fmt.Errorf("standard deviation %s: %d sample: %w", code, n, ErrDivisionByZero)
		}

		sd := stat.StdDev(values, nil)
		if math.IsNaN(sd) {
			return nil, fmt.Errorf("standard deviation %s: not a number", code)
		}
		out[code] = sd
	}
	return out, nil
}

// Summary bundles the derived statistics of one run.
type Summary struct {
	Currencies        []string
	Window            int
	RateOfChange      map[string]decimal.Decimal
	MovingAverage     map[string][]decimal.Decimal
	StandardDeviation map[string]float64
}

// Summarize computes all three statistics over s.
func Summarize(s *series.Series, window int) (Summary, error) {
	roc, err := RatesOfChange(s)
	if err != nil {
		return Summary{}, fmt.Errorf("rate of change: %w", err)
	}
	ma, err := MovingAverage(s, window)
	if err != nil {
		return Summary{}, fmt.Errorf("moving average: %w", err)
	}
	sd, err := StandardDeviation(s, s.Len())
	if err != nil {
		return Summary{}, fmt.Errorf("standard deviation: %w", err)
	}

	return Summary{
		Currencies:        s.Currencies(),
		Window:            window,
		RateOfChange:      roc,
		MovingAverage:     ma,
		StandardDeviation: sd,
	}, nil
}
