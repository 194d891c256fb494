package series

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used by the rate API and the CSV output.
const DateLayout = "2006-01-02"

// ErrInvalidDays is returned when a non-positive day count is requested.
var ErrInvalidDays = errors.New("day count must be a positive integer")

// Snapshot is one day of rates quoted against Base.
type Snapshot struct {
	Date  time.Time
	Base  string
	Rates map[string]decimal.Decimal
}

// MisalignedSeriesError reports a currency whose sequence does not line up with the dates.
type MisalignedSeriesError struct {
	Currency string
	Want     int
	Got      int
	Date     string
}

func (e *MisalignedSeriesError) Error() string {
	if e.Date != "" {
		return fmt.Sprintf("misaligned series: currency %s missing on %s", e.Currency, e.Date)
	}
	return fmt.Sprintf("misaligned series: currency %s has %d samples, want %d", e.Currency, e.Got, e.Want)
}

// Series holds date-aligned rate sequences per currency, oldest first.
// A Series is never mutated after New returns.
type Series struct {
	dates      []time.Time
	currencies []string
	rates      map[string][]decimal.Decimal
}

// New validates alignment and copies the inputs into a Series.
func New(dates []time.Time, currencies []string, rates map[string][]decimal.Decimal) (*Series, error) {
	seen := make(map[string]struct{}, len(currencies))
	s := &Series{
		dates:      append([]time.Time(nil), dates...),
		currencies: make([]string, 0, len(currencies)),
		rates:      make(map[string][]decimal.Decimal, len(currencies)),
	}

	for _, code := range currencies {
		if _, dup := seen[code]; dup {
			return nil, fmt.Errorf("duplicate currency %q", code)
		}
		seen[code] = struct{}{}

		values, ok := rates[code]
		if !ok {
			return nil, &MisalignedSeriesError{Currency: code, Want: len(dates), Got: 0}
		}
		if len(values) != len(dates) {
			return nil, &MisalignedSeriesError{Currency: code, Want: len(dates), Got: len(values)}
		}
		s.currencies = append(s.currencies, code)
		s.rates[code] = append([]decimal.Decimal(nil), values...)
	}

	for i := 1; i < len(s.dates); i++ {
		if !s.dates[i].After(s.dates[i-1]) {
			return nil, fmt.Errorf("dates must be strictly increasing: %s follows %s",
				s.dates[i].Format(DateLayout), s.dates[i-1].Format(DateLayout))
		}
	}

	return s, nil
}

// Len is the number of dates, and therefore the length of every sequence.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.dates)
}

// Dates returns a copy of the date axis.
func (s *Series) Dates() []time.Time {
	if s == nil {
		return nil
	}
	return append([]time.Time(nil), s.dates...)
}

// Currencies returns the currency codes in column order.
func (s *Series) Currencies() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.currencies...)
}

// Rates returns a copy of one currency's sequence.
func (s *Series) Rates(currency string) ([]decimal.Decimal, bool) {
	if s == nil {
		return nil, false
	}
	values, ok := s.rates[currency]
	if !ok {
		return nil, false
	}
	return append([]decimal.Decimal(nil), values...), true
}

// Floats returns one currency's sequence converted to float64.
func (s *Series) Floats(currency string) ([]float64, bool) {
	if s == nil {
		return nil, false
	}
	values, ok := s.rates[currency]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.InexactFloat64()
	}
	return out, true
}

// Latest returns the most recent rate of every currency.
func (s *Series) Latest() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	if s.Len() == 0 {
		return out
	}
	last := len(s.dates) - 1
	for _, code := range s.currencies {
		out[code] = s.rates[code][last]
	}
	return out
}

// LastNDays returns the n calendar days ending the day before now, oldest first.
func LastNDays(n int, now time.Time) ([]time.Time, error) {
	if n <= 0 {
		return nil, ErrInvalidDays
	}

	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	dates := make([]time.Time, 0, n)
	for i := n; i >= 1; i-- {
		dates = append(dates, today.AddDate(0, 0, -i))
	}
	return dates, nil
}
