package series

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLastNDays(t *testing.T) {
	now := time.Date(2024, 3, 2, 15, 30, 0, 0, time.UTC)

	for _, n := range []int{1, 2, 5, 31} {
		dates, err := LastNDays(n, now)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if len(dates) != n {
			t.Fatalf("n=%d: want %d dates, got %d", n, n, len(dates))
		}
		if got := dates[n-1].Format(DateLayout); got != "2024-03-01" {
			t.Fatalf("n=%d: last date should be yesterday, got %s", n, got)
		}
		for i := 1; i < len(dates); i++ {
			if !dates[i].After(dates[i-1]) {
				t.Fatalf("n=%d: dates not strictly increasing at %d", n, i)
			}
		}
	}

	dates, _ := LastNDays(3, now)
	if got := dates[0].Format(DateLayout); got != "2024-02-28" {
		t.Fatalf("跨月计算错误: %s", got)
	}
}

func TestLastNDaysUsesUTCCalendar(t *testing.T) {
	// 2024-10-14 21:00 at UTC-5 is already 2024-10-15 in UTC
	now := time.Date(2024, 10, 14, 21, 0, 0, 0, time.FixedZone("UTC-5", -5*3600))

	dates, err := LastNDays(2, now)
	if err != nil {
		t.Fatal(err)
	}
	if got := dates[1].Format(DateLayout); got != "2024-10-14" {
		t.Fatalf("yesterday in UTC should be 2024-10-14, got %s", got)
	}
	if dates[0].Location() != time.UTC {
		t.Fatalf("dates should be UTC, got %s", dates[0].Location())
	}
}

func TestLastNDaysRejectsNonPositive(t *testing.T) {
	for _, n := range []int{0, -3} {
		if _, err := LastNDays(n, time.Now()); !errors.Is(err, ErrInvalidDays) {
			t.Fatalf("n=%d: want ErrInvalidDays, got %v", n, err)
		}
	}
}

func TestNewRejectsMisalignedSequences(t *testing.T) {
	dates := mustDates(t, "2024-01-01", "2024-01-02")
	_, err := New(dates, []string{"aud", "cad"}, map[string][]decimal.Decimal{
		"aud": decs(1, 2),
		"cad": decs(1),
	})

	var misaligned *MisalignedSeriesError
	if !errors.As(err, &misaligned) {
		t.Fatalf("want MisalignedSeriesError, got %v", err)
	}
	if misaligned.Currency != "cad" || misaligned.Want != 2 || misaligned.Got != 1 {
		t.Fatalf("unexpected error detail: %+v", misaligned)
	}
}

func TestNewRejectsUnorderedDates(t *testing.T) {
	dates := mustDates(t, "2024-01-02", "2024-01-01")
	if _, err := New(dates, []string{"aud"}, map[string][]decimal.Decimal{"aud": decs(1, 2)}); err == nil {
		t.Fatal("日期倒序应报错")
	}
}

func TestSeriesAccessorsReturnCopies(t *testing.T) {
	s := mustSeries(t, map[string][]float64{"aud": {1, 2, 3}}, "aud")

	rates, _ := s.Rates("aud")
	rates[0] = decimal.NewFromInt(99)
	dates := s.Dates()
	dates[0] = time.Time{}

	again, _ := s.Rates("aud")
	if !again[0].Equal(decimal.NewFromInt(1)) {
		t.Fatal("Rates must not expose internal storage")
	}
	if s.Dates()[0].IsZero() {
		t.Fatal("Dates must not expose internal storage")
	}
	if latest := s.Latest()["aud"]; !latest.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("latest rate: want 3, got %s", latest)
	}
}

// mustSeries builds a Series over consecutive dates starting 2024-01-01.
func mustSeries(t *testing.T, values map[string][]float64, order ...string) *Series {
	t.Helper()

	n := len(values[order[0]])
	dates := make([]time.Time, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}

	rates := make(map[string][]decimal.Decimal, len(values))
	for code, vs := range values {
		rates[code] = decs(vs...)
	}

	s, err := New(dates, order, rates)
	if err != nil {
		t.Fatalf("build series: %v", err)
	}
	return s
}

func mustDates(t *testing.T, values ...string) []time.Time {
	t.Helper()
	out := make([]time.Time, len(values))
	for i, v := range values {
		d, err := time.Parse(DateLayout, v)
		if err != nil {
			t.Fatalf("parse %s: %v", v, err)
		}
		out[i] = d
	}
	return out
}

func decs(values ...float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}
