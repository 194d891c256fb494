package fetcher

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fxreport/internal/series"
)

var fastPolicy = RetryPolicy{Attempts: 3, Backoff: 0}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", fastPolicy, noopLogger(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &TransientError{Err: errors.New("connection refused")}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("third attempt succeeds, want nil error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("want 3 calls, got %d", calls)
	}
}

func TestRetryGivesUpAfterAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "fetch snapshot 2024-03-01", fastPolicy, noopLogger(), func(ctx context.Context) error {
		calls++
		return &TransientError{Err: errors.New("timeout")}
	})

	var fatal *FatalFetchError
	if !errors.As(err, &fatal) {
		t.Fatalf("want FatalFetchError, got %v", err)
	}
	if fatal.Attempts != 3 || calls != 3 {
		t.Fatalf("want 3 attempts, got fatal=%d calls=%d", fatal.Attempts, calls)
	}
	if !strings.Contains(err.Error(), "fetch snapshot 2024-03-01") || !strings.Contains(err.Error(), "3 attempts") {
		t.Fatalf("error should name the operation and attempt count: %v", err)
	}
}

func TestRetryDoesNotRetryPermanentErrors(t *testing.T) {
	cases := []error{
		&HTTPStatusError{StatusCode: 500, URL: "http://x"},
		ErrMalformedResponse,
	}

	for _, want := range cases {
		calls := 0
		err := Retry(context.Background(), "op", fastPolicy, noopLogger(), func(ctx context.Context) error {
			calls++
			return want
		})
		if !errors.Is(err, want) {
			t.Fatalf("want %v surfaced unchanged, got %v", want, err)
		}
		if calls != 1 {
			t.Fatalf("%v: 非瞬时错误不应重试, got %d calls", want, calls)
		}
	}
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, "op", RetryPolicy{Attempts: 5, Backoff: time.Hour}, noopLogger(), func(ctx context.Context) error {
		calls++
		cancel()
		return &TransientError{Err: errors.New("reset")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("want a single attempt, got %d", calls)
	}
}

type flakyFetcher struct {
	failures int
	calls    int
}

func (f *flakyFetcher) FetchSnapshot(ctx context.Context, date time.Time) (series.Snapshot, error) {
	f.calls++
	if f.calls <= f.failures {
		return series.Snapshot{}, &TransientError{Err: errors.New("connection reset")}
	}
	return series.Snapshot{Date: date, Base: "usd", Rates: map[string]decimal.Decimal{"aud": decimal.NewFromInt(1)}}, nil
}

func TestRetryingFetcher(t *testing.T) {
	inner := &flakyFetcher{failures: 2}
	f := NewRetrying(inner, fastPolicy, noopLogger())

	snap, err := f.FetchSnapshot(context.Background(), testDate)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if inner.calls != 3 || !snap.Rates["aud"].Equal(decimal.NewFromInt(1)) {
		t.Fatalf("unexpected result: calls=%d snap=%+v", inner.calls, snap)
	}

	inner = &flakyFetcher{failures: 10}
	f = NewRetrying(inner, fastPolicy, noopLogger())
	if _, err := f.FetchSnapshot(context.Background(), testDate); err == nil {
		t.Fatal("persistent failure should surface")
	}
	if inner.calls != 3 {
		t.Fatalf("want 3 attempts, got %d", inner.calls)
	}
}
