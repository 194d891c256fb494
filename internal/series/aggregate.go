package series

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotSource supplies one snapshot per calendar date.
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context, date time.Time) (Snapshot, error)
}

// Aggregate fetches every date in order and folds the snapshots into a Series
// restricted to allowList. A currency absent from any snapshot fails the whole
// aggregation rather than leaving a gap in its sequence.
func Aggregate(ctx context.Context, src SnapshotSource, dates []time.Time, allowList []string) (*Series, error) {
	if len(dates) == 0 {
		return nil, ErrInvalidDays
	}
	if len(allowList) == 0 {
		return nil, errors.New("currency allow-list is empty")
	}

	currencies := make([]string, 0, len(allowList))
	for _, code := range allowList {
		currencies = append(currencies, strings.ToLower(strings.TrimSpace(code)))
	}

	rates := make(map[string][]decimal.Decimal, len(currencies))
	for _, code := range currencies {
		rates[code] = make([]decimal.Decimal, 0, len(dates))
	}

	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		snap, err := src.FetchSnapshot(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", date.Format(DateLayout), err)
		}

		for _, code := range currencies {
			rate, ok := snap.Rates[code]
			if !ok {
				return nil, &MisalignedSeriesError{Currency: code, Date: date.Format(DateLayout)}
			}
			rates[code] = append(rates[code], rate)
		}
	}

	return New(dates, currencies, rates)
}
