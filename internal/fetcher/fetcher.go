package fetcher

import (
	"context"
	"time"

	"fxreport/internal/series"
)

// SnapshotFetcher retrieves one day of exchange rates.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, date time.Time) (series.Snapshot, error)
}
