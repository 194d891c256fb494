package app

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"fxreport/internal/fetcher"
	"fxreport/internal/series"
	"fxreport/internal/service"
)

// Simulate 使用确定性的合成汇率跑完整条流水线，不访问网络，也不推送通知。
func (a *App) Simulate(ctx context.Context, opts SimulateOptions) error {
	if opts.Days <= 0 {
		return service.ErrInvalidInput
	}

	// 合成数据的起点与流水线共用同一时刻，避免跨零点时两边日期错位
	now := a.Now()
	dates, err := series.LastNDays(opts.Days, now)
	if err != nil {
		return err
	}

	src := newSyntheticFetcher(a.Config.Source.BaseCurrency, a.Config.Pipeline.Currencies, dates[0])
	svc := service.New(a.Config, src, nil, a.Logger).WithClock(func() time.Time { return now })

	result, err := svc.Run(ctx, service.Request{
		Days:    opts.Days,
		CSVPath: opts.CSVPath,
		PDFPath: opts.PDFPath,
	})
	if err != nil {
		return err
	}

	a.Logger.Info().
		Str("csv", result.CSVPath).
		Str("pdf", result.PDFPath).
		Msg("simulated report written")
	return nil
}

// syntheticFetcher 为每个币种生成线性递增的汇率。
type syntheticFetcher struct {
	base       string
	currencies []string
	start      time.Time
}

func newSyntheticFetcher(base string, currencies []string, start time.Time) *syntheticFetcher {
	return &syntheticFetcher{
		base:       base,
		currencies: append([]string(nil), currencies...),
		start:      start,
	}
}

var errBeforeStart = errors.New("synthetic fetcher: date before start")

func (s *syntheticFetcher) FetchSnapshot(ctx context.Context, date time.Time) (series.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return series.Snapshot{}, err
	}

	day := int64(date.Sub(s.start).Hours() / 24)
	if day < 0 {
		return series.Snapshot{}, errBeforeStart
	}

	rates := make(map[string]decimal.Decimal, len(s.currencies))
	for i, code := range s.currencies {
		// start at 1.00, 2.00, ... and climb 1% of the start value per day
		start := decimal.NewFromInt(int64(i + 1))
		step := start.Div(decimal.NewFromInt(100))
		rates[code] = start.Add(step.Mul(decimal.NewFromInt(day)))
	}

	return series.Snapshot{Date: date, Base: s.base, Rates: rates}, nil
}

var _ fetcher.SnapshotFetcher = (*syntheticFetcher)(nil)
