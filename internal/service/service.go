package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"fxreport/internal/config"
	"fxreport/internal/fetcher"
	"fxreport/internal/notify"
	"fxreport/internal/report"
	"fxreport/internal/series"
	"fxreport/internal/stats"
)

// ErrInvalidInput is returned when the requested day count is not a positive integer.
var ErrInvalidInput = errors.New("invalid input: N must be a positive integer")

const partialSuffix = ".partial"

// StageError names the pipeline stage that aborted the run.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Request parameterises one pipeline run.
type Request struct {
	Days    int
	CSVPath string
	PDFPath string
}

// Result is what a successful run produced.
type Result struct {
	Series  *series.Series
	Summary stats.Summary
	CSVPath string
	PDFPath string
}

// Service orchestrates fetching, aggregation, statistics and rendering.
type Service struct {
	fetcher    fetcher.SnapshotFetcher
	notifier   notify.Notifier
	logger     zerolog.Logger
	currencies []string
	window     int
	csvPath    string
	pdfPath    string
	reportOpts report.Options
	now        func() time.Time
}

// New constructs the pipeline service.
func New(cfg *config.Config, f fetcher.SnapshotFetcher, notifier notify.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		fetcher:    f,
		notifier:   notifier,
		logger:     logger.With().Str("component", "service").Logger(),
		currencies: append([]string(nil), cfg.Pipeline.Currencies...),
		window:     cfg.Pipeline.Window,
		csvPath:    cfg.Output.CSVPath,
		pdfPath:    cfg.Output.PDFPath,
		reportOpts: report.Options{
			Title:        cfg.Output.ReportTitle,
			BaseCurrency: cfg.Source.BaseCurrency,
			ChartWidth:   cfg.Output.ChartWidth,
			ChartHeight:  cfg.Output.ChartHeight,
		},
		now: time.Now,
	}
}

// WithClock replaces the clock the run derives "today" from.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Run executes the pipeline once. Output files are only put in place after
// every stage succeeded; a failed run leaves earlier outputs untouched.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	if req.Days <= 0 {
		return Result{}, fmt.Errorf("%w (got %d)", ErrInvalidInput, req.Days)
	}

	csvPath := config.ResolvePath(req.CSVPath, s.csvPath)
	pdfPath := config.ResolvePath(req.PDFPath, s.pdfPath)

	dates, err := series.LastNDays(req.Days, s.now())
	if err != nil {
		return Result{}, &StageError{Stage: "dates", Err: err}
	}

	s.logger.Info().
		Int("days", req.Days).
		Str("from", dates[0].Format(series.DateLayout)).
		Str("to", dates[len(dates)-1].Format(series.DateLayout)).
		Strs("currencies", s.currencies).
		Msg("starting pipeline")

	data, err := series.Aggregate(ctx, s.fetcher, dates, s.currencies)
	if err != nil {
		return Result{}, &StageError{Stage: "aggregate", Err: err}
	}
	s.logLatest(data)

	csvTmp := csvPath + partialSuffix
	pdfTmp := pdfPath + partialSuffix
	defer removeQuietly(csvTmp)
	defer removeQuietly(pdfTmp)

	if err := series.WriteCSVFile(csvTmp, data); err != nil {
		return Result{}, &StageError{Stage: "write csv", Err: err}
	}

	roc, err := stats.RatesOfChange(data)
	if err != nil {
		return Result{}, &StageError{Stage: "rate of change", Err: err}
	}
	ma, err := stats.MovingAverage(data, s.window)
	if err != nil {
		return Result{}, &StageError{Stage: "moving average", Err: err}
	}
	sd, err := stats.StandardDeviation(data, req.Days)
	if err != nil {
		return Result{}, &StageError{Stage: "standard deviation", Err: err}
	}

	summary := stats.Summary{
		Currencies:        data.Currencies(),
		Window:            s.window,
		RateOfChange:      roc,
		MovingAverage:     ma,
		StandardDeviation: sd,
	}

	if err := report.WriteFile(pdfTmp, report.Data{Series: data, Summary: summary}, s.reportOpts); err != nil {
		return Result{}, &StageError{Stage: "render report", Err: err}
	}

	if err := os.Rename(csvTmp, csvPath); err != nil {
		return Result{}, &StageError{Stage: "write csv", Err: err}
	}
	if err := os.Rename(pdfTmp, pdfPath); err != nil {
		return Result{}, &StageError{Stage: "render report", Err: err}
	}

	s.logger.Info().Str("csv", csvPath).Str("pdf", pdfPath).Msg("pipeline complete")

	result := Result{Series: data, Summary: summary, CSVPath: csvPath, PDFPath: pdfPath}
	s.sendSummary(ctx, result)
	return result, nil
}

func (s *Service) logLatest(data *series.Series) {
	dates := data.Dates()
	latest := data.Latest()
	for _, code := range data.Currencies() {
		s.logger.Info().
			Str("currency", code).
			Str("date", dates[len(dates)-1].Format(series.DateLayout)).
			Str("rate", latest[code].String()).
			Msg("latest rate")
	}
}

func (s *Service) sendSummary(ctx context.Context, result Result) {
	if s.notifier == nil {
		return
	}

	dates := result.Series.Dates()
	note := notify.Summary{
		From:              dates[0],
		To:                dates[len(dates)-1],
		Days:              len(dates),
		Currencies:        result.Summary.Currencies,
		Latest:            result.Series.Latest(),
		RateOfChange:      result.Summary.RateOfChange,
		StandardDeviation: result.Summary.StandardDeviation,
		CSVPath:           result.CSVPath,
		PDFPath:           result.PDFPath,
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Msg("failed to send run summary")
	}
}

func removeQuietly(path string) {
	_ = os.Remove(path)
}
