package app

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"fxreport/internal/config"
	"fxreport/internal/fetcher"
	"fxreport/internal/notify"
	"fxreport/internal/service"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Stdout io.Writer
	Now    func() time.Time
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config: cfg,
		Logger: logger.With().Str("component", "app").Logger(),
		Stdout: os.Stdout,
		Now:    time.Now,
	}
}

func (a *App) retryPolicy() fetcher.RetryPolicy {
	return fetcher.RetryPolicy{
		Attempts: a.Config.Source.Retry.Attempts,
		Backoff:  a.Config.Source.Retry.Backoff,
	}
}

func (a *App) newFetcher() fetcher.SnapshotFetcher {
	src := fetcher.NewCurrency(fetcher.CurrencyOptions{
		BaseURL:      a.Config.Source.BaseURL,
		BaseCurrency: a.Config.Source.BaseCurrency,
		Timeout:      a.Config.Source.RequestTimeout,
		UserAgent:    a.Config.Source.UserAgent,
	}, a.Logger)

	return fetcher.NewRetrying(src, a.retryPolicy(), a.Logger)
}

func (a *App) newNotifier() notify.Notifier {
	if a.Config.Notify.Telegram.Enabled {
		cfg := a.Config.Notify.Telegram
		return notify.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, cfg.Timeout, a.Logger)
	}
	return nil
}

// RunOptions parameterise one production run.
type RunOptions struct {
	Days    int
	CSVPath string
	PDFPath string
}

// Run fetches the last opts.Days days of rates and writes the CSV and PDF report.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := service.New(a.Config, a.newFetcher(), a.newNotifier(), a.Logger).WithClock(a.Now)

	result, err := svc.Run(ctx, service.Request{
		Days:    opts.Days,
		CSVPath: opts.CSVPath,
		PDFPath: opts.PDFPath,
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("pipeline failed")
		return err
	}

	a.Logger.Info().
		Int("days", result.Series.Len()).
		Str("csv", result.CSVPath).
		Str("pdf", result.PDFPath).
		Msg("report written")
	return nil
}

// ShowOptions configure the show command.
type ShowOptions struct {
	CSVPath string
}

// SimulateOptions configure an offline run against synthetic rates.
type SimulateOptions struct {
	Days    int
	CSVPath string
	PDFPath string
}
