package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fxreport/internal/series"
)

const (
	defaultBaseURL      = "https://cdn.jsdelivr.net/npm/@fawazahmed0"
	defaultBaseCurrency = "usd"
	defaultUserAgent    = "fxreport/1.0"
	maxErrorBody        = 512
)

// CurrencyOptions parameterise the currency API fetcher.
type CurrencyOptions struct {
	BaseURL      string
	BaseCurrency string
	Timeout      time.Duration
	UserAgent    string
}

// Currency fetches daily snapshots from the jsDelivr-hosted currency API.
type Currency struct {
	opts    CurrencyOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
	base    string
}

// NewCurrency constructs a currency API fetcher.
func NewCurrency(opts CurrencyOptions, logger zerolog.Logger) *Currency {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	base := strings.ToLower(strings.TrimSpace(opts.BaseCurrency))
	if base == "" {
		base = defaultBaseCurrency
	}

	return &Currency{
		opts:    opts,
		logger:  logger.With().Str("component", "currency_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		base:    base,
	}
}

// URL returns the endpoint serving the snapshot for date.
func (c *Currency) URL(date time.Time) string {
	return fmt.Sprintf("%s/currency-api@%s/v1/currencies/%s.json", c.baseURL, date.Format(series.DateLayout), c.base)
}

// FetchSnapshot retrieves the rates quoted against the base currency on date.
func (c *Currency) FetchSnapshot(ctx context.Context, date time.Time) (series.Snapshot, error) {
	endpoint := c.URL(date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return series.Snapshot{}, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", defaultUserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return series.Snapshot{}, ctxErr
		}
		if isTransient(err) {
			return series.Snapshot{}, &TransientError{Err: err}
		}
		return series.Snapshot{}, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return series.Snapshot{}, &TransientError{Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := strings.TrimSpace(string(payload))
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return series.Snapshot{}, &HTTPStatusError{StatusCode: resp.StatusCode, URL: endpoint, Body: body}
	}

	rates, err := c.decodeRates(payload, date)
	if err != nil {
		return series.Snapshot{}, err
	}

	c.logger.Debug().
		Str("date", date.Format(series.DateLayout)).
		Int("currencies", len(rates)).
		Msg("snapshot fetched")

	return series.Snapshot{Date: date, Base: c.base, Rates: rates}, nil
}

func (c *Currency) decodeRates(payload []byte, date time.Time) (map[string]decimal.Decimal, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	// the CDN may serve another day's file; never stamp it with the requested date
	if rawDate, ok := envelope["date"]; ok {
		var served string
		if err := json.Unmarshal(rawDate, &served); err != nil {
			return nil, fmt.Errorf("%w: date is not a string: %v", ErrMalformedResponse, err)
		}
		if want := date.Format(series.DateLayout); served != want {
			return nil, fmt.Errorf("%w: requested %s, served %s", ErrMalformedResponse, want, served)
		}
	}

	raw, ok := envelope[c.base]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q key", ErrMalformedResponse, c.base)
	}

	var quoted map[string]json.RawMessage
	if err := json.Unmarshal(raw, &quoted); err != nil {
		return nil, fmt.Errorf("%w: %q is not an object: %v", ErrMalformedResponse, c.base, err)
	}

	rates := make(map[string]decimal.Decimal, len(quoted))
	for code, value := range quoted {
		rate, err := decimal.NewFromString(string(value))
		if err != nil {
			return nil, fmt.Errorf("%w: rate for %s: %s", ErrMalformedResponse, code, string(value))
		}
		rates[strings.ToLower(code)] = rate
	}
	return rates, nil
}

var _ SnapshotFetcher = (*Currency)(nil)
