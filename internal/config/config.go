package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"fxreport/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	Source   SourceConfig   `mapstructure:"source"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Output   OutputConfig   `mapstructure:"output"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// SourceConfig captures the currency API endpoint.
type SourceConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	BaseCurrency   string        `mapstructure:"base_currency"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	Retry          RetryConfig   `mapstructure:"retry"`
}

// RetryConfig bounds retries of transient network failures.
type RetryConfig struct {
	Attempts int           `mapstructure:"attempts"`
	Backoff  time.Duration `mapstructure:"backoff"`
}

// PipelineConfig selects what gets aggregated and derived.
type PipelineConfig struct {
	Currencies []string `mapstructure:"currencies"`
	Window     int      `mapstructure:"window"`
}

// OutputConfig names the generated files.
type OutputConfig struct {
	CSVPath     string `mapstructure:"csv_path"`
	PDFPath     string `mapstructure:"pdf_path"`
	ReportTitle string `mapstructure:"report_title"`
	ChartWidth  int    `mapstructure:"chart_width"`
	ChartHeight int    `mapstructure:"chart_height"`
}

// NotifyConfig routes the post-run summary.
type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig 描述 Telegram 推送参数。
type TelegramConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	BotToken string        `mapstructure:"bot_token"`
	ChatID   string        `mapstructure:"chat_id"`
	APIBase  string        `mapstructure:"api_base"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FXREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "fxreport")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("source.base_url", "https://cdn.jsdelivr.net/npm/@fawazahmed0")
	v.SetDefault("source.base_currency", "usd")
	v.SetDefault("source.request_timeout", "10s")
	v.SetDefault("source.user_agent", "fxreport/1.0")
	v.SetDefault("source.retry.attempts", 3)
	v.SetDefault("source.retry.backoff", "2s")

	v.SetDefault("pipeline.currencies", []string{"aud", "cad", "pkr", "inr", "jpy"})
	v.SetDefault("pipeline.window", 3)

	v.SetDefault("output.csv_path", "data.csv")
	v.SetDefault("output.pdf_path", "table.pdf")
	v.SetDefault("output.report_title", "Exchange Rate Report")
	v.SetDefault("output.chart_width", 1000)
	v.SetDefault("output.chart_height", 700)

	v.SetDefault("notify.telegram.enabled", false)
	v.SetDefault("notify.telegram.api_base", "https://api.telegram.org")
	v.SetDefault("notify.telegram.timeout", "10s")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

func (c *Config) normalize() {
	codes := make([]string, 0, len(c.Pipeline.Currencies))
	for _, code := range c.Pipeline.Currencies {
		code = strings.ToLower(strings.TrimSpace(code))
		if code != "" {
			codes = append(codes, code)
		}
	}
	c.Pipeline.Currencies = codes
	c.Source.BaseCurrency = strings.ToLower(strings.TrimSpace(c.Source.BaseCurrency))
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if len(c.Pipeline.Currencies) == 0 {
		return fmt.Errorf("pipeline.currencies must list at least one currency")
	}
	seen := make(map[string]struct{}, len(c.Pipeline.Currencies))
	for _, code := range c.Pipeline.Currencies {
		if _, dup := seen[code]; dup {
			return fmt.Errorf("pipeline.currencies lists %q twice", code)
		}
		seen[code] = struct{}{}
	}
	if c.Pipeline.Window < 1 {
		return fmt.Errorf("pipeline.window must be at least 1")
	}
	if c.Source.BaseCurrency == "" {
		return fmt.Errorf("source.base_currency must be set")
	}
	if c.Source.Retry.Attempts < 1 {
		return fmt.Errorf("source.retry.attempts must be at least 1")
	}
	if c.Source.Retry.Backoff < 0 {
		return fmt.Errorf("source.retry.backoff cannot be negative")
	}
	if c.Output.CSVPath == "" || c.Output.PDFPath == "" {
		return fmt.Errorf("output.csv_path and output.pdf_path must be set")
	}
	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.BotToken == "" {
			return fmt.Errorf("notify.telegram.bot_token 必须配置")
		}
		if c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("notify.telegram.chat_id 必须配置")
		}
	}
	return nil
}

// ResolvePath returns the CLI override when set, otherwise the configured path.
func ResolvePath(override, configured string) string {
	if override != "" {
		return override
	}
	return configured
}
