package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Summary 封装一次运行的摘要。
type Summary struct {
	From              time.Time
	To                time.Time
	Days              int
	Currencies        []string
	Latest            map[string]decimal.Decimal
	RateOfChange      map[string]decimal.Decimal
	StandardDeviation map[string]float64
	CSVPath           string
	PDFPath           string
}

// Notifier delivers a run summary somewhere outside the process.
type Notifier interface {
	Notify(ctx context.Context, summary Summary) error
}

// TelegramNotifier 通过 Telegram Bot API 推送消息。
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier 构造 Telegram 推送器。
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "notify_telegram").Logger(),
	}
}

// Notify 调用 sendMessage API 推送文本。
func (n *TelegramNotifier) Notify(ctx context.Context, summary Summary) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(summary),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram 响应码异常: %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram 返回 ok=false")
		}
	}

	n.logger.Info().Int("days", summary.Days).
		Str("currencies", strings.Join(summary.Currencies, ",")).
		Msg("summary sent (Telegram)")
	return nil
}

func renderMessage(s Summary) string {
	builder := strings.Builder{}
	builder.WriteString("[FX Report]\n")
	builder.WriteString(fmt.Sprintf("Window: %s .. %s (%d days)\n", s.From.Format("2006-01-02"), s.To.Format("2006-01-02"), s.Days))
	for _, code := range s.Currencies {
		builder.WriteString(fmt.Sprintf("%s: latest %s, change %s%%, stddev %s\n",
			strings.ToUpper(code),
			s.Latest[code].String(),
			s.RateOfChange[code].StringFixed(3),
			strconv.FormatFloat(s.StandardDeviation[code], 'f', 4, 64),
		))
	}
	if s.CSVPath != "" || s.PDFPath != "" {
		builder.WriteString(fmt.Sprintf("Files: %s %s\n", s.CSVPath, s.PDFPath))
	}
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
