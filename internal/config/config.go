package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"pricewatch/internal/quote"
	"pricewatch/internal/scrape"
)

// Notifier kinds.
const (
	NotifyFeishu   = "feishu"
	NotifyTelegram = "telegram"
	NotifyStdout   = "stdout"
)

// Scrape timeouts outside this range are clamped.
const (
	minScrapeTimeoutSec = 15
	maxScrapeTimeoutSec = 30
)

type Yahoo struct {
	BaseURL              string `json:"base_url"`
	Range                string `json:"range"`
	MaxRequestsPerMinute int    `json:"max_requests_per_minute"`
	Burst                int    `json:"burst"`
	MinRequestIntervalMs int    `json:"min_request_interval_ms"`
	MaxConcurrency       int    `json:"max_concurrency"`
	RequestTimeoutSec    int    `json:"request_timeout_sec"`
}

// QuoteSection configures one report category backed by the market-data API.
type QuoteSection struct {
	Enabled      bool               `json:"enabled"`
	ShowFailures bool               `json:"show_failures"`
	Instruments  []quote.Instrument `json:"instruments"`
}

type Scrape struct {
	Enabled            bool              `json:"enabled"`
	TimeoutSec         int               `json:"timeout_sec"`
	InsecureSkipVerify bool              `json:"insecure_skip_verify"`
	Materials          []scrape.Material `json:"materials"`
}

type Notify struct {
	// Kind is feishu, telegram or stdout. Empty picks the first backend
	// with credentials, then stdout.
	Kind             string `json:"kind"`
	FeishuWebhookURL string `json:"feishu_webhook_url"`
	TelegramBotToken string `json:"telegram_bot_token"`
	TelegramChatID   int64  `json:"telegram_chat_id"`
	TelegramEndpoint string `json:"telegram_endpoint"`
	TimeoutSec       int    `json:"timeout_sec"`
}

type Report struct {
	// Timezone is an IANA name. Empty means the host's local zone.
	Timezone string `json:"timezone"`
}

type Run struct {
	TimeoutSec int `json:"timeout_sec"`
}

type Config struct {
	Yahoo    Yahoo        `json:"yahoo"`
	Metals   QuoteSection `json:"metals"`
	Equities QuoteSection `json:"equities"`
	Scrape   Scrape       `json:"scrape"`
	Notify   Notify       `json:"notify"`
	Report   Report       `json:"report"`
	Run      Run          `json:"run"`
}

func Default() Config {
	return Config{
		Yahoo: Yahoo{
			BaseURL:              "https://query1.finance.yahoo.com",
			Range:                "5d",
			MaxRequestsPerMinute: 60,
			Burst:                4,
			MaxConcurrency:       4,
			RequestTimeoutSec:    15,
		},
		Metals: QuoteSection{
			Enabled: true,
			Instruments: []quote.Instrument{
				{Symbol: "GC=F", Name: "Gold Futures (COMEX)", Unit: "$", TrackChange: true},
				{Symbol: "GLD", Name: "SPDR Gold Shares (ETF)", Unit: "$", TrackChange: true},
			},
		},
		Equities: QuoteSection{
			Enabled:      true,
			ShowFailures: true,
			Instruments: []quote.Instrument{
				{Symbol: "000660.KS", Name: "SK Hynix", Unit: "₩", TrackChange: true},
				{Symbol: "005930.KS", Name: "Samsung Electronics", Unit: "₩", TrackChange: true},
				{Symbol: "285A.T", Name: "Kioxia", Unit: "¥", TrackChange: true},
			},
		},
		Scrape: Scrape{
			Enabled:            true,
			TimeoutSec:         30,
			InsecureSkipVerify: true,
			Materials: []scrape.Material{
				{
					Name:    "六氟磷酸锂 (LiPF6)",
					Product: "Lithium hexafluorophosphate",
					URL:     "https://www.sunsirs.com/uk/prodetail-1432.html",
					Unit:    "元/吨",
					Source:  "SunSirs",
					Strategies: []scrape.StrategyConfig{
						{Kind: "table"},
						{Kind: "anchored"},
					},
				},
				{Name: "碳酸亚乙烯酯 (VC)", Product: "Vinylene carbonate"},
			},
		},
		Notify: Notify{TimeoutSec: 10},
		Run:    Run{TimeoutSec: 120},
	}
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields for secrecy.
// On a read or parse error the returned config is still usable: defaults
// plus environment.
func Load(path string) (Config, error) {
	def := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}

	cfg := def
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return finish(def), fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			// lists are replaced wholesale, never merged element by element
			cfg.Metals.Instruments = nil
			cfg.Equities.Instruments = nil
			cfg.Scrape.Materials = nil
			if err := json.Unmarshal(b, &cfg); err != nil {
				return finish(def), fmt.Errorf("parse config: %w", err)
			}
			if cfg.Metals.Instruments == nil {
				cfg.Metals.Instruments = def.Metals.Instruments
			}
			if cfg.Equities.Instruments == nil {
				cfg.Equities.Instruments = def.Equities.Instruments
			}
			if cfg.Scrape.Materials == nil {
				cfg.Scrape.Materials = def.Scrape.Materials
			}
		}
	}
	return finish(cfg), nil
}

func finish(cfg Config) Config {
	applyEnv(&cfg)
	cfg.Scrape.TimeoutSec = min(max(cfg.Scrape.TimeoutSec, minScrapeTimeoutSec), maxScrapeTimeoutSec)
	return cfg
}

// NotifierKind resolves Kind, falling back on whichever credentials are set.
func (n Notify) NotifierKind() string {
	if k := strings.ToLower(strings.TrimSpace(n.Kind)); k != "" {
		return k
	}
	switch {
	case n.FeishuWebhookURL != "":
		return NotifyFeishu
	case n.TelegramBotToken != "" && n.TelegramChatID != 0:
		return NotifyTelegram
	default:
		return NotifyStdout
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FEISHU_WEBHOOK_URL"); v != "" {
		cfg.Notify.FeishuWebhookURL = v
	}
	if v := os.Getenv("NOTIFY_KIND"); v != "" {
		cfg.Notify.Kind = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Notify.TelegramBotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if x, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			cfg.Notify.TelegramChatID = x
		}
	}
	if v := os.Getenv("REPORT_TIMEZONE"); v != "" {
		cfg.Report.Timezone = v
	}
	if v := os.Getenv("YAHOO_BASE_URL"); v != "" {
		cfg.Yahoo.BaseURL = v
	}
	if v := os.Getenv("YAHOO_RANGE"); v != "" {
		cfg.Yahoo.Range = v
	}
	envInt("YAHOO_MAX_RPM", 0, &cfg.Yahoo.MaxRequestsPerMinute)
	envInt("YAHOO_BURST", 1, &cfg.Yahoo.Burst)
	envInt("YAHOO_MIN_INTERVAL_MS", 0, &cfg.Yahoo.MinRequestIntervalMs)
	envInt("YAHOO_MAX_CONCURRENCY", 1, &cfg.Yahoo.MaxConcurrency)
	envInt("REQUEST_TIMEOUT_SEC", 1, &cfg.Yahoo.RequestTimeoutSec)
	envInt("SCRAPE_TIMEOUT_SEC", 1, &cfg.Scrape.TimeoutSec)
	envInt("RUN_TIMEOUT_SEC", 1, &cfg.Run.TimeoutSec)
	if v := os.Getenv("SCRAPE_INSECURE_TLS"); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y":
			cfg.Scrape.InsecureSkipVerify = true
		case "0", "false", "no", "n":
			cfg.Scrape.InsecureSkipVerify = false
		}
	}
}

// envInt sets *dst from key when the value parses and is at least floor.
func envInt(key string, floor int, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	x, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || x < floor {
		return
	}
	*dst = x
}
