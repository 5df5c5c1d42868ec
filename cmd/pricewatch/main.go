package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"

	"pricewatch/internal/config"
	"pricewatch/internal/httpx"
	"pricewatch/internal/notify"
	"pricewatch/internal/pipeline"
	"pricewatch/internal/provider/ratelimit"
	"pricewatch/internal/provider/yahoo"
	"pricewatch/internal/provider/yahooadapter"
	"pricewatch/internal/quote"
	"pricewatch/internal/report"
	"pricewatch/internal/scrape"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix(fmt.Sprintf("[run %s] ", uuid.NewString()[:8]))

	// a bad config file is not fatal: Load still returns defaults plus env
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Printf("config: %v (continuing with defaults)", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Run.TimeoutSec)*time.Second)
	defer cancel()

	runner := newRunner(cfg)
	sum := runner.Run(ctx)
	if sum.DeliveryErr != nil {
		log.Printf("report not delivered; run finished anyway")
	}
}

func newRunner(cfg config.Config) *pipeline.Runner {
	apiHTTP := httpx.New(time.Duration(cfg.Yahoo.RequestTimeoutSec) * time.Second)

	opts := []yahoo.ChartAPIClientOption{yahoo.WithHTTPClient(apiHTTP.Doer())}
	if cfg.Yahoo.BaseURL != "" {
		opts = append(opts, yahoo.WithBaseURL(cfg.Yahoo.BaseURL))
	}

	var categories []pipeline.QuoteCategory
	chart, err := yahoo.NewChartAPIClient(opts...)
	if err != nil {
		log.Printf("yahoo client: %v; skipping market quotes", err)
	} else {
		if cfg.Metals.Enabled {
			style := report.Metals
			style.ShowFailures = cfg.Metals.ShowFailures
			categories = append(categories, pipeline.QuoteCategory{Style: style, Instruments: cfg.Metals.Instruments})
		}
		if cfg.Equities.Enabled {
			style := report.Equities
			style.ShowFailures = cfg.Equities.ShowFailures
			categories = append(categories, pipeline.QuoteCategory{Style: style, Instruments: cfg.Equities.Instruments})
		}
	}
	p := ratelimit.Wrap(
		yahooadapter.New(yahooadapter.Config{Name: "Yahoo", Range: cfg.Yahoo.Range}, chart),
		cfg.Yahoo.MaxRequestsPerMinute,
		cfg.Yahoo.Burst,
		time.Duration(cfg.Yahoo.MinRequestIntervalMs)*time.Millisecond,
	)

	runner := &pipeline.Runner{
		Categories: categories,
		Quotes:     &quote.Fetcher{P: p, MaxConcurrency: cfg.Yahoo.MaxConcurrency},
		Notifier:   newNotifier(cfg.Notify),
		Location:   location(cfg.Report.Timezone),
	}
	if cfg.Scrape.Enabled {
		scrapeHTTP := httpx.New(time.Duration(cfg.Scrape.TimeoutSec)*time.Second, httpx.WithInsecureTLS(cfg.Scrape.InsecureSkipVerify))
		runner.Materials = cfg.Scrape.Materials
		runner.Extractor = &scrape.Extractor{Client: scrapeHTTP}
	}
	return runner
}

// newNotifier builds the configured backend. Any setup problem falls back to
// printing the report so the run still produces output.
func newNotifier(cfg config.Notify) notify.Notifier {
	client := httpx.New(time.Duration(cfg.TimeoutSec) * time.Second)
	client.UserAgent = "pricewatch/1.0"

	switch kind := cfg.NotifierKind(); kind {
	case config.NotifyFeishu:
		f, err := notify.NewFeishu(cfg.FeishuWebhookURL, notify.WithHTTPClient(client.Doer()))
		if err == nil {
			return f
		}
		log.Printf("notify: %v; printing report instead", err)
	case config.NotifyTelegram:
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.TelegramEndpoint, client.Doer())
		if err == nil {
			return tg
		}
		log.Printf("notify: %v; printing report instead", err)
	case config.NotifyStdout:
		log.Printf("notify: no chat backend configured; printing report")
	default:
		log.Printf("notify: unknown kind %q; printing report instead", kind)
	}
	return notify.Writer{W: os.Stdout}
}

func location(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("report: timezone %q: %v; using local time", name, err)
		return time.Local
	}
	return loc
}
