package yahooadapter

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"pricewatch/internal/provider"
	"pricewatch/internal/provider/yahoo"
)

// ChartClient is the subset of the chart API client the adapter needs.
type ChartClient interface {
	GetChart(ctx context.Context, symbol string, rng string, interval string, opts ...yahoo.ChartAPIClientOption) ([]yahoo.Bar, error)
}

type Config struct {
	Name string // display name, default: Yahoo
	// Range is the history window requested per symbol. It must cover at
	// least two trading days; "5d" survives weekends and holidays.
	Range string
}

type Adapter struct {
	cfg    Config
	client ChartClient
}

func New(cfg Config, client ChartClient) *Adapter {
	if cfg.Name == "" {
		cfg.Name = "Yahoo"
	}
	if cfg.Range == "" {
		cfg.Range = "5d"
	}
	return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Name() string { return a.cfg.Name }

// Closes returns the last n non-null daily closes, oldest first.
func (a *Adapter) Closes(ctx context.Context, symbol string, n int) ([]decimal.Decimal, error) {
	bars, err := a.client.GetChart(ctx, symbol, a.cfg.Range, "1d")
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", a.cfg.Name, symbol, err)
	}

	out := make([]decimal.Decimal, 0, len(bars))
	for _, b := range bars {
		if b.Close == nil || math.IsNaN(*b.Close) || math.IsInf(*b.Close, 0) {
			continue
		}
		out = append(out, decimal.NewFromFloat(*b.Close))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s %s: %w", a.cfg.Name, symbol, provider.ErrNoData)
	}
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}
