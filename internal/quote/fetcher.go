package quote

import (
	"context"
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"pricewatch/internal/provider"
)

// Fetcher queries a provider for a list of instruments.
type Fetcher struct {
	P provider.Provider
	// MaxConcurrency limits parallel symbol requests. Defaults to 1 when <= 0.
	MaxConcurrency int
	Logger         *log.Logger
}

// Fetch returns one Result per instrument, in input order. A failing symbol
// becomes a Failure and never affects its siblings.
func (f *Fetcher) Fetch(ctx context.Context, instruments []Instrument) []Result {
	out := make([]Result, len(instruments))

	g, gctx := errgroup.WithContext(ctx)
	limit := f.MaxConcurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, in := range instruments {
		g.Go(func() error {
			out[i] = f.fetchOne(gctx, in)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (f *Fetcher) fetchOne(ctx context.Context, in Instrument) Result {
	closes, err := f.P.Closes(ctx, in.Symbol, 2)
	if err != nil {
		f.logf("%s: error fetching %s: %v", f.P.Name(), in.Symbol, err)
		return Failure{Instrument: in, Reason: err.Error()}
	}

	switch len(closes) {
	case 0:
		f.logf("%s: no data for %s", f.P.Name(), in.Symbol)
		return Failure{Instrument: in, Reason: provider.ErrNoData.Error()}
	case 1:
		return NewPriceQuote(in, closes[0], decimal.NullDecimal{})
	default:
		latest := closes[len(closes)-1]
		prev := closes[len(closes)-2]
		return NewPriceQuote(in, latest, decimal.NewNullDecimal(prev))
	}
}

func (f *Fetcher) logf(format string, args ...any) {
	if f.Logger != nil {
		f.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
