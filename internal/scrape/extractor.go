package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"pricewatch/internal/httpx"
)

const maxPageBytes = 4 << 20

// Failure reasons shown in the report.
const (
	ReasonNoSource      = "No Source"
	ReasonFetchFailed   = "Fetch Failed (Check Logs)"
	ReasonNotFound      = "Product Not Found"
	ReasonPriceNotFound = "Price Not Found"
)

// Extractor downloads vendor pages and runs each material's strategies.
type Extractor struct {
	Client *httpx.Client
	Logger *log.Logger
}

// Extract never returns an error: every problem is logged and reported as a
// MaterialFailure.
func (e *Extractor) Extract(ctx context.Context, m Material) Result {
	if m.URL == "" {
		return MaterialFailure{Name: m.Name, Reason: ReasonNoSource}
	}

	strategies, err := BuildStrategies(m)
	if err != nil {
		e.logf("%s: bad strategy config: %v", m.Source, err)
		return MaterialFailure{Name: m.Name, Reason: ReasonFetchFailed}
	}

	page, err := e.FetchPage(ctx, m.URL)
	if err != nil {
		e.logf("%s: error fetching %s: %v", m.Source, m.Name, err)
		return MaterialFailure{Name: m.Name, Reason: ReasonFetchFailed}
	}

	price, used, err := Apply(page, m.Product, strategies)
	if err != nil {
		e.logf("%s: %s: %v", m.Source, m.Name, err)
		switch {
		case errors.Is(err, ErrPriceNotFound):
			return MaterialFailure{Name: m.Name, Reason: ReasonPriceNotFound}
		case errors.Is(err, ErrProductNotFound):
			return MaterialFailure{Name: m.Name, Reason: ReasonNotFound}
		default:
			return MaterialFailure{Name: m.Name, Reason: ReasonFetchFailed}
		}
	}
	if used != strategies[0].Name() {
		e.logf("%s: warning: %s strategy failed for %s, price came from %s; markup may have changed", m.Source, strategies[0].Name(), m.Name, used)
	}
	return MaterialPrice{Name: m.Name, Price: price, Unit: m.Unit, Source: m.Source}
}

// FetchPage GETs url and returns the body. Non-2xx statuses are errors.
func (e *Extractor) FetchPage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")

	res, err := e.Client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 200))
		return nil, fmt.Errorf("status code %d: %s", res.StatusCode, strings.TrimSpace(string(b)))
	}
	return io.ReadAll(io.LimitReader(res.Body, maxPageBytes))
}

// Apply runs strategies in order and returns the first price found together
// with the name of the strategy that found it. When all fail, the most
// specific error wins: a price miss beats a product miss.
func Apply(page []byte, product string, strategies []Strategy) (decimal.Decimal, string, error) {
	var errs []error
	sawProduct := false
	for _, s := range strategies {
		v, err := s.Extract(page, product)
		if err == nil {
			return v, s.Name(), nil
		}
		if errors.Is(err, ErrPriceNotFound) {
			sawProduct = true
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
	}
	if len(errs) == 0 {
		return decimal.Zero, "", errors.New("no strategies configured")
	}
	if sawProduct {
		return decimal.Zero, "", fmt.Errorf("%w (%w)", ErrPriceNotFound, errors.Join(errs...))
	}
	return decimal.Zero, "", errors.Join(errs...)
}

func (e *Extractor) logf(format string, args ...any) {
	if e.Logger != nil {
		e.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
