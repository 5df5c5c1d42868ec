// Package pipeline runs one fetch, format and send cycle.
package pipeline

import (
	"context"
	"log"
	"time"

	"pricewatch/internal/notify"
	"pricewatch/internal/quote"
	"pricewatch/internal/report"
	"pricewatch/internal/scrape"
)

type QuoteFetcher interface {
	Fetch(ctx context.Context, instruments []quote.Instrument) []quote.Result
}

type MaterialExtractor interface {
	Extract(ctx context.Context, m scrape.Material) scrape.Result
}

// QuoteCategory is one market-data section of the report.
type QuoteCategory struct {
	Style       report.QuoteStyle
	Instruments []quote.Instrument
}

// Runner wires the fetchers, the formatter and the notifier. Categories
// render in order, followed by the materials section when Extractor is set.
type Runner struct {
	Categories []QuoteCategory
	Quotes     QuoteFetcher
	Materials  []scrape.Material
	Extractor  MaterialExtractor
	Notifier   notify.Notifier
	// Now defaults to time.Now; Location defaults to time.Local.
	Now      func() time.Time
	Location *time.Location
	Logger   *log.Logger
}

// Summary describes a finished run.
type Summary struct {
	Quotes           int
	QuoteFailures    int
	Materials        int
	MaterialFailures int
	Text             string
	// DeliveryErr is the notifier error, if any. The run still counts as
	// complete.
	DeliveryErr error
}

// Run never fails: fetch problems become report lines and a delivery
// problem is logged and recorded in the summary.
func (r *Runner) Run(ctx context.Context) Summary {
	var sum Summary
	r.logf("pipeline: starting price fetch")

	sections := make([]report.Section, 0, len(r.Categories)+1)
	for _, c := range r.Categories {
		results := r.Quotes.Fetch(ctx, c.Instruments)
		ok := len(quote.Successes(results))
		sum.Quotes += ok
		sum.QuoteFailures += len(results) - ok
		if ok == 0 && len(results) > 0 {
			r.logf("pipeline: no %s quotes fetched", c.Style.Noun)
		}
		sections = append(sections, report.QuoteSection(c.Style, results))
	}

	if r.Extractor != nil {
		results := make([]scrape.Result, 0, len(r.Materials))
		for _, m := range r.Materials {
			res := r.Extractor.Extract(ctx, m)
			if _, ok := res.(scrape.MaterialPrice); ok {
				sum.Materials++
			} else {
				sum.MaterialFailures++
			}
			results = append(results, res)
		}
		sections = append(sections, report.MaterialSection(results))
	}

	sum.Text = report.New(r.now(), sections...).String()

	if err := r.Notifier.Notify(ctx, sum.Text); err != nil {
		sum.DeliveryErr = err
		r.logf("pipeline: delivery failed: %v", err)
	} else {
		r.logf("pipeline: report delivered")
	}
	r.logf("pipeline: done: quotes=%d failed=%d materials=%d failed=%d",
		sum.Quotes, sum.QuoteFailures, sum.Materials, sum.MaterialFailures)
	return sum
}

func (r *Runner) now() time.Time {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

func (r *Runner) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
