// Package quote turns provider closing prices into day-over-day quotes.
package quote

import (
	"github.com/shopspring/decimal"
)

// Instrument is one configured ticker.
type Instrument struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	TrackChange bool   `json:"track_change"`
}

// Result is either a PriceQuote or a Failure.
type Result interface {
	Label() string
	isResult()
}

// PriceQuote is a successful fetch. Previous is invalid when the provider
// returned a single data point; Change and ChangePercent are zero then.
type PriceQuote struct {
	Instrument
	Price         decimal.Decimal
	Previous      decimal.NullDecimal
	Change        decimal.Decimal
	ChangePercent decimal.Decimal
}

func (q PriceQuote) Label() string { return q.Name }
func (PriceQuote) isResult()       {}

// Failure records why an instrument has no quote.
type Failure struct {
	Instrument
	Reason string
}

func (f Failure) Label() string { return f.Name }
func (Failure) isResult()       {}

var hundred = decimal.NewFromInt(100)

// NewPriceQuote builds a quote from the latest close and an optional previous one.
func NewPriceQuote(in Instrument, latest decimal.Decimal, previous decimal.NullDecimal) PriceQuote {
	q := PriceQuote{
		Instrument:    in,
		Price:         latest,
		Previous:      previous,
		Change:        decimal.Zero,
		ChangePercent: decimal.Zero,
	}
	if previous.Valid {
		q.Change = latest.Sub(previous.Decimal)
		if !previous.Decimal.IsZero() {
			q.ChangePercent = q.Change.Div(previous.Decimal).Mul(hundred)
		}
	}
	return q
}

// Successes returns the quotes in rs, dropping failures.
func Successes(rs []Result) []PriceQuote {
	out := make([]PriceQuote, 0, len(rs))
	for _, r := range rs {
		if q, ok := r.(PriceQuote); ok {
			out = append(out, q)
		}
	}
	return out
}
