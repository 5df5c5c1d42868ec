// Package scrape extracts commodity prices from vendor web pages.
//
// Vendor markup drifts without notice, so extraction is split into
// interchangeable strategies. A material lists the strategies to try in
// order; switching a source to a new layout means editing its strategy list,
// not the pipeline.
package scrape

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrProductNotFound means the page does not mention the product at all.
	ErrProductNotFound = errors.New("product not found")
	// ErrPriceNotFound means the product was found but no plausible price was.
	ErrPriceNotFound = errors.New("price not found")
)

// Material is a commodity scraped from a vendor page.
type Material struct {
	Name    string `json:"name"`
	Product string `json:"product"`
	URL     string `json:"url"`
	Unit    string `json:"unit"`
	Source  string `json:"source"`
	// Strategies are tried in order; the first success wins.
	Strategies []StrategyConfig `json:"strategies"`
}

// Result is either a MaterialPrice or a MaterialFailure.
type Result interface {
	Label() string
	isResult()
}

type MaterialPrice struct {
	Name   string
	Price  decimal.Decimal
	Unit   string
	Source string
}

func (p MaterialPrice) Label() string { return p.Name }
func (MaterialPrice) isResult()       {}

type MaterialFailure struct {
	Name   string
	Reason string
}

func (f MaterialFailure) Label() string { return f.Name }
func (MaterialFailure) isResult()       {}

// parseNumber parses a whole cell or token such as "95,000.00".
func parseNumber(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	// decimal accepts exponents; prices on these pages never use them
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
