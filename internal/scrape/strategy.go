package scrape

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// DefaultMinPrice separates prices from row indexes and similar small
// integers on a page.
const DefaultMinPrice = 1000

const defaultWindow = 4 << 10

// Strategy finds a product's price in a page.
type Strategy interface {
	Name() string
	Extract(page []byte, product string) (decimal.Decimal, error)
}

// StrategyConfig selects and parameterizes a Strategy.
type StrategyConfig struct {
	Kind string `json:"kind"` // table | anchored | pattern
	// MinPrice is the exclusive lower bound for a candidate. table and
	// anchored default to DefaultMinPrice; pattern applies it only when set.
	MinPrice float64 `json:"min_price,omitempty"`
	// Window bounds how far past the product name anchored looks, in bytes.
	Window int `json:"window,omitempty"`
	// Pattern is a regexp with one capture group for the price. The literal
	// {{product}} is replaced with the quoted product name.
	Pattern string `json:"pattern,omitempty"`
}

// NewStrategy builds the strategy described by cfg.
func NewStrategy(cfg StrategyConfig) (Strategy, error) {
	switch strings.ToLower(cfg.Kind) {
	case "", "table":
		return &TableStrategy{MinPrice: minPrice(cfg.MinPrice, DefaultMinPrice)}, nil
	case "anchored":
		w := cfg.Window
		if w <= 0 {
			w = defaultWindow
		}
		return &AnchoredStrategy{MinPrice: minPrice(cfg.MinPrice, DefaultMinPrice), Window: w}, nil
	case "pattern":
		s, err := NewPatternStrategy(cfg.Pattern, minPrice(cfg.MinPrice, 0))
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown strategy kind %q", cfg.Kind)
	}
}

// BuildStrategies builds the strategies for m, defaulting to a table scan.
func BuildStrategies(m Material) ([]Strategy, error) {
	if len(m.Strategies) == 0 {
		return []Strategy{&TableStrategy{MinPrice: decimal.NewFromInt(DefaultMinPrice)}}, nil
	}
	out := make([]Strategy, 0, len(m.Strategies))
	for i, sc := range m.Strategies {
		s, err := NewStrategy(sc)
		if err != nil {
			return nil, fmt.Errorf("%s strategy %d: %w", m.Name, i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func minPrice(v float64, def float64) decimal.Decimal {
	if v <= 0 {
		v = def
	}
	return decimal.NewFromFloat(v)
}

// TableStrategy reads HTML tables: the first row mentioning the product is
// scanned cell by cell for a number above MinPrice.
type TableStrategy struct {
	MinPrice decimal.Decimal
}

func (s *TableStrategy) Name() string { return "table" }

func (s *TableStrategy) Extract(page []byte, product string) (decimal.Decimal, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing html: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(product))
	var (
		price   decimal.Decimal
		found   bool
		rowSeen bool
	)
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
			// layout rows wrapping a nested table are visited through the nested table
			if row.Find("table").Length() > 0 {
				return true
			}
			if !strings.Contains(strings.ToLower(row.Text()), needle) {
				return true
			}
			rowSeen = true
			row.ChildrenFiltered("td, th").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
				v, ok := parseNumber(cell.Text())
				if ok && v.GreaterThan(s.MinPrice) {
					price, found = v, true
					return false
				}
				return true
			})
			// only the first matching row of each table counts
			return false
		})
		return !found
	})

	switch {
	case found:
		return price, nil
	case rowSeen:
		return decimal.Zero, ErrPriceNotFound
	default:
		return decimal.Zero, ErrProductNotFound
	}
}

var (
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	numberRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)
)

// AnchoredStrategy searches raw markup: after each occurrence of the product
// name it takes the first number above MinPrice within Window bytes. Numbers
// that are part of a date or time are skipped.
type AnchoredStrategy struct {
	MinPrice decimal.Decimal
	Window   int
}

func (s *AnchoredStrategy) Name() string { return "anchored" }

func (s *AnchoredStrategy) Extract(page []byte, product string) (decimal.Decimal, error) {
	anchor, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(strings.TrimSpace(product)))
	if err != nil {
		return decimal.Zero, err
	}
	locs := anchor.FindAllIndex(page, -1)
	if len(locs) == 0 {
		return decimal.Zero, ErrProductNotFound
	}

	for _, loc := range locs {
		end := min(len(page), loc[1]+s.Window)
		text := tagRe.ReplaceAll(cutOpenTag(page[loc[1]:end]), []byte(" "))
		for _, m := range numberRe.FindAllIndex(text, -1) {
			if partOfDate(text, m[0], m[1]) {
				continue
			}
			v, ok := parseNumber(string(text[m[0]:m[1]]))
			if ok && v.GreaterThan(s.MinPrice) {
				return v, nil
			}
		}
	}
	return decimal.Zero, ErrPriceNotFound
}

// cutOpenTag drops a trailing tag that the window cut before its closing '>',
// so its attribute values never reach the number scan.
func cutOpenTag(b []byte) []byte {
	i := bytes.LastIndexByte(b, '<')
	if i >= 0 && bytes.IndexByte(b[i:], '>') < 0 {
		return b[:i]
	}
	return b
}

func partOfDate(text []byte, start, end int) bool {
	sep := func(b byte) bool { return b == '-' || b == '/' || b == ':' }
	if start > 0 && sep(text[start-1]) {
		return true
	}
	return end < len(text) && sep(text[end])
}

const productPlaceholder = "{{product}}"

// PatternStrategy applies a page-specific regexp whose first capture group
// holds the price.
type PatternStrategy struct {
	Pattern  string
	MinPrice decimal.Decimal
	static   *regexp.Regexp
}

func NewPatternStrategy(pattern string, minPrice decimal.Decimal) (*PatternStrategy, error) {
	if pattern == "" {
		return nil, fmt.Errorf("pattern strategy needs a pattern")
	}
	probe, err := regexp.Compile(strings.ReplaceAll(pattern, productPlaceholder, "x"))
	if err != nil {
		return nil, fmt.Errorf("compiling pattern: %w", err)
	}
	if probe.NumSubexp() < 1 {
		return nil, fmt.Errorf("pattern %q has no capture group", pattern)
	}
	s := &PatternStrategy{Pattern: pattern, MinPrice: minPrice}
	if !strings.Contains(pattern, productPlaceholder) {
		s.static = probe
	}
	return s, nil
}

func (s *PatternStrategy) Name() string { return "pattern" }

func (s *PatternStrategy) Extract(page []byte, product string) (decimal.Decimal, error) {
	re := s.static
	if re == nil {
		var err error
		re, err = regexp.Compile(strings.ReplaceAll(s.Pattern, productPlaceholder, regexp.QuoteMeta(product)))
		if err != nil {
			return decimal.Zero, fmt.Errorf("compiling pattern: %w", err)
		}
	}

	m := re.FindSubmatch(page)
	if m == nil {
		if product != "" && !bytes.Contains(bytes.ToLower(page), []byte(strings.ToLower(product))) {
			return decimal.Zero, ErrProductNotFound
		}
		return decimal.Zero, ErrPriceNotFound
	}
	v, ok := parseNumber(string(m[1]))
	if !ok || !v.GreaterThan(s.MinPrice) {
		return decimal.Zero, ErrPriceNotFound
	}
	return v, nil
}
