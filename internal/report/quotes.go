package report

import (
	"fmt"

	"pricewatch/internal/quote"
)

// QuoteStyle describes how a category of market quotes is rendered.
type QuoteStyle struct {
	Title  string
	Noun   string // used in the warning line
	Bullet string
	// Places is the number of decimals for price and change. The percentage
	// always has two.
	Places int32
	// ShowFailures lists failed instruments as error lines instead of
	// dropping them.
	ShowFailures bool
}

var (
	Metals = QuoteStyle{
		Title:  "🏆 **Precious Metals**",
		Noun:   "gold",
		Bullet: "🔹",
		Places: 2,
	}
	Equities = QuoteStyle{
		Title:        "💾 **Memory & Storage**",
		Noun:         "semiconductor",
		Bullet:       "🔸",
		Places:       0,
		ShowFailures: true,
	}
)

// QuoteSection renders rs in input order. A section left with no entries
// renders the warning line instead.
func QuoteSection(style QuoteStyle, rs []quote.Result) Section {
	s := Section{Title: style.Title}
	for _, r := range rs {
		switch v := r.(type) {
		case quote.PriceQuote:
			s.Lines = append(s.Lines, quoteLines(style, v)...)
		case quote.Failure:
			if style.ShowFailures {
				s.Lines = append(s.Lines, fmt.Sprintf("%s %s: `Error` (%s)", style.Bullet, v.Name, v.Reason))
			}
		}
	}
	if len(s.Lines) == 0 {
		s.Lines = []string{warning(style.Noun)}
	}
	return s
}

func quoteLines(style QuoteStyle, q quote.PriceQuote) []string {
	lines := []string{
		fmt.Sprintf("%s %s", style.Bullet, q.Name),
		fmt.Sprintf("   Price: `%s%s`", q.Unit, grouped(q.Price, style.Places)),
	}
	if q.TrackChange {
		lines = append(lines, fmt.Sprintf("   Change: %s `%s` (`%s%%`)",
			trend(q.Change), signed(q.Change, style.Places), signed(q.ChangePercent, 2)))
	}
	return lines
}
