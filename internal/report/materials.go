package report

import (
	"fmt"

	"pricewatch/internal/scrape"
)

const (
	materialsTitle = "🔋 **Battery Materials**"
	materialBullet = "🔹"
)

// MaterialSection renders scraped prices. Failures are always listed.
func MaterialSection(rs []scrape.Result) Section {
	s := Section{Title: materialsTitle}
	for _, r := range rs {
		switch v := r.(type) {
		case scrape.MaterialPrice:
			s.Lines = append(s.Lines,
				fmt.Sprintf("%s %s", materialBullet, v.Name),
				fmt.Sprintf("   Price: `%s %s`", grouped(v.Price, 2), v.Unit),
				fmt.Sprintf("   Source: %s", v.Source),
			)
		case scrape.MaterialFailure:
			s.Lines = append(s.Lines, fmt.Sprintf("%s %s: `Unavailable` (%s)", materialBullet, v.Name, v.Reason))
		}
	}
	if len(s.Lines) == 0 {
		s.Lines = []string{warning("material")}
	}
	return s
}
