// Package report renders quotes and scraped prices into the chat message.
package report

import (
	"fmt"
	"strings"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// Section is one titled block of the message.
type Section struct {
	Title string
	Lines []string
}

// Report is the full message. Sections render in the order given.
type Report struct {
	GeneratedAt time.Time
	Sections    []Section
}

func New(now time.Time, sections ...Section) Report {
	return Report{GeneratedAt: now, Sections: sections}
}

func (r Report) String() string {
	var b strings.Builder
	b.WriteString("📊 **Daily Price Monitoring Update**\n")
	fmt.Fprintf(&b, "🕒 Time: %s\n\n", r.GeneratedAt.Format(timeLayout))
	for i, s := range r.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s.Title)
		b.WriteString("\n")
		for _, l := range s.Lines {
			b.WriteString(l)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n---")
	return b.String()
}

func warning(noun string) string {
	return fmt.Sprintf("⚠️ Failed to fetch %s data.", noun)
}
