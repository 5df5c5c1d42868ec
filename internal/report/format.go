package report

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// grouped formats d with thousands separators and a fixed number of
// decimals, independent of the host locale.
func grouped(d decimal.Decimal, places int32) string {
	f := d.Round(places).InexactFloat64()
	if places <= 0 {
		return humanize.FormatFloat("#,###.", f)
	}
	return humanize.FormatFloat("#,###."+strings.Repeat("#", int(places)), f)
}

// signed always carries a sign: "+10.00", "-3", "+0.00". A negative value
// that rounds to zero keeps its sign ("-0.00") so it agrees with trend.
func signed(d decimal.Decimal, places int32) string {
	s := d.StringFixed(places)
	if strings.HasPrefix(s, "-") {
		return s
	}
	if d.Sign() < 0 {
		return "-" + s
	}
	return "+" + s
}

func trend(change decimal.Decimal) string {
	if change.Sign() >= 0 {
		return "📈"
	}
	return "📉"
}
