package provider

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNoData is returned when a provider answered but had no closing prices
// for the symbol.
var ErrNoData = errors.New("no data")

// Provider is implemented by every market-data backend.
type Provider interface {
	Name() string
	// Closes returns up to n of the most recent daily closing prices for
	// symbol, oldest first. An empty history is reported as ErrNoData.
	Closes(ctx context.Context, symbol string, n int) ([]decimal.Decimal, error)
}
