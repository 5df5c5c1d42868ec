package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pricewatch/internal/provider"
)

// MinInterval wraps a provider and enforces a minimum time between call starts.
// Concurrent callers queue behind each other. A caller whose context is
// canceled while waiting returns its slot when no later caller has queued
// behind it; otherwise the queued callers keep their times.
type MinInterval struct {
	P        provider.Provider
	Interval time.Duration

	mu   sync.Mutex
	next time.Time
}

func (m *MinInterval) Name() string { return m.P.Name() }

func (m *MinInterval) Closes(ctx context.Context, symbol string, n int) ([]decimal.Decimal, error) {
	if m.Interval > 0 {
		// reserve a slot, then wait for it outside the lock
		m.mu.Lock()
		now := time.Now()
		slot := m.next
		if slot.Before(now) {
			slot = now
		}
		reserved := slot.Add(m.Interval)
		m.next = reserved
		m.mu.Unlock()

		if wait := time.Until(slot); wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				m.release(slot, reserved)
				return nil, ctx.Err()
			case <-t.C:
			}
		}
	}
	return m.P.Closes(ctx, symbol, n)
}

func (m *MinInterval) release(slot, reserved time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.next.Equal(reserved) {
		m.next = slot
	}
}
