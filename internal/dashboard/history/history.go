// Package history keeps a short per-symbol trail of accepted prices,
// used to seed the "previous" side of an animated price transition.
package history

import (
	"sync"

	"dashsync/internal/dashboard/compare"
)

// Capacity is the number of prices retained per symbol. Oldest evicted first.
const Capacity = 5

// PriceHistory is a per-symbol FIFO of recent prices. Buffers are created
// lazily on the first observed change and live for the process lifetime;
// there is no time-based expiry, so a quiet symbol keeps its last known
// history indefinitely.
type PriceHistory struct {
	mu   sync.RWMutex
	data map[string][]float64
}

func New() *PriceHistory {
	return &PriceHistory{
		data: make(map[string][]float64),
	}
}

// RecordIfChanged appends price to the symbol's buffer iff it differs from
// the buffer's last value by more than the price tolerance, evicting the
// oldest entry when over capacity. Returns whether a value was recorded.
func (h *PriceHistory) RecordIfChanged(symbol string, price float64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf := h.data[symbol]
	if len(buf) > 0 && compare.PricesEqual(buf[len(buf)-1], price) {
		return false
	}

	buf = append(buf, price)
	if len(buf) > Capacity {
		buf = buf[len(buf)-Capacity:]
	}
	h.data[symbol] = buf
	return true
}

// Previous returns the second-to-last recorded value, the only recorded
// value if the history has length 1, or fallback if the symbol has no
// history yet.
func (h *PriceHistory) Previous(symbol string, fallback float64) float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf := h.data[symbol]
	switch {
	case len(buf) == 0:
		return fallback
	case len(buf) == 1:
		return buf[0]
	default:
		return buf[len(buf)-2]
	}
}

// Values returns a copy of the symbol's buffer, oldest first.
func (h *PriceHistory) Values(symbol string) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf := h.data[symbol]
	if buf == nil {
		return nil
	}
	cp := make([]float64, len(buf))
	copy(cp, buf)
	return cp
}
