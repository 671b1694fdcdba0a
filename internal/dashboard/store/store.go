// Package store holds the latest accepted snapshot of every dashboard
// stream and implements the fetch-apply cycle that decides whether a
// freshly fetched payload really replaces it.
package store

import (
	"sync"
	"time"

	"dashsync/internal/dashboard/compare"
	"dashsync/internal/dashboard/history"
	"dashsync/pkg/tradeapi"
)

// Stream identifies one independently-polled data source.
type Stream string

const (
	StreamMetrics Stream = "metrics"
	StreamPricing Stream = "pricing"
	StreamChats   Stream = "chats"
	StreamTrades  Stream = "trades"
)

// DisplayChatLimit caps how many chat entries the getter exposes.
// The stored list itself is not bounded.
const DisplayChatLimit = 10

// Status is the per-stream fetch state. LastUpdate is zero until the
// stream's first accepted result.
type Status struct {
	Loading    bool      `json:"loading"`
	LastError  string    `json:"lastError,omitempty"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// Store owns the per-stream snapshots. Each stream is mutated only
// through its own Begin/Fail/Apply cycle; an apply runs to completion
// under the lock, so mutations from two streams never interleave.
// Responses for the same stream may still land out of issue order;
// the store is last-applied-wins and does not sequence-stamp them.
type Store struct {
	mu     sync.RWMutex
	closed bool

	status map[Stream]*Status

	metrics    []tradeapi.MetricPoint
	totalCount int

	quotes  map[string]float64
	history *history.PriceHistory

	chats  []tradeapi.ChatRecord
	trades []tradeapi.TradeRecord
}

func New() *Store {
	return &Store{
		status: map[Stream]*Status{
			StreamMetrics: {},
			StreamPricing: {},
			StreamChats:   {},
			StreamTrades:  {},
		},
		quotes:  make(map[string]float64),
		history: history.New(),
	}
}

// Begin marks the start of a fetch attempt: loading set, lastError
// cleared. Previously accepted data stays visible.
func (s *Store) Begin(stream Stream) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	st := s.status[stream]
	st.Loading = true
	st.LastError = ""
}

// Fail records a transport failure. The existing snapshot is untouched:
// stale-but-present data beats a blanked view.
func (s *Store) Fail(stream Stream, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	st := s.status[stream]
	st.Loading = false
	if err != nil {
		st.LastError = err.Error()
	}
}

// Finish clears the loading flag without touching anything else. Used
// for protocol-level no-ops (success=false or missing data).
func (s *Store) Finish(stream Stream) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.status[stream].Loading = false
}

// ApplyMetrics commits the new point series only when it differs from
// the stored one, but always refreshes lastUpdate: an unchanged series
// still signals liveness.
func (s *Store) ApplyMetrics(points []tradeapi.MetricPoint, totalCount int) (committed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	st := s.status[StreamMetrics]
	st.Loading = false
	st.LastUpdate = time.Now()

	if compare.DeepEqual(points, s.metrics) && totalCount == s.totalCount {
		return false
	}

	s.metrics = append([]tradeapi.MetricPoint(nil), points...)
	s.totalCount = totalCount
	return true
}

// ApplyQuotes runs the pricing apply-cycle: if any tracked symbol's
// price moved past the tolerance, every symbol is offered to the
// history buffer, and the full quote map is committed only when at
// least one buffer actually recorded. A no-change fetch commits
// nothing and deliberately leaves lastUpdate alone, so the animation
// layer sees no churn. Two canceling sub-tolerance drifts across
// symbols can suppress a commit indefinitely; accepted edge case.
func (s *Store) ApplyQuotes(quotes map[string]float64) (committed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	st := s.status[StreamPricing]
	st.Loading = false

	anyChanged := false
	for _, sym := range tradeapi.Symbols {
		if !compare.PricesEqual(quotes[sym], s.quotes[sym]) {
			anyChanged = true
			break
		}
	}
	if !anyChanged {
		return false
	}

	recorded := false
	for _, sym := range tradeapi.Symbols {
		price, ok := quotes[sym]
		if !ok {
			continue
		}
		if s.history.RecordIfChanged(sym, price) {
			recorded = true
		}
	}
	if !recorded {
		return false
	}

	next := make(map[string]float64, len(quotes))
	for sym, price := range quotes {
		next[sym] = price
	}
	s.quotes = next
	st.LastUpdate = time.Now()
	return true
}

// ApplyChats commits the fetched list wholesale; chat lists are not
// diffed field by field.
func (s *Store) ApplyChats(chats []tradeapi.ChatRecord) (committed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	st := s.status[StreamChats]
	st.Loading = false
	st.LastUpdate = time.Now()

	s.chats = append([]tradeapi.ChatRecord(nil), chats...)
	return true
}

// ApplyTrades commits the fetched list wholesale.
func (s *Store) ApplyTrades(trades []tradeapi.TradeRecord) (committed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	st := s.status[StreamTrades]
	st.Loading = false
	st.LastUpdate = time.Now()

	s.trades = append([]tradeapi.TradeRecord(nil), trades...)
	return true
}

// Close makes every further mutation a no-op, so fetches that complete
// after teardown cannot touch state.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Status returns a copy of the stream's fetch state.
func (s *Store) Status(stream Stream) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.status[stream]
}

// EverSucceeded reports whether the stream has ever accepted a result.
func (s *Store) EverSucceeded(stream Stream) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.status[stream].LastUpdate.IsZero()
}

// Metrics returns a copy of the accepted point series and the total count.
func (s *Store) Metrics() ([]tradeapi.MetricPoint, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]tradeapi.MetricPoint(nil), s.metrics...), s.totalCount
}

// Quotes returns a copy of the accepted symbol-to-price map.
func (s *Store) Quotes() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string]float64, len(s.quotes))
	for sym, price := range s.quotes {
		cp[sym] = price
	}
	return cp
}

// PreviousPrice returns the animation seed for a symbol: the
// second-to-last accepted price, falling back to the given current one.
func (s *Store) PreviousPrice(symbol string, fallback float64) float64 {
	return s.history.Previous(symbol, fallback)
}

// PriceTrail returns the symbol's retained price history, oldest first.
func (s *Store) PriceTrail(symbol string) []float64 {
	return s.history.Values(symbol)
}

// Chats returns up to DisplayChatLimit most recent chat entries plus the
// full fetched count.
func (s *Store) Chats() ([]tradeapi.ChatRecord, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.chats)
	if n > DisplayChatLimit {
		n = DisplayChatLimit
	}
	return append([]tradeapi.ChatRecord(nil), s.chats[:n]...), len(s.chats)
}

// Trades returns a copy of the accepted trade list.
func (s *Store) Trades() []tradeapi.TradeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]tradeapi.TradeRecord(nil), s.trades...)
}
