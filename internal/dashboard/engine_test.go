package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"dashsync/config"
	"dashsync/internal/dashboard/store"
	"dashsync/pkg/tradeapi"
)

type fakeArchive struct {
	mu            sync.Mutex
	metricBatches int
	tradeBatches  int
}

func (f *fakeArchive) ArchiveMetrics(ctx context.Context, points []tradeapi.MetricPoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metricBatches++
	return nil
}

func (f *fakeArchive) ArchiveTrades(ctx context.Context, trades []tradeapi.TradeRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tradeBatches++
	return nil
}

func (f *fakeArchive) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.metricBatches, f.tradeBatches
}

type fakeMirror struct {
	mu    sync.Mutex
	calls int
	last  map[string]float64
}

func (f *fakeMirror) SetQuotes(ctx context.Context, quotes map[string]float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = quotes
	return nil
}

func slowIntervals() config.StreamsConfig {
	return config.StreamsConfig{
		MetricsInterval: time.Hour,
		PricingInterval: time.Hour,
		ChatsInterval:   time.Hour,
		TradesInterval:  time.Hour,
	}
}

func newEngineAgainst(t *testing.T, handler http.Handler) (*Engine, *store.Store, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	st := store.New()
	client := tradeapi.NewClient(srv.URL, 5*time.Second)
	e := NewEngine(zap.NewNop(), client, st, nil, slowIntervals())
	return e, st, srv
}

// go test -v --run TestMetricsApplyCycle
func TestMetricsApplyCycle(t *testing.T) {
	body := `{"success":true,"data":{"metrics":[
		{"totalCashValue":10000,"currentTotalReturn":0,"createdAt":"2026-08-30T12:00:00Z"}
	],"totalCount":1}}`

	e, st, _ := newEngineAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	archive := &fakeArchive{}
	e.SetArchiver(archive)

	e.fetchMetrics(context.Background())
	first := st.Status(store.StreamMetrics).LastUpdate
	if first.IsZero() {
		t.Fatal("expected lastUpdate after successful fetch")
	}

	time.Sleep(2 * time.Millisecond)
	e.fetchMetrics(context.Background())

	// unchanged payload: no second commit, but liveness advanced
	if m, _ := archive.counts(); m != 1 {
		t.Errorf("expected one archive batch, got %d", m)
	}
	if got := st.Status(store.StreamMetrics).LastUpdate; !got.After(first) {
		t.Error("lastUpdate must advance on an unchanged fetch")
	}
}

// go test -v --run TestPricingApplyCycle
func TestPricingApplyCycle(t *testing.T) {
	var eth atomic.Value
	eth.Store(3000.00)

	e, st, _ := newEngineAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		price := eth.Load().(float64)
		w.Write([]byte(`{"success":true,"data":{"pricing":{
			"btc":{"current_price":65000},
			"eth":{"current_price":` + strconv.FormatFloat(price, 'f', -1, 64) + `},
			"sol":{"current_price":145.3},
			"bnb":{"current_price":590},
			"doge":{"current_price":0.1234}
		}}}`))
	}))
	mirror := &fakeMirror{}
	e.SetQuoteMirror(mirror)

	e.fetchPricing(context.Background())
	if mirror.calls != 1 {
		t.Fatalf("first fetch must commit and mirror, got %d calls", mirror.calls)
	}

	// identical prices: no commit, no mirror churn
	e.fetchPricing(context.Background())
	if mirror.calls != 1 {
		t.Errorf("unchanged prices must not mirror, got %d calls", mirror.calls)
	}

	// ETH moves
	eth.Store(3005.00)
	e.fetchPricing(context.Background())
	if mirror.calls != 2 {
		t.Errorf("expected mirror on commit, got %d calls", mirror.calls)
	}
	if mirror.last["eth"] != 3005.00 {
		t.Errorf("mirror received stale quotes: %v", mirror.last)
	}
	if got := st.Quotes()["eth"]; got != 3005.00 {
		t.Errorf("eth quote = %v, want 3005.00", got)
	}
	if trail := st.PriceTrail("btc"); len(trail) != 1 {
		t.Errorf("btc buffer must be untouched by the eth move: %v", trail)
	}
}

// go test -v --run TestFailureIsolation
func TestFailureIsolation(t *testing.T) {
	var failChats atomic.Bool

	e, st, _ := newEngineAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/trading/chats" && failChats.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		switch r.URL.Path {
		case "/api/trading/chats":
			w.Write([]byte(`{"success":true,"data":[{"id":"c1","model":"deepseek"}]}`))
		case "/api/metrics":
			w.Write([]byte(`{"success":true,"data":{"metrics":[],"totalCount":0}}`))
		default:
			w.Write([]byte(`{"success":false}`))
		}
	}))

	e.fetchChats(context.Background())
	if _, total := st.Chats(); total != 1 {
		t.Fatal("expected committed chat list")
	}

	failChats.Store(true)
	e.fetchChats(context.Background())

	chatStatus := st.Status(store.StreamChats)
	if chatStatus.LastError == "" {
		t.Error("chat failure must set lastError")
	}
	if kept, _ := st.Chats(); len(kept) != 1 || kept[0].ID != "c1" {
		t.Error("chat failure must not clear the displayed list")
	}

	// the metrics stream is unaffected
	e.fetchMetrics(context.Background())
	if st.Status(store.StreamMetrics).LastError != "" {
		t.Error("chat failure leaked into the metrics stream")
	}
}

// go test -v --run TestViewGatingResumption
func TestViewGatingResumption(t *testing.T) {
	var tradeFetches atomic.Int64

	e, _, _ := newEngineAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/trading/completed-trades":
			tradeFetches.Add(1)
			w.Write([]byte(`{"success":true,"data":[]}`))
		default:
			w.Write([]byte(`{"success":false}`))
		}
	}))

	e.SetActiveView("positions") // trades view inactive
	e.Start()
	defer e.Stop()

	time.Sleep(50 * time.Millisecond)
	if tradeFetches.Load() != 0 {
		t.Fatal("inactive trades view must not poll")
	}

	// first activation: never succeeded, so fetch immediately
	e.SetActiveView(ViewTrades)
	deadline := time.Now().Add(2 * time.Second)
	for tradeFetches.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if tradeFetches.Load() == 0 {
		t.Fatal("first activation must fetch immediately")
	}
	settled := tradeFetches.Load()

	// deactivate and reactivate: already succeeded, so wait for the tick
	e.SetActiveView("positions")
	e.SetActiveView(ViewTrades)
	time.Sleep(100 * time.Millisecond)
	if tradeFetches.Load() != settled {
		t.Error("reactivation after a success must wait for the next scheduled tick")
	}
}

// go test -v --run TestStopMakesLateCompletionsNoOps
func TestStopMakesLateCompletionsNoOps(t *testing.T) {
	e, st, _ := newEngineAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[{"id":"t1","symbol":"BTC","operation":"BUY",
			"created_at":"2026-08-30T10:00:00Z","chat_id":"c1"}]}`))
	}))

	e.Stop()

	// a fetch that completes after teardown must not commit
	e.fetchTrades(context.Background())
	if got := st.Trades(); len(got) != 0 {
		t.Errorf("late completion committed after Stop: %v", got)
	}
}
