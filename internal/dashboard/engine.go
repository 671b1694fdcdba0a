// Package dashboard wires the upstream client, the poll scheduler, the
// stream state store and the render-facing sinks into the running
// synchronization engine.
package dashboard

import (
	"context"
	"sync"
	"time"

	"dashsync/config"
	"dashsync/internal/dashboard/compare"
	"dashsync/internal/dashboard/feed"
	"dashsync/internal/dashboard/scheduler"
	"dashsync/internal/dashboard/store"
	"dashsync/pkg/digitdiff"
	"dashsync/pkg/tradeapi"

	"go.uber.org/zap"
)

// Views a renderer can select. Chat and trade history only poll while
// their view is the active one.
const (
	ViewChats  = "chats"
	ViewTrades = "trades"
)

// Archiver persists accepted snapshots. Failures are logged, never
// surfaced to the apply-cycle.
type Archiver interface {
	ArchiveMetrics(ctx context.Context, points []tradeapi.MetricPoint) error
	ArchiveTrades(ctx context.Context, trades []tradeapi.TradeRecord) error
}

// QuoteMirror receives every committed quote snapshot.
type QuoteMirror interface {
	SetQuotes(ctx context.Context, quotes map[string]float64) error
}

// Engine runs the four stream apply-cycles on independent schedules.
type Engine struct {
	logger *zap.Logger
	client *tradeapi.Client
	store  *store.Store
	sched  *scheduler.Scheduler
	hub    *feed.Hub

	archive Archiver    // optional
	mirror  QuoteMirror // optional

	viewMu sync.RWMutex
	view   string
}

func NewEngine(logger *zap.Logger, client *tradeapi.Client, st *store.Store, hub *feed.Hub, streams config.StreamsConfig) *Engine {
	e := &Engine{
		logger: logger,
		client: client,
		store:  st,
		sched:  scheduler.New(),
		hub:    hub,
		view:   ViewChats,
	}

	e.sched.Add(scheduler.Job{
		Name:     string(store.StreamMetrics),
		Interval: streams.MetricsInterval,
		Run:      e.fetchMetrics,
	})
	e.sched.Add(scheduler.Job{
		Name:     string(store.StreamPricing),
		Interval: streams.PricingInterval,
		Run:      e.fetchPricing,
	})
	e.sched.Add(scheduler.Job{
		Name:     string(store.StreamChats),
		Interval: streams.ChatsInterval,
		Active:   func() bool { return e.ActiveView() == ViewChats },
		Run:      e.fetchChats,
	})
	e.sched.Add(scheduler.Job{
		Name:     string(store.StreamTrades),
		Interval: streams.TradesInterval,
		Active:   func() bool { return e.ActiveView() == ViewTrades },
		Run:      e.fetchTrades,
	})

	return e
}

// SetArchiver attaches the snapshot archive. Must be called before Start.
func (e *Engine) SetArchiver(a Archiver) { e.archive = a }

// SetQuoteMirror attaches the quote mirror. Must be called before Start.
func (e *Engine) SetQuoteMirror(m QuoteMirror) { e.mirror = m }

// Start launches all polling loops; each stream fetches immediately.
func (e *Engine) Start() {
	e.sched.Start()
}

// Stop tears the engine down: the store stops accepting commits first,
// so fetches still in flight become no-ops, then the schedules die.
func (e *Engine) Stop() {
	e.store.Close()
	e.sched.Stop()
}

// ActiveView returns the renderer's current view selection.
func (e *Engine) ActiveView() string {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()
	return e.view
}

// SetActiveView records the renderer's view selection. A view-gated
// stream that has never succeeded is fetched immediately on activation;
// otherwise polling resumes on its next scheduled tick.
func (e *Engine) SetActiveView(view string) {
	e.viewMu.Lock()
	e.view = view
	e.viewMu.Unlock()

	switch view {
	case ViewChats:
		if !e.store.EverSucceeded(store.StreamChats) {
			e.sched.Trigger(string(store.StreamChats))
		}
	case ViewTrades:
		if !e.store.EverSucceeded(store.StreamTrades) {
			e.sched.Trigger(string(store.StreamTrades))
		}
	}
}

func (e *Engine) fetchMetrics(ctx context.Context) {
	e.store.Begin(store.StreamMetrics)

	page, err := e.client.Metrics(ctx)
	if err != nil {
		e.store.Fail(store.StreamMetrics, err)
		e.logger.Warn("metrics fetch failed", zap.Error(err))
		return
	}
	if page == nil {
		e.store.Finish(store.StreamMetrics)
		return
	}

	committed := e.store.ApplyMetrics(page.Points, page.TotalCount)
	kind := "refresh"
	if committed {
		kind = "commit"
		e.archiveMetrics(ctx, page.Points)
		e.logger.Info("metrics snapshot committed",
			zap.Int("points", len(page.Points)),
			zap.Int("totalCount", page.TotalCount))
	}
	e.broadcast(feed.Event{Stream: string(store.StreamMetrics), Kind: kind, At: time.Now()})
}

func (e *Engine) fetchPricing(ctx context.Context) {
	e.store.Begin(store.StreamPricing)

	quotes, err := e.client.SimplePricing(ctx)
	if err != nil {
		e.store.Fail(store.StreamPricing, err)
		e.logger.Warn("pricing fetch failed", zap.Error(err))
		return
	}
	if quotes == nil {
		e.store.Finish(store.StreamPricing)
		return
	}

	prev := e.store.Quotes()
	if !e.store.ApplyQuotes(quotes) {
		return // no real change: no event, no mirror
	}

	changes := make([]feed.SymbolChange, 0, len(tradeapi.Symbols))
	for _, sym := range tradeapi.Symbols {
		price, ok := quotes[sym]
		if !ok {
			continue
		}

		change := feed.SymbolChange{
			Symbol:    sym,
			Price:     price,
			Previous:  e.store.PreviousPrice(sym, price),
			Formatted: digitdiff.FormatPrice(sym, price),
		}
		if prevPrice, had := prev[sym]; had && !compare.PricesEqual(prevPrice, price) {
			dir := digitdiff.DirectionOf(prevPrice, price)
			change.Marks = digitdiff.Marks(
				digitdiff.FormatPrice(sym, prevPrice),
				change.Formatted,
				dir,
			)
			if dir == digitdiff.Up {
				change.Direction = "up"
			} else {
				change.Direction = "down"
			}
		}
		changes = append(changes, change)
	}

	e.mirrorQuotes(ctx, quotes)
	e.broadcast(feed.Event{
		Stream:  string(store.StreamPricing),
		Kind:    "commit",
		At:      time.Now(),
		Pricing: changes,
	})
}

func (e *Engine) fetchChats(ctx context.Context) {
	e.store.Begin(store.StreamChats)

	chats, err := e.client.Chats(ctx)
	if err != nil {
		e.store.Fail(store.StreamChats, err)
		e.logger.Warn("chats fetch failed", zap.Error(err))
		return
	}
	if chats == nil {
		e.store.Finish(store.StreamChats)
		return
	}

	if e.store.ApplyChats(chats) {
		e.broadcast(feed.Event{Stream: string(store.StreamChats), Kind: "commit", At: time.Now()})
	}
}

func (e *Engine) fetchTrades(ctx context.Context) {
	e.store.Begin(store.StreamTrades)

	trades, err := e.client.CompletedTrades(ctx)
	if err != nil {
		e.store.Fail(store.StreamTrades, err)
		e.logger.Warn("trades fetch failed", zap.Error(err))
		return
	}
	if trades == nil {
		e.store.Finish(store.StreamTrades)
		return
	}

	if e.store.ApplyTrades(trades) {
		e.archiveTrades(ctx, trades)
		e.broadcast(feed.Event{Stream: string(store.StreamTrades), Kind: "commit", At: time.Now()})
	}
}

func (e *Engine) broadcast(ev feed.Event) {
	if e.hub != nil {
		e.hub.Broadcast(ev)
	}
}

func (e *Engine) archiveMetrics(ctx context.Context, points []tradeapi.MetricPoint) {
	if e.archive == nil {
		return
	}
	if err := e.archive.ArchiveMetrics(ctx, points); err != nil {
		e.logger.Warn("failed to archive metric points", zap.Error(err))
	}
}

func (e *Engine) archiveTrades(ctx context.Context, trades []tradeapi.TradeRecord) {
	if e.archive == nil {
		return
	}
	if err := e.archive.ArchiveTrades(ctx, trades); err != nil {
		e.logger.Warn("failed to archive trades", zap.Error(err))
	}
}

func (e *Engine) mirrorQuotes(ctx context.Context, quotes map[string]float64) {
	if e.mirror == nil {
		return
	}
	if err := e.mirror.SetQuotes(ctx, quotes); err != nil {
		e.logger.Warn("failed to mirror quotes", zap.Error(err))
	}
}
