package tradeapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, 5*time.Second), srv
}

// go test -v --run TestMetrics
func TestMetrics(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/metrics" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"success":true,"data":{"metrics":[
			{"totalCashValue":10250.55,"currentTotalReturn":2.51,"createdAt":"2026-08-30T12:00:00Z"},
			{"totalCashValue":10300.10,"currentTotalReturn":3.00,"createdAt":"2026-08-30T12:20:00Z"}
		],"totalCount":412}}`))
	}))
	defer srv.Close()

	page, err := client.Metrics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page == nil {
		t.Fatal("expected metrics page, got nil")
	}
	if len(page.Points) != 2 || page.TotalCount != 412 {
		t.Errorf("unexpected page: %+v", page)
	}
	if page.Points[0].TotalCashValue != 10250.55 {
		t.Errorf("unexpected first point: %+v", page.Points[0])
	}
}

// go test -v --run TestSimplePricing
func TestSimplePricing(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"pricing":{
			"btc":{"current_price":65000.12},
			"eth":{"current_price":3005.00},
			"sol":{"current_price":145.30},
			"bnb":{"current_price":590.00},
			"doge":{"current_price":0.1234},
			"shib":{"current_price":0.00001}
		}}}`))
	}))
	defer srv.Close()

	quotes, err := client.SimplePricing(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 5 {
		t.Fatalf("expected 5 tracked symbols, got %d (%v)", len(quotes), quotes)
	}
	if _, ok := quotes["shib"]; ok {
		t.Error("unknown symbol should have been dropped")
	}
	if quotes["doge"] != 0.1234 {
		t.Errorf("unexpected doge price: %v", quotes["doge"])
	}
}

// go test -v --run TestSuccessFalseIsNoUpdate
func TestSuccessFalseIsNoUpdate(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	page, err := client.Metrics(context.Background())
	if err != nil {
		t.Fatalf("success=false must not be an error, got: %v", err)
	}
	if page != nil {
		t.Errorf("expected nil page for no-update, got %+v", page)
	}

	chats, err := client.Chats(context.Background())
	if err != nil || chats != nil {
		t.Errorf("expected nil chats and nil error, got %v / %v", chats, err)
	}
}

// go test -v --run TestHTTPErrorIsTransportFailure
func TestHTTPErrorIsTransportFailure(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := client.Chats(context.Background()); err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
	if _, err := client.CompletedTrades(context.Background()); err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
}

// go test -v --run TestEmptyChatListCommits
func TestEmptyChatListCommits(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer srv.Close()

	chats, err := client.Chats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chats == nil {
		t.Fatal("successful empty list must be non-nil (commit), not a no-update")
	}
	if len(chats) != 0 {
		t.Errorf("expected empty list, got %d", len(chats))
	}
}

// go test -v --run TestCompletedTradesOptionalFields
func TestCompletedTradesOptionalFields(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[
			{"id":"t1","symbol":"BTC","operation":"BUY","leverage":3,"amount":0.5,
			 "pricing":64000.5,"stop_loss":62000,"take_profit":70000,
			 "created_at":"2026-08-30T10:00:00Z","chat_id":"c1","chat_model":"deepseek"},
			{"id":"t2","symbol":"ETH","operation":"SELL","leverage":null,"amount":null,
			 "pricing":null,"stop_loss":null,"take_profit":null,
			 "created_at":"2026-08-30T11:00:00Z","chat_id":"c2","chat_model":null}
		]}`))
	}))
	defer srv.Close()

	trades, err := client.CompletedTrades(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].Price == nil || *trades[0].Price != 64000.5 {
		t.Errorf("expected price on first trade, got %+v", trades[0].Price)
	}
	if trades[1].Leverage != nil || trades[1].Price != nil {
		t.Errorf("expected absent optional fields on second trade: %+v", trades[1])
	}
}
