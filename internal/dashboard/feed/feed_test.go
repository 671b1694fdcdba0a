package feed_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"dashsync/internal/dashboard/feed"
	"dashsync/internal/dashboard/store"
)

// go test -v --run TestBroadcastReachesClient
func TestBroadcastReachesClient(t *testing.T) {
	hub := feed.NewHub(zap.NewNop(), nil)
	defer hub.Close()

	st := store.New()
	srv := httptest.NewServer(feed.NewRouter(st, hub))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// give the hub a moment to register the client
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast(feed.Event{Stream: "pricing", Kind: "commit", At: time.Now()})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var ev feed.Event
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("bad event payload: %v", err)
	}
	if ev.Stream != "pricing" || ev.Kind != "commit" {
		t.Errorf("unexpected event: %+v", ev)
	}
}

// go test -v --run TestViewSelection
func TestViewSelection(t *testing.T) {
	var lastView atomic.Value
	lastView.Store("")

	hub := feed.NewHub(zap.NewNop(), func(view string) {
		lastView.Store(view)
	})
	defer hub.Close()

	st := store.New()
	srv := httptest.NewServer(feed.NewRouter(st, hub))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"view": "trades"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for lastView.Load() != "trades" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if lastView.Load() != "trades" {
		t.Fatal("view selection never reached the hub callback")
	}
}

// go test -v --run TestStateEndpoints
func TestStateEndpoints(t *testing.T) {
	hub := feed.NewHub(zap.NewNop(), nil)
	defer hub.Close()

	st := store.New()
	st.ApplyQuotes(map[string]float64{
		"btc": 65000.00, "eth": 3000.00, "sol": 145.30, "bnb": 590.00, "doge": 0.1234,
	})

	srv := httptest.NewServer(feed.NewRouter(st, hub))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/state/pricing")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	var body struct {
		Pricing map[string]float64 `json:"pricing"`
		History map[string][]float64
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Pricing["btc"] != 65000.00 {
		t.Errorf("unexpected pricing payload: %v", body.Pricing)
	}

	health, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz failed: %v", err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", health.StatusCode)
	}
}
