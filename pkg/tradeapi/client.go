package tradeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client is a read-only client for the trading-dashboard API.
//
// Every method distinguishes two failure modes: a transport failure
// (network error or non-2xx status) is returned as an error, while a
// response that parses but carries success=false or no data is treated
// as "no update" and returned as a nil payload with a nil error.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New()
	c.SetBaseURL(baseURL)
	c.SetTimeout(timeout)

	return &Client{http: c}
}

// Metrics fetches the account performance series from /api/metrics.
func (c *Client) Metrics(ctx context.Context) (*MetricsPage, error) {
	data, err := c.get(ctx, "/api/metrics")
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // no update
	}

	var page MetricsPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("decode metrics: %w", err)
	}
	return &page, nil
}

// SimplePricing fetches current prices from /api/pricing/simple and
// returns a symbol-to-price map restricted to the tracked symbols.
func (c *Client) SimplePricing(ctx context.Context) (map[string]float64, error) {
	data, err := c.get(ctx, "/api/pricing/simple")
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // no update
	}

	var payload struct {
		Pricing map[string]Quote `json:"pricing"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode pricing: %w", err)
	}
	if payload.Pricing == nil {
		return nil, nil // no update
	}

	quotes := make(map[string]float64, len(Symbols))
	for sym, q := range payload.Pricing {
		if KnownSymbol(sym) {
			quotes[sym] = q.CurrentPrice
		}
	}
	return quotes, nil
}

// Chats fetches the AI decision log from /api/trading/chats.
// A nil slice means "no update"; a successful empty list is non-nil.
func (c *Client) Chats(ctx context.Context) ([]ChatRecord, error) {
	data, err := c.get(ctx, "/api/trading/chats")
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // no update
	}

	chats := []ChatRecord{}
	if err := json.Unmarshal(data, &chats); err != nil {
		return nil, fmt.Errorf("decode chats: %w", err)
	}
	return chats, nil
}

// CompletedTrades fetches executed trades from /api/trading/completed-trades.
// A nil slice means "no update"; a successful empty list is non-nil.
func (c *Client) CompletedTrades(ctx context.Context) ([]TradeRecord, error) {
	data, err := c.get(ctx, "/api/trading/completed-trades")
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // no update
	}

	trades := []TradeRecord{}
	if err := json.Unmarshal(data, &trades); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}
	return trades, nil
}

// get executes the request and unwraps the response envelope.
// A nil RawMessage result means the backend reported no data.
func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("dashboard api error %d: %s", resp.StatusCode(), resp.String())
	}

	var env Envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	if !env.Success || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}
	return env.Data, nil
}
