package tradeapi

import "encoding/json"

// Envelope represents the standard response wrapper used by every
// dashboard API endpoint.
type Envelope struct {
	Success bool            `json:"success"` // false indicates the backend declined to produce data
	Data    json.RawMessage `json:"data"`    // Delay decoding // Payload shape varies per endpoint
}

// MetricPoint is one account-value observation in the performance series.
type MetricPoint struct {
	TotalCashValue     float64 `json:"totalCashValue"`
	CurrentTotalReturn float64 `json:"currentTotalReturn"` // percentage
	CreatedAt          string  `json:"createdAt"`
}

// MetricsPage is the /api/metrics payload: a chronological point series
// plus the backend's total row count.
type MetricsPage struct {
	Points     []MetricPoint `json:"metrics"`
	TotalCount int           `json:"totalCount"`
}

// Quote is a single symbol's entry in the /api/pricing/simple payload.
type Quote struct {
	CurrentPrice float64 `json:"current_price"`
}

// ChatRecord is one AI decision log entry. Immutable once fetched.
type ChatRecord struct {
	ID        string          `json:"id"`
	Model     string          `json:"model"`
	Decision  json.RawMessage `json:"chat"` // opaque structured decision payload
	Reasoning string          `json:"reasoning"`
	Prompt    string          `json:"user_prompt"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// TradeRecord is one completed trade. Optional numeric fields are present
// only when the originating decision specified them.
type TradeRecord struct {
	ID            string   `json:"id"`
	Symbol        string   `json:"symbol"`
	Operation     string   `json:"operation"`
	Leverage      *float64 `json:"leverage"`
	Amount        *float64 `json:"amount"`
	Price         *float64 `json:"pricing"`
	StopLoss      *float64 `json:"stop_loss"`
	TakeProfit    *float64 `json:"take_profit"`
	CreatedAt     string   `json:"created_at"`
	ChatID        string   `json:"chat_id"`
	ChatModel     *string  `json:"chat_model"`
	ChatCreatedAt *string  `json:"chat_created_at"`
}

// Symbols is the fixed set of tracked symbols, in display order.
// Quotes for anything else are dropped on decode.
var Symbols = []string{"btc", "eth", "sol", "bnb", "doge"}

// KnownSymbol reports whether s is one of the tracked symbols.
func KnownSymbol(s string) bool {
	for _, sym := range Symbols {
		if s == sym {
			return true
		}
	}
	return false
}
