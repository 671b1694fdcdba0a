package feed

import (
	"time"

	"dashsync/pkg/digitdiff"
)

// Event is one change notification pushed to connected renderers.
type Event struct {
	Stream string    `json:"stream"`
	Kind   string    `json:"kind"` // "commit" or "refresh"
	At     time.Time `json:"at"`

	// Pricing is set on pricing commits only: one transition per symbol,
	// carrying the per-character animation hints.
	Pricing []SymbolChange `json:"pricing,omitempty"`
}

// SymbolChange describes one symbol's accepted price transition.
type SymbolChange struct {
	Symbol    string               `json:"symbol"`
	Price     float64              `json:"price"`
	Previous  float64              `json:"previous"`
	Formatted string               `json:"formatted"`
	Direction string               `json:"direction,omitempty"` // "up" or "down"; empty when unchanged
	Marks     []digitdiff.CharMark `json:"marks,omitempty"`
}

// viewMessage is what a renderer sends to select its active view.
type viewMessage struct {
	View string `json:"view"`
}
