// Package digitdiff computes per-character animation hints for a price
// transition: given the previous and current price formatted the same
// way, it classifies each character of the new string as unchanged or
// changed in the direction of the move.
package digitdiff

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Direction is the overall direction of a price move. Callers confirm a
// real change before diffing, so there is no "flat" direction.
type Direction int8

const (
	Up Direction = iota + 1
	Down
)

// Kind classifies one character position of the new string.
type Kind int8

const (
	Unchanged Kind = iota
	ChangedUp
	ChangedDown
)

// CharMark is the classification of a single character of the current
// formatted price.
type CharMark struct {
	Char rune `json:"char"`
	Kind Kind `json:"kind"`
}

// FormatPrice renders a price with the display convention of the symbol:
// fixed 2 decimal places, 4 for DOGE.
func FormatPrice(symbol string, price float64) string {
	places := int32(2)
	if strings.EqualFold(symbol, "doge") {
		places = 4
	}
	return decimal.NewFromFloat(price).StringFixed(places)
}

// DirectionOf returns the direction of the move from prev to curr.
func DirectionOf(prev, curr float64) Direction {
	if curr > prev {
		return Up
	}
	return Down
}

// Marks aligns prev and curr at their last character and classifies each
// position of curr. A position whose characters differ, or that exists
// only in curr (crossing a power-of-ten boundary), is marked changed in
// the given direction. Both strings must come from the same formatter;
// no rounding happens here.
func Marks(prev, curr string, dir Direction) []CharMark {
	changedKind := ChangedUp
	if dir == Down {
		changedKind = ChangedDown
	}

	pr := []rune(prev)
	cr := []rune(curr)

	marks := make([]CharMark, len(cr))
	for i, ch := range cr {
		// offset from the rightmost character
		offset := len(cr) - 1 - i
		j := len(pr) - 1 - offset

		kind := Unchanged
		if j < 0 || pr[j] != ch {
			kind = changedKind
		}
		marks[i] = CharMark{Char: ch, Kind: kind}
	}
	return marks
}
