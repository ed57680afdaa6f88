package domain

// Direction represents the price movement direction
type Direction int

const (
	DirectionFlat Direction = 0
	DirectionUp   Direction = +1
	DirectionDown Direction = -1
)

// PriceItem is the latest known quote for one instrument, together
// with the price observed immediately before it.
type PriceItem struct {
	Symbol        string
	Price         float64
	PreviousPrice float64
	HasPrevious   bool
}

// Direction compares the current price against the previous one.
// An item without a previous observation is flat regardless of price.
func (p PriceItem) Direction() Direction {
	switch {
	case !p.HasPrevious:
		return DirectionFlat
	case p.Price > p.PreviousPrice:
		return DirectionUp
	case p.Price < p.PreviousPrice:
		return DirectionDown
	default:
		return DirectionFlat
	}
}

// Snapshot maps each instrument to its latest PriceItem. A Snapshot is
// immutable once constructed: folding a new price produces a fresh
// Snapshot and leaves the receiver untouched, so snapshots can cross
// goroutine boundaries without locking.
type Snapshot struct {
	order []string
	items map[string]PriceItem
}

// EmptySnapshot is the initial snapshot before any update.
func EmptySnapshot() Snapshot {
	return Snapshot{}
}

// WithPrice folds one price observation into the snapshot. The prior
// entry's price, if any, becomes the new item's previous price; all
// other entries carry over unchanged.
func (s Snapshot) WithPrice(symbol string, price float64) Snapshot {
	item := PriceItem{Symbol: symbol, Price: price}
	if prev, ok := s.items[symbol]; ok {
		item.PreviousPrice = prev.Price
		item.HasPrevious = true
	}

	next := Snapshot{
		order: s.order,
		items: make(map[string]PriceItem, len(s.items)+1),
	}
	for k, v := range s.items {
		next.items[k] = v
	}
	if _, seen := s.items[symbol]; !seen {
		// full-slice expression keeps sibling snapshots derived from
		// the same parent from sharing the append backing array
		next.order = append(next.order[:len(next.order):len(next.order)], symbol)
	}
	next.items[symbol] = item
	return next
}

// Len returns the number of instruments observed so far.
func (s Snapshot) Len() int { return len(s.items) }

// Get looks up the latest item for a symbol.
func (s Snapshot) Get(symbol string) (PriceItem, bool) {
	item, ok := s.items[symbol]
	return item, ok
}

// Items returns the entries in first-observation order. The slice is
// freshly allocated and safe for the caller to reorder.
func (s Snapshot) Items() []PriceItem {
	out := make([]PriceItem, 0, len(s.order))
	for _, sym := range s.order {
		out = append(out, s.items[sym])
	}
	return out
}
