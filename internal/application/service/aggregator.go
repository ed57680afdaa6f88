package service

import (
	"context"

	"pricetracker/internal/application/port"
	"pricetracker/internal/domain"
)

// Result pairs a folded snapshot with the update that produced it, so
// consumers can persist the latest price without diffing snapshots.
type Result struct {
	Update   port.Update
	Snapshot domain.Snapshot
}

// Aggregator folds an update stream into a running snapshot, emitting
// one Result per input update in arrival order.
type Aggregator struct {
	snap domain.Snapshot
}

func NewAggregator() *Aggregator {
	return &Aggregator{snap: domain.EmptySnapshot()}
}

// Apply folds a single update and returns the new snapshot.
func (a *Aggregator) Apply(u port.Update) domain.Snapshot {
	a.snap = a.snap.WithPrice(u.Symbol, u.Price)
	return a.snap
}

// Run consumes in until it closes or ctx is canceled, emitting exactly
// one Result per update with no reordering, batching or dropping. The
// output channel closes when the input ends. Run may be called once
// per Aggregator.
func (a *Aggregator) Run(ctx context.Context, in <-chan port.Update) <-chan Result {
	out := make(chan Result)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- Result{Update: u, Snapshot: a.Apply(u)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
