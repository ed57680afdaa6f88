package stream

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"pricetracker/internal/application/port"
	"pricetracker/internal/application/service"
	"pricetracker/internal/domain"
)

// Phase is the controller's lifecycle state.
type Phase int

const (
	PhaseStopped Phase = iota
	PhaseStarting
	PhaseStreaming
	PhaseStoppedWithError
)

// State is the consumer-facing view of the stream: connectivity
// flags, prices sorted descending and the last failure, if any.
type State struct {
	Connected    bool
	Streaming    bool
	Prices       []domain.PriceItem
	ErrorMessage string
}

// Controller drives at most one streaming session at a time. Start and
// Stop are safe against re-entrant and racing calls; subscribers get
// latest-value state updates.
type Controller struct {
	newSession port.SessionFactory
	repo       port.Repository

	mu      sync.Mutex
	phase   Phase
	state   State
	cancel  context.CancelFunc
	done    chan struct{}
	subs    map[int]chan State
	nextSub int
}

func NewController(newSession port.SessionFactory, repo port.Repository) *Controller {
	return &Controller{
		newSession: newSession,
		repo:       repo,
		subs:       make(map[int]chan State),
	}
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// State returns the current consumer-facing state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers a push subscriber: the current state is
// delivered immediately, then every change. Slow subscribers lose
// stale states rather than blocking the stream. The returned func
// unsubscribes and closes the channel.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	ch := make(chan State, 1)
	ch <- c.state
	c.subs[id] = ch
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
		c.mu.Unlock()
	}
}

// Start begins a fresh streaming run. A no-op while one is already
// starting or streaming. The connectivity flags flip optimistically
// before the handshake confirms; the previous error message is
// cleared unconditionally. The last prices stay visible until the new
// session's first snapshot arrives.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.phase == PhaseStarting || c.phase == PhaseStreaming {
		c.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	c.phase = PhaseStarting
	c.state.Connected = true
	c.state.Streaming = true
	c.state.ErrorMessage = ""
	sess := c.newSession()
	c.publishLocked()
	c.mu.Unlock()

	log.Info().Msg("stream starting")
	go func() {
		defer cancel()
		defer close(done)
		c.run(ctx, sess)
	}()
}

// Stop ends the active run: the session is closed (which stops the
// generator and the channel), the flags reset and the last known
// prices stay in place. A no-op when nothing is active; safe to call
// repeatedly and before Start. No state carrying a new snapshot is
// published after Stop returns.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.phase != PhaseStarting && c.phase != PhaseStreaming {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.done = nil
	c.phase = PhaseStopped
	c.state.Connected = false
	c.state.Streaming = false
	c.publishLocked()
	c.mu.Unlock()

	cancel()
	<-done
	log.Info().Msg("stream stopped")
}

func (c *Controller) run(ctx context.Context, sess port.Session) {
	if err := sess.Open(ctx); err != nil {
		c.fail(err)
		return
	}
	defer sess.Close()

	c.mu.Lock()
	if c.phase != PhaseStarting {
		// a stop raced the handshake
		c.mu.Unlock()
		return
	}
	c.phase = PhaseStreaming
	c.mu.Unlock()

	results := service.NewAggregator().Run(ctx, sess.Updates())
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-results:
			if !ok {
				if err := sess.Err(); err != nil {
					c.fail(err)
				} else {
					c.finish()
				}
				return
			}
			c.apply(ctx, r)
		}
	}
}

// apply publishes one folded snapshot and persists the latest price.
func (c *Controller) apply(ctx context.Context, r service.Result) {
	c.mu.Lock()
	if c.phase != PhaseStreaming {
		// stopped while the fold was in flight
		c.mu.Unlock()
		return
	}
	c.state.Prices = sortedByPriceDesc(r.Snapshot)
	c.publishLocked()
	c.mu.Unlock()

	if err := c.repo.UpsertLatestPrice(ctx, r.Update.Symbol, r.Update.Price, time.Now().UnixMilli()); err != nil {
		log.Warn().Err(err).Str("symbol", r.Update.Symbol).Msg("persist latest price failed")
	}
}

// fail records a terminal stream error; latest failure wins.
func (c *Controller) fail(err error) {
	c.mu.Lock()
	if c.phase != PhaseStarting && c.phase != PhaseStreaming {
		c.mu.Unlock()
		return
	}
	c.phase = PhaseStoppedWithError
	c.cancel = nil
	c.done = nil
	c.state.Connected = false
	c.state.Streaming = false
	c.state.ErrorMessage = err.Error()
	c.publishLocked()
	c.mu.Unlock()

	log.Error().Err(err).Msg("stream failed")
}

// finish handles graceful remote closure: flags reset, no error.
func (c *Controller) finish() {
	c.mu.Lock()
	if c.phase != PhaseStarting && c.phase != PhaseStreaming {
		c.mu.Unlock()
		return
	}
	c.phase = PhaseStopped
	c.cancel = nil
	c.done = nil
	c.state.Connected = false
	c.state.Streaming = false
	c.publishLocked()
	c.mu.Unlock()

	log.Info().Msg("stream ended")
}

// publishLocked fans the current state out to all subscribers,
// dropping each subscriber's stale value if it has not been consumed.
// Caller holds c.mu.
func (c *Controller) publishLocked() {
	for _, ch := range c.subs {
		select {
		case ch <- c.state:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- c.state:
			default:
			}
		}
	}
}

func sortedByPriceDesc(snap domain.Snapshot) []domain.PriceItem {
	items := snap.Items() // first-observation order is the stable tie-break
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Price > items[j].Price
	})
	return items
}
