package dashboard

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"restaurant-dashboard/apiclient"
	"restaurant-dashboard/models"
)

// OrdersFunc loads the full order list the dashboard is computed from
type OrdersFunc func(ctx context.Context) ([]models.Order, error)

// Snapshot is the latest dashboard state. Error is set when the last fetch
// failed; Stats then still holds the previous good figures.
type Snapshot struct {
	Stats     Stats     `json:"stats"`
	FetchedAt time.Time `json:"fetchedAt"`
	Error     string    `json:"error,omitempty"`
}

type fetchResult struct {
	seq    uint64
	orders []models.Order
	err    error
}

// Poller refreshes the dashboard on a fixed interval. A tick that finds the
// previous fetch still running cancels it and starts over. Manual refresh
// requests arriving during a fetch coalesce into one follow-up fetch.
type Poller struct {
	fetch    OrdersFunc
	interval time.Duration
	trigger  chan struct{}

	mu      sync.Mutex
	last    Snapshot
	subs    map[int]chan Snapshot
	nextSub int
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewPoller(fetch OrdersFunc, interval time.Duration) *Poller {
	return &Poller{
		fetch:    fetch,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		last:     Snapshot{Stats: Aggregate(nil)},
		subs:     map[int]chan Snapshot{},
	}
}

// Start launches the loop once; later calls are no-ops
func (p *Poller) Start(parent context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(parent)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

// Stop cancels any in-flight fetch and waits for the loop to exit
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Refresh asks for an immediate fetch
func (p *Poller) Refresh() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Subscribe delivers every new snapshot until the returned func is called.
// A slow subscriber only ever sees the most recent snapshot.
func (p *Poller) Subscribe() (<-chan Snapshot, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	ch := make(chan Snapshot, 1)
	p.subs[id] = ch
	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	results := make(chan fetchResult, 1)
	var (
		seq      uint64
		inflight context.CancelFunc
		pending  bool
	)
	start := func() {
		if inflight != nil {
			inflight()
		}
		pending = false
		fctx, cancel := context.WithCancel(ctx)
		inflight = cancel
		seq++
		mine := seq
		go func() {
			orders, err := p.fetch(fctx)
			select {
			case results <- fetchResult{seq: mine, orders: orders, err: err}:
			case <-ctx.Done():
			}
		}()
	}

	start()
	for {
		select {
		case <-ctx.Done():
			if inflight != nil {
				inflight()
			}
			return
		case <-ticker.C:
			start()
		case <-p.trigger:
			if inflight == nil {
				start()
			} else {
				// the running fetch may predate the change being refreshed for
				pending = true
			}
		case r := <-results:
			if r.seq != seq {
				continue
			}
			inflight()
			inflight = nil
			if !errors.Is(r.err, context.Canceled) {
				p.publish(r)
			}
			if pending {
				start()
			}
		}
	}
}

func (p *Poller) publish(r fetchResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := Snapshot{Stats: p.last.Stats, FetchedAt: time.Now()}
	if r.err != nil {
		log.Printf("⚠️ dashboard refresh failed: %v", r.err)
		snap.Error = apiclient.UserMessage(r.err)
	} else {
		snap.Stats = Aggregate(r.orders)
	}
	p.last = snap

	for _, ch := range p.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
