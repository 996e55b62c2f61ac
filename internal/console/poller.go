package console

import (
	"context"
	"errors"
	"sync"
	"time"

	"orderdesk/internal/logger"
	"orderdesk/internal/model"
)

// ReadGateway is the read side of the broker contract the poller depends on.
type ReadGateway interface {
	GetOrders(ctx context.Context) (model.OrderSnapshot, error)
}

// DefaultPollInterval matches the original surface's auto-refresh cadence.
const DefaultPollInterval = 3 * time.Second

// Poller keeps the local order snapshot consistent with the broker router.
// Invariants it enforces:
//   - at most one read request is in flight; a new tick cancels the prior one
//     and its late response is discarded (supersession)
//   - ticks are skipped while a mutation holds the busy flag or the surface
//     is hidden
//   - a fetched snapshot is published only when its fingerprint differs from
//     the last published one, and always as a whole-struct swap
type Poller struct {
	gateway ReadGateway

	mu             sync.Mutex
	interval       time.Duration
	snapshot       model.OrderSnapshot
	fingerprint    string
	lastUpdated    time.Time
	busy           bool
	visible        bool
	generation     uint64
	cancelInflight context.CancelFunc
	onPublish      func(model.OrderSnapshot)

	refreshCh chan struct{}
}

// NewPoller constructs a poller. A non-positive interval falls back to the
// default cadence.
func NewPoller(gateway ReadGateway, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		gateway:   gateway,
		interval:  interval,
		visible:   true,
		refreshCh: make(chan struct{}, 1),
	}
}

// SetOnPublish registers a callback invoked after each snapshot swap.
func (p *Poller) SetOnPublish(fn func(model.OrderSnapshot)) {
	p.mu.Lock()
	p.onPublish = fn
	p.mu.Unlock()
}

// SetVisible records whether the surface is currently shown to the operator.
// Hidden surfaces do not poll.
func (p *Poller) SetVisible(visible bool) {
	p.mu.Lock()
	p.visible = visible
	p.mu.Unlock()
}

// SetInterval updates the tick cadence; picked up on the next loop iteration.
func (p *Poller) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	p.mu.Lock()
	p.interval = interval
	p.mu.Unlock()
}

// Snapshot returns the currently published snapshot and its update timestamp.
func (p *Poller) Snapshot() (model.OrderSnapshot, time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot, p.lastUpdated
}

// Busy reports whether a mutation currently holds the poll lock.
func (p *Poller) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

// Refresh requests an out-of-band tick. Non-blocking; collapses with any
// refresh already queued.
func (p *Poller) Refresh() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

// Run drives the tick loop until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	if p == nil || p.gateway == nil {
		return errors.New("poller not initialized")
	}
	// First snapshot without waiting a full interval, same as the original
	// surface fetching on mount.
	p.Tick(ctx)
	for {
		p.mu.Lock()
		interval := p.interval
		p.mu.Unlock()

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.cancelOutstanding()
			return nil
		case <-timer.C:
			p.Tick(ctx)
		case <-p.refreshCh:
			timer.Stop()
			p.Tick(ctx)
		}
	}
}

// Tick runs one poll cycle: skip if busy or hidden, otherwise supersede any
// in-flight read and issue a new one.
func (p *Poller) Tick(ctx context.Context) {
	p.mu.Lock()
	if p.busy || !p.visible {
		p.mu.Unlock()
		return
	}
	if p.cancelInflight != nil {
		p.cancelInflight()
	}
	p.generation++
	gen := p.generation
	readCtx, cancel := context.WithCancel(ctx)
	p.cancelInflight = cancel
	p.mu.Unlock()

	go p.fetch(readCtx, cancel, gen)
}

func (p *Poller) fetch(ctx context.Context, cancel context.CancelFunc, gen uint64) {
	defer cancel()
	snap, err := p.gateway.GetOrders(ctx)

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		// Superseded read; its result must not touch published state.
		logger.Debugf("poller: discarded superseded read gen=%d", gen)
		return
	}
	p.cancelInflight = nil
	if err != nil {
		p.mu.Unlock()
		if errors.Is(err, context.Canceled) {
			logger.Debugf("poller: read cancelled gen=%d", gen)
			return
		}
		// Snapshot and timestamp stay as they were; the fixed interval is the
		// retry cadence.
		logger.Warnf("poller: orders refresh failed: %v", err)
		return
	}
	next := Fingerprint(snap)
	if !Differs(p.fingerprint, next) {
		p.mu.Unlock()
		return
	}
	p.snapshot = snap
	p.fingerprint = next
	p.lastUpdated = time.Now()
	onPublish := p.onPublish
	p.mu.Unlock()

	logger.Debugf("poller: snapshot published pending=%d traded=%d", len(snap.Pending), len(snap.Traded))
	if onPublish != nil {
		onPublish(snap)
	}
}

// BeginMutation sets the busy flag, orphans any in-flight read and returns a
// release func safe to call more than once. Callers defer the release so the
// flag clears on every mutation outcome.
func (p *Poller) BeginMutation() (release func()) {
	p.mu.Lock()
	p.busy = true
	p.generation++
	if p.cancelInflight != nil {
		p.cancelInflight()
		p.cancelInflight = nil
	}
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			p.busy = false
			p.mu.Unlock()
		})
	}
}

func (p *Poller) cancelOutstanding() {
	p.mu.Lock()
	if p.cancelInflight != nil {
		p.cancelInflight()
		p.cancelInflight = nil
	}
	p.mu.Unlock()
}
