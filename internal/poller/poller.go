package poller

import (
	"context"
	"sync"
	"time"

	"portfolio-chat/internal/models"
)

// DefaultInterval is the pause between two fetches of the same room.
const DefaultInterval = 2 * time.Second

// Fetcher loads the current message window of a room.
type Fetcher interface {
	GetMessages(ctx context.Context, roomID string, since *time.Time) ([]models.Message, error)
}

// Poller keeps the message window of one joined room fresh by fetching it
// on a fixed interval. Each fetch replaces the window.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	onUpdate func(roomID string, msgs []models.Message)
	onError  func(roomID string, err error)

	mu      sync.Mutex
	roomID  string
	window  []models.Message
	updated time.Time
	cancel  context.CancelFunc
	done    chan struct{}
	refresh chan struct{}
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// OnUpdate is called after successful fetches. Callbacks run on their own
// goroutine, so they may call Join or Leave; while one is running only the
// latest pending result is kept.
func OnUpdate(fn func(roomID string, msgs []models.Message)) Option {
	return func(p *Poller) { p.onUpdate = fn }
}

// OnError is called for failed fetches, the same way as OnUpdate. Polling
// continues.
func OnError(fn func(roomID string, err error)) Option {
	return func(p *Poller) { p.onError = fn }
}

func New(fetcher Fetcher, opts ...Option) *Poller {
	p := &Poller{fetcher: fetcher, interval: DefaultInterval}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Join stops polling the current room, clears the window and starts polling
// roomID with an immediate first fetch.
func (p *Poller) Join(ctx context.Context, roomID string) {
	p.Leave()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	refresh := make(chan struct{}, 1)

	p.mu.Lock()
	p.roomID = roomID
	p.window = nil
	p.updated = time.Time{}
	p.cancel = cancel
	p.done = done
	p.refresh = refresh
	p.mu.Unlock()

	go p.loop(loopCtx, roomID, refresh, done)
}

type result struct {
	roomID string
	msgs   []models.Message
	err    error
}

// Leave stops polling and waits for the loop to exit. The window is cleared.
func (p *Poller) Leave() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done, p.refresh = nil, nil, nil
	p.roomID = ""
	p.window = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Refresh requests a fetch ahead of the next tick, e.g. after sending.
func (p *Poller) Refresh() {
	p.mu.Lock()
	refresh := p.refresh
	p.mu.Unlock()
	if refresh == nil {
		return
	}
	select {
	case refresh <- struct{}{}:
	default:
	}
}

// RoomID returns the joined room, or "" when not joined.
func (p *Poller) RoomID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roomID
}

// Snapshot returns a copy of the current window and the time it was fetched.
func (p *Poller) Snapshot() ([]models.Message, time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Message, len(p.window))
	copy(out, p.window)
	return out, p.updated
}

func (p *Poller) loop(ctx context.Context, roomID string, refresh <-chan struct{}, done chan<- struct{}) {
	results := make(chan result, 1)
	go p.dispatch(results)
	defer close(done)
	defer close(results)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.fetch(ctx, roomID, results)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetch(ctx, roomID, results)
		case <-refresh:
			p.fetch(ctx, roomID, results)
		}
	}
}

func (p *Poller) fetch(ctx context.Context, roomID string, results chan result) {
	msgs, err := p.fetcher.GetMessages(ctx, roomID, nil)
	if ctx.Err() != nil {
		return
	}
	if err == nil {
		p.mu.Lock()
		if p.roomID != roomID {
			p.mu.Unlock()
			return
		}
		p.window = msgs
		p.updated = time.Now()
		p.mu.Unlock()
	}

	// loop is the only sender, so after draining the send cannot block.
	select {
	case <-results:
	default:
	}
	results <- result{roomID: roomID, msgs: msgs, err: err}
}

func (p *Poller) dispatch(results <-chan result) {
	for r := range results {
		if p.RoomID() != r.roomID {
			continue
		}
		switch {
		case r.err != nil && p.onError != nil:
			p.onError(r.roomID, r.err)
		case r.err == nil && p.onUpdate != nil:
			p.onUpdate(r.roomID, r.msgs)
		}
	}
}
