package playback

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultPollInterval = 250 * time.Millisecond
	MinPollInterval     = 50 * time.Millisecond
	MaxPollInterval     = 2 * time.Second
)

// Poller samples the player position and reports active segment changes
type Poller struct {
	player   Player
	track    *Track
	interval time.Duration
	onChange func(idx int)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a poller. interval is clamped to [MinPollInterval, MaxPollInterval];
// zero selects DefaultPollInterval.
func NewPoller(player Player, track *Track, interval time.Duration, onChange func(idx int)) *Poller {
	switch {
	case interval == 0:
		interval = DefaultPollInterval
	case interval < MinPollInterval:
		interval = MinPollInterval
	case interval > MaxPollInterval:
		interval = MaxPollInterval
	}
	if onChange == nil {
		onChange = func(int) {}
	}
	return &Poller{
		player:   player,
		track:    track,
		interval: interval,
		onChange: onChange,
	}
}

// Interval returns the effective sampling interval
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Run samples until ctx is cancelled
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	last := NoSegment
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			idx := ActiveIndex(p.track.Snapshot(), p.player.CurrentPosition())
			if idx != last {
				last = idx
				p.onChange(idx)
			}
		}
	}
}

// Start runs the loop in the background. Calling Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go func() {
		defer close(done)
		p.Run(ctx)
	}()
}

// Stop cancels the loop and waits for it to exit
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
