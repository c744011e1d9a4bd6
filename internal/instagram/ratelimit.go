package instagram

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// pacer spaces outbound Graph API requests for one client instance. It
// enforces a minimum interval between consecutive requests and a soft
// per-minute ceiling; the platform's own throttling takes much longer to
// recover from than self-imposed delay. State is in-memory only.
type pacer struct {
	spacing *rate.Limiter

	mu          sync.Mutex
	ceiling     int
	window      time.Duration
	count       int
	windowStart time.Time
}

func newPacer(minInterval time.Duration, perMinute int) *pacer {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &pacer{
		spacing: rate.NewLimiter(limit, 1),
		ceiling: perMinute,
		window:  time.Minute,
	}
}

// Wait blocks until the next request slot is available or ctx is done.
func (p *pacer) Wait(ctx context.Context) error {
	if err := p.waitWindow(ctx); err != nil {
		return err
	}
	return p.spacing.Wait(ctx)
}

func (p *pacer) waitWindow(ctx context.Context) error {
	if p.ceiling <= 0 {
		return nil
	}

	p.mu.Lock()
	now := time.Now()
	if p.windowStart.IsZero() || now.Sub(p.windowStart) >= p.window {
		p.windowStart = now
		p.count = 0
	}
	if p.count >= p.ceiling {
		remaining := p.window - now.Sub(p.windowStart)
		p.mu.Unlock()
		if err := sleepContext(ctx, remaining); err != nil {
			return err
		}
		p.mu.Lock()
		p.windowStart = time.Now()
		p.count = 0
	}
	p.count++
	p.mu.Unlock()
	return nil
}

// sleepContext blocks for d, returning early if ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
