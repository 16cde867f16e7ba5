package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shllg/mcp-agents/internal/protocol"
)

// Guard keeps the process serving while invocations are pending and ties
// teardown to transport closure. One Guard exists per process; it is passed
// explicitly to the dispatcher and to the shutdown path.
type Guard struct {
	logger *slog.Logger
	period time.Duration

	mu     sync.Mutex
	ticker *time.Ticker
	stop   chan struct{}
	closed bool

	pending  sync.WaitGroup
	inFlight atomic.Int64
	faults   atomic.Int64
}

// New creates a guard whose keepalive ticks every period (60s when zero).
func New(logger *slog.Logger, period time.Duration) *Guard {
	if period <= 0 {
		period = protocol.DefaultKeepalive
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Guard{logger: logger, period: period}
}

// Start arms the keepalive ticker. Call it once the transport is connected.
// Calling Start again, or after Close, does nothing.
func (g *Guard) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ticker != nil || g.closed {
		return
	}
	g.ticker = time.NewTicker(g.period)
	g.stop = make(chan struct{})
	go g.keepalive(g.ticker, g.stop)
}

func (g *Guard) keepalive(ticker *time.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-ticker.C:
			g.logger.Debug("keepalive", "pending", g.inFlight.Load())
		case <-stop:
			return
		}
	}
}

// Active reports whether the keepalive ticker is armed.
func (g *Guard) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ticker != nil
}

// Close disarms the keepalive and then runs onClose. Only the first call has
// any effect, so transports may signal closure more than once.
func (g *Guard) Close(onClose func()) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	if g.ticker != nil {
		g.ticker.Stop()
		close(g.stop)
		g.ticker = nil
	}
	g.mu.Unlock()

	g.logger.Info("transport closed", "pending", g.inFlight.Load())
	if onClose != nil {
		onClose()
	}
}

// Track marks one invocation as pending. The returned release func may be called more than once.
func (g *Guard) Track() func() {
	g.pending.Add(1)
	g.inFlight.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			g.inFlight.Add(-1)
			g.pending.Done()
		})
	}
}

// Pending returns the number of tracked invocations.
func (g *Guard) Pending() int64 {
	return g.inFlight.Load()
}

// Drain waits for all tracked invocations to finish or for ctx to end.
func (g *Guard) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fault records an unhandled failure; the process should exit non-zero.
func (g *Guard) Fault(err error) {
	g.faults.Add(1)
	g.logger.Error("unhandled fault", "error", err)
}

// ExitCode returns 1 once a fault has been recorded, else 0.
func (g *Guard) ExitCode() int {
	if g.faults.Load() > 0 {
		return 1
	}
	return 0
}
