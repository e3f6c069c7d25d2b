// Package health polls a background service and reports availability
// changes on the event bus.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Iron-Ham/notesync/internal/event"
	"github.com/Iron-Ham/notesync/internal/logging"
)

// Check probes a service. It should honor ctx's deadline.
type Check func(ctx context.Context) error

// Status is the last known availability of the polled service.
type Status int

const (
	StatusUnknown Status = iota
	StatusUp
	StatusDown
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusUp:
		return "up"
	case StatusDown:
		return "down"
	default:
		return "unknown"
	}
}

// Publisher announces status changes. *event.Bus implements it.
type Publisher interface {
	Publish(e event.Event) bool
}

// Poller runs a Check periodically on its own goroutine and publishes a
// StatusMessage only when availability changes. A first successful check
// is silent; a first failing check is reported.
type Poller struct {
	name     string
	check    Check
	interval time.Duration
	timeout  time.Duration
	pub      Publisher
	logger   *logging.Logger

	mu      sync.Mutex
	status  Status
	lastErr error
	checks  int
}

// NewPoller creates a Poller. A non-positive timeout means checks are bounded
// only by the Run context.
func NewPoller(name string, check Check, interval, timeout time.Duration, pub Publisher, logger *logging.Logger) *Poller {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Poller{
		name:     name,
		check:    check,
		interval: interval,
		timeout:  timeout,
		pub:      pub,
		logger:   logger.WithComponent("health").With("service", name),
	}
}

// Run checks once immediately and then every interval until ctx is done.
// A non-positive interval performs the initial check only and then waits.
func (p *Poller) Run(ctx context.Context) error {
	p.CheckOnce(ctx)

	if p.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.CheckOnce(ctx)
		}
	}
}

// CheckOnce runs the check and records the result, publishing on a
// transition. It returns the new status.
func (p *Poller) CheckOnce(ctx context.Context) Status {
	checkCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	err := p.check(checkCtx)
	if err != nil && ctx.Err() != nil {
		// Shutting down; a cancelled check says nothing about the service.
		return p.Status()
	}

	next := StatusUp
	if err != nil {
		next = StatusDown
	}

	p.mu.Lock()
	prev := p.status
	p.status = next
	p.lastErr = err
	p.checks++
	p.mu.Unlock()

	if prev == next {
		return next
	}

	switch {
	case next == StatusDown:
		p.logger.Warn("service unavailable", "error", err.Error())
		p.pub.Publish(event.NewStatusMessage(event.StatusError, "health",
			fmt.Sprintf("%s unavailable: %v", p.name, err)))
	case prev == StatusDown:
		p.logger.Info("service recovered")
		p.pub.Publish(event.NewStatusMessage(event.StatusInfo, "health",
			fmt.Sprintf("%s is back online", p.name)))
	default:
		p.logger.Debug("service up")
	}
	return next
}

// Status returns the last known status.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// LastError returns the error from the most recent check, if any.
func (p *Poller) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Checks returns how many checks have completed.
func (p *Poller) Checks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.checks
}
