package notifications

import (
	"context"
	"errors"
	"sync"
	"time"

	"profitshare-backend/internal/domain"

	"github.com/rs/zerolog/log"
)

var (
	ErrQueueFull = errors.New("notification queue full")
	ErrClosed    = errors.New("notification dispatcher closed")
)

const (
	DefaultBuffer       = 256
	defaultDeliverLimit = 5 * time.Second
)

// Dispatcher queues notifications and delivers them to every sink on a single
// background goroutine. Notify never blocks on delivery.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	queue   chan *domain.Notification
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts a dispatcher with a queue of buffer entries.
func NewDispatcher(buffer int, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if timeout <= 0 {
		timeout = defaultDeliverLimit
	}
	d := &Dispatcher{
		sinks:   sinks,
		timeout: timeout,
		queue:   make(chan *domain.Notification, buffer),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Notify queues a notification for investorID.
func (d *Dispatcher) Notify(_ context.Context, investorID string, ev Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.queue <- Build(investorID, ev):
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting notifications and waits for queued ones to be delivered.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	<-d.done
	return nil
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n *domain.Notification) {
	for _, s := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := s.Deliver(ctx, n)
		cancel()
		if err != nil {
			log.Warn().
				Err(err).
				Str("sink", s.Name()).
				Str("investor_id", n.InvestorID).
				Str("type", n.Type).
				Msg("notification delivery failed")
		}
	}
}
