package events

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/internal/domain/interfaces"
	"github.com/Khin-96/pochi-sub000/pkg/config"
)

var (
	ErrQueueFull        = errors.New("event queue is full")
	ErrDispatcherClosed = errors.New("event dispatcher is closed")
)

// Dispatcher hands committed transfers to its publishers on background
// workers. Enqueueing never blocks; when the queue is full the event is
// dropped and reported to the caller.
type Dispatcher struct {
	publishers []interfaces.TransferEventPublisher
	queue      chan *domain.TransferCompleted
	cfg        config.EventsConfig
	logger     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(cfg config.EventsConfig, logger zerolog.Logger, publishers ...interfaces.TransferEventPublisher) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	d := &Dispatcher{
		publishers: publishers,
		queue:      make(chan *domain.TransferCompleted, cfg.QueueSize),
		cfg:        cfg,
		logger:     logger,
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

func (d *Dispatcher) PublishTransferCompleted(ctx context.Context, event *domain.TransferCompleted) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits until the queued ones have been
// delivered or have timed out.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()

	for event := range d.queue {
		for _, p := range d.publishers {
			d.deliver(p, event)
		}
	}
}

func (d *Dispatcher) deliver(p interfaces.TransferEventPublisher, event *domain.TransferCompleted) {
	ctx := context.Background()
	if d.cfg.PublishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.PublishTimeout)
		defer cancel()
	}

	if err := p.PublishTransferCompleted(ctx, event); err != nil {
		d.logger.Warn().Err(err).Str("reference", event.Reference).Msg("Failed to deliver transfer event")
	}
}
