// Package worker moves change notifications off the request path.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/fluxboard/internal/events"
)

// ErrRelayFull is returned when the queue cannot take another notification.
var ErrRelayFull = errors.New("change relay queue full")

// ErrRelayStopped is returned once Stop has been called.
var ErrRelayStopped = errors.New("change relay stopped")

type message struct {
	channel string
	payload []byte
}

// Relay queues notifications and delivers them to the publisher from a
// single goroutine, so a slow or unreachable Redis never delays the mutation
// response. It satisfies events.Publisher.
type Relay struct {
	publisher events.Publisher
	timeout   time.Duration
	logger    *zap.Logger

	mu      sync.RWMutex
	stopped bool
	queue   chan message
	done    chan struct{}
}

// NewRelay creates a relay holding up to size pending notifications. Each
// delivery is bounded by timeout.
func NewRelay(publisher events.Publisher, size int, timeout time.Duration, logger *zap.Logger) *Relay {
	if size <= 0 {
		size = 64
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		publisher: publisher,
		timeout:   timeout,
		logger:    logger,
		queue:     make(chan message, size),
		done:      make(chan struct{}),
	}
}

// Publish enqueues the payload. The receiver count is unknown at this point
// and reported as 0.
func (r *Relay) Publish(_ context.Context, channel string, payload []byte) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopped {
		return 0, ErrRelayStopped
	}
	select {
	case r.queue <- message{channel: channel, payload: payload}:
		return 0, nil
	default:
		return 0, ErrRelayFull
	}
}

// Start runs the delivery loop until Stop.
func (r *Relay) Start() {
	go r.run()
}

// Stop refuses new notifications, delivers what is queued and waits for the
// loop to exit.
func (r *Relay) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	close(r.queue)
	r.mu.Unlock()
	<-r.done
}

func (r *Relay) run() {
	defer close(r.done)
	for msg := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		receivers, err := r.publisher.Publish(ctx, msg.channel, msg.payload)
		cancel()
		if err != nil {
			r.logger.Warn("change notification not delivered", zap.String("channel", msg.channel), zap.Error(err))
			continue
		}
		r.logger.Debug("change notification delivered", zap.String("channel", msg.channel), zap.Int64("receivers", receivers))
	}
}
