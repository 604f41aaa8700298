package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/securebank/portal-api/internal/api/metrics"
	"github.com/securebank/portal-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes security events to a fixed set of workers using consistent
// hashing on the user id, guaranteeing per-user audit ordering. Handlers and
// middleware enqueue without blocking on the database write.
type Dispatcher struct {
	workers []chan ports.AuditEventInput
	service ports.AuditService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.AuditService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.AuditEventInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.AuditEventInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its user. Events with
// no user id (failed logins against unknown accounts) shard by source IP.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(event ports.AuditEventInput) {
	i := d.shardIndex(event)
	d.workers[i] <- event
	metrics.ObserveAuditQueueDepth(i, len(d.workers[i]))
}

func (d *Dispatcher) shardIndex(event ports.AuditEventInput) int {
	key := event.UserID
	if key == "" {
		key = event.IPAddress
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.AuditEventInput) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.service.Process(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("event_type", event.EventType).
					Int("worker_id", id).
					Msg("audit event processing failed")
			}
			metrics.ObserveAuditQueueDepth(id, len(ch))
		}
	}
}
