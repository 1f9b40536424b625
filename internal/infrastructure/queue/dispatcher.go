// Package queue fans audit events out to a fixed set of background workers.
package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/stonemarket/storefront/internal/core/domain"
	"github.com/stonemarket/storefront/internal/core/ports"
)

const (
	defaultWorkers = 4
	defaultBuffer  = 256
)

// Recorder persists or forwards a single audit event.
type Recorder interface {
	Record(ctx context.Context, event domain.AuditEvent) error
}

// Dispatcher routes audit events to workers sharded by identity, so the
// events of one identity are recorded in the order they were emitted.
//
// Emit never blocks: when a worker's buffer is full the event is dropped and
// counted.
type Dispatcher struct {
	workers  []chan domain.AuditEvent
	recorder Recorder
	log      zerolog.Logger

	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

var _ ports.AuditSink = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers workers, each buffering
// up to buffer events. Non-positive values fall back to defaults.
func NewDispatcher(numWorkers, buffer int, recorder Recorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	d := &Dispatcher{
		workers:  make([]chan domain.AuditEvent, numWorkers),
		recorder: recorder,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, buffer)
	}
	return d
}

// Start launches the workers. ctx is handed to the recorder; workers exit
// only once Close has drained their queue.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

func (d *Dispatcher) Emit(event domain.AuditEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(1)
		return
	}
	select {
	case d.workers[d.shardIndex(event.IdentityID.String())] <- event:
	default:
		d.dropped.Add(1)
		d.log.Warn().Str("kind", string(event.Kind)).Msg("audit buffer full, event dropped")
	}
}

// Dropped returns how many events were discarded since start.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Close stops accepting events and waits for queued ones to be recorded.
// It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	defer d.wg.Done()
	for event := range ch {
		if err := d.recorder.Record(ctx, event); err != nil {
			d.log.Error().Err(err).
				Str("kind", string(event.Kind)).
				Int("worker_id", id).
				Msg("audit event not recorded")
		}
	}
}
