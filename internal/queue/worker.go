// Package queue implements the durable Message Queue Worker (spec §4.8): a
// single FIFO list in the store (LPUSH at the head, RPOP at the tail),
// bounded retries, and pacing adapted to the current backlog depth.
package queue

import (
	"context"
	"log"
	"math/rand"
	"time"

	"sigalert/internal/store"
)

// Delivery is the Matrix backend contract the worker drives: deliver
// message to room, or return an error that should be retried.
type Delivery interface {
	Send(ctx context.Context, room, message string) error
}

// Metrics is the subset of observability hooks the worker calls; nil-safe
// no-op implementations are fine for callers that don't care.
type Metrics interface {
	QueueDepth(n int64)
	QueueDelivered()
	QueueRetried()
	QueueDropped(reason string)
}

// Worker drains store.QueueKey with a single concurrent consumer (spec
// §4.8/§5: "The queue worker is a single task").
type Worker struct {
	store            *store.Store
	delivery         Delivery
	metrics          Metrics
	logger           *log.Logger
	deliveryInterval time.Duration // spec §4.8 step 4's S = delivery_interval_minutes*60
	rng              *rand.Rand
}

func NewWorker(st *store.Store, delivery Delivery, metrics Metrics, logger *log.Logger, deliveryInterval time.Duration) *Worker {
	return &Worker{
		store:            st,
		delivery:         delivery,
		metrics:          metrics,
		logger:           logger,
		deliveryInterval: deliveryInterval,
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run loops until ctx is cancelled, processing one entry (or idling) per
// iteration. Cancellation is cooperative at the top of each iteration (spec
// §5).
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.step(ctx)
	}
}

func (w *Worker) step(ctx context.Context) {
	raw, ok, err := w.store.RPop(ctx, store.QueueKey)
	if err != nil {
		w.logger.Printf("queue: rpop error: %v", err)
		w.idleSleep(ctx)
		return
	}
	if !ok {
		w.idleSleep(ctx)
		return
	}

	entry, err := Decode(raw)
	if err != nil {
		w.logger.Printf("queue: dropping undecodable entry: %v", err)
		w.recordDropped("bad_encoding")
		return
	}

	if entry.Attempts >= entry.MaxAttempts {
		w.logger.Printf("queue: max attempts (%d) exceeded for room %s, dropping", entry.MaxAttempts, entry.Message.Room)
		w.recordDropped("max_attempts")
		return
	}

	w.paceDelivery(ctx)

	if err := w.delivery.Send(ctx, entry.Message.Room, entry.Message.Message); err != nil {
		w.logger.Printf("queue: delivery error, requeueing: %v", err)
		entry.Attempts++
		w.requeue(ctx, entry)
		w.idleSleep(ctx)
		return
	}

	if w.metrics != nil {
		w.metrics.QueueDelivered()
	}
}

// paceDelivery implements spec §4.8 step 4: sleep S/max(N,1) seconds before
// attempting delivery, where N is the queue length sampled once this
// iteration and S is the configured delivery interval in seconds. This is a
// target drain rate, not a guarantee (spec §9).
func (w *Worker) paceDelivery(ctx context.Context) {
	n, err := w.store.LLen(ctx, store.QueueKey)
	if err != nil {
		w.logger.Printf("queue: llen error (pacing skipped): %v", err)
		return
	}
	if w.metrics != nil {
		w.metrics.QueueDepth(n)
	}
	denom := n
	if denom < 1 {
		denom = 1
	}
	sleep := time.Duration(float64(w.deliveryInterval) / float64(denom))
	sleepCtx(ctx, sleep)
}

func (w *Worker) requeue(ctx context.Context, entry Entry) {
	data, err := entry.Encode()
	if err != nil {
		w.logger.Printf("queue: failed to re-encode entry, dropping: %v", err)
		w.recordDropped("bad_encoding")
		return
	}
	if err := w.store.LPush(ctx, store.QueueKey, data); err != nil {
		w.logger.Printf("queue: failed to requeue entry: %v", err)
		return
	}
	if w.metrics != nil {
		w.metrics.QueueRetried()
	}
}

func (w *Worker) recordDropped(reason string) {
	if w.metrics != nil {
		w.metrics.QueueDropped(reason)
	}
}

// idleSleep is the [1, 5] second uniform sleep used both when the queue is
// empty and after a failed delivery (spec §4.8 steps 1 and 6).
func (w *Worker) idleSleep(ctx context.Context) {
	millis := 1000 + w.rng.Intn(4000)
	sleepCtx(ctx, time.Duration(millis)*time.Millisecond)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Enqueue pushes a new entry onto the head of the queue (LPUSH), used by
// the Matrix sink (spec §4.7: "Success of the sink means successfully
// enqueued").
func Enqueue(ctx context.Context, st *store.Store, room, message string) error {
	entry := NewEntry(room, message)
	data, err := entry.Encode()
	if err != nil {
		return err
	}
	return st.LPush(ctx, store.QueueKey, data)
}
