package sink

import (
	"context"
	"fmt"

	"sigalert/internal/alertcfg"
	"sigalert/internal/evaluator"
	"sigalert/internal/queue"
	"sigalert/internal/render"
	"sigalert/internal/store"
)

// Matrix renders the alert's message and hands it off to the durable
// Message Queue (internal/queue) rather than delivering to Matrix directly
// (spec §4.7: "Success of the sink means successfully enqueued"). Delivery
// to the room happens later, out of band, via the Queue Worker.
func Matrix(st *store.Store) Sink {
	return func(ctx context.Context, alert *alertcfg.Alert, reading evaluator.SignalReading) error {
		if alert.Room == "" {
			return fmt.Errorf("sink: matrix requires alert.Room")
		}
		message := render.Render(alert.Message, render.Merge(alert.TemplateFields(), reading.Fields()))
		return queue.Enqueue(ctx, st, alert.Room, message)
	}
}
