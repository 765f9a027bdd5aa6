// Package sink implements the three delivery sinks spec §4.7 defines:
// stdout, file, and matrix-via-queue. A sink is a function (alert, reading)
// -> error; a process has exactly one sink for all its alerts.
package sink

import (
	"context"

	"sigalert/internal/alertcfg"
	"sigalert/internal/evaluator"
)

// Sink delivers a rendered alert notification. Returning nil means
// "successfully handed off" — for the Matrix sink that means successfully
// enqueued, not successfully delivered to the room (spec §4.7).
type Sink func(ctx context.Context, alert *alertcfg.Alert, reading evaluator.SignalReading) error
