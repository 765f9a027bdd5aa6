package sink

import (
	"context"
	"fmt"
	"os"

	"sigalert/internal/alertcfg"
	"sigalert/internal/evaluator"
	"sigalert/internal/render"
)

// File appends the rendered message and a newline to path. The file is
// opened, written, flushed, and closed per call (spec §4.7) rather than
// held open, so a SinkTransient failure (path unwritable) can't leak an fd.
func File(path string) Sink {
	return func(_ context.Context, alert *alertcfg.Alert, reading evaluator.SignalReading) error {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("sink: open %s: %w", path, err)
		}
		defer f.Close()

		message := render.Render(alert.Message, render.Merge(alert.TemplateFields(), reading.Fields()))
		if _, err := fmt.Fprintln(f, message); err != nil {
			return fmt.Errorf("sink: write %s: %w", path, err)
		}
		return f.Sync()
	}
}
