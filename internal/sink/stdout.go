package sink

import (
	"context"
	"fmt"
	"io"

	"sigalert/internal/alertcfg"
	"sigalert/internal/evaluator"
	"sigalert/internal/render"
)

// Stdout writes the rendered message and a newline to w (ordinarily
// os.Stdout; injected here so tests don't capture the real process stdout).
func Stdout(w io.Writer) Sink {
	return func(_ context.Context, alert *alertcfg.Alert, reading evaluator.SignalReading) error {
		message := render.Render(alert.Message, render.Merge(alert.TemplateFields(), reading.Fields()))
		_, err := fmt.Fprintln(w, message)
		return err
	}
}
