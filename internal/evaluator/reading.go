// Package evaluator reduces a signal's time-series window to a deviation
// reading and decides whether an alert should fire (spec §4.4), gated by a
// per-alert cooloff (spec §4.5).
package evaluator

import (
	"fmt"
	"math"

	"sigalert/internal/alertcfg"
	"sigalert/internal/render"
	"sigalert/internal/timeseries"
)

// SignalReading is the evaluation result for one alert on one pass.
type SignalReading struct {
	First     float64
	Last      float64
	Increased bool
	Diff      float64 // rounded integer percent, carried as float64 for template interpolation
}

// Direction returns "up" or "down" per spec §6's synthesized template field.
func (r SignalReading) Direction() string {
	if r.Increased {
		return "up"
	}
	return "down"
}

// Fields flattens the reading into the map the message renderer
// interpolates against: every SignalReading field, plus the synthesized
// "direction" field (spec §4.6, §6).
func (r SignalReading) Fields() map[string]string {
	return map[string]string{
		"first":     render.Float(r.First),
		"last":      render.Float(r.Last),
		"increased": fmt.Sprintf("%t", r.Increased),
		"diff":      fmt.Sprintf("%.0f", r.Diff),
		"direction": r.Direction(),
	}
}

// reduce applies the alert's strategy to a window, producing (first, last).
// A window with fewer than two readings yields first == last under
// oldest/newest, which makes Diff == 0 (spec §4.4: "inert until enough
// samples accumulate").
func reduce(strategy alertcfg.SignalStrategy, readings []timeseries.Reading) (first, last float64, ok bool) {
	if len(readings) == 0 {
		return 0, 0, false
	}

	switch strategy {
	case alertcfg.StrategyMinMax:
		min, max := readings[0].Value, readings[0].Value
		for _, r := range readings[1:] {
			if r.Value < min {
				min = r.Value
			}
			if r.Value > max {
				max = r.Value
			}
		}
		return min, max, true
	case alertcfg.StrategyOldestNewest, "":
		return readings[0].Value, readings[len(readings)-1].Value, true
	default:
		return readings[0].Value, readings[len(readings)-1].Value, true
	}
}

// Deviation computes round(|1 - first/last| * 100), skipping (ok=false)
// when last == 0 rather than dividing by zero (spec §4.4 step 2, §9's
// "zero last" open question resolved as an explicit skip).
func Deviation(first, last float64) (diff float64, ok bool) {
	if last == 0 {
		return 0, false
	}
	return math.Round(math.Abs(1-first/last) * 100), true
}

// Evaluate reduces readings per strategy and computes the SignalReading.
// ok is false when there is nothing to evaluate (empty window or
// last == 0), per spec §4.4/§7 (EvaluatorInputInvalid: "silently skip
// iteration").
func Evaluate(strategy alertcfg.SignalStrategy, readings []timeseries.Reading) (SignalReading, bool) {
	first, last, ok := reduce(strategy, readings)
	if !ok {
		return SignalReading{}, false
	}
	diff, ok := Deviation(first, last)
	if !ok {
		return SignalReading{}, false
	}
	return SignalReading{
		First:     first,
		Last:      last,
		Increased: last > first,
		Diff:      diff,
	}, true
}
