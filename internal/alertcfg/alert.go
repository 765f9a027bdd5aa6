// Package alertcfg defines the alert configuration model: the deviation
// condition an alert watches, the strategy used to reduce a window to a
// (first, last) pair, and the content-hash identity alerts collapse onto.
package alertcfg

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// SignalStrategy chooses how a time-series window is reduced to the
// (first, last) pair fed to the deviation calculation.
type SignalStrategy string

const (
	StrategyOldestNewest SignalStrategy = "oldest_newest"
	StrategyMinMax        SignalStrategy = "min_max"
)

func (s SignalStrategy) Valid() bool {
	switch s {
	case StrategyOldestNewest, StrategyMinMax:
		return true
	default:
		return false
	}
}

// DeviationCondition is the threshold an alert watches for.
type DeviationCondition struct {
	Signal     string   `yaml:"signal" json:"signal"`
	Timeframe  Duration `yaml:"timeframe" json:"timeframe"`
	Difference int      `yaml:"difference" json:"difference"`
}

// Alert is a fully-resolved alert configuration. ID is a deterministic hash
// of the other fields; two alerts with identical configuration collapse to
// the same ID. LastNotified is the only field mutated after creation, and is
// owned exclusively by the Cooloff Gate (internal/evaluator).
type Alert struct {
	Condition    DeviationCondition `yaml:"condition" json:"condition"`
	Message      string             `yaml:"message" json:"message"`
	Room         string             `yaml:"room,omitempty" json:"room,omitempty"`
	Cooloff      Duration           `yaml:"cooloff,omitempty" json:"cooloff,omitempty"`
	PollRate     int                `yaml:"poll_rate,omitempty" json:"poll_rate,omitempty"`
	Strategy     SignalStrategy     `yaml:"signal_read_strategy,omitempty" json:"signal_read_strategy,omitempty"`
	LastNotified *time.Time         `yaml:"-" json:"last_notified,omitempty"`
}

// Normalize fills in defaults the way the original loader did: poll_rate
// defaults to 60s, strategy defaults to oldest/newest.
func (a *Alert) Normalize() {
	if a.PollRate <= 0 {
		a.PollRate = 60
	}
	if a.Strategy == "" {
		a.Strategy = StrategyOldestNewest
	}
}

// ID is a deterministic content hash of the alert's configuration fields
// (not LastNotified, which mutates after creation and must not perturb
// identity). Two alerts with identical configuration share the same ID
// (spec invariant: "two alerts with identical configuration share the same
// id").
func (a *Alert) ID() string {
	h := sha256.New()
	fmt.Fprintf(h, "signal=%s;timeframe=%s;difference=%d;message=%s;room=%s;cooloff=%s;poll_rate=%d;strategy=%s",
		a.Condition.Signal,
		a.Condition.Timeframe.String(),
		a.Condition.Difference,
		a.Message,
		a.Room,
		a.Cooloff.String(),
		a.PollRate,
		a.Strategy,
	)
	return hex.EncodeToString(h.Sum(nil))
}

// EffectiveCooloff returns the cooloff interval to apply: the alert's own
// cooloff if set, otherwise its timeframe (spec §4.5).
func (a *Alert) EffectiveCooloff() time.Duration {
	if a.Cooloff.Duration > 0 {
		return a.Cooloff.Duration
	}
	return a.Condition.Timeframe.Duration
}

// TemplateFields flattens the alert's own fields into the map the message
// renderer interpolates against (spec §6: "every field of the alert").
func (a *Alert) TemplateFields() map[string]string {
	fields := map[string]string{
		"signal":     a.Condition.Signal,
		"timeframe":  a.Condition.Timeframe.String(),
		"difference": fmt.Sprintf("%d", a.Condition.Difference),
		"cooloff":    a.Cooloff.String(),
		"message":    a.Message,
		"room":       a.Room,
		"poll_rate":  fmt.Sprintf("%d", a.PollRate),
		"strategy":   string(a.Strategy),
	}
	if a.LastNotified != nil {
		fields["last_notified"] = a.LastNotified.UTC().Format(time.RFC3339)
	}
	return fields
}

func (a *Alert) String() string {
	return fmt.Sprintf("Alert<%s %d%% in %s>", a.Condition.Signal, a.Condition.Difference, a.Condition.Timeframe.String())
}
