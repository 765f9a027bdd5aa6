package alertcfg

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so it can decode either the alerts file's
// {unit: count, ...} timeframe form (spec §6: "timeframe: { <unit>:
// <integer>, ... }") or a Go duration string ("10s", "1h30m") for cooloff,
// matching how the original's timedelta(**condition.timeframe) accepted
// keyword units.
type Duration struct {
	time.Duration
}

var unitScale = map[string]time.Duration{
	"weeks":        7 * 24 * time.Hour,
	"days":         24 * time.Hour,
	"hours":        time.Hour,
	"minutes":      time.Minute,
	"seconds":      time.Second,
	"milliseconds": time.Millisecond,
	"microseconds": time.Microsecond,
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("alertcfg: invalid duration %q: %w", s, err)
		}
		d.Duration = parsed
		return nil
	case yaml.MappingNode:
		var units map[string]int
		if err := value.Decode(&units); err != nil {
			return err
		}
		var total time.Duration
		for unit, count := range units {
			scale, ok := unitScale[unit]
			if !ok {
				return fmt.Errorf("alertcfg: unknown timeframe unit %q", unit)
			}
			total += time.Duration(count) * scale
		}
		d.Duration = total
		return nil
	default:
		return fmt.Errorf("alertcfg: cannot decode duration from yaml kind %v", value.Kind)
	}
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// MarshalJSON/UnmarshalJSON let Duration round-trip through the store's
// JSON-encoded alert records (spec §4.9) as nanosecond counts.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%d", int64(d.Duration))), nil
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var nanos int64
	if err := json.Unmarshal(data, &nanos); err != nil {
		return err
	}
	d.Duration = time.Duration(nanos)
	return nil
}
