package alertcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadCollection reads an alerts file (spec §6) and returns the configured
// alerts, normalized with their defaults applied.
func LoadCollection(path string) ([]*Alert, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("alertcfg: read %s: %w", path, err)
	}

	var raw []*Alert
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("alertcfg: parse %s: %w", path, err)
	}

	for _, a := range raw {
		if a.Condition.Signal == "" {
			return nil, fmt.Errorf("alertcfg: alert missing condition.signal")
		}
		if !a.Strategy.Valid() && a.Strategy != "" {
			return nil, fmt.Errorf("alertcfg: alert %q has unknown signal_read_strategy %q", a.Condition.Signal, a.Strategy)
		}
		a.Normalize()
	}
	return raw, nil
}
