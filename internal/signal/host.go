package signal

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// loadAvgSampler samples one of the three load-average windows via
// gopsutil/load, part of the same gopsutil library the teacher's
// internal/metrics uses for CPU tracking.
type loadAvgSampler struct {
	field string // "1", "5", or "15"
}

func (s loadAvgSampler) Sample(_ context.Context) (float64, error) {
	avg, err := load.Avg()
	if err != nil {
		return 0, fmt.Errorf("signal: load average: %w", err)
	}
	switch s.field {
	case "1":
		return avg.Load1, nil
	case "5":
		return avg.Load5, nil
	case "15":
		return avg.Load15, nil
	default:
		return 0, fmt.Errorf("signal: unknown load average field %q", s.field)
	}
}

// memorySampler samples one field of host virtual memory usage.
type memorySampler struct {
	field string // "percentage", "used", "free"
}

func (s memorySampler) Sample(_ context.Context) (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("signal: virtual memory: %w", err)
	}
	switch s.field {
	case "percentage":
		return vm.UsedPercent, nil
	case "used":
		return float64(vm.Used), nil
	case "free":
		return float64(vm.Free), nil
	default:
		return 0, fmt.Errorf("signal: unknown memory field %q", s.field)
	}
}

// swapSampler samples one field of host swap usage.
type swapSampler struct {
	field string // "percentage", "used", "free"
}

func (s swapSampler) Sample(_ context.Context) (float64, error) {
	sw, err := mem.SwapMemory()
	if err != nil {
		return 0, fmt.Errorf("signal: swap memory: %w", err)
	}
	switch s.field {
	case "percentage":
		return sw.UsedPercent, nil
	case "used":
		return float64(sw.Used), nil
	case "free":
		return float64(sw.Free), nil
	default:
		return 0, fmt.Errorf("signal: unknown swap field %q", s.field)
	}
}

// diskSampler samples one field of usage at a fixed mount point.
type diskSampler struct {
	path  string
	field string // "percent", "free", "used"
}

func (s diskSampler) Sample(_ context.Context) (float64, error) {
	usage, err := disk.Usage(s.path)
	if err != nil {
		return 0, fmt.Errorf("signal: disk usage %s: %w", s.path, err)
	}
	switch s.field {
	case "percent":
		return usage.UsedPercent, nil
	case "free":
		return float64(usage.Free), nil
	case "used":
		return float64(usage.Used), nil
	default:
		return 0, fmt.Errorf("signal: unknown disk field %q", s.field)
	}
}

// RegisterHostSignals registers the gopsutil-backed host samplers spec
// §4.1 names: server_load_{1,5,15}m, server_memory_usage_*,
// server_memory_swap_usage_*, and server_disk_usage_* rooted at
// diskMountPoint (ordinarily "/").
func RegisterHostSignals(r *Registry, diskMountPoint string) {
	r.Register("server_load_1m", loadAvgSampler{field: "1"})
	r.Register("server_load_5m", loadAvgSampler{field: "5"})
	r.Register("server_load_15m", loadAvgSampler{field: "15"})

	r.Register("server_memory_usage_percentage", memorySampler{field: "percentage"})
	r.Register("server_memory_usage_used", memorySampler{field: "used"})
	r.Register("server_memory_usage_free", memorySampler{field: "free"})

	r.Register("server_memory_swap_usage_percentage", swapSampler{field: "percentage"})
	r.Register("server_memory_swap_usage_used", swapSampler{field: "used"})
	r.Register("server_memory_swap_usage_free", swapSampler{field: "free"})

	r.Register("server_disk_usage_percent", diskSampler{path: diskMountPoint, field: "percent"})
	r.Register("server_disk_usage_free", diskSampler{path: diskMountPoint, field: "free"})
	r.Register("server_disk_usage_used", diskSampler{path: diskMountPoint, field: "used"})
}
