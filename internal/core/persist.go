package core

import (
	"context"
	"log"
	"time"

	"sigalert/internal/store"
	"sigalert/internal/timeseries"
)

// PersistWindows serializes every known window to the store under its
// signal name, with the 7-day TTL spec §4.9 assigns to everything but the
// message queue. Called on a scheduled cadence and once more on shutdown
// (spec §4.2).
func PersistWindows(ctx context.Context, windows *timeseries.Store, st *store.Store, logger *log.Logger) {
	for _, name := range windows.Names() {
		readings := windows.Snapshot(name)
		data := timeseries.Encode(readings)
		if err := st.Set(ctx, name, data, store.DefaultTTL); err != nil {
			logger.Printf("core: failed to persist window %s: %v", name, err)
		}
	}
}

// HydrateWindows loads every window named in signalNames from the store
// into windows, used once at startup (spec §4.2: "On startup, the map is
// hydrated from the store").
func HydrateWindows(ctx context.Context, windows *timeseries.Store, st *store.Store, signalNames []string, logger *log.Logger) {
	for _, name := range signalNames {
		data, ok, err := st.Get(ctx, name)
		if err != nil {
			logger.Printf("core: failed to load window %s: %v", name, err)
			continue
		}
		if !ok {
			continue
		}
		readings, err := timeseries.Decode(data)
		if err != nil {
			logger.Printf("core: failed to decode window %s: %v", name, err)
			continue
		}
		windows.Replace(name, readings)
	}
}

// PersistencePeriod is the cadence PersistWindows runs on when scheduled as
// its own task.
const PersistencePeriod = 30 * time.Second
