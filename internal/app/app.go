// Package app wires the Signal Registry, Time-Series Store, Cooloff Gate,
// Scheduler, and a chosen Sink into a running process, and owns the
// graceful-shutdown lifecycle the teacher's internal/server/server.go
// demonstrates (context cancellation, signal.Notify, bounded shutdown
// timeout, sync.WaitGroup).
package app

import (
	"context"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"sigalert/internal/alertcfg"
	"sigalert/internal/config"
	"sigalert/internal/core"
	"sigalert/internal/evaluator"
	"sigalert/internal/metrics"
	"sigalert/internal/scheduler"
	"sigalert/internal/signal"
	"sigalert/internal/sink"
	"sigalert/internal/timeseries"
)

// Process is a running alerting core: a registry, window store, cooloff
// gate, and scheduler, shared by every mode (CLI sink modes and the Admin
// API server).
type Process struct {
	Ctx    context.Context
	Cancel context.CancelFunc
	Logger *log.Logger

	Registry *signal.Registry
	Windows  *timeseries.Store
	Cooloff  *evaluator.CooloffGate
	Metrics  *metrics.Metrics
	Scheduler *scheduler.Scheduler
}

// NewProcess constructs the shared core, registering every built-in signal
// (spec §4.1).
func NewProcess(cfg config.Config, logger *log.Logger) *Process {
	ctx, cancel := context.WithCancel(context.Background())

	registry := signal.NewRegistry()
	signal.RegisterHostSignals(registry, cfg.DiskMountPoint)
	signal.RegisterBTCSignals(registry, cfg.GlassnodeAPIKey)

	p := &Process{
		Ctx:      ctx,
		Cancel:   cancel,
		Logger:   logger,
		Registry: registry,
		Windows:  timeseries.NewStore(),
		Cooloff:  evaluator.NewCooloffGate(),
		Metrics:  metrics.NewMetrics(),
	}
	p.Scheduler = scheduler.New(ctx, logger)
	return p
}

// ScheduleAlerts registers one Scheduler task per alert using deliverySink.
// It does not return the handles: the CLI modes don't track them
// individually, and the Admin API keeps its own registration table.
func (p *Process) ScheduleAlerts(alerts []*alertcfg.Alert, deliverySink sink.Sink, sinkKind string) {
	for _, a := range alerts {
		task := core.NewAlertTask(a, p.Registry, p.Windows, p.Cooloff, deliverySink, sinkKind, p.Metrics)
		p.Scheduler.Schedule(task.Run, time.Duration(a.PollRate)*time.Second)
	}
}

// WaitForShutdown blocks until SIGINT/SIGTERM, then cancels the process
// context and closes the scheduler, mirroring the teacher's
// waitForShutdown/Shutdown split (internal/server/server.go).
func (p *Process) WaitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	ossignal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	p.Logger.Printf("received signal %v, initiating graceful shutdown...", sig)
	p.Shutdown()
}

// Shutdown cancels the process context and waits (bounded) for the
// scheduler's in-flight tasks to finish their current iteration.
func (p *Process) Shutdown() {
	p.Cancel()

	done := make(chan struct{})
	go func() {
		p.Scheduler.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		p.Logger.Printf("shutdown timed out waiting for scheduled tasks")
	}
}
