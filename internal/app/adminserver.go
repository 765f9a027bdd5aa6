package app

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"sigalert/internal/api"
	"sigalert/internal/auth"
	"sigalert/internal/config"
	"sigalert/internal/core"
	"sigalert/internal/metrics"
	"sigalert/internal/queue"
	"sigalert/internal/store"
	"sigalert/pkg/matrix"
)

// AdminServer runs the Admin API plus the durable queue worker that drains
// it into Matrix, wiring C8/C9/C10 on top of the shared Process core.
type AdminServer struct {
	*Process
	store      *store.Store
	httpServer *http.Server
	worker     *queue.Worker
}

// NewAdminServer constructs the store, queue worker, Matrix delivery
// client, JWT manager, and Admin API router, and binds them to an
// http.Server at cfg.AdminAddr.
func NewAdminServer(cfg config.Config, logger *log.Logger) (*AdminServer, error) {
	p := NewProcess(cfg, logger)

	st := store.New(store.Config{Host: cfg.RedisHost, Port: cfg.RedisPort}, logger)

	roomCache, err := matrix.LoadRoomCache(cfg.RoomCachePath)
	if err != nil {
		return nil, err
	}
	matrixClient := matrix.New(matrix.Config{
		Host:     cfg.MatrixHost,
		User:     cfg.MatrixUser,
		Password: cfg.MatrixPassword,
	}, roomCache, logger)

	worker := queue.NewWorker(st, matrixClient, p.Metrics, logger, cfg.DeliveryInterval)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, time.Hour)
	apiServer := api.NewServer(st, p.Registry, p.Windows, p.Cooloff, p.Scheduler, p.Metrics, jwtManager, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthzHandler(p.Metrics))
	mux.Handle("/", apiServer.Router())

	httpServer := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: mux,
	}

	return &AdminServer{Process: p, store: st, httpServer: httpServer, worker: worker}, nil
}

// Run hydrates windows from the store, starts the queue worker, the
// periodic window-persistence sweep, and the HTTP listener, then blocks
// until SIGINT/SIGTERM.
func (a *AdminServer) Run() error {
	signalNames, err := a.store.SMembers(a.Ctx, store.SignalsSetKey)
	if err != nil {
		a.Logger.Printf("adminserver: failed to list known signal names: %v", err)
	} else {
		core.HydrateWindows(a.Ctx, a.Windows, a.store, signalNames, a.Logger)
	}

	go a.worker.Run(a.Ctx)

	a.Scheduler.Schedule(func(ctx context.Context) error {
		core.PersistWindows(ctx, a.Windows, a.store, a.Logger)
		return nil
	}, core.PersistencePeriod)

	go func() {
		a.Logger.Printf("admin API listening on %s", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Printf("admin API server error: %v", err)
		}
	}()

	a.waitForShutdown()
	return nil
}

func (a *AdminServer) waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	ossignal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	a.Logger.Printf("received signal %v, initiating graceful shutdown...", sig)
	a.shutdown()
}

func (a *AdminServer) shutdown() {
	a.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.Logger.Printf("admin API shutdown error: %v", err)
	}

	a.Scheduler.Close()

	core.PersistWindows(context.Background(), a.Windows, a.store, a.Logger)

	if err := a.store.Close(); err != nil {
		a.Logger.Printf("store close error: %v", err)
	}
}

// healthzHandler reports process uptime, used by operators/load balancers to
// confirm the process is up without needing to scrape the Prometheus series.
func healthzHandler(m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
			"uptime": m.Uptime().String(),
		})
	}
}
