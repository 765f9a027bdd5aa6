// Package api implements the Admin API (spec §4.10): ingress for external
// signal readings and CRUD of alerts/matrix configs/matrix actions. The
// router is built with go-chi/chi and go-chi/cors, and mutating routes are
// guarded by the teacher's JWT middleware (internal/auth), the same
// constructor-and-mount shape the teacher uses for its WebSocket server
// (internal/server/server.go).
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"sigalert/internal/alertcfg"
	"sigalert/internal/auth"
	"sigalert/internal/core"
	"sigalert/internal/evaluator"
	"sigalert/internal/scheduler"
	"sigalert/internal/signal"
	"sigalert/internal/sink"
	"sigalert/internal/store"
	"sigalert/internal/timeseries"
	"sigalert/pkg/matrix"
)

// ErrConflict is returned by Register when the action is
// already registered (spec §4.10: "reject with conflict if already
// registered").
var ErrConflict = errors.New("api: matrix action already registered")

// Server holds every collaborator the Admin API's handlers need.
type Server struct {
	store     *store.Store
	registry  *signal.Registry
	windows   *timeseries.Store
	cooloff   *evaluator.CooloffGate
	scheduler *scheduler.Scheduler
	observer  core.Observer
	jwt       *auth.JWTManager
	logger    *log.Logger

	mu       sync.Mutex
	handles  map[string]scheduler.Handle
}

func NewServer(
	st *store.Store,
	registry *signal.Registry,
	windows *timeseries.Store,
	cooloff *evaluator.CooloffGate,
	sched *scheduler.Scheduler,
	observer core.Observer,
	jwtManager *auth.JWTManager,
	logger *log.Logger,
) *Server {
	return &Server{
		store:     st,
		registry:  registry,
		windows:   windows,
		cooloff:   cooloff,
		scheduler: sched,
		observer:  observer,
		jwt:       jwtManager,
		logger:    logger,
		handles:   make(map[string]scheduler.Handle),
	}
}

// Router builds the chi mux: CRUD routes are open to read, guarded by JWT
// to mutate, mirroring the teacher's auth.AuthMiddleware usage.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Route("/alerts", func(r chi.Router) {
		r.With(s.requireAuth).Post("/", s.createAlert)
		r.Get("/{id}", s.getAlert)
	})

	r.Route("/matrix/configs", func(r chi.Router) {
		r.With(s.requireAuth).Post("/", s.createMatrixConfig)
		r.Get("/{id}", s.getMatrixConfig)
	})

	r.Route("/matrix/actions", func(r chi.Router) {
		r.With(s.requireAuth).Post("/", s.createMatrixAction)
		r.With(s.requireAuth).Post("/{id}/register", s.registerMatrixAction)
	})

	r.With(s.requireAuth).Post("/signals/{name}", s.ingestSignal)

	return r
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	if s.jwt == nil {
		return next
	}
	return s.jwt.AuthMiddleware(next.ServeHTTP)
}

func (s *Server) createAlert(w http.ResponseWriter, r *http.Request) {
	var alert alertcfg.Alert
	if err := json.NewDecoder(r.Body).Decode(&alert); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	alert.Normalize()

	data, err := json.Marshal(&alert)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	id := alert.ID()
	if err := s.store.Set(r.Context(), id, data, store.DefaultTTL); err != nil {
		s.logger.Printf("api: failed to persist alert %s: %v", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.audit(r, "create_alert", id)

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) getAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, ok, err := s.store.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) createMatrixConfig(w http.ResponseWriter, r *http.Request) {
	var cfg matrix.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	data, err := json.Marshal(&cfg)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	id := cfg.ID()
	if err := s.store.Set(r.Context(), id, data, store.DefaultTTL); err != nil {
		s.logger.Printf("api: failed to persist matrix config %s: %v", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.audit(r, "create_matrix_config", id)

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) getMatrixConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, ok, err := s.store.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) createMatrixAction(w http.ResponseWriter, r *http.Request) {
	var action MatrixAction
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	data, err := json.Marshal(&action)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	id := action.ID()
	if err := s.store.Set(r.Context(), id, data, store.DefaultTTL); err != nil {
		s.logger.Printf("api: failed to persist matrix action %s: %v", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.audit(r, "create_matrix_action", id)

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// registerMatrixAction starts a Scheduler task for the bound alert using
// the Matrix sink (spec §4.10), rejecting with conflict if the action is
// already registered.
func (s *Server) registerMatrixAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	data, ok, err := s.store.Get(ctx, id)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	var action MatrixAction
	if err := json.Unmarshal(data, &action); err != nil {
		http.Error(w, "corrupt action record", http.StatusInternalServerError)
		return
	}

	alertData, ok, err := s.store.Get(ctx, action.AlertID)
	if err != nil || !ok {
		http.Error(w, "bound alert not found", http.StatusUnprocessableEntity)
		return
	}
	var alert alertcfg.Alert
	if err := json.Unmarshal(alertData, &alert); err != nil {
		http.Error(w, "corrupt alert record", http.StatusInternalServerError)
		return
	}

	if err := s.Register(id, &alert); err != nil {
		if errors.Is(err, ErrConflict) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.audit(r, "register_matrix_action", id)

	writeJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}

// Register schedules alert's task under key id (typically a matrix
// action's id), returning ErrConflict if id is already registered.
func (s *Server) Register(id string, alert *alertcfg.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.handles[id]; exists {
		return ErrConflict
	}

	task := core.NewAlertTask(alert, s.registry, s.windows, s.cooloff, sink.Matrix(s.store), "matrix", s.observer)
	handle := s.scheduler.Schedule(task.Run, time.Duration(alert.PollRate)*time.Second)
	s.handles[id] = handle
	return nil
}

func (s *Server) ingestSignal(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(chi.URLParam(r, "name"))
	if s.registry.IsBuiltin(name) {
		http.Error(w, "forbidden: built-in signal name", http.StatusForbidden)
		return
	}

	var payload struct {
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	s.windows.Ingest(name, payload.Value, time.Now().UTC())
	if err := s.store.SAdd(ctx, store.SignalsSetKey, name); err != nil {
		s.logger.Printf("api: failed to track external signal name %s: %v", name, err)
	}
	s.audit(r, "ingest_signal", name)

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// audit logs the authenticated caller behind a mutating request, if any.
// Unauthenticated routes (the JWT manager is nil) have no claims to log.
func (s *Server) audit(r *http.Request, action, id string) {
	claims, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		s.logger.Printf("api: %s %s by anonymous", action, id)
		return
	}
	s.logger.Printf("api: %s %s by %s", action, id, claims.Username)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

