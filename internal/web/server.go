// Package web is the development backend. It serves the same paged REST
// collections and machine counter WebSocket as the production service,
// backed by a local db.Store.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"ammonit/internal/api"
	"ammonit/internal/db"
	"ammonit/internal/metrics"
	"ammonit/internal/model"
	"ammonit/internal/telemetry"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	// DefaultLimit matches the backend's default page length.
	DefaultLimit = 100
	// DefaultTick is the interval between counter frames.
	DefaultTick = time.Second
)

// Server handles the development API
type Server struct {
	store   db.Store
	port    int
	tick    time.Duration
	token   string
	metrics *metrics.Metrics

	upgrader websocket.Upgrader
	hub      *hub

	mu       sync.Mutex
	http     *http.Server
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithTick sets the interval between counter frames.
func WithTick(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithToken requires "Authorization: Bearer <token>" on REST routes.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithMetrics records request metrics and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// NewServer creates a new dev server
func NewServer(store db.Store, port int, opts ...Option) *Server {
	s := &Server{
		store: store,
		port:  port,
		tick:  DefaultTick,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		hub:  newHub(),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	if s.metrics != nil {
		r.Use(func(next http.Handler) http.Handler {
			return s.metrics.RequestTrackingMiddleware(routeTemplate, next)
		})
		r.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")

	v1 := r.PathPrefix(api.APIPrefix).Subrouter()
	v1.HandleFunc("/machines/ws", s.handleCounter)

	v1.Handle("/users/me", s.requireToken(s.handleMe)).Methods("GET")
	v1.Handle("/{collection}/", s.requireToken(s.handleList)).Methods("GET")
	v1.Handle("/{collection}", s.requireToken(s.handleList)).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	return r
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// Start serves on 127.0.0.1:port until Stop is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)

	s.mu.Lock()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.http
	s.mu.Unlock()

	telemetry.LogInfo("Starting dev backend", "addr", "http://"+addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("dev backend: %w", err)
	}
	return nil
}

// Stop ends counter streams and shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.done) })
	s.hub.closeAll()

	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) requireToken(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		telemetry.LogError("Failed to write response", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

type validationError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func queryInt(r *http.Request, name string, def int) (int, *validationError) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &validationError{Loc: []string{"query", name}, Msg: "Input should be a valid integer", Type: "int_parsing"}
	}
	if n < 0 {
		return 0, &validationError{Loc: []string{"query", name}, Msg: "Input should be greater than or equal to 0", Type: "greater_than_equal"}
	}
	return n, nil
}

type pageBody struct {
	Data  []json.RawMessage `json:"data"`
	Count int               `json:"count"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]
	if !slices.Contains(model.Collections, collection) {
		writeDetail(w, http.StatusNotFound, "Not Found")
		return
	}

	var problems []validationError
	skip, verr := queryInt(r, "skip", 0)
	if verr != nil {
		problems = append(problems, *verr)
	}
	limit, verr := queryInt(r, "limit", DefaultLimit)
	if verr != nil {
		problems = append(problems, *verr)
	}
	if len(problems) > 0 {
		writeDetail(w, http.StatusUnprocessableEntity, problems)
		return
	}

	count, err := s.store.CountRecords(collection)
	if err != nil {
		telemetry.LogError("Failed to count records", err, "collection", collection)
		writeDetail(w, http.StatusInternalServerError, "Failed to read "+collection)
		return
	}
	data, err := s.store.ListRecords(collection, skip, limit)
	if err != nil {
		telemetry.LogError("Failed to list records", err, "collection", collection)
		writeDetail(w, http.StatusInternalServerError, "Failed to read "+collection)
		return
	}
	if data == nil {
		data = []json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, pageBody{Data: data, Count: count})
}

// handleMe returns the first user, which Seed makes the superuser.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.ListRecords("users", 0, 1)
	if err != nil {
		telemetry.LogError("Failed to read current user", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to read users")
		return
	}
	if len(data) == 0 {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data[0])
}
