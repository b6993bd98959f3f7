package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"coindash/internal/dashboard"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// Server exposes the dashboard over HTTP: snapshot JSON, manual refresh,
// health, optional prometheus metrics, and a websocket channel that pushes
// refreshed snapshots.
type Server struct {
	addr            string
	shutdownTimeout time.Duration
	dash            *dashboard.Dashboard
	defaultDays     int
	metricsPath     string
	metricsHandler  http.Handler
	log             *zap.Logger
	hub             *hub
	srv             *http.Server
}

func New(addr string, shutdownTimeout time.Duration, dash *dashboard.Dashboard, defaultDays int, log *zap.Logger) *Server {
	return &Server{
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
		dash:            dash,
		defaultDays:     defaultDays,
		log:             log,
		hub:             newHub(log),
	}
}

// EnableMetrics mounts handler at path. Must be called before Start.
func (s *Server) EnableMetrics(path string, handler http.Handler) {
	s.metricsPath = path
	s.metricsHandler = handler
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/refresh", s.handleRefresh)
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	if s.metricsHandler != nil {
		mux.Handle(s.metricsPath, s.metricsHandler)
	}
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
	}()
	s.log.Info("http server starting", zap.String("addr", s.addr))
	if err := s.srv.Serve(ln); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Broadcast pushes a snapshot to every websocket subscriber.
func (s *Server) Broadcast(snap dashboard.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		s.log.Warn("snapshot encode failed", zap.Error(err))
		return
	}
	s.hub.broadcast(payload)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	days, err := s.daysParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snap, err := s.dash.Snapshot(r.Context(), days)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	days, err := s.daysParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.dash.Refresh()
	snap, err := s.dash.Snapshot(r.Context(), days)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.Broadcast(snap)
	writeJSON(w, snap)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Debug("ws accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	ch := s.hub.subscribe()
	// Subscribers never send; CloseRead cancels the context when they go away.
	ctx := conn.CloseRead(r.Context())
	s.hub.serve(ctx, conn, ch)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) daysParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return s.defaultDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return days, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
