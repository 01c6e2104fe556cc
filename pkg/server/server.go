package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server accepts WebSocket connections and runs one session per
// client.
type Server struct {
	factory  Factory
	config   *Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	httpServer *http.Server

	mu       sync.Mutex
	sessions map[string]*Session
}

// New creates a server that spawns an App from factory for each
// connection.
func New(factory Factory, opts ...Option) *Server {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}
	config.fillDefaults()

	s := &Server{
		factory:  factory,
		config:   config,
		logger:   config.Logger,
		sessions: make(map[string]*Session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWebSocket)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.httpServer = &http.Server{
		Addr:              config.Address,
		Handler:           r,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}
	return s
}

// Handler returns the HTTP handler, for mounting under another mux or
// testing with httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the server and blocks until ctx is cancelled
// or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.config.Address)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	s.closeSessions()
	return s.httpServer.Shutdown(shutdownCtx)
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// defaultIndexPage is served when no shell is configured. Embedding
// applications supply their own page carrying the client bundle that
// connects to /ws and applies ops to the mount point.
const defaultIndexPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>vireo</title></head>
<body>
<div id="app">vireo server is running; connect a client to /ws</div>
</body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(s.config.IndexHTML))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	id, err := newSessionID()
	if err != nil {
		s.logger.Error("session id generation failed", "error", err)
		conn.Close()
		return
	}

	sess := newSession(id, conn, s.factory(), s.logger, s.config.Observer, s.config)
	s.track(sess)
	s.logger.Info("session started", "session", id, "remote", r.RemoteAddr)

	go sess.readLoop()
	go func() {
		defer s.untrack(sess)
		// The request context dies when this handler returns; the
		// session lives until the connection closes.
		sess.run(context.Background())
		s.logger.Info("session ended", "session", id)
	}()
}

func (s *Server) track(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()
}

func (s *Server) untrack(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.ID())
	s.mu.Unlock()
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}

func newSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
