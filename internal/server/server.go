// Package server is the console's HTTP API and live event socket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/duanecilliers/openclaw-admin/internal/agents"
	"github.com/duanecilliers/openclaw-admin/internal/config"
	"github.com/duanecilliers/openclaw-admin/internal/cron"
	"github.com/duanecilliers/openclaw-admin/internal/document"
	"github.com/duanecilliers/openclaw-admin/internal/gatewayctl"
	"github.com/duanecilliers/openclaw-admin/internal/hooks"
	"github.com/duanecilliers/openclaw-admin/internal/logging"
	"github.com/duanecilliers/openclaw-admin/internal/skills"
	"github.com/duanecilliers/openclaw-admin/internal/store"
	"github.com/duanecilliers/openclaw-admin/internal/version"
	"github.com/duanecilliers/openclaw-admin/internal/workspace"
)

// Services are the components behind the API.
type Services struct {
	Config    *document.Store
	Agents    *agents.Resolver
	Skills    *skills.Catalog
	Jobs      *cron.Store
	Runner    *cron.Runner
	Workspace *workspace.Files
	Gateway   *gatewayctl.Controller
}

// eventSocketHandler is the bus registration that feeds the event socket.
const eventSocketHandler = "events"

// Server is the console HTTP + WebSocket server.
type Server struct {
	cfg     config.ServerConfig
	svc     Services
	log     *logging.Logger
	clients *Hub
	version string

	// optional
	hooks   *hooks.Manager
	journal *store.Journal

	now        func() time.Time
	startedAt  time.Time
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithHooks streams every event on hm to event socket clients and reports
// the server lifecycle on it.
func WithHooks(hm *hooks.Manager) ServerOption {
	return func(s *Server) {
		s.hooks = hm
	}
}

// WithJournal serves the change journal. Without it /api/journal
// reports the journal as disabled.
func WithJournal(j *store.Journal) ServerOption {
	return func(s *Server) {
		s.journal = j
	}
}

// New creates a server.
func New(cfg config.ServerConfig, svc Services, log *logging.Logger, opts ...ServerOption) *Server {
	s := &Server{
		cfg:     cfg,
		svc:     svc,
		log:     log.Sub("server"),
		clients: NewHub(log.Sub("clients")),
		version: version.Version,
		now:     time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkWebSocketOrigin(cfg.AllowedOrigins),
		},
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.startedAt.IsZero() {
		s.startedAt = s.now()
	}

	if s.hooks != nil {
		s.hooks.OnAll(eventSocketHandler, s.broadcast)
	}
	return s
}

func (s *Server) broadcast(_ context.Context, p hooks.Payload) error {
	s.clients.Publish(p.Event, p)
	return nil
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.ServerConfig) string {
	switch cfg.Bind {
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return net.JoinHostPort(host, fmt.Sprint(cfg.Port))
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Handler returns the routed API with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return withMiddleware(mux, s.log, s.cfg.AllowedOrigins)
}

// Start listens and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// no WriteTimeout: restart and cron run wait up to the trigger timeout
		IdleTimeout: 120 * time.Second,
		BaseContext: func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if s.cfg.Bind == "lan" || s.cfg.Bind == "custom" {
		s.log.Warn().Str("bind", s.cfg.Bind).Msg("console is unauthenticated and reachable beyond loopback")
	}

	s.startedAt = s.now()
	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Bind).
		Msg("console server ready")

	if s.hooks != nil {
		s.hooks.Emit(ctx, hooks.EventConsoleStart, ln.Addr().String(), map[string]any{"version": s.version})
	}

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down console server")
		if s.hooks != nil {
			s.hooks.Emit(context.Background(), hooks.EventConsoleStop, ln.Addr().String(), nil)
			s.hooks.OffAll(eventSocketHandler)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.clients.CloseAll()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleEvents upgrades to a WebSocket and streams hook events until the
// client goes away. Messages from the client are read and dropped.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(64 * 1024)

	client := NewClient(conn)
	if err := client.SendEvent(EventHello, Hello{
		Version: s.version,
		ConnID:  client.ConnID,
		Events:  hooks.AllEvents,
	}, 0); err != nil {
		s.log.Warn().Err(err).Msg("sending hello failed")
		client.Close()
		return
	}

	s.clients.Add(client)
	defer func() {
		s.clients.Remove(client.ConnID)
		client.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Str("connId", client.ConnID).Msg("read error")
			}
			return
		}
	}
}
