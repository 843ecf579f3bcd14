// Package web serves the chat as a single HTML page backed by a small JSON
// API and a websocket that pushes session snapshots.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/diogo/cookieschat/internal/chat"
)

//go:embed static/index.html
var staticFS embed.FS

const (
	maxBodyBytes = 64 << 10
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 45 * time.Second
)

// Session is the part of chat.Session the web layer drives
type Session interface {
	Start(ctx context.Context, text string) (<-chan struct{}, error)
	SetDraft(text string)
	Snapshot() chat.Event
	Subscribe() (<-chan chat.Event, func())
	ID() string
}

// Server exposes one chat session over HTTP
type Server struct {
	session   Session
	modelName string
	gatherer  prometheus.Gatherer
	mux       *http.ServeMux
	index     *template.Template
	upgrader  websocket.Upgrader
}

// Option configures a Server
type Option func(*Server)

// WithModelName shows the model in the page header
func WithModelName(name string) Option {
	return func(s *Server) {
		s.modelName = name
	}
}

// WithMetrics mounts /metrics for g
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewServer creates the HTTP handlers for session
func NewServer(session Session, opts ...Option) (*Server, error) {
	index, err := template.ParseFS(staticFS, "static/index.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		session: session,
		mux:     http.NewServeMux(),
		index:   index,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerHTTPHandlers()
	return s, nil
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.mux
}

// registerHTTPHandlers mounts the page and API endpoints on the server mux.
func (s *Server) registerHTTPHandlers() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("POST /api/messages", s.handleSubmit)
	s.mux.HandleFunc("PUT /api/draft", s.handleDraft)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
	if s.gatherer != nil {
		s.mux.Handle("GET /metrics", MetricsHandler(s.gatherer))
	}
}

// MetricsHandler serves g in the prometheus exposition format
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Model string
	}{Model: s.modelName}
	if err := s.index.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("failed to render index")
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	_, err := s.session.Start(r.Context(), req.Text)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, chat.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Str("session", s.session.ID()).Msg("submit failed")
		writeError(w, http.StatusInternalServerError, "submit failed")
		return
	}

	writeJSON(w, http.StatusAccepted, s.session.Snapshot())
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.session.SetDraft(req.Text)
	w.WriteHeader(http.StatusNoContent)
}

// handleWebSocket pushes every session snapshot to the client until either
// side goes away
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	events, unsubscribe := s.session.Subscribe()
	defer unsubscribe()

	logger := log.With().Str("session", s.session.ID()).Str("remote", r.RemoteAddr).Logger()
	logger.Debug().Msg("websocket connected")

	// Reader: keeps pong handling alive and notices disconnects
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				logger.Warn().Err(err).Msg("ws send failed, dropping connection")
				return
			}
		case <-ping.C:
			deadline := time.Now().Add(writeTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-gone:
			logger.Debug().Msg("websocket disconnected")
			return
		}
	}
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// ListenAndServe runs every server until ctx is cancelled or one of them
// fails, then shuts the others down
func ListenAndServe(ctx context.Context, servers ...*http.Server) error {
	eg, egCtx := errgroup.WithContext(ctx)

	for _, srv := range servers {
		srv := srv
		eg.Go(func() error {
			log.Info().Str("addr", srv.Addr).Msg("listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		eg.Go(func() error {
			<-egCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Str("addr", srv.Addr).Msg("server shutdown error")
				return err
			}
			return nil
		})
	}

	return eg.Wait()
}

// NewHTTPServer wraps handler with the timeouts used for every listener
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
