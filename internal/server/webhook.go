// Package server is the HTTP surface: the inbound webhook, the emulator SSE
// stream and the health probe.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/goalbot/goalbot/internal/biz/domain"
	"github.com/goalbot/goalbot/internal/bus"
	"github.com/goalbot/goalbot/internal/transport/emulator"
)

// webhookRequest is the payload pushed by the transport gateway
type webhookRequest struct {
	Sender     string         `json:"sender"`
	MsgType    string         `json:"msg_type"`
	RawMsg     string         `json:"raw_msg"`
	ClientType string         `json:"client_type"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type webhookResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// Server exposes the webhook and the emulator event stream
type Server struct {
	bus           *bus.Bus
	broadcaster   *emulator.Broadcaster
	submitTimeout time.Duration
	log           zerolog.Logger
	http          *http.Server
}

// New builds the server; Start binds it to addr.
func New(addr string, b *bus.Bus, broadcaster *emulator.Broadcaster, submitTimeout time.Duration, log zerolog.Logger) *Server {
	s := &Server{
		bus:           b,
		broadcaster:   broadcaster,
		submitTimeout: submitTimeout,
		log:           log.With().Str("component", "server").Logger(),
	}
	r := mux.NewRouter()
	r.HandleFunc("/webhook", s.handleWebhook).Methods(http.MethodPost)
	r.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.http = &http.Server{Addr: addr, Handler: r}
	return s
}

// Handler exposes the mux for tests
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start serves until Shutdown is called. It blocks, so callers run it in a
// goroutine.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server listening")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// handleWebhook validates the gateway payload, submits it to the bus and
// blocks for the router's reply so the gateway gets a correlated response.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, webhookResponse{Message: "invalid JSON body"})
		return
	}
	if req.Sender == "" {
		s.writeJSON(w, http.StatusBadRequest, webhookResponse{Message: "sender is required"})
		return
	}
	if !domain.ValidMsgType(domain.MsgType(req.MsgType)) {
		s.writeJSON(w, http.StatusBadRequest, webhookResponse{Message: "unsupported msg_type: " + req.MsgType})
		return
	}
	if !domain.ValidClientType(domain.ClientType(req.ClientType)) {
		s.writeJSON(w, http.StatusBadRequest, webhookResponse{Message: "unsupported client_type: " + req.ClientType})
		return
	}

	msg := domain.NewMessage(req.Sender, domain.MsgType(req.MsgType), req.RawMsg, domain.ClientType(req.ClientType))
	msg.Metadata = req.Metadata

	reply := s.bus.Submit(msg, s.submitTimeout)
	s.writeJSON(w, http.StatusOK, webhookResponse{
		Success: true,
		Message: "processed",
		Data: map[string]any{
			"reply":       reply.Body,
			"attachments": reply.Attachments,
		},
	})
}

// handleEvents streams outbound emulator messages as server-sent events
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, cancel := s.broadcaster.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case event, open := <-events:
			if !open {
				return
			}
			if err := emulator.WriteEvent(w, event); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error().Err(err).Msg("failed to write response")
	}
}
