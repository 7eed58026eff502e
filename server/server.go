// Package server publishes finished tag sessions to WebSocket clients and
// optionally advertises itself over mDNS.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
	"github.com/nedpals/mfulc/buildinfo"
	"github.com/nedpals/mfulc/internal/syncutil"
	"github.com/nedpals/mfulc/session"
)

const writeTimeout = 5 * time.Second

// WebsocketMessage represents a message sent to WebSocket clients.
type WebsocketMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Config holds the server configuration
type Config struct {
	// Addr is the listen address, e.g. ":18080".
	Addr string
	// MDNS advertises the feed as MDNSServiceType.
	MDNS bool
	// Logger receives server errors. Defaults to the standard logger.
	Logger *log.Logger
}

// Server broadcasts session events. Publish never blocks the caller; events
// are delivered by a separate goroutine started with Start.
type Server struct {
	config     Config
	log        *log.Logger
	httpServer *http.Server
	listener   net.Listener
	ctx        context.Context
	cancel     context.CancelFunc
	events     chan WebsocketMessage
	done       chan struct{}

	clients    map[*websocket.Conn]bool
	clientsMux syncutil.Mutex
	upgrader   websocket.Upgrader

	mdnsServer *zeroconf.Server
}

var _ session.EventSink = (*Server)(nil)

// New creates a new server instance
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		config:  config,
		log:     logger,
		events:  make(chan WebsocketMessage, eventBuffer),
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // read-only feed
			},
		},
	}
}

// Handler returns the HTTP routes of the feed.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", enableCORS(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.handleHealthCheck(w, r)
	}))
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/", enableCORS(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(buildinfo.DisplayName + " event feed"))
	}))
	return mux
}

// Start listens on the configured address and returns once the feed is
// serving. Stop shuts it down.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{Handler: s.Handler()}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Printf("event feed: HTTP server error: %v", err)
		}
	}()
	s.startDispatch()

	if s.config.MDNS {
		if err := s.startMDNS(); err != nil {
			s.log.Printf("Warning: failed to start mDNS service: %v", err)
		}
	}
	return nil
}

// Addr returns the bound address once Start succeeded.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop stops the HTTP server gracefully
func (s *Server) Stop() {
	if s.mdnsServer != nil {
		s.mdnsServer.Shutdown()
		s.mdnsServer = nil
	}
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.log.Printf("event feed: shutdown error: %v", err)
		}
		s.httpServer = nil
	}
	if s.cancel != nil {
		s.cancel()
		<-s.done
		s.cancel = nil
	}
	s.closeClients()
}

// Publish queues a finished session for broadcast. Events are dropped when
// the queue is full so that tag sessions never wait on slow clients.
func (s *Server) Publish(o session.Outcome) {
	msg := WebsocketMessage{Type: WSMessageTypeSession, Payload: NewSessionEvent(o)}
	select {
	case s.events <- msg:
	default:
		s.log.Printf("event feed: queue full, dropping session %s", o.ID)
	}
}

func (s *Server) startDispatch() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		for {
			select {
			case <-s.ctx.Done():
				// Flush what the last sessions queued before Stop closes clients.
				for {
					select {
					case msg := <-s.events:
						s.broadcast(msg)
					default:
						return
					}
				}
			case msg := <-s.events:
				s.broadcast(msg)
			}
		}
	}()
}

// broadcast sends a message to all connected clients
func (s *Server) broadcast(message WebsocketMessage) {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()

	for client := range s.clients {
		client.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := client.WriteJSON(message); err != nil {
			s.log.Printf("WebSocket write error: %v", err)
			client.Close()
			delete(s.clients, client)
		}
	}
}

func (s *Server) closeClients() {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()
	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
}

// clientCount returns the number of connected clients.
func (s *Server) clientCount() int {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()
	return len(s.clients)
}

// startMDNS registers the feed as an mDNS service
func (s *Server) startMDNS() error {
	addr, ok := s.Addr().(*net.TCPAddr)
	if !ok {
		return fmt.Errorf("mDNS needs a TCP listener")
	}
	txtRecords := []string{
		"version=" + buildinfo.Version,
		"protocol=websocket",
		"path=/ws",
	}

	server, err := zeroconf.Register(MDNSServiceName, MDNSServiceType, MDNSDomain, addr.Port, txtRecords, nil)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}
	s.mdnsServer = server
	return nil
}

// handleWebSocket upgrades the connection, greets the client and keeps it
// registered until it disconnects. Clients do not send requests.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	s.clientsMux.Lock()
	s.clients[conn] = true
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err = conn.WriteJSON(WebsocketMessage{
		Type: WSMessageTypeHello,
		Payload: map[string]string{
			"name":    buildinfo.Name,
			"version": buildinfo.FullVersion(),
		},
	})
	s.clientsMux.Unlock()
	if err != nil {
		s.unregister(conn)
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.unregister(conn)
			return
		}
	}
}

func (s *Server) unregister(conn *websocket.Conn) {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()
	delete(s.clients, conn)
}

// handleHealthCheck provides a health check endpoint (GET /api/v1/health)
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"version": buildinfo.FullVersion(),
		"clients": s.clientCount(),
	})
}

// enableCORS is a middleware that adds CORS headers to responses
func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", CORSAllowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", CORSAllowMethods)
		w.Header().Set("Access-Control-Allow-Headers", CORSAllowHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}
