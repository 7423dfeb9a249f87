package pvd

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Server receives mirrored frames. It is an http.Handler meant to be mounted
// at DefaultPath.
type Server struct {
	upgrader websocket.Upgrader
	handler  func(Message)

	mu     sync.Mutex
	active int
	total  int
	frames int
}

// NewServer creates a receiver that passes every decoded message to handler.
// handler may be nil and is called from the connection's goroutine.
func NewServer(handler func(Message)) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		handler: handler,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("pvd: upgrade error: %v", err)
		return
	}
	defer conn.Close()

	s.mu.Lock()
	s.active++
	s.total++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("pvd: read error: %v", err)
			}
			return
		}
		if msg.Type == MessageFrame {
			s.mu.Lock()
			s.frames++
			s.mu.Unlock()
		}
		if s.handler != nil {
			s.handler(msg)
		}
		if msg.Type == MessageClose {
			return
		}
	}
}

// ActiveConnections returns the number of currently open connections.
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// TotalConnections returns the number of connections accepted so far.
func (s *Server) TotalConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Frames returns the number of frame messages received so far.
func (s *Server) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}
