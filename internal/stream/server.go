// Package stream publishes the running scene to websocket clients as JSON.
package stream

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/dominoes/internal/render"
	"golang.org/x/time/rate"
)

const (
	DefaultFPS = 30

	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

var ErrClosed = errors.New("stream: server closed")

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Server is a render.Renderer that fans every drawn frame out to the
// connected clients. Frames beyond the rate limit are dropped, as are
// frames for clients whose send buffer is full.
type Server struct {
	upgrader websocket.Upgrader
	limiter  *rate.Limiter

	mu      sync.Mutex
	clients map[*client]struct{}
	scene   []byte
	dropped int
	closed  bool
}

// NewServer publishes at most fps frames per second.
func NewServer(fps float64) *Server {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		limiter: rate.NewLimiter(rate.Limit(fps), 1),
		clients: make(map[*client]struct{}),
	}
}

// LoadTexture only checks that the asset exists. Clients bring their own
// materials.
func (s *Server) LoadTexture(path string) (render.Texture, error) {
	if _, err := os.Stat(path); err != nil {
		return render.Texture{}, err
	}
	return render.Texture{Path: path}, nil
}

func (s *Server) Setup(scene render.Scene) error {
	msg, err := json.Marshal(sceneMessage(scene))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.scene = msg
	s.broadcast(msg)
	return nil
}

func (s *Server) Draw(frame render.Frame) error {
	s.mu.Lock()
	closed, idle := s.closed, len(s.clients) == 0
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if idle {
		return nil
	}
	if !s.limiter.Allow() {
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
		return nil
	}

	msg, err := json.Marshal(frameMessage(frame))
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.broadcast(msg)
	s.mu.Unlock()
	return nil
}

// broadcast must be called with mu held.
func (s *Server) broadcast(msg []byte) {
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			s.dropped++
		}
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
	return nil
}

// ServeHTTP upgrades the request and streams to it until either side
// closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	if s.scene != nil {
		c.send <- s.scene
	}
	s.clients[c] = struct{}{}
	n := len(s.clients)
	s.mu.Unlock()
	slog.Info("client connected", "remote", r.RemoteAddr, "clients", n)

	go c.writeLoop()
	c.readLoop()
	s.remove(c)
	slog.Info("client disconnected", "remote", r.RemoteAddr)
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

// readLoop discards whatever the client sends and returns once the
// connection fails.
func (c *client) readLoop() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Dropped counts frames not delivered to some client.
func (s *Server) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

var _ render.Renderer = (*Server)(nil)
