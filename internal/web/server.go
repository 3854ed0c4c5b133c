package web

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

//go:embed index.html
var indexPage []byte

// Engine is the slice of the application the control server talks to.
// All methods must be safe to call while the render loop runs.
type Engine interface {
	FPS() float64
	Bands() (low, mid, high float64)
	Loudness() float64
	BeatActive() bool
	SceneIndex() int
	AdvanceScene()
	PaletteCount() int
	PaletteIndex() int
	SetPaletteIndex(i int)
	GlitchEnabled() bool
	SetGlitchEnabled(on bool)
	PoolSizes() (particles, lasers int)
}

// Server exposes engine state over REST and a websocket feed, for
// remote VJ control from a phone or second machine.
type Server struct {
	engine Engine
	log    *log.Logger

	mu        sync.Mutex
	clients   map[*wsClient]bool
	broadcast chan []byte
	upgrader  websocket.Upgrader
}

type wsClient struct {
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

// StatusResponse is the read-only state snapshot sent to clients.
type StatusResponse struct {
	FPS          float64 `json:"fps"`
	Loudness     float64 `json:"loudness"`
	Low          float64 `json:"low"`
	Mid          float64 `json:"mid"`
	High         float64 `json:"high"`
	Beat         bool    `json:"beat"`
	Scene        int     `json:"scene"`
	Palette      int     `json:"palette"`
	PaletteCount int     `json:"paletteCount"`
	Glitch       bool    `json:"glitch"`
	Particles    int     `json:"particles"`
	Lasers       int     `json:"lasers"`
}

// UpdateRequest carries a partial control change; nil fields are left
// untouched.
type UpdateRequest struct {
	AdvanceScene *bool `json:"advanceScene,omitempty"`
	Glitch       *bool `json:"glitch,omitempty"`
	Palette      *int  `json:"palette,omitempty"`
}

// NewServer creates a control server bound to the engine.
func NewServer(engine Engine, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		engine:    engine,
		log:       logger,
		clients:   make(map[*wsClient]bool),
		broadcast: make(chan []byte, 256),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start serves forever on the given port.
func (s *Server) Start(port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/update", s.handleUpdate)
	mux.HandleFunc("/ws", s.handleWebSocket)

	go s.broadcastLoop()
	go s.statusLoop()

	addr := fmt.Sprintf(":%d", port)
	s.log.Printf("[web] control server on http://0.0.0.0%s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) status() StatusResponse {
	low, mid, high := s.engine.Bands()
	particles, lasers := s.engine.PoolSizes()
	return StatusResponse{
		FPS:          s.engine.FPS(),
		Loudness:     s.engine.Loudness(),
		Low:          low,
		Mid:          mid,
		High:         high,
		Beat:         s.engine.BeatActive(),
		Scene:        s.engine.SceneIndex(),
		Palette:      s.engine.PaletteIndex(),
		PaletteCount: s.engine.PaletteCount(),
		Glitch:       s.engine.GlitchEnabled(),
		Particles:    particles,
		Lasers:       lasers,
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexPage)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.status())
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.AdvanceScene != nil && *req.AdvanceScene {
		s.engine.AdvanceScene()
	}
	if req.Glitch != nil {
		s.engine.SetGlitchEnabled(*req.Glitch)
	}
	if req.Palette != nil {
		s.engine.SetPaletteIndex(*req.Palette)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("[web] websocket upgrade: %v", err)
		return
	}

	client := &wsClient{
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}

	s.mu.Lock()
	s.clients[client] = true
	s.mu.Unlock()

	go client.writePump()
	go client.readPump()
}

func (s *Server) broadcastLoop() {
	for message := range s.broadcast {
		s.mu.Lock()
		for client := range s.clients {
			select {
			case client.send <- message:
			default:
				close(client.send)
				delete(s.clients, client)
			}
		}
		s.mu.Unlock()
	}
}

func (s *Server) statusLoop() {
	// 500ms is plenty for remote meters
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		data, err := json.Marshal(s.status())
		if err != nil {
			continue
		}
		select {
		case s.broadcast <- data:
		default:
		}
	}
}

func (c *wsClient) readPump() {
	defer func() {
		c.server.mu.Lock()
		delete(c.server.clients, c)
		c.server.mu.Unlock()
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
