package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
)

const (
	writeWait     = 5 * time.Second
	clientBacklog = 8
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// resultMessage is the JSON pushed to websocket clients per frame.
type resultMessage struct {
	app.Snapshot
	Timestamp int64 `json:"timestamp"`
}

// ResultsHandler broadcasts every classified frame to websocket clients.
type ResultsHandler struct {
	clients map[*websocket.Conn]chan []byte
	mu      sync.RWMutex
}

// NewResultsHandler creates a ResultsHandler subscribed to feed.
func NewResultsHandler(feed Feed) *ResultsHandler {
	h := &ResultsHandler{
		clients: make(map[*websocket.Conn]chan []byte),
	}
	feed.Subscribe(h.broadcast)
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *ResultsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan []byte, clientBacklog)
	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()

	go h.writeLoop(conn, send)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	close(send)
}

func (h *ResultsHandler) writeLoop(conn *websocket.Conn, send <-chan []byte) {
	for msg := range send {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			return
		}
	}
}

// broadcast queues snap for every client. Slow clients drop frames.
func (h *ResultsHandler) broadcast(snap app.Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(resultMessage{Timestamp: snap.Time.UnixMilli(), Snapshot: snap})
	if err != nil {
		log.Printf("encode result: %v", err)
		return
	}

	for _, send := range h.clients {
		select {
		case send <- msg:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *ResultsHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
