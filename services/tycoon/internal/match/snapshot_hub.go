package match

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/appetiteclub/takoyaki/services/tycoon/internal/session"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsSendBuffer = 16
	wsReadLimit  = 512
)

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// SnapshotHub pushes session snapshots to websocket viewers.
type SnapshotHub struct {
	upgrader websocket.Upgrader
	logger   apt.Logger

	mu      sync.RWMutex
	clients map[uuid.UUID]map[*wsClient]struct{}
}

func NewSnapshotHub(logger apt.Logger) *SnapshotHub {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &SnapshotHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[uuid.UUID]map[*wsClient]struct{}),
	}
}

// Serve upgrades the request, sends initial and then every broadcast
// snapshot of the session until the viewer disconnects.
func (h *SnapshotHub) Serve(w http.ResponseWriter, r *http.Request, id uuid.UUID, initial session.Snapshot) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &wsClient{conn: conn, send: make(chan []byte, wsSendBuffer)}
	if data, err := json.Marshal(initial); err == nil {
		client.send <- data
	}
	h.add(id, client)

	go h.writePump(client)
	h.readPump(id, client)
	return nil
}

// Broadcast sends snap to every viewer of the session. Slow viewers miss frames.
func (h *SnapshotHub) Broadcast(id uuid.UUID, snap session.Snapshot) {
	if !h.Watching(id) {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("cannot encode snapshot", "session_id", id.String(), "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[id] {
		select {
		case client.send <- data:
		default:
			h.logger.Debug("viewer too slow, dropping snapshot", "session_id", id.String())
		}
	}
}

func (h *SnapshotHub) Watching(id uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[id]) > 0
}

// Viewers counts connections across all sessions.
func (h *SnapshotHub) Viewers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Drop disconnects every viewer of a session.
func (h *SnapshotHub) Drop(id uuid.UUID) {
	h.mu.Lock()
	set := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()

	for client := range set {
		close(client.send)
	}
}

// Close disconnects every viewer.
func (h *SnapshotHub) Close() error {
	h.mu.Lock()
	all := h.clients
	h.clients = make(map[uuid.UUID]map[*wsClient]struct{})
	h.mu.Unlock()

	for _, set := range all {
		for client := range set {
			close(client.send)
		}
	}
	return nil
}

func (h *SnapshotHub) add(id uuid.UUID, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[id]
	if !ok {
		set = make(map[*wsClient]struct{})
		h.clients[id] = set
	}
	set[client] = struct{}{}
}

// remove reports whether the client was still registered.
func (h *SnapshotHub) remove(id uuid.UUID, client *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[id]
	if _, ok := set[client]; !ok {
		return false
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, id)
	}
	return true
}

func (h *SnapshotHub) readPump(id uuid.UUID, client *wsClient) {
	defer func() {
		if h.remove(id, client) {
			close(client.send)
		}
	}()

	client.conn.SetReadLimit(wsReadLimit)
	_ = client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *SnapshotHub) writePump(client *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case data, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
