package ws

import (
	"net/http"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/logging"
	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/monitoring"
	"github.com/promptdeck/promptdeck/backend/internal/shared/types"
)

// Hub fans stream events out to every connected client.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]bool
	log      *logging.Logger
	metrics  *monitoring.Metrics
	upgrader websocket.Upgrader
}

// NewHub creates an empty hub.
func NewHub(log *logging.Logger) *Hub {
	if log == nil {
		log = logging.NewNop()
	}
	return &Hub{
		clients: make(map[*client]bool),
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The GUI runs from its own origin in development.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// WithMetrics attaches connection and message counters.
func (h *Hub) WithMetrics(m *monitoring.Metrics) *Hub {
	h.metrics = m
	return h
}

// HandleConnection upgrades the request and registers the client. The
// pumps own the connection from here on.
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.clients[cl] = true
	count := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
	h.log.Info("websocket client connected",
		zap.String("client_id", cl.id),
		zap.Int("clients", count))

	go h.writePump(cl)
	go h.readPump(cl)
}

// TerminalOutput broadcasts a chunk of terminal output. It satisfies the
// terminal multiplexer's sink interface.
func (h *Hub) TerminalOutput(id, data string) {
	h.broadcast(types.StreamEvent{Type: types.EventTerminalOutput, ID: id, Data: data})
}

// TaskStoreUpdated broadcasts a task store change. It satisfies the task
// watcher's notifier interface.
func (h *Hub) TaskStoreUpdated() {
	h.broadcast(types.StreamEvent{Type: types.EventTaskStoreUpdated})
}

// broadcast marshals event once and queues it on every client. A client
// whose buffer is full is skipped so emitters never block.
func (h *Hub) broadcast(event types.StreamEvent) {
	data, err := sonic.Marshal(event)
	if err != nil {
		h.log.Error("failed to encode stream event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for cl := range h.clients {
		select {
		case cl.send <- data:
			if h.metrics != nil {
				h.metrics.RecordWSMessage("outbound", event.Type)
			}
		default:
			if h.metrics != nil {
				h.metrics.RecordWSDropped()
			}
		}
	}
}

// removeClient unregisters the client and releases its connection. Safe
// to call from either pump; only the first call acts.
func (h *Hub) removeClient(cl *client) {
	h.mu.Lock()
	_, ok := h.clients[cl]
	if ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}

	cl.conn.Close()
	if h.metrics != nil {
		h.metrics.DecWSConnections()
	}
	h.log.Info("websocket client disconnected",
		zap.String("client_id", cl.id),
		zap.Int("clients", count))
}

// ClientCount reports how many clients are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.Unlock()

	for _, cl := range clients {
		h.removeClient(cl)
	}
}
