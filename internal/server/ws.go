package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"github.com/mantonx/boomerang/internal/jobs"
)

const writeTimeout = 10 * time.Second

// wsConn wraps a websocket connection with serialized writes so multiple
// jobs can safely push to the same observer.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// WriteJSON sends one message; errors (including writes against a closed
// connection) are returned for the caller to ignore or log.
func (c *wsConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// Hub tracks open observer connections in accept order. New uploads bind to
// the first open connection; this supports a single browser tab's worth of
// observation per process.
type Hub struct {
	upgrader websocket.Upgrader
	logger   hclog.Logger

	mu    sync.RWMutex
	conns []*wsConn

	onDisconnect func(conn jobs.Conn)
}

// NewHub creates a hub. The upgrader allows all origins; the service is a
// local single-user tool.
func NewHub(logger hclog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.Named("ws"),
	}
}

// SetDisconnectHandler registers the callback invoked with each connection
// after it closes.
func (h *Hub) SetDisconnectHandler(fn func(conn jobs.Conn)) {
	h.onDisconnect = fn
}

// HandleWebSocket upgrades the request and tracks the connection until the
// client goes away. The server never expects application messages; the read
// loop only detects disconnect.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to upgrade connection"})
		return
	}

	conn := &wsConn{conn: raw}

	h.mu.Lock()
	h.conns = append(h.conns, conn)
	h.mu.Unlock()

	h.logger.Debug("websocket client connected")

	for {
		if _, _, err := raw.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(conn)
	raw.Close()
	h.logger.Debug("websocket client disconnected")

	if h.onDisconnect != nil {
		h.onDisconnect(conn)
	}
}

// FirstOpen returns the earliest-accepted connection still open, or nil.
func (h *Hub) FirstOpen() jobs.Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.conns) == 0 {
		return nil
	}
	return h.conns[0]
}

func (h *Hub) remove(conn *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, c := range h.conns {
		if c == conn {
			h.conns = append(h.conns[:i], h.conns[i+1:]...)
			break
		}
	}
}
