package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"upcheck/internal/hub"
	"upcheck/internal/middleware"
)

// WebSocketHandler streams alert notifications to an owner's connected
// clients. The connection authenticates with a token passed as a query
// parameter since browsers cannot set headers on websocket upgrades.
type WebSocketHandler struct {
	Hub  *hub.Hub
	Auth middleware.Authenticator
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsWriter struct {
	conn *websocket.Conn
}

func (w *wsWriter) Write(message []byte) error {
	_ = w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.conn.WriteMessage(websocket.TextMessage, message)
}

func (w *wsWriter) Close() error {
	return w.conn.Close()
}

func (h *WebSocketHandler) Serve(c *gin.Context) {
	tokenID := c.Query("token")
	if tokenID == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Missing required token in header or token invalid"})
		return
	}
	tok, ok := h.Auth.Resolve(c.Request.Context(), tokenID)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Missing required token in header or token invalid"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	conn := &hub.Connection{
		ID:     uuid.NewString(),
		Phone:  tok.Phone,
		Writer: &wsWriter{conn: ws},
	}
	h.Hub.Register(conn)
	defer func() {
		h.Hub.Unregister(conn)
		_ = ws.Close()
	}()

	// Alerts only flow server to client; drain and discard anything the
	// client sends until it goes away.
	ws.SetReadLimit(4096)
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}
