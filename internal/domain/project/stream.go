package project

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true }, // origin is enforced by CORS + token
}

// StreamEvent is pushed to websocket viewers of a project.
type StreamEvent struct {
	Type    string   `json:"type"`
	Project *Project `json:"project,omitempty"`
}

const (
	EventSnapshot = "snapshot"
	EventDeleted  = "deleted"
)

// Stream upgrades to a websocket and pushes the project after every store change.
//
// Endpoint: GET /projects/:id/stream?token=JWT&device=DEVICE_ID
func (h *Handler) Stream(c *gin.Context) {
	id := c.Param("id")
	p, ok := h.loadVisible(c, id)
	if !ok {
		return
	}
	shape := func(p *Project) *Project { return p.ForViewer() }
	if isAdmin(c) {
		shape = func(p *Project) *Project { return p }
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("project stream upgrade failed", "project_id", id, "error", err)
		return
	}

	send := make(chan StreamEvent, 16)
	push := func(ev StreamEvent) {
		select {
		case send <- ev:
		default:
			// viewer too slow, drop; the next change carries the full state anyway
		}
	}

	push(StreamEvent{Type: EventSnapshot, Project: p})
	unsubscribe := h.service.Subscribe(func(projects []*Project) {
		for _, candidate := range projects {
			if candidate.ID == id {
				push(StreamEvent{Type: EventSnapshot, Project: shape(candidate)})
				return
			}
		}
		push(StreamEvent{Type: EventDeleted})
	})
	defer unsubscribe()

	done := make(chan struct{})
	go readPump(conn, done)
	writePump(conn, send, done)
}

// readPump drains client frames so pong and close are processed.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, send <-chan StreamEvent, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-done:
			return
		case ev := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
			if ev.Type == EventDeleted {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "project deleted"))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
