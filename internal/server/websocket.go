package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mantonx/diskexplorer/internal/logger"
	"github.com/mantonx/diskexplorer/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const progressPushInterval = 500 * time.Millisecond

// progressSocket pushes progress snapshots over a websocket until the
// session reaches a terminal status, then sends a final snapshot and
// closes.
func (s *Server) progressSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(progressPushInterval)
	defer ticker.Stop()

	for range ticker.C {
		snap := s.scanner.Progress()
		if err := conn.WriteJSON(snap); err != nil {
			return
		}
		if snap.Status == models.StatusComplete || snap.Status == models.StatusError {
			return
		}
	}
}
