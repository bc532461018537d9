package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/hargun03/accidents-analysis/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// wsMaxMessageBytes bounds one control message.
const wsMaxMessageBytes = 4096

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Live serves one dashboard per control message. Each message is a full
// set of widget values; omitted fields take their defaults.
func (h *DashboardHandler) Live(c *gin.Context) {
	table, ok := h.table(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessageBytes)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				wsRejected.Inc()
				log.Printf("ws control message over %d bytes, closing", wsMaxMessageBytes)
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws read error: %v", err)
			}
			return
		}
		wsInteractions.Inc()

		ctrl := services.DefaultControls()
		if err := json.Unmarshal(payload, &ctrl); err != nil {
			wsRejected.Inc()
			if err := conn.WriteJSON(gin.H{"type": "error", "error": "controls must be a JSON object"}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
			continue
		}

		start := time.Now()
		dashboard, err := services.BuildDashboard(table, ctrl)
		if err != nil {
			wsRejected.Inc()
			if err := conn.WriteJSON(gin.H{"type": "error", "error": err.Error()}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
			continue
		}
		recomputeDuration.WithLabelValues("ws").Observe(time.Since(start).Seconds())

		if err := conn.WriteJSON(gin.H{"type": "dashboard", "data": dashboard}); err != nil {
			log.Printf("ws write error: %v", err)
			return
		}
	}
}
