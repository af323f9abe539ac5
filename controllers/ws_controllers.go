package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/comanda-app/realtime"
	"github.com/yeremiapane/comanda-app/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventsHandler upgrades a staff connection to a websocket and streams
// order, table and wait-list events until the client goes away.
func EventsHandler(c *gin.Context) {
	roleValue, exists := c.Get("role")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role, _ := roleValue.(string)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade: %v", err)
		return
	}

	realtime.RegisterClient(ws, role)
	defer realtime.UnregisterClient(ws)

	// Drain client messages; the stream is one-way.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}
