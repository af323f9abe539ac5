// Package realtime fans out change events to connected staff and customer
// clients over websockets. Delivery is best-effort: a failed write drops
// that client's message and nothing else.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/utils"
)

const (
	EventOrderUpdate    = "order_update"
	EventOrderReady     = "order_ready"
	EventTableUpdate    = "table_update"
	EventWaitlistUpdate = "waitlist_update"
	EventNotification   = "notification"
)

// writeWait bounds how long a single stalled client can hold up its write.
const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// client serializes writes to one connection with its own mutex, so a slow
// peer blocks only its own deliveries, never the hub.
type client struct {
	conn *websocket.Conn
	role string
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]*client),
}

func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = &client{conn: conn, role: role}
}

func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

func BroadcastOrderUpdate(order models.Order) {
	event := EventOrderUpdate
	if order.Status == models.OrderReady {
		event = EventOrderReady
	}
	broadcast(Message{Event: event, Data: order})
}

func BroadcastTableUpdate(table models.Table) {
	broadcast(Message{Event: EventTableUpdate, Data: table})
}

func BroadcastWaitlistUpdate(entry models.WaitlistEntry) {
	broadcast(Message{Event: EventWaitlistUpdate, Data: entry})
}

func BroadcastNotification(n models.Notification) {
	broadcast(Message{Event: EventNotification, Data: n})
}

func broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		if utils.ErrorLogger != nil {
			utils.ErrorLogger.Printf("realtime: marshal %s: %v", msg.Event, err)
		}
		return
	}

	// Snapshot under the hub lock, write outside it. Registrations and
	// other broadcasts never wait on a slow connection.
	hub.mutex.Lock()
	targets := make([]*client, 0, len(hub.clients))
	for _, cl := range hub.clients {
		targets = append(targets, cl)
	}
	hub.mutex.Unlock()

	for _, cl := range targets {
		if err := cl.write(data); err != nil {
			if utils.ErrorLogger != nil {
				utils.ErrorLogger.Printf("realtime: send %s: %v", msg.Event, err)
			}
		}
	}
}
