package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"balotera-backend/internal/draw"
	"balotera-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler streams the cycle countdown to every client and aviador
// round events to the player that owns the round. It satisfies
// services.Broadcaster.
type WebSocketHandler struct {
	lottery *services.LotteryService
	hub     *wsHub
	log     *logrus.Entry
}

type wsHub struct {
	clients    map[string]*wsClient
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan *wsMessage

	log *logrus.Entry
}

// wsClient owns its connection's outbound side: every frame goes through
// the send channel and exactly one goroutine calls WriteJSON.
type wsClient struct {
	userID string
	conn   *websocket.Conn
	send   chan *wsMessage
}

func (c *wsClient) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

type wsMessage struct {
	Type   string      `json:"type"`
	UserID string      `json:"-"` // empty means everyone
	Data   interface{} `json:"data"`
}

func NewWebSocketHandler(lottery *services.LotteryService) *WebSocketHandler {
	log := logrus.WithField("component", "websocket")
	hub := &wsHub{
		clients:    make(map[string]*wsClient),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan *wsMessage, 100),
		log:        log,
	}

	h := &WebSocketHandler{
		lottery: lottery,
		hub:     hub,
		log:     log,
	}

	go hub.run()
	go h.tickCycle()

	return h
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &wsClient{
		userID: userID,
		conn:   conn,
		send:   make(chan *wsMessage, 32),
	}
	h.hub.register <- client
	defer func() { h.hub.unregister <- client }()

	// The countdown arrives immediately instead of at the next tick.
	h.hub.broadcast <- &wsMessage{
		Type:   "CYCLE",
		UserID: userID,
		Data:   h.lottery.CurrentDrawInfo(),
	}

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).Debug("websocket read error")
			}
			return
		}

		if msg.Type == "PING" {
			h.hub.broadcast <- &wsMessage{
				Type:   "PONG",
				UserID: userID,
				Data:   gin.H{"timestamp": time.Now().Unix()},
			}
		}
	}
}

// tickCycle pushes the countdown every second and, at each cycle boundary,
// the draw that just became visible.
func (h *WebSocketHandler) tickCycle() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastCycle := draw.Index(time.Now())
	for range ticker.C {
		info := h.lottery.CurrentDrawInfo()
		h.hub.broadcast <- &wsMessage{Type: "CYCLE", Data: info}

		if info.Cycle != lastCycle {
			lastCycle = info.Cycle
			if info.LastDraw != nil {
				h.hub.broadcast <- &wsMessage{Type: "DRAW", Data: info.LastDraw}
			}
		}
	}
}

func (h *WebSocketHandler) BroadcastRoundUpdate(userID, roundID string, multiplier float64) {
	h.hub.broadcast <- &wsMessage{
		Type:   "ROUND_UPDATE",
		UserID: userID,
		Data: gin.H{
			"round_id":   roundID,
			"multiplier": multiplier,
			"timestamp":  time.Now().Unix(),
		},
	}
}

func (h *WebSocketHandler) BroadcastRoundCrash(userID, roundID string, crashPoint float64) {
	h.hub.broadcast <- &wsMessage{
		Type:   "ROUND_CRASH",
		UserID: userID,
		Data: gin.H{
			"round_id":    roundID,
			"crash_point": crashPoint,
			"timestamp":   time.Now().Unix(),
		},
	}
}

// run is the only goroutine that touches the client map and the only
// sender on any client's send channel.
func (hub *wsHub) run() {
	for {
		select {
		case client := <-hub.register:
			if old, ok := hub.clients[client.userID]; ok {
				close(old.send)
			}
			hub.clients[client.userID] = client
			go client.writeLoop()
			hub.log.WithField("user_id", client.userID).Debug("client connected")

		case client := <-hub.unregister:
			if cur, ok := hub.clients[client.userID]; ok && cur == client {
				delete(hub.clients, client.userID)
				close(client.send)
				hub.log.WithField("user_id", client.userID).Debug("client disconnected")
			}

		case message := <-hub.broadcast:
			hub.send(message)
		}
	}
}

// send queues the message, dropping it for clients too slow to drain their
// buffer rather than blocking the hub.
func (hub *wsHub) send(message *wsMessage) {
	deliver := func(c *wsClient) {
		select {
		case c.send <- message:
		default:
		}
	}

	if message.UserID != "" {
		if c, ok := hub.clients[message.UserID]; ok {
			deliver(c)
		}
		return
	}
	for _, c := range hub.clients {
		deliver(c)
	}
}
