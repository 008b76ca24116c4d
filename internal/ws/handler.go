package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/terminal-bench/cabletherm/internal/ledger"
	"github.com/terminal-bench/cabletherm/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades consumption-feed connections and seeds each new client
// with the current ledger snapshot. The feed is one-way: client messages are
// drained and ignored.
type Handler struct {
	hub    *Hub
	ledger *ledger.Ledger
}

func NewHandler(hub *Hub, led *ledger.Ledger) *Handler {
	return &Handler{hub: hub, ledger: led}
}

// Serve handles GET /ws/consumption.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.hub.Register(client)
	go client.writePump()

	h.sendSnapshot(client)
	h.readPump(client)
}

func (h *Handler) sendSnapshot(c *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	state, err := h.ledger.Snapshot(ctx)
	if err != nil {
		log.Printf("snapshot for new client failed: %v", err)
		return
	}
	msg, err := Encode(state)
	if err != nil {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
	}
}

// Broadcaster forwards ledger updates to the hub. It satisfies the
// simulation service's listener contract.
type Broadcaster struct {
	hub *Hub
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

func (b *Broadcaster) ConsumptionUpdated(state *ledger.State) {
	msg, err := Encode(state)
	if err != nil {
		log.Printf("failed to encode consumption update: %v", err)
		return
	}
	b.hub.Broadcast(msg)
}

// Encode renders a ledger snapshot in the same shape as GET
// /global_consumption, so dashboard clients parse one format.
func Encode(state *ledger.State) ([]byte, error) {
	return json.Marshal(models.GlobalConsumptionResponse{
		EnergyUsed:       state.EnergyUsed,
		EnergyUsedList:   state.EnergyUsedList,
		EnergyUsedUnit:   models.EnergyUnit,
		CO2Emissions:     state.CO2Emissions,
		CO2EmissionsList: state.CO2EmissionsList,
		CO2EmissionsUnit: models.CO2Unit,
	})
}
