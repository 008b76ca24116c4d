package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminal-bench/cabletherm/internal/ledger"
	"github.com/terminal-bench/cabletherm/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newFeedServer(t *testing.T) (*httptest.Server, *Hub, *ledger.Ledger) {
	t.Helper()

	hub := NewHub()
	led := ledger.New(ledger.NewMemoryStore(10))

	r := gin.New()
	r.GET("/ws/consumption", NewHandler(hub, led).Serve)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub, led
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/consumption"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHandler_SeedsNewClientWithSnapshot(t *testing.T) {
	srv, _, led := newFeedServer(t)
	require.NoError(t, led.Record(context.Background(), 0.25, 0.014))

	conn := dial(t, srv)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var snap models.GlobalConsumptionResponse
	require.NoError(t, json.Unmarshal(msg, &snap))
	assert.Equal(t, 0.25, snap.EnergyUsed)
	assert.Equal(t, []float64{0.25}, snap.EnergyUsedList)
}

func TestHandler_EvictsSilentClients(t *testing.T) {
	oldPong, oldPing := pongWait, pingPeriod
	pongWait, pingPeriod = 200*time.Millisecond, 50*time.Millisecond
	defer func() { pongWait, pingPeriod = oldPong, oldPing }()

	srv, hub, _ := newFeedServer(t)

	dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	// The client never reads, so it never answers the server's pings; the
	// read deadline must expire and free the hub slot.
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		3*time.Second, 20*time.Millisecond)
}
