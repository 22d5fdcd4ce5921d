package restapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

const (
	eventsWriteWait  = 10 * time.Second
	eventsPongWait   = 60 * time.Second
	eventsPingPeriod = eventsPongWait * 9 / 10
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// eventMessage is one frame of the events stream.
type eventMessage struct {
	Type string `json:"type"` // snapshot | event
	Data any    `json:"data"`
}

// EventsHandler upgrades to a WebSocket that first sends the current snapshot and then every
// state change of the session. The socket is closed when the session stops.
func (h *PortfolioHandler) EventsHandler(c *gin.Context) {
	address := c.Param("address")
	events, cancel, err := h.portfolioService.Events(address)
	if err != nil {
		respondError(c, err)
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "wallet", address, "error", err)
		return
	}
	defer conn.Close()

	// reader: only needed to observe pongs and the client closing
	clientGone := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(eventsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(eventsPongWait))
	})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(msg eventMessage) error {
		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
		return conn.WriteMessage(websocket.TextMessage, data)
	}

	if portfolio, err := h.portfolioService.Portfolio(c.Request.Context(), address); err == nil {
		if err := write(eventMessage{Type: "snapshot", Data: portfolio}); err != nil {
			return
		}
	}

	ticker := time.NewTicker(eventsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-clientGone:
			return
		case ev, ok := <-events:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session stopped"))
				return
			}
			if err := write(eventMessage{Type: "event", Data: ev}); err != nil {
				h.logger.Debug("Events client write failed", "wallet", address, "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
