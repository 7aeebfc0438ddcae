package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Ping cadence and how long a client may stay silent before the
	// read side gives up. Pongs reset the read deadline.
	pingInterval = 30 * time.Second
	readDeadline = 60 * time.Second

	writeDeadline = 10 * time.Second

	// Events queued per client before the hub starts dropping.
	sendBuffer = 256

	// Clients only ever send tiny control frames.
	maxMessageSize = 512
)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// readPump consumes inbound frames until the connection dies. The stream
// is one-way; reads exist to notice disconnects and answer pings.
func (h *Hub) readPump(cl *client) {
	defer h.removeClient(cl)

	cl.conn.SetReadLimit(maxMessageSize)
	cl.conn.SetReadDeadline(time.Now().Add(readDeadline))
	cl.conn.SetPongHandler(func(string) error {
		cl.conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("inbound", "client")
		}
	}
}

// writePump drains the send channel and keeps the connection alive with
// pings. It owns all writes to the connection.
func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case message, ok := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				// The hub closed the channel on removal.
				cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
