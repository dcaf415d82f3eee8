package websocket

import (
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
)

// WsHub fans committed feed entries out to every connected dashboard client.
// The activity stream is public, so there is no per-user routing.
type WsHub struct {
	Clients    map[*websocket.Conn]bool
	Broadcast  chan WsMessage
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Logger     zerolog.Logger
}

type WsMessage struct {
	Type  string            `json:"type"`
	Entry *domain.FeedEntry `json:"entry,omitempty"`
}

func NewWsHub(logger zerolog.Logger) *WsHub {
	return &WsHub{
		Clients:    make(map[*websocket.Conn]bool),
		Broadcast:  make(chan WsMessage, 100),
		Register:   make(chan *websocket.Conn, 100),
		Unregister: make(chan *websocket.Conn, 100),
		Logger:     logger,
	}
}

func (h *WsHub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.Clients[conn] = true
			h.Logger.Info().
				Int("connection_count", len(h.Clients)).
				Msg("WebSocket client registered")

		case conn := <-h.Unregister:
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
				h.Logger.Info().
					Int("connection_count", len(h.Clients)).
					Msg("WebSocket client unregistered")
			}

		case message := <-h.Broadcast:
			for conn := range h.Clients {
				if err := conn.WriteJSON(message); err != nil {
					h.Logger.Err(err).
						Str("type", message.Type).
						Msg("Failed to send WebSocket message")
					conn.Close()
					delete(h.Clients, conn)
				}
			}
		}
	}
}

// BroadcastFeedEntry queues a committed transaction for delivery. Non-blocking
// so a slow hub never stalls the stats commit path.
func (h *WsHub) BroadcastFeedEntry(entry domain.FeedEntry) {
	message := WsMessage{Type: "transaction", Entry: &entry}
	select {
	case h.Broadcast <- message:
	default:
		h.Logger.Warn().Str("transaction_id", entry.ID).Msg("WebSocket broadcast queue full, dropping entry")
	}
}
