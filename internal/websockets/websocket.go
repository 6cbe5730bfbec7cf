package websockets

import (
	"fleetwash/config"
	"fleetwash/internal/database"
	"fleetwash/internal/events"
	"fleetwash/pkg/logger"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	MESSAGE_TYPE_PING           = "ping"
	MESSAGE_TYPE_PONG           = "pong"
	MESSAGE_TYPE_BROADCAST      = "broadcast"
	MESSAGE_TYPE_ERROR          = "error"
	MESSAGE_TYPE_AUTH_REQUEST   = "auth_request"
	MESSAGE_TYPE_AUTH_RESPONSE  = "auth_response"
	MESSAGE_TYPE_AUTH_SUCCESS   = "auth_success"
	MESSAGE_TYPE_AUTH_FAILURE   = "auth_failure"
	MESSAGE_TYPE_LEDGER_EVENT   = "ledger_event"
	MESSAGE_TYPE_APPROVAL_EVENT = "approval_event"
	PING_INTERVAL               = 30 * time.Second
	PONG_TIMEOUT                = 60 * time.Second
	WRITE_TIMEOUT               = 10 * time.Second
	MAX_MESSAGE_SIZE            = 1024 * 1024 // 1 MB
	SEND_CHANNEL_SIZE           = 64
)

type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Channel   string         `json:"channel,omitempty"`
	Action    string         `json:"action,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type Client struct {
	ID         string
	UserID     uuid.UUID
	Connection *websocket.Conn
	Manager    *Manager
	Status     int
	send       chan Message
}

type Manager struct {
	hub      *Hub
	db       database.DB
	config   config.Config
	log      logger.Logger
	eventBus *events.EventBus
}

func New(
	db database.DB,
	eventBus *events.EventBus,
	config config.Config,
) (*Manager, error) {
	log := logger.New("websockets")

	manager := &Manager{
		hub: &Hub{
			broadcast:  make(chan Message),
			register:   make(chan *Client),
			unregister: make(chan *Client),
			clients:    make(map[string]*Client),
		},
		db:       db,
		config:   config,
		log:      log,
		eventBus: eventBus,
	}

	log.Function("New").Info("Starting websocket hub")
	go manager.hub.run(manager)

	go manager.subscribeToBroadcastEvents()
	go manager.subscribeToLedgerEvents()
	go manager.subscribeToApprovalEvents()

	return manager, nil
}

func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")
	clientID := uuid.New().String()

	client := &Client{
		ID:         clientID,
		UserID:     uuid.Nil,
		Connection: c,
		Manager:    m,
		Status:     STATUS_UNAUTHENTICATED,
		send:       make(chan Message, SEND_CHANNEL_SIZE),
	}

	authRequest := Message{
		ID:        uuid.New().String(),
		Type:      MESSAGE_TYPE_AUTH_REQUEST,
		Channel:   "system",
		Action:    "authenticate",
		Timestamp: time.Now(),
	}

	if err := c.WriteJSON(authRequest); err != nil {
		log.Er("failed to send auth request", err)
		if err := c.Close(); err != nil {
			log.Er("failed to close connection", err)
		}
		return
	}

	m.hub.register <- client
	defer func() {
		m.hub.unregister <- client
		if err := c.Close(); err != nil {
			log.Er("failed to close connection", err)
		}
	}()

	go client.readPump()
	client.writePump()
}

func (m *Manager) BroadcastMessage(message Message) {
	m.hub.broadcast <- message
}

func (c *Client) readPump() {
	log := c.Manager.log.Function("readPump")
	defer func() {
		c.Manager.hub.unregister <- c
		_ = c.Connection.Close()
	}()

	c.Connection.SetReadLimit(MAX_MESSAGE_SIZE)
	if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
		log.Er("failed to set read deadline", err, "clientID", c.ID)
	}
	c.Connection.SetPongHandler(func(string) error {
		if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
			log.Er("failed to set read deadline in pong handler", err, "clientID", c.ID)
		}
		return nil
	})

	for {
		var message Message
		err := c.Connection.ReadJSON(&message)
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				log.Er("Unexpected close error", err, "clientID", c.ID)
			}
			break
		}

		message.ID = uuid.New().String()
		message.Timestamp = time.Now()

		c.routeMessage(message)
	}
}

func (c *Client) routeMessage(message Message) {
	log := c.Manager.log.Function("routeMessage")

	if message.Type == MESSAGE_TYPE_AUTH_RESPONSE {
		c.handleAuthResponse(message)
		return
	}

	if c.Status == STATUS_UNAUTHENTICATED {
		log.Warn(
			"Blocking message from unauthenticated client",
			"clientID", c.ID,
			"messageType", message.Type,
		)
		c.send <- Message{
			ID:        uuid.New().String(),
			Type:      MESSAGE_TYPE_AUTH_FAILURE,
			Channel:   "system",
			Action:    "authentication_required",
			Data:      map[string]any{"reason": "Authentication required"},
			Timestamp: time.Now(),
		}
		return
	}

	switch message.Type {
	case MESSAGE_TYPE_PING:
		c.send <- Message{
			ID:        uuid.New().String(),
			Type:      MESSAGE_TYPE_PONG,
			Channel:   "system",
			Timestamp: time.Now(),
		}
	default:
		log.Warn("Unknown message type", "type", message.Type, "clientID", c.ID)
	}
}

func (c *Client) writePump() {
	log := c.Manager.log.Function("writePump")

	ticker := time.NewTicker(PING_INTERVAL)
	defer func() {
		ticker.Stop()
		_ = c.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline", err, "clientID", c.ID)
			}
			if !ok {
				_ = c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Connection.WriteJSON(message); err != nil {
				log.Er("WebSocket write error", err, "clientID", c.ID)
				return
			}

		case <-ticker.C:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline for ping", err, "clientID", c.ID)
			}
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (m *Manager) subscribeToBroadcastEvents() {
	log := m.log.Function("subscribeToBroadcastEvents")

	err := m.eventBus.Subscribe(events.BROADCAST_CHANNEL, func(event events.Event) error {
		m.sendToAuthenticatedClients(Message{
			ID:        uuid.New().String(),
			Type:      MESSAGE_TYPE_BROADCAST,
			Channel:   "system",
			Action:    string(event.Type),
			Data:      event.Data,
			Timestamp: time.Now(),
		})
		return nil
	})
	if err != nil {
		log.Er("Failed to subscribe to broadcast events", err)
	}
}

// Ledger events go to every authenticated client so open day boards can
// reconcile against the authoritative state.
func (m *Manager) subscribeToLedgerEvents() {
	log := m.log.Function("subscribeToLedgerEvents")

	err := m.eventBus.Subscribe(events.LEDGER_CHANNEL, func(event events.Event) error {
		m.sendToAuthenticatedClients(Message{
			ID:        uuid.New().String(),
			Type:      MESSAGE_TYPE_LEDGER_EVENT,
			Channel:   "ledger",
			Action:    string(event.Type),
			Data:      event.Data,
			Timestamp: time.Now(),
		})
		return nil
	})
	if err != nil {
		log.Er("Failed to subscribe to ledger events", err)
	}
}

// Approval events carry a recipient and are delivered only to that user's
// connections.
func (m *Manager) subscribeToApprovalEvents() {
	log := m.log.Function("subscribeToApprovalEvents")

	err := m.eventBus.Subscribe(events.APPROVAL_CHANNEL, func(event events.Event) error {
		if event.UserID == nil {
			log.Warn("Approval event without recipient", "eventID", event.ID)
			return nil
		}

		m.SendMessageToUser(*event.UserID, Message{
			ID:        uuid.New().String(),
			Type:      MESSAGE_TYPE_APPROVAL_EVENT,
			Channel:   "approvals",
			Action:    string(event.Type),
			UserID:    event.UserID.String(),
			Data:      event.Data,
			Timestamp: time.Now(),
		})
		return nil
	})
	if err != nil {
		log.Er("Failed to subscribe to approval events", err)
	}
}

func (m *Manager) sendToAuthenticatedClients(message Message) {
	log := m.log.Function("sendToAuthenticatedClients")

	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()

	for _, client := range m.hub.clients {
		if client.Status == STATUS_AUTHENTICATED {
			select {
			case client.send <- message:
			default:
				log.Warn("Client send channel full, dropping message", "clientID", client.ID)
			}
		}
	}
}
