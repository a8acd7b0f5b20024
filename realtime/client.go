package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"stadtwache/models"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // location photos ride along as base64
	sendBuffer     = 64
)

// Store persists the documents produced by inbound socket messages.
type Store interface {
	CreateMessage(ctx context.Context, m *models.Message) error
	CreateLocation(ctx context.Context, l *models.LocationUpdate) error
}

// Binder ties live connections to presence entries so targeted pushes can
// find their way back to a user.
type Binder interface {
	BindConnection(userID, connID string)
	UnbindConnection(connID string)
}

// Server owns the websocket endpoint.
type Server struct {
	hub      *Hub
	store    Store
	presence Binder
	upgrader websocket.Upgrader
}

func NewServer(hub *Hub, store Store, presence Binder) *Server {
	return &Server{
		hub:      hub,
		store:    store,
		presence: presence,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser clients connect from the app origin; CORS is enforced
			// on the REST surface, the socket accepts any origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// inboundFrame is the envelope for client-initiated socket messages.
type inboundFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Client is one live websocket connection.
type Client struct {
	id     string
	user   *models.User
	server *Server
	conn   *websocket.Conn
	send   chan Event
}

// Send queues an event for delivery. It never blocks; a full buffer means
// the client is too slow and the event is dropped.
func (c *Client) Send(evt Event) bool {
	select {
	case c.send <- evt:
		return true
	default:
		return false
	}
}

// ServeWS upgrades the request and runs the connection's pumps. The caller
// has already authenticated the user.
func (s *Server) ServeWS(user *models.User, w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ Websocket upgrade failed for %s: %v", user.Username, err)
		return
	}

	client := &Client{
		id:     uuid.NewString(),
		user:   user,
		server: s,
		conn:   conn,
		send:   make(chan Event, sendBuffer),
	}

	s.hub.Register(client)
	log.Printf("🔗 Client %s connected (%s)", client.id, user.Username)

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.server.hub.Unregister(c)
		c.server.presence.UnbindConnection(c.id)
		c.conn.Close()
		close(c.send)
		log.Printf("🔌 Client %s disconnected", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️  Client %s read error: %v", c.id, err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("⚠️  Client %s sent malformed frame: %v", c.id, err)
			continue
		}
		c.handleFrame(frame)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleFrame(frame inboundFrame) {
	switch frame.Type {
	case "join_user_room":
		// Personal notification room; also binds this connection to the
		// user's presence entry for targeted pushes.
		c.server.hub.Join(UserRoom(c.user.ID), c)
		c.server.presence.BindConnection(c.user.ID, c.id)
		c.Send(Event{Name: EventJoinedRoom, Payload: map[string]string{"room": UserRoom(c.user.ID)}})

	case "join_channel":
		var data struct {
			Channel string `json:"channel"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil || data.Channel == "" {
			return
		}
		c.server.hub.Join(ChannelRoom(data.Channel), c)
		c.Send(Event{Name: EventJoinedRoom, Payload: map[string]string{"room": ChannelRoom(data.Channel)}})

	case "join_private_room":
		var data struct {
			User1 string `json:"user1"`
			User2 string `json:"user2"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil || data.User1 == "" || data.User2 == "" {
			return
		}
		room := PrivateRoom(data.User1, data.User2)
		c.server.hub.Join(room, c)
		c.Send(Event{Name: EventJoinedRoom, Payload: map[string]string{"room": room}})

	case "join_room":
		var data struct {
			Room string `json:"room"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return
		}
		if data.Room == "" {
			data.Room = ChannelRoom("general")
		}
		c.server.hub.Join(data.Room, c)
		c.Send(Event{Name: EventJoinedRoom, Payload: map[string]string{"room": data.Room}})

	case "send_message":
		var data models.MessageCreate
		if err := json.Unmarshal(frame.Data, &data); err != nil || data.Content == "" {
			return
		}
		c.sendMessage(data)

	case "location_update":
		var data struct {
			Location models.Location `json:"location"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return
		}
		c.updateLocation(data.Location)

	default:
		log.Printf("⚠️  Client %s sent unknown frame type %q", c.id, frame.Type)
	}
}

func (c *Client) sendMessage(data models.MessageCreate) {
	if data.MessageType == "" {
		data.MessageType = "text"
	}

	msg := &models.Message{
		ID:          uuid.NewString(),
		Content:     data.Content,
		SenderID:    c.user.ID,
		SenderName:  c.user.Username,
		RecipientID: data.RecipientID,
		Channel:     data.Channel,
		Timestamp:   time.Now().UTC(),
		MessageType: data.MessageType,
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()

	if msg.RecipientID != "" {
		msg.Channel = "private"
		if err := c.server.store.CreateMessage(ctx, msg); err != nil {
			log.Printf("❌ Failed to persist private message: %v", err)
			return
		}
		c.server.hub.Publish(EventNewMessage, msg,
			PrivateRoom(msg.SenderID, msg.RecipientID),
			UserRoom(msg.RecipientID))
		return
	}

	if msg.Channel == "" {
		msg.Channel = "general"
	}
	if err := c.server.store.CreateMessage(ctx, msg); err != nil {
		log.Printf("❌ Failed to persist channel message: %v", err)
		return
	}
	c.server.hub.Publish(EventNewMessage, msg, ChannelRoom(msg.Channel))
}

func (c *Client) updateLocation(loc models.Location) {
	update := &models.LocationUpdate{
		UserID:    c.user.ID,
		Location:  loc,
		Timestamp: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := c.server.store.CreateLocation(ctx, update); err != nil {
		log.Printf("❌ Failed to persist location update: %v", err)
		return
	}

	// Live positions are broadcast to everyone connected.
	c.server.hub.Publish(EventLocationUpdated, update)
}
