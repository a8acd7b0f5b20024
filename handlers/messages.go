package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stadtwache/db"
	"stadtwache/middleware"
	"stadtwache/models"
	"stadtwache/realtime"
)

const defaultMessageLimit = 50

type MessageHandler struct {
	db  *db.FirestoreDB
	hub *realtime.Hub
}

func NewMessageHandler(firestoreDB *db.FirestoreDB, hub *realtime.Hub) *MessageHandler {
	return &MessageHandler{db: firestoreDB, hub: hub}
}

// SendMessage persists a chat message and fans it out to the matching
// room. A recipient makes it private, otherwise it goes to a channel.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req models.MessageCreate
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		writeError(w, "Content is required", http.StatusBadRequest)
		return
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = "text"
	}

	msg := &models.Message{
		ID:          uuid.NewString(),
		Content:     req.Content,
		SenderID:    user.ID,
		SenderName:  user.Username,
		MessageType: messageType,
		Timestamp:   time.Now().UTC(),
	}

	if req.RecipientID != "" {
		msg.RecipientID = req.RecipientID
		msg.Channel = "private"
	} else {
		msg.Channel = req.Channel
		if msg.Channel == "" {
			msg.Channel = "general"
		}
	}

	if err := h.db.CreateMessage(r.Context(), msg); err != nil {
		writeStoreError(w, err, "Message not found")
		return
	}

	if msg.RecipientID != "" {
		h.hub.Publish(realtime.EventNewMessage, msg,
			realtime.PrivateRoom(msg.SenderID, msg.RecipientID),
			realtime.UserRoom(msg.RecipientID))
	} else {
		h.hub.Publish(realtime.EventNewMessage, msg, realtime.ChannelRoom(msg.Channel))
	}

	writeJSON(w, http.StatusOK, msg)
}

// ChannelMessages returns the recent history of a channel
func (h *MessageHandler) ChannelMessages(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("channel")
	if channel == "" {
		channel = "general"
	}

	msgs, err := h.db.GetChannelMessages(r.Context(), channel, queryLimit(r))
	if err != nil {
		writeStoreError(w, err, "No messages found")
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// PrivateMessages returns the caller's conversation with another user
func (h *MessageHandler) PrivateMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	otherID := chi.URLParam(r, "userID")
	msgs, err := h.db.GetPrivateMessages(r.Context(), user.ID, otherID, queryLimit(r))
	if err != nil {
		writeStoreError(w, err, "No messages found")
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// DeleteMessage removes a message and announces the deletion to the room
// it was visible in. Any authenticated user may delete any message.
func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	messageID := chi.URLParam(r, "messageID")

	msg, err := h.db.GetMessage(r.Context(), messageID)
	if err != nil {
		writeStoreError(w, err, "Message not found")
		return
	}

	if err := h.db.DeleteMessage(r.Context(), messageID); err != nil {
		writeStoreError(w, err, "Message not found")
		return
	}

	payload := map[string]string{"message_id": messageID}
	if msg.RecipientID != "" {
		h.hub.Publish(realtime.EventMessageDeleted, payload,
			realtime.PrivateRoom(msg.SenderID, msg.RecipientID),
			realtime.UserRoom(msg.RecipientID))
	} else {
		h.hub.Publish(realtime.EventMessageDeleted, payload, realtime.ChannelRoom(msg.Channel))
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Nachricht gelöscht"})
}

func queryLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return defaultMessageLimit
}
