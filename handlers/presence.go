package handlers

import (
	"net/http"
	"time"

	"stadtwache/db"
	"stadtwache/middleware"
	"stadtwache/presence"
)

type PresenceHandler struct {
	db      *db.FirestoreDB
	tracker *presence.Tracker
}

func NewPresenceHandler(firestoreDB *db.FirestoreDB, tracker *presence.Tracker) *PresenceHandler {
	return &PresenceHandler{db: firestoreDB, tracker: tracker}
}

// MarkOnline announces the caller as online
func (h *PresenceHandler) MarkOnline(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	h.tracker.MarkOnline(user.ID, user.Username)
	h.touchActivity(r, user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "online"})
}

// Heartbeat refreshes the caller's liveness without emitting events
func (h *PresenceHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	h.tracker.Heartbeat(user.ID, user.Username)
	h.touchActivity(r, user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ListOnline returns everyone currently considered online
func (h *PresenceHandler) ListOnline(w http.ResponseWriter, r *http.Request) {
	online := h.tracker.ListOnline()
	writeJSON(w, http.StatusOK, map[string]any{
		"online_users": online,
		"count":        len(online),
	})
}

// Logout removes the caller from the presence set
func (h *PresenceHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	h.tracker.MarkOffline(user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "offline"})
}

func (h *PresenceHandler) touchActivity(r *http.Request, userID string) {
	user, err := h.db.GetUser(r.Context(), userID)
	if err != nil {
		return
	}
	now := time.Now().UTC()
	user.LastActivity = &now
	h.db.UpdateUser(r.Context(), user)
}
