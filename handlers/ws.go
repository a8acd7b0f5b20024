package handlers

import (
	"net/http"

	"stadtwache/auth"
	"stadtwache/db"
	"stadtwache/realtime"
)

// WSHandler upgrades authenticated clients to a websocket connection.
// Browsers cannot set an Authorization header on the upgrade request, so
// the token rides in a query parameter instead.
type WSHandler struct {
	db         *db.FirestoreDB
	jwtManager *auth.JWTManager
	server     *realtime.Server
}

func NewWSHandler(firestoreDB *db.FirestoreDB, jwtManager *auth.JWTManager, server *realtime.Server) *WSHandler {
	return &WSHandler{
		db:         firestoreDB,
		jwtManager: jwtManager,
		server:     server,
	}
}

// Connect validates the token and hands the connection to the realtime
// server.
func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, "Token is required", http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtManager.ValidateToken(token)
	if err != nil {
		writeError(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	user, err := h.db.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, "User not found", http.StatusUnauthorized)
		return
	}

	h.server.ServeWS(user, w, r)
}
