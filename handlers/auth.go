package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"stadtwache/auth"
	"stadtwache/db"
	"stadtwache/middleware"
	"stadtwache/models"
)

type AuthHandler struct {
	db         *db.FirestoreDB
	jwtManager *auth.JWTManager
}

func NewAuthHandler(firestoreDB *db.FirestoreDB, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{
		db:         firestoreDB,
		jwtManager: jwtManager,
	}
}

// Register creates a new user account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Username == "" || req.Password == "" {
		writeError(w, "Email, username and password are required", http.StatusBadRequest)
		return
	}

	role := req.Role
	if role == "" {
		role = models.RolePolice
	}
	switch role {
	case models.RoleAdmin, models.RolePolice, models.RoleCommunity, models.RoleTrainee:
	default:
		writeError(w, "Unknown role", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:              uuid.NewString(),
		Email:           req.Email,
		Username:        req.Username,
		Role:            role,
		BadgeNumber:     req.BadgeNumber,
		Department:      req.Department,
		Phone:           req.Phone,
		ServiceNumber:   req.ServiceNumber,
		Rank:            req.Rank,
		Photo:           req.Photo,
		Status:          models.StatusOnDuty,
		IsActive:        true,
		CheckInInterval: 30,
		HashedPassword:  hash,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := h.db.CreateUser(r.Context(), user); err != nil {
		writeStoreError(w, err, "User not found")
		return
	}

	log.Printf("✅ User registered: %s (role: %s)", user.Username, user.Role)
	writeJSON(w, http.StatusOK, user)
}

// Login authenticates a user and returns a bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.db.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("Login failed for %s: user not found", req.Email)
		writeError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	if err := auth.CheckPassword(req.Password, user.HashedPassword); err != nil {
		log.Printf("Login failed for %s: invalid password", req.Email)
		writeError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	if !user.IsActive {
		writeError(w, "Account deactivated", http.StatusForbidden)
		return
	}

	now := time.Now().UTC()
	user.LastActivity = &now
	if err := h.db.UpdateUser(r.Context(), user); err != nil {
		log.Printf("Warning: failed to update last activity for %s: %v", user.Username, err)
	}

	token, err := h.jwtManager.GenerateToken(user)
	if err != nil {
		log.Printf("Failed to generate token for %s: %v", user.Username, err)
		writeError(w, "Failed to generate authentication token", http.StatusInternalServerError)
		return
	}

	log.Printf("✅ User logged in: %s (role: %s)", user.Username, user.Role)
	writeJSON(w, http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	})
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile applies a self-service profile patch
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var patch models.UserUpdate
	if err := decodeStrict(r, &patch); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	patch.Apply(user)
	user.UpdatedAt = time.Now().UTC()

	if err := h.db.UpdateUser(r.Context(), user); err != nil {
		writeStoreError(w, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
