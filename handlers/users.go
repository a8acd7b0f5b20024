package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"stadtwache/auth"
	"stadtwache/db"
	"stadtwache/middleware"
	"stadtwache/models"
)

// userStore is the slice of the database the user handler needs.
type userStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID string) error
	CountUsers(ctx context.Context) (int, error)
	RecordAudit(ctx context.Context, userID, action, details string)
}

type UserHandler struct {
	db userStore
}

func NewUserHandler(firestoreDB *db.FirestoreDB) *UserHandler {
	return &UserHandler{db: firestoreDB}
}

// ListUsers returns all users. Staff roles only; the roster exposes duty
// status and assignments.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.db.GetAllUsers(r.Context())
	if err != nil {
		writeStoreError(w, err, "No users found")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// ListByStatus returns users grouped by duty status
func (h *UserHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	users, err := h.db.GetAllUsers(r.Context())
	if err != nil {
		writeStoreError(w, err, "No users found")
		return
	}

	grouped := make(map[string][]models.User)
	for _, u := range users {
		status := u.Status
		if status == "" {
			status = models.StatusUnavailable
		}
		grouped[status] = append(grouped[status], u)
	}
	writeJSON(w, http.StatusOK, grouped)
}

// GetUser returns a single user by id
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.db.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeStoreError(w, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUser applies an admin edit to any user
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.GetUserFromContext(r.Context())

	user, err := h.db.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeStoreError(w, err, "User not found")
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

	if admin != nil {
		h.db.RecordAudit(r.Context(), admin.ID, "user_updated", "updated user "+user.ID)
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateStatus changes the caller's own duty status
func (h *UserHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeStrict(r, &req); err != nil || req.Status == "" {
		writeError(w, "Status is required", http.StatusBadRequest)
		return
	}

	user.Status = req.Status
	user.UpdatedAt = time.Now().UTC()

	if err := h.db.UpdateUser(r.Context(), user); err != nil {
		writeStoreError(w, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser removes a user account for good. Admin only.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.GetUserFromContext(r.Context())

	userID := chi.URLParam(r, "userID")
	if admin != nil && admin.ID == userID {
		writeError(w, "Cannot delete own account", http.StatusBadRequest)
		return
	}

	user, err := h.db.GetUser(r.Context(), userID)
	if err != nil {
		writeStoreError(w, err, "User not found")
		return
	}

	if err := h.db.DeleteUser(r.Context(), user.ID); err != nil {
		writeStoreError(w, err, "User not found")
		return
	}

	if admin != nil {
		h.db.RecordAudit(r.Context(), admin.ID, "user_deleted", "deleted user "+user.ID)
	}
	log.Printf("⚠️ User deleted: %s", user.Username)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Benutzer gelöscht"})
}

// CreateFirstUser bootstraps the deployment with an initial admin. Works
// only while the user collection is empty, so it needs no authentication.
func (h *UserHandler) CreateFirstUser(w http.ResponseWriter, r *http.Request) {
	count, err := h.db.CountUsers(r.Context())
	if err != nil {
		writeStoreError(w, err, "No users found")
		return
	}
	if count > 0 {
		writeError(w, "Users already exist", http.StatusConflict)
		return
	}

	var req models.RegisterRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		writeError(w, "Email, username and password are required", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:              "admin-1",
		Email:           req.Email,
		Username:        req.Username,
		Role:            models.RoleAdmin,
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

	log.Printf("🚀 First admin created: %s", user.Username)
	writeJSON(w, http.StatusOK, user)
}
