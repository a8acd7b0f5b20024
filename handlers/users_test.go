package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"stadtwache/db"
	"stadtwache/middleware"
	"stadtwache/models"
)

type fakeUserStore struct {
	users   map[string]*models.User
	updated []string
	audits  []string
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) CreateUser(_ context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetUser(_ context.Context, userID string) (*models.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) GetAllUsers(_ context.Context) ([]models.User, error) {
	var all []models.User
	for _, u := range s.users {
		all = append(all, *u)
	}
	return all, nil
}

func (s *fakeUserStore) UpdateUser(_ context.Context, user *models.User) error {
	s.updated = append(s.updated, user.ID)
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) DeleteUser(_ context.Context, userID string) error {
	if _, ok := s.users[userID]; !ok {
		return db.ErrNotFound
	}
	delete(s.users, userID)
	return nil
}

func (s *fakeUserStore) CountUsers(_ context.Context) (int, error) {
	return len(s.users), nil
}

func (s *fakeUserStore) RecordAudit(_ context.Context, _, action, _ string) {
	s.audits = append(s.audits, action)
}

func deleteUserRequest(t *testing.T, h *UserHandler, admin *models.User, targetID string) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	router.Delete("/api/users/{userID}", h.DeleteUser)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/"+targetID, nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, admin))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestDeleteUserRemovesRecord(t *testing.T) {
	admin := &models.User{ID: "admin-1", Username: "chef", Role: models.RoleAdmin}
	target := &models.User{ID: "u-2", Username: "wache", Role: models.RolePolice, IsActive: true}
	store := newFakeUserStore(admin, target)
	h := &UserHandler{db: store}

	rec := deleteUserRequest(t, h, admin, "u-2")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if _, ok := store.users["u-2"]; ok {
		t.Error("user document still present after delete")
	}
	if len(store.updated) != 0 {
		t.Errorf("delete must not fall back to an update, got updates for %v", store.updated)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["message"] != "Benutzer gelöscht" {
		t.Errorf("message = %q", body["message"])
	}
	if len(store.audits) != 1 || store.audits[0] != "user_deleted" {
		t.Errorf("audit actions = %v", store.audits)
	}
}

func TestDeleteUserRejectsSelf(t *testing.T) {
	admin := &models.User{ID: "admin-1", Username: "chef", Role: models.RoleAdmin}
	store := newFakeUserStore(admin)
	h := &UserHandler{db: store}

	rec := deleteUserRequest(t, h, admin, "admin-1")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if _, ok := store.users["admin-1"]; !ok {
		t.Error("own account must survive a self-delete attempt")
	}
}

func TestDeleteUserUnknown(t *testing.T) {
	admin := &models.User{ID: "admin-1", Role: models.RoleAdmin}
	store := newFakeUserStore(admin)
	h := &UserHandler{db: store}

	rec := deleteUserRequest(t, h, admin, "ghost")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
