package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stadtwache/db"
	"stadtwache/middleware"
	"stadtwache/models"
	"stadtwache/realtime"
)

type PersonHandler struct {
	db  *db.FirestoreDB
	hub *realtime.Hub
}

func NewPersonHandler(firestoreDB *db.FirestoreDB, hub *realtime.Hub) *PersonHandler {
	return &PersonHandler{db: firestoreDB, hub: hub}
}

// CreatePerson adds a missing/wanted person entry
func (h *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req models.PersonCreate
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		writeError(w, "First and last name are required", http.StatusBadRequest)
		return
	}

	status := req.Status
	if status == "" {
		status = "vermisst"
	}
	priority := req.Priority
	if priority == "" {
		priority = "medium"
	}

	now := time.Now().UTC()
	person := &models.Person{
		ID:               uuid.NewString(),
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Address:          req.Address,
		Age:              req.Age,
		BirthDate:        req.BirthDate,
		Status:           status,
		Description:      req.Description,
		LastSeenLocation: req.LastSeenLocation,
		LastSeenDate:     req.LastSeenDate,
		ContactInfo:      req.ContactInfo,
		CaseNumber:       req.CaseNumber,
		Priority:         priority,
		Photo:            req.Photo,
		CreatedBy:        user.ID,
		CreatedByName:    user.Username,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := h.db.CreatePerson(r.Context(), person); err != nil {
		writeStoreError(w, err, "Person not found")
		return
	}

	h.hub.Publish(realtime.EventNewPerson, person)
	writeJSON(w, http.StatusOK, person)
}

// ListPersons returns active person entries, optionally filtered by status
func (h *PersonHandler) ListPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := h.db.GetActivePersons(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeStoreError(w, err, "No persons found")
		return
	}
	if persons == nil {
		persons = []models.Person{}
	}
	writeJSON(w, http.StatusOK, persons)
}

// PersonStats returns entry counts per status
func (h *PersonHandler) PersonStats(w http.ResponseWriter, r *http.Request) {
	persons, err := h.db.GetActivePersons(r.Context(), "")
	if err != nil {
		writeStoreError(w, err, "No persons found")
		return
	}

	stats := map[string]int{
		"total":    len(persons),
		"vermisst": 0,
		"gesucht":  0,
		"gefunden": 0,
	}
	for _, p := range persons {
		stats[p.Status]++
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetPerson returns a single person entry
func (h *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	person, err := h.db.GetPerson(r.Context(), chi.URLParam(r, "personID"))
	if err != nil {
		writeStoreError(w, err, "Person not found")
		return
	}
	writeJSON(w, http.StatusOK, person)
}

// UpdatePerson applies a partial edit and announces it
func (h *PersonHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	person, err := h.db.GetPerson(r.Context(), chi.URLParam(r, "personID"))
	if err != nil {
		writeStoreError(w, err, "Person not found")
		return
	}

	var patch models.PersonUpdate
	if err := decodeStrict(r, &patch); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	patch.Apply(person)
	person.UpdatedAt = time.Now().UTC()

	if err := h.db.UpdatePerson(r.Context(), person); err != nil {
		writeStoreError(w, err, "Person not found")
		return
	}

	h.hub.Publish(realtime.EventPersonUpdated, person)
	writeJSON(w, http.StatusOK, person)
}

// DeletePerson archives a person entry
func (h *PersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeletePerson(r.Context(), chi.URLParam(r, "personID")); err != nil {
		writeStoreError(w, err, "Person not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Person archiviert"})
}
