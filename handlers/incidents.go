package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stadtwache/db"
	"stadtwache/incidents"
	"stadtwache/middleware"
	"stadtwache/models"
)

type IncidentHandler struct {
	db     *db.FirestoreDB
	engine *incidents.Engine
}

func NewIncidentHandler(firestoreDB *db.FirestoreDB, engine *incidents.Engine) *IncidentHandler {
	return &IncidentHandler{db: firestoreDB, engine: engine}
}

// CreateIncident opens a new incident
func (h *IncidentHandler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req models.IncidentCreate
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.Priority == "" {
		writeError(w, "Title and priority are required", http.StatusBadRequest)
		return
	}

	inc, err := h.engine.Create(r.Context(), user, req)
	if err != nil {
		writeStoreError(w, err, "Incident not found")
		return
	}

	log.Printf("🚨 Incident created: %s (%s)", inc.Title, inc.Priority)
	writeJSON(w, http.StatusOK, inc)
}

// ListIncidents returns all incidents
func (h *IncidentHandler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	list, err := h.db.GetAllIncidents(r.Context())
	if err != nil {
		writeStoreError(w, err, "No incidents found")
		return
	}
	if list == nil {
		list = []models.Incident{}
	}
	writeJSON(w, http.StatusOK, list)
}

// MyIncidents returns incidents assigned to the caller
func (h *IncidentHandler) MyIncidents(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	list, err := h.db.GetIncidentsByAssignee(r.Context(), user.ID)
	if err != nil {
		writeStoreError(w, err, "No incidents found")
		return
	}
	if list == nil {
		list = []models.Incident{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetIncident returns a single incident
func (h *IncidentHandler) GetIncident(w http.ResponseWriter, r *http.Request) {
	inc, err := h.db.GetIncident(r.Context(), chi.URLParam(r, "incidentID"))
	if err != nil {
		writeStoreError(w, err, "Incident not found")
		return
	}
	writeJSON(w, http.StatusOK, inc)
}

// UpdateIncident applies a partial edit
func (h *IncidentHandler) UpdateIncident(w http.ResponseWriter, r *http.Request) {
	var patch models.IncidentUpdate
	if err := decodeStrict(r, &patch); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	inc, err := h.engine.Update(r.Context(), chi.URLParam(r, "incidentID"), patch)
	if err != nil {
		writeStoreError(w, err, "Incident not found")
		return
	}
	writeJSON(w, http.StatusOK, inc)
}

// AssignIncident claims the incident for the caller. Any authenticated
// user may claim; a later claim overwrites an earlier one.
func (h *IncidentHandler) AssignIncident(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	inc, err := h.engine.Assign(r.Context(), user, chi.URLParam(r, "incidentID"))
	if err != nil {
		writeStoreError(w, err, "Incident not found")
		return
	}

	log.Printf("👮 Incident %s assigned to %s", inc.ID, user.Username)
	writeJSON(w, http.StatusOK, inc)
}

// CompleteIncident archives the incident into a report and removes it
func (h *IncidentHandler) CompleteIncident(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	incidentID := chi.URLParam(r, "incidentID")
	reportID, err := h.engine.Complete(r.Context(), user, incidentID)
	if err != nil {
		writeStoreError(w, err, "Incident not found")
		return
	}

	log.Printf("✅ Incident %s completed, archived as report %s", incidentID, reportID)
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Vorfall abgeschlossen und archiviert",
		"report_id": reportID,
	})
}

// DeleteIncident removes an incident without archival. Admin only.
func (h *IncidentHandler) DeleteIncident(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.GetUserFromContext(r.Context())

	incidentID := chi.URLParam(r, "incidentID")
	if err := h.engine.Delete(r.Context(), incidentID); err != nil {
		writeStoreError(w, err, "Incident not found")
		return
	}

	if admin != nil {
		h.db.RecordAudit(r.Context(), admin.ID, "incident_deleted", "deleted incident "+incidentID)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Vorfall gelöscht"})
}
