package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stadtwache/auth"
	"stadtwache/db"
	"stadtwache/middleware"
	"stadtwache/models"
	"stadtwache/realtime"
)

// RosterHandler covers vacations, sick leaves, check-ins, live locations
// and emergency broadcasts.
type RosterHandler struct {
	db  *db.FirestoreDB
	hub *realtime.Hub
}

func NewRosterHandler(firestoreDB *db.FirestoreDB, hub *realtime.Hub) *RosterHandler {
	return &RosterHandler{db: firestoreDB, hub: hub}
}

// --- Vacations ---

// RequestVacation files a vacation request
func (h *RosterHandler) RequestVacation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req models.VacationCreate
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.StartDate == "" || req.EndDate == "" {
		writeError(w, "Start and end date are required", http.StatusBadRequest)
		return
	}
	if req.EndDate < req.StartDate {
		writeError(w, "End date before start date", http.StatusBadRequest)
		return
	}

	vacation := &models.Vacation{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		UserName:  user.Username,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
		Status:    "pending",
		CreatedAt: time.Now().UTC(),
	}

	if err := h.db.CreateVacation(r.Context(), vacation); err != nil {
		writeStoreError(w, err, "Vacation not found")
		return
	}
	writeJSON(w, http.StatusOK, vacation)
}

// ListVacations returns vacation requests. Admins see all, others their own.
func (h *RosterHandler) ListVacations(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	filterID := user.ID
	if auth.IsAdmin(user) {
		filterID = ""
	}

	vacations, err := h.db.GetVacations(r.Context(), filterID)
	if err != nil {
		writeStoreError(w, err, "No vacations found")
		return
	}
	if vacations == nil {
		vacations = []models.Vacation{}
	}
	writeJSON(w, http.StatusOK, vacations)
}

// DecideVacation approves or rejects a pending vacation request. Admin only.
func (h *RosterHandler) DecideVacation(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.GetUserFromContext(r.Context())

	vacation, err := h.db.GetVacation(r.Context(), chi.URLParam(r, "vacationID"))
	if err != nil {
		writeStoreError(w, err, "Vacation not found")
		return
	}
	if vacation.Status != "pending" {
		writeError(w, "Antrag wurde bereits entschieden", http.StatusConflict)
		return
	}

	var req models.ApprovalRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	switch req.Action {
	case "approve":
		vacation.Status = "approved"
		vacation.ApprovalReason = req.Reason
	case "reject":
		vacation.Status = "rejected"
		vacation.RejectionReason = req.Reason
	default:
		writeError(w, "Action must be approve or reject", http.StatusBadRequest)
		return
	}
	if admin != nil {
		vacation.ApprovedBy = admin.ID
	}
	vacation.ApprovedAt = &now

	if err := h.db.UpdateVacation(r.Context(), vacation); err != nil {
		writeStoreError(w, err, "Vacation not found")
		return
	}

	h.hub.Publish(realtime.EventVacationDecided, vacation, realtime.UserRoom(vacation.UserID))
	writeJSON(w, http.StatusOK, vacation)
}

// CancelVacation withdraws a vacation request. Owners may cancel their
// own, admins anyone's.
func (h *RosterHandler) CancelVacation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	vacation, err := h.db.GetVacation(r.Context(), chi.URLParam(r, "vacationID"))
	if err != nil {
		writeStoreError(w, err, "Vacation not found")
		return
	}
	if vacation.UserID != user.ID && !auth.IsAdmin(user) {
		writeError(w, "Insufficient permissions", http.StatusForbidden)
		return
	}

	if err := h.db.DeleteVacation(r.Context(), vacation.ID); err != nil {
		writeStoreError(w, err, "Vacation not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Antrag zurückgezogen"})
}

// --- Sick Leaves ---

// ReportSickLeave files a sick leave notice
func (h *RosterHandler) ReportSickLeave(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req models.SickLeaveCreate
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.StartDate == "" || req.EndDate == "" {
		writeError(w, "Start and end date are required", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	leave := &models.SickLeave{
		ID:                 uuid.NewString(),
		UserID:             user.ID,
		UserName:           user.Username,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		Reason:             req.Reason,
		MedicalCertificate: req.MedicalCertificate,
		Status:             "pending",
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := h.db.CreateSickLeave(r.Context(), leave); err != nil {
		writeStoreError(w, err, "Sick leave not found")
		return
	}
	writeJSON(w, http.StatusOK, leave)
}

// ListSickLeaves returns sick leave notices. Admins see all, others their own.
func (h *RosterHandler) ListSickLeaves(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	filterID := user.ID
	if auth.IsAdmin(user) {
		filterID = ""
	}

	leaves, err := h.db.GetSickLeaves(r.Context(), filterID)
	if err != nil {
		writeStoreError(w, err, "No sick leaves found")
		return
	}
	if leaves == nil {
		leaves = []models.SickLeave{}
	}
	writeJSON(w, http.StatusOK, leaves)
}

// DecideSickLeave approves or rejects a pending sick leave. Admin only.
func (h *RosterHandler) DecideSickLeave(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.GetUserFromContext(r.Context())

	leave, err := h.db.GetSickLeave(r.Context(), chi.URLParam(r, "leaveID"))
	if err != nil {
		writeStoreError(w, err, "Sick leave not found")
		return
	}
	if leave.Status != "pending" {
		writeError(w, "Meldung wurde bereits entschieden", http.StatusConflict)
		return
	}

	var req models.ApprovalRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	switch req.Action {
	case "approve":
		leave.Status = "approved"
	case "reject":
		leave.Status = "rejected"
		leave.RejectionReason = req.Reason
	default:
		writeError(w, "Action must be approve or reject", http.StatusBadRequest)
		return
	}
	if admin != nil {
		leave.ApprovedBy = admin.ID
	}
	leave.ApprovedAt = &now
	leave.UpdatedAt = now

	if err := h.db.UpdateSickLeave(r.Context(), leave); err != nil {
		writeStoreError(w, err, "Sick leave not found")
		return
	}
	writeJSON(w, http.StatusOK, leave)
}

// CancelSickLeave withdraws a sick leave notice. Owners may cancel their
// own, admins anyone's.
func (h *RosterHandler) CancelSickLeave(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	leave, err := h.db.GetSickLeave(r.Context(), chi.URLParam(r, "leaveID"))
	if err != nil {
		writeStoreError(w, err, "Sick leave not found")
		return
	}
	if leave.UserID != user.ID && !auth.IsAdmin(user) {
		writeError(w, "Insufficient permissions", http.StatusForbidden)
		return
	}

	if err := h.db.DeleteSickLeave(r.Context(), leave.ID); err != nil {
		writeStoreError(w, err, "Sick leave not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Meldung zurückgezogen"})
}

// --- Check-Ins ---

// CheckIn records a duty check-in and resets the missed counter
func (h *RosterHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req models.CheckInCreate
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	status := req.Status
	if status == "" {
		status = "ok"
	}

	now := time.Now().UTC()
	checkIn := &models.CheckIn{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		UserName:  user.Username,
		Timestamp: now,
		Location:  req.Location,
		Status:    status,
		Message:   req.Message,
	}

	if err := h.db.CreateCheckIn(r.Context(), checkIn); err != nil {
		writeStoreError(w, err, "Check-in not found")
		return
	}

	user.LastCheckIn = &now
	user.MissedCheckIns = 0
	user.UpdatedAt = now
	if err := h.db.UpdateUser(r.Context(), user); err != nil {
		log.Printf("Warning: failed to update check-in state for %s: %v", user.Username, err)
	}

	if status != "ok" {
		h.hub.Publish(realtime.EventEmergencyAlert, checkIn)
	}
	writeJSON(w, http.StatusOK, checkIn)
}

// MyCheckIns returns the caller's recent check-ins
func (h *RosterHandler) MyCheckIns(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	checkIns, err := h.db.GetCheckInsByUser(r.Context(), user.ID, queryLimit(r))
	if err != nil {
		writeStoreError(w, err, "No check-ins found")
		return
	}
	if checkIns == nil {
		checkIns = []models.CheckIn{}
	}
	writeJSON(w, http.StatusOK, checkIns)
}

// --- Live Locations ---

// LiveLocations returns the freshest location ping per user from the last
// ten minutes.
func (h *RosterHandler) LiveLocations(w http.ResponseWriter, r *http.Request) {
	cutoff := time.Now().UTC().Add(-10 * time.Minute)
	locations, err := h.db.GetRecentLocations(r.Context(), cutoff)
	if err != nil {
		writeStoreError(w, err, "No locations found")
		return
	}
	if locations == nil {
		locations = []models.LocationUpdate{}
	}
	writeJSON(w, http.StatusOK, locations)
}

// UpdateLocation accepts a GPS ping over REST and broadcasts it. The
// websocket frame does the same; this path covers clients without an open
// socket.
func (h *RosterHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req struct {
		Location models.Location `json:"location"`
	}
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	update := &models.LocationUpdate{
		UserID:    user.ID,
		Location:  req.Location,
		Timestamp: time.Now().UTC(),
	}

	if err := h.db.CreateLocation(r.Context(), update); err != nil {
		writeStoreError(w, err, "Location not found")
		return
	}

	h.hub.Publish(realtime.EventLocationUpdated, update)
	writeJSON(w, http.StatusOK, update)
}

// --- Emergency Broadcast ---

// BroadcastEmergency stores an SOS alert and pushes it to every connected
// client regardless of room membership.
func (h *RosterHandler) BroadcastEmergency(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req models.EmergencyBroadcastCreate
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	alertType := req.Type
	if alertType == "" {
		alertType = "sos_alarm"
	}
	message := req.Message
	if message == "" {
		message = "🚨 NOTFALL: Beamter benötigt sofortige Unterstützung!"
	}
	priority := req.Priority
	if priority == "" {
		priority = "critical"
	}
	locationStatus := req.LocationStatus
	if locationStatus == "" {
		if req.Location != nil {
			locationStatus = "gps"
		} else {
			locationStatus = "unavailable"
		}
	}

	alert := &models.EmergencyBroadcast{
		ID:             uuid.NewString(),
		Type:           alertType,
		Message:        message,
		SenderID:       user.ID,
		SenderName:     user.Username,
		SenderBadge:    user.BadgeNumber,
		Location:       req.Location,
		LocationStatus: locationStatus,
		HasGPS:         req.Location != nil,
		Priority:       priority,
		Status:         "active",
		Timestamp:      time.Now().UTC(),
	}

	if err := h.db.CreateEmergency(r.Context(), alert); err != nil {
		writeStoreError(w, err, "Emergency not found")
		return
	}

	h.hub.Publish(realtime.EventEmergencyAlert, alert)
	log.Printf("🚨 Emergency broadcast by %s (%s)", user.Username, alert.LocationStatus)
	writeJSON(w, http.StatusOK, alert)
}

// ListEmergencies returns broadcasts from the last 24 hours
func (h *RosterHandler) ListEmergencies(w http.ResponseWriter, r *http.Request) {
	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	alerts, err := h.db.GetRecentEmergencies(r.Context(), cutoff)
	if err != nil {
		writeStoreError(w, err, "No emergencies found")
		return
	}
	if alerts == nil {
		alerts = []models.EmergencyBroadcast{}
	}
	writeJSON(w, http.StatusOK, alerts)
}
