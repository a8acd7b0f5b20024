package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stadtwache/db"
	"stadtwache/middleware"
	"stadtwache/models"
	"stadtwache/presence"
)

type AdminHandler struct {
	db      *db.FirestoreDB
	tracker *presence.Tracker
}

func NewAdminHandler(firestoreDB *db.FirestoreDB, tracker *presence.Tracker) *AdminHandler {
	return &AdminHandler{db: firestoreDB, tracker: tracker}
}

// Stats returns headline numbers for the admin dashboard
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	users, err := h.db.GetAllUsers(r.Context())
	if err != nil {
		writeStoreError(w, err, "No users found")
		return
	}
	incidents, err := h.db.GetAllIncidents(r.Context())
	if err != nil {
		writeStoreError(w, err, "No incidents found")
		return
	}
	reports, err := h.db.GetAllReports(r.Context())
	if err != nil {
		writeStoreError(w, err, "No reports found")
		return
	}

	active := 0
	for _, u := range users {
		if u.IsActive {
			active++
		}
	}
	open, inProgress := 0, 0
	for _, inc := range incidents {
		switch inc.Status {
		case models.IncidentOpen:
			open++
		case models.IncidentInProgress:
			inProgress++
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_users":           len(users),
		"active_users":          active,
		"online_users":          len(h.tracker.ListOnline()),
		"total_incidents":       len(incidents),
		"open_incidents":        open,
		"in_progress_incidents": inProgress,
		"total_reports":         len(reports),
	})
}

// --- Districts ---

// CreateDistrict adds a patrol district
func (h *AdminHandler) CreateDistrict(w http.ResponseWriter, r *http.Request) {
	var req models.DistrictCreate
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		writeError(w, "Name is required", http.StatusBadRequest)
		return
	}

	district := &models.District{
		ID:              uuid.NewString(),
		Name:            req.Name,
		AreaDescription: req.AreaDescription,
		Coordinates:     req.Coordinates,
		CreatedAt:       time.Now().UTC(),
	}

	if err := h.db.CreateDistrict(r.Context(), district); err != nil {
		writeStoreError(w, err, "District not found")
		return
	}
	writeJSON(w, http.StatusOK, district)
}

// ListDistricts returns all patrol districts
func (h *AdminHandler) ListDistricts(w http.ResponseWriter, r *http.Request) {
	districts, err := h.db.GetAllDistricts(r.Context())
	if err != nil {
		writeStoreError(w, err, "No districts found")
		return
	}
	if districts == nil {
		districts = []models.District{}
	}
	writeJSON(w, http.StatusOK, districts)
}

// DeleteDistrict removes a district
func (h *AdminHandler) DeleteDistrict(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteDistrict(r.Context(), chi.URLParam(r, "districtID")); err != nil {
		writeStoreError(w, err, "District not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Bezirk gelöscht"})
}

// --- Teams ---

// CreateTeam adds a patrol team
func (h *AdminHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUserFromContext(r.Context())

	var req models.TeamCreate
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		writeError(w, "Name is required", http.StatusBadRequest)
		return
	}

	maxMembers := req.MaxMembers
	if maxMembers <= 0 {
		maxMembers = 6
	}
	status := req.Status
	if status == "" {
		status = models.TeamReady
	}
	members := req.Members
	if members == nil {
		members = []string{}
	}

	team := &models.Team{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		DistrictID:  req.DistrictID,
		Members:     members,
		MaxMembers:  maxMembers,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
	if user != nil {
		team.CreatedBy = user.ID
	}

	if err := h.db.CreateTeam(r.Context(), team); err != nil {
		writeStoreError(w, err, "Team not found")
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// teamView is a team with its derived status attached.
type teamView struct {
	models.Team
	MemberCount   int    `json:"member_count"`
	DerivedStatus string `json:"derived_status"`
	ActiveMembers int    `json:"active_members"`
}

// buildTeamView attaches member counts and the derived readiness status
// to a team. activeByID says which user ids count as active.
func buildTeamView(team models.Team, activeByID map[string]bool) teamView {
	active := 0
	for _, memberID := range team.Members {
		if activeByID[memberID] {
			active++
		}
	}
	return teamView{
		Team:          team,
		MemberCount:   len(team.Members),
		DerivedStatus: deriveTeamStatus(active, len(team.Members)),
		ActiveMembers: active,
	}
}

// ListTeams returns all teams with their derived status. The stored status
// is an operator override; derived_status is always recomputed from the
// active-member ratio so both fields cannot drift apart unnoticed.
func (h *AdminHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.db.GetAllTeams(r.Context())
	if err != nil {
		writeStoreError(w, err, "No teams found")
		return
	}
	users, err := h.db.GetAllUsers(r.Context())
	if err != nil {
		writeStoreError(w, err, "No users found")
		return
	}

	activeByID := make(map[string]bool, len(users))
	for _, u := range users {
		activeByID[u.ID] = u.IsActive && u.Status != models.StatusUnavailable
	}

	views := make([]teamView, 0, len(teams))
	for _, team := range teams {
		views = append(views, buildTeamView(team, activeByID))
	}
	writeJSON(w, http.StatusOK, views)
}

// deriveTeamStatus computes a team's readiness from how many of its
// members are currently active.
func deriveTeamStatus(active, total int) string {
	if total == 0 || active == 0 {
		return models.TeamUnavailable
	}
	ratio := float64(active) / float64(total)
	switch {
	case ratio >= 0.75:
		return models.TeamReady
	case ratio >= 0.5:
		return models.TeamDeployed
	default:
		return models.TeamBreak
	}
}

// UpdateTeamStatus sets the operator override status on a team
func (h *AdminHandler) UpdateTeamStatus(w http.ResponseWriter, r *http.Request) {
	team, err := h.db.GetTeam(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		writeStoreError(w, err, "Team not found")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeStrict(r, &req); err != nil || req.Status == "" {
		writeError(w, "Status is required", http.StatusBadRequest)
		return
	}

	team.Status = req.Status
	if err := h.db.UpdateTeam(r.Context(), team); err != nil {
		writeStoreError(w, err, "Team not found")
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// DeleteTeam removes a team and detaches its members
func (h *AdminHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")

	team, err := h.db.GetTeam(r.Context(), teamID)
	if err != nil {
		writeStoreError(w, err, "Team not found")
		return
	}

	for _, memberID := range team.Members {
		member, err := h.db.GetUser(r.Context(), memberID)
		if err != nil {
			continue
		}
		member.PatrolTeam = ""
		if err := h.db.UpdateUser(r.Context(), member); err != nil {
			log.Printf("Warning: failed to detach user %s from team %s: %v", memberID, teamID, err)
		}
	}

	if err := h.db.DeleteTeam(r.Context(), teamID); err != nil {
		writeStoreError(w, err, "Team not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Team gelöscht"})
}

// AssignUser places a user into a team and/or district
func (h *AdminHandler) AssignUser(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.GetUserFromContext(r.Context())

	var req models.TeamAssignment
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		writeError(w, "User id is required", http.StatusBadRequest)
		return
	}
	if req.TeamID == "" && req.DistrictID == "" {
		writeError(w, "Team or district is required", http.StatusBadRequest)
		return
	}

	user, err := h.db.GetUser(r.Context(), req.UserID)
	if err != nil {
		writeStoreError(w, err, "User not found")
		return
	}

	if req.TeamID != "" {
		team, err := h.db.GetTeam(r.Context(), req.TeamID)
		if err != nil {
			writeStoreError(w, err, "Team not found")
			return
		}
		if len(team.Members) >= team.MaxMembers {
			writeError(w, "Team ist voll", http.StatusConflict)
			return
		}

		member := false
		for _, id := range team.Members {
			if id == user.ID {
				member = true
				break
			}
		}
		if !member {
			team.Members = append(team.Members, user.ID)
			if err := h.db.UpdateTeam(r.Context(), team); err != nil {
				writeStoreError(w, err, "Team not found")
				return
			}
		}
		user.PatrolTeam = team.ID
	}

	if req.DistrictID != "" {
		if _, err := h.db.GetDistrict(r.Context(), req.DistrictID); err != nil {
			writeStoreError(w, err, "District not found")
			return
		}
		user.AssignedDistrict = req.DistrictID
	}

	user.UpdatedAt = time.Now().UTC()
	if err := h.db.UpdateUser(r.Context(), user); err != nil {
		writeStoreError(w, err, "User not found")
		return
	}

	if admin != nil {
		h.db.RecordAudit(r.Context(), admin.ID, "user_assigned",
			fmt.Sprintf("assigned user %s to team %q district %q", user.ID, req.TeamID, req.DistrictID))
	}
	writeJSON(w, http.StatusOK, user)
}

// --- Attendance ---

// Attendance lists each staff member with check-in recency and approved
// absences for today.
func (h *AdminHandler) Attendance(w http.ResponseWriter, r *http.Request) {
	users, err := h.db.GetUsersByRole(r.Context(), models.RoleAdmin, models.RolePolice, models.RoleTrainee)
	if err != nil {
		writeStoreError(w, err, "No users found")
		return
	}
	vacations, err := h.db.GetVacations(r.Context(), "")
	if err != nil {
		writeStoreError(w, err, "No vacations found")
		return
	}
	leaves, err := h.db.GetSickLeaves(r.Context(), "")
	if err != nil {
		writeStoreError(w, err, "No sick leaves found")
		return
	}

	today := time.Now().UTC().Format("2006-01-02")
	onVacation := make(map[string]bool)
	for _, v := range vacations {
		if v.Status == "approved" && v.StartDate <= today && today <= v.EndDate {
			onVacation[v.UserID] = true
		}
	}
	onSickLeave := make(map[string]bool)
	for _, l := range leaves {
		if l.Status == "approved" && l.StartDate <= today && today <= l.EndDate {
			onSickLeave[l.UserID] = true
		}
	}

	type attendanceRow struct {
		UserID          string     `json:"user_id"`
		Username        string     `json:"username"`
		Status          string     `json:"status"`
		LastCheckIn     *time.Time `json:"last_check_in,omitempty"`
		MissedCheckIns  int        `json:"missed_check_ins"`
		OnVacation      bool       `json:"on_vacation"`
		OnSickLeave     bool       `json:"on_sick_leave"`
		CheckInInterval int        `json:"check_in_interval"`
	}

	rows := make([]attendanceRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, attendanceRow{
			UserID:          u.ID,
			Username:        u.Username,
			Status:          u.Status,
			LastCheckIn:     u.LastCheckIn,
			MissedCheckIns:  u.MissedCheckIns,
			OnVacation:      onVacation[u.ID],
			OnSickLeave:     onSickLeave[u.ID],
			CheckInInterval: u.CheckInInterval,
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

// --- App Configuration ---

// GetAppConfig returns the branding configuration. No authentication: the
// login screen needs it before any token exists.
func (h *AdminHandler) GetAppConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.db.GetAppConfiguration(r.Context())
	if err != nil {
		writeStoreError(w, err, "Configuration not found")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// UpdateAppConfig applies a branding patch. Admin only.
func (h *AdminHandler) UpdateAppConfig(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.GetUserFromContext(r.Context())

	cfg, err := h.db.GetAppConfiguration(r.Context())
	if err != nil {
		writeStoreError(w, err, "Configuration not found")
		return
	}

	var patch models.AppConfigurationUpdate
	if err := decodeStrict(r, &patch); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	patch.Apply(cfg)
	cfg.UpdatedAt = time.Now().UTC()

	if err := h.db.SetAppConfiguration(r.Context(), cfg); err != nil {
		writeStoreError(w, err, "Configuration not found")
		return
	}

	if admin != nil {
		h.db.RecordAudit(r.Context(), admin.ID, "app_config_updated", "updated branding configuration")
	}
	writeJSON(w, http.StatusOK, cfg)
}
