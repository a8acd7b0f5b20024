package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stadtwache/auth"
	"stadtwache/db"
	"stadtwache/middleware"
	"stadtwache/models"
)

type ReportHandler struct {
	db *db.FirestoreDB
}

func NewReportHandler(firestoreDB *db.FirestoreDB) *ReportHandler {
	return &ReportHandler{db: firestoreDB}
}

// CreateReport files a new shift report
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req models.ReportCreate
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.Content == "" {
		writeError(w, "Title and content are required", http.StatusBadRequest)
		return
	}

	status := req.Status
	if status == "" {
		status = "draft"
	}
	shiftDate := req.ShiftDate
	if shiftDate == "" {
		shiftDate = time.Now().UTC().Format("2006-01-02")
	}

	now := time.Now().UTC()
	report := &models.Report{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Content:     req.Content,
		AuthorID:    user.ID,
		AuthorName:  user.Username,
		ShiftDate:   shiftDate,
		Status:      status,
		Images:      []string{},
		EditHistory: []models.ReportEdit{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.db.CreateReport(r.Context(), report); err != nil {
		writeStoreError(w, err, "Report not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ListReports returns reports visible to the caller. Admins see
// everything, others only their own.
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	reports, err := h.visibleReports(r, user)
	if err != nil {
		writeStoreError(w, err, "No reports found")
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// ReportFolders groups the caller's visible reports by shift month,
// newest month first.
func (h *ReportHandler) ReportFolders(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	reports, err := h.visibleReports(r, user)
	if err != nil {
		writeStoreError(w, err, "No reports found")
		return
	}

	byMonth := make(map[string][]models.Report)
	for _, report := range reports {
		month := report.ShiftDate
		if len(month) >= 7 {
			month = month[:7]
		}
		byMonth[month] = append(byMonth[month], report)
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	type folder struct {
		Month   string          `json:"month"`
		Count   int             `json:"count"`
		Reports []models.Report `json:"reports"`
	}
	folders := make([]folder, 0, len(months))
	for _, month := range months {
		folders = append(folders, folder{
			Month:   month,
			Count:   len(byMonth[month]),
			Reports: byMonth[month],
		})
	}
	writeJSON(w, http.StatusOK, folders)
}

// GetReport returns a single report
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	report, err := h.db.GetReport(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		writeStoreError(w, err, "Report not found")
		return
	}

	if !canSeeReport(user, report) {
		writeError(w, "Insufficient permissions", http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// UpdateReport edits a report and appends a history entry recording the
// changed fields with their previous values.
func (h *ReportHandler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	report, err := h.db.GetReport(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		writeStoreError(w, err, "Report not found")
		return
	}

	if !canSeeReport(user, report) {
		writeError(w, "Insufficient permissions", http.StatusForbidden)
		return
	}

	var req struct {
		Title   *string `json:"title,omitempty"`
		Content *string `json:"content,omitempty"`
		Status  *string `json:"status,omitempty"`
	}
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	changes := make(map[string]models.FieldChange)
	if req.Title != nil && *req.Title != report.Title {
		changes["title"] = models.FieldChange{Old: report.Title, New: *req.Title}
		report.Title = *req.Title
	}
	if req.Content != nil && *req.Content != report.Content {
		changes["content"] = models.FieldChange{Old: report.Content, New: *req.Content}
		report.Content = *req.Content
	}
	if req.Status != nil && *req.Status != report.Status {
		changes["status"] = models.FieldChange{Old: report.Status, New: *req.Status}
		report.Status = *req.Status
	}

	var edit *models.ReportEdit
	if len(changes) > 0 {
		edit = &models.ReportEdit{
			EditedBy:     user.ID,
			EditedByName: user.Username,
			EditedAt:     time.Now().UTC(),
			Changes:      changes,
		}
		report.LastEditedBy = user.ID
		report.LastEditedByName = user.Username
	}

	if err := h.db.UpdateReport(r.Context(), report, edit); err != nil {
		writeStoreError(w, err, "Report not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// DeleteReport removes a report. Admin only.
func (h *ReportHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.GetUserFromContext(r.Context())

	reportID := chi.URLParam(r, "reportID")
	if _, err := h.db.GetReport(r.Context(), reportID); err != nil {
		writeStoreError(w, err, "Report not found")
		return
	}
	if err := h.db.DeleteReport(r.Context(), reportID); err != nil {
		writeStoreError(w, err, "Report not found")
		return
	}

	if admin != nil {
		h.db.RecordAudit(r.Context(), admin.ID, "report_deleted", "deleted report "+reportID)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Bericht gelöscht"})
}

func (h *ReportHandler) visibleReports(r *http.Request, user *models.User) ([]models.Report, error) {
	reports, err := h.db.GetAllReports(r.Context())
	if err != nil {
		return nil, err
	}

	visible := make([]models.Report, 0, len(reports))
	for _, report := range reports {
		rep := report
		if canSeeReport(user, &rep) {
			visible = append(visible, rep)
		}
	}
	sort.Slice(visible, func(i, j int) bool {
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})
	return visible, nil
}

func canSeeReport(user *models.User, report *models.Report) bool {
	if auth.IsAdmin(user) {
		return true
	}
	return report.AuthorID == user.ID
}
