package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"time"

	"stadtwache/db"
	"stadtwache/middleware"
)

type ExportHandler struct {
	db *db.FirestoreDB
}

func NewExportHandler(firestoreDB *db.FirestoreDB) *ExportHandler {
	return &ExportHandler{db: firestoreDB}
}

// ExportReports streams the caller's visible reports as a CSV download.
// Admins export everything, others only their own reports.
func (h *ExportHandler) ExportReports(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	reports, err := h.db.GetAllReports(r.Context())
	if err != nil {
		log.Printf("❌ Failed to get reports: %v", err)
		writeStoreError(w, err, "No reports found")
		return
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("stadtwache_berichte_%s.csv", timestamp)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{
		"ID",
		"Titel",
		"Inhalt",
		"Autor",
		"Schichtdatum",
		"Status",
		"Vorfall-ID",
		"Erstellt",
		"Aktualisiert",
	}
	if err := writer.Write(header); err != nil {
		log.Printf("❌ Failed to write CSV header: %v", err)
		return
	}

	for _, report := range reports {
		rep := report
		if !canSeeReport(user, &rep) {
			continue
		}
		row := []string{
			rep.ID,
			rep.Title,
			rep.Content,
			rep.AuthorName,
			rep.ShiftDate,
			rep.Status,
			rep.IncidentID,
			rep.CreatedAt.Format(time.RFC3339),
			rep.UpdatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			log.Printf("❌ Failed to write CSV row: %v", err)
			return
		}
	}

	log.Printf("📊 Reports exported by %s", user.Username)
}
