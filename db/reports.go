package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/api/iterator"

	"stadtwache/models"
)

// --- Report Operations ---

// CreateReport creates a new shift report
func (db *FirestoreDB) CreateReport(ctx context.Context, report *models.Report) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("reports").Doc(report.ID).Set(ctx, report); err != nil {
		return fmt.Errorf("failed to create report: %w", classify(err))
	}
	return nil
}

// GetReport retrieves a report by ID
func (db *FirestoreDB) GetReport(ctx context.Context, reportID string) (*models.Report, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	doc, err := db.client.Collection("reports").Doc(reportID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", classify(err))
	}

	var report models.Report
	if err := doc.DataTo(&report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// GetAllReports retrieves all reports
func (db *FirestoreDB) GetAllReports(ctx context.Context) ([]models.Report, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	iter := db.client.Collection("reports").Documents(ctx)
	defer iter.Stop()

	var reports []models.Report
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate reports: %w", classify(err))
		}

		var report models.Report
		if err := doc.DataTo(&report); err != nil {
			log.Printf("Warning: failed to parse report %s: %v", doc.Ref.ID, err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// GetReportByIncident retrieves the archive report created from an
// incident, or nil when no archival happened yet.
func (db *FirestoreDB) GetReportByIncident(ctx context.Context, incidentID string) (*models.Report, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	iter := db.client.Collection("reports").
		Where("incident_id", "==", incidentID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", classify(err))
	}

	var report models.Report
	if err := doc.DataTo(&report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// UpdateReport replaces the report and appends the edit to its history
func (db *FirestoreDB) UpdateReport(ctx context.Context, report *models.Report, edit *models.ReportEdit) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if edit != nil {
		report.EditHistory = append(report.EditHistory, *edit)
	}
	report.UpdatedAt = time.Now().UTC()

	if _, err := db.client.Collection("reports").Doc(report.ID).Set(ctx, report); err != nil {
		return fmt.Errorf("failed to update report: %w", classify(err))
	}
	return nil
}

// DeleteReport deletes a report
func (db *FirestoreDB) DeleteReport(ctx context.Context, reportID string) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := db.client.Collection("reports").Doc(reportID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete report: %w", classify(err))
	}
	return nil
}
