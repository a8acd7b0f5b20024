// Package incidents implements the incident lifecycle: open incidents are
// claimed, worked and finally archived into reports. The engine is plain
// logic over narrow store and publisher interfaces so every mutation can be
// driven without HTTP.
package incidents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stadtwache/models"
	"stadtwache/realtime"
)

// ErrArchiveIncomplete reports that completion created the archive report
// but failed to remove the incident. The incident now carries the
// "archiving" status; retrying the completion deletes it without writing a
// second report.
var ErrArchiveIncomplete = errors.New("incident archived but not removed")

// Store is the persistence the engine needs.
type Store interface {
	GetIncident(ctx context.Context, id string) (*models.Incident, error)
	CreateIncident(ctx context.Context, inc *models.Incident) error
	UpdateIncident(ctx context.Context, inc *models.Incident) error
	DeleteIncident(ctx context.Context, id string) error
	CreateReport(ctx context.Context, r *models.Report) error
	GetReportByIncident(ctx context.Context, incidentID string) (*models.Report, error)
}

// Publisher fans resulting events out to live connections.
type Publisher interface {
	Publish(event string, payload any, rooms ...string)
}

// Engine drives incident state transitions.
type Engine struct {
	store      Store
	publisher  Publisher
	defaultLoc models.Location
	now        func() time.Time
}

func NewEngine(store Store, publisher Publisher, defaultLoc models.Location) *Engine {
	return &Engine{
		store:      store,
		publisher:  publisher,
		defaultLoc: defaultLoc,
		now:        time.Now,
	}
}

// Create opens a new incident for the reporter. Missing coordinates are
// substituted with the deployment's home area rather than rejected: a
// report without GPS is still a report.
func (e *Engine) Create(ctx context.Context, reporter *models.User, req models.IncidentCreate) (*models.Incident, error) {
	now := e.now().UTC()
	inc := &models.Incident{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      models.IncidentOpen,
		Address:     req.Address,
		ReportedBy:  reporter.ID,
		Images:      req.Images,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Location != nil {
		inc.Location = *req.Location
	} else {
		inc.Location = e.defaultLoc
	}
	if inc.Images == nil {
		inc.Images = []string{}
	}

	if err := e.store.CreateIncident(ctx, inc); err != nil {
		return nil, fmt.Errorf("create incident: %w", err)
	}
	return inc, nil
}

// Assign claims the incident for the requester and moves it to
// in_progress. Any authenticated user may claim; there is no ownership
// check, and a second concurrent claim simply overwrites the first
// (last write wins). Both claims emit incident_assigned.
func (e *Engine) Assign(ctx context.Context, requester *models.User, incidentID string) (*models.Incident, error) {
	inc, err := e.store.GetIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	inc.AssignedTo = requester.ID
	inc.AssignedToName = requester.Username
	inc.AssignedAt = &now
	inc.Status = models.IncidentInProgress
	inc.UpdatedAt = now

	if err := e.store.UpdateIncident(ctx, inc); err != nil {
		return nil, fmt.Errorf("assign incident: %w", err)
	}

	e.publisher.Publish(realtime.EventIncidentAssigned, map[string]any{
		"incident_id": inc.ID,
		"assigned_to": requester.Username,
		"incident":    inc,
	})
	return inc, nil
}

// Update merges the patch into the incident and announces the change.
func (e *Engine) Update(ctx context.Context, incidentID string, patch models.IncidentUpdate) (*models.Incident, error) {
	inc, err := e.store.GetIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	patch.Apply(inc)
	inc.UpdatedAt = e.now().UTC()

	if err := e.store.UpdateIncident(ctx, inc); err != nil {
		return nil, fmt.Errorf("update incident: %w", err)
	}

	e.publisher.Publish(realtime.EventIncidentUpdated, inc)
	return inc, nil
}

// Complete archives the incident into a report and removes it. The two
// store writes cannot share a transaction, so completion runs as a saga:
//
//  1. stamp the incident "archiving"
//  2. create the archive report (skipped when a retry finds one)
//  3. delete the incident
//
// A failure after step 2 returns ErrArchiveIncomplete with the report id;
// the incident keeps its "archiving" marker and a retried Complete finishes
// the deletion without duplicating the report.
func (e *Engine) Complete(ctx context.Context, completer *models.User, incidentID string) (reportID string, err error) {
	inc, err := e.store.GetIncident(ctx, incidentID)
	if err != nil {
		return "", err
	}

	now := e.now().UTC()

	if inc.Status != models.IncidentArchiving {
		inc.Status = models.IncidentArchiving
		inc.UpdatedAt = now
		if err := e.store.UpdateIncident(ctx, inc); err != nil {
			return "", fmt.Errorf("mark incident archiving: %w", err)
		}
	}

	report, err := e.store.GetReportByIncident(ctx, incidentID)
	if err != nil {
		return "", fmt.Errorf("check existing archive: %w", err)
	}
	if report == nil {
		report = e.buildArchiveReport(inc, completer, now)
		if err := e.store.CreateReport(ctx, report); err != nil {
			return "", fmt.Errorf("create archive report: %w", err)
		}
	}

	if err := e.store.DeleteIncident(ctx, incidentID); err != nil {
		return report.ID, fmt.Errorf("%w: report %s: %v", ErrArchiveIncomplete, report.ID, err)
	}

	e.publisher.Publish(realtime.EventIncidentCompleted, map[string]string{
		"incident_id":  incidentID,
		"completed_by": completer.Username,
		"archived_as":  report.ID,
	})
	return report.ID, nil
}

// Delete removes the incident without archival. The admin-only restriction
// is enforced at the handler boundary.
func (e *Engine) Delete(ctx context.Context, incidentID string) error {
	if _, err := e.store.GetIncident(ctx, incidentID); err != nil {
		return err
	}
	return e.store.DeleteIncident(ctx, incidentID)
}

func (e *Engine) buildArchiveReport(inc *models.Incident, completer *models.User, now time.Time) *models.Report {
	content := fmt.Sprintf(
		"Vorfall abgeschlossen:\n\nTitel: %s\nBeschreibung: %s\nOrt: %s\nPriorität: %s\n\nAbgeschlossen von: %s\nDatum: %s",
		inc.Title, inc.Description, inc.Address, inc.Priority,
		completer.Username, now.Format("02.01.2006 15:04"),
	)
	images := inc.Images
	if images == nil {
		images = []string{}
	}
	return &models.Report{
		ID:          uuid.NewString(),
		Title:       "Archiv: " + inc.Title,
		Content:     content,
		AuthorID:    completer.ID,
		AuthorName:  completer.Username,
		ShiftDate:   now.Format("2006-01-02"),
		Status:      "archived",
		IncidentID:  inc.ID,
		Images:      images,
		EditHistory: []models.ReportEdit{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
