package incidents

import (
	"context"
	"errors"
	"testing"
	"time"

	"stadtwache/models"
)

type fakeStore struct {
	incidents map[string]*models.Incident
	reports   map[string]*models.Report

	failDelete bool
	failReport bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		incidents: make(map[string]*models.Incident),
		reports:   make(map[string]*models.Report),
	}
}

func (s *fakeStore) GetIncident(_ context.Context, id string) (*models.Incident, error) {
	inc, ok := s.incidents[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *inc
	return &cp, nil
}

func (s *fakeStore) CreateIncident(_ context.Context, inc *models.Incident) error {
	s.incidents[inc.ID] = inc
	return nil
}

func (s *fakeStore) UpdateIncident(_ context.Context, inc *models.Incident) error {
	s.incidents[inc.ID] = inc
	return nil
}

func (s *fakeStore) DeleteIncident(_ context.Context, id string) error {
	if s.failDelete {
		return errors.New("backend unavailable")
	}
	delete(s.incidents, id)
	return nil
}

func (s *fakeStore) CreateReport(_ context.Context, r *models.Report) error {
	if s.failReport {
		return errors.New("backend unavailable")
	}
	s.reports[r.ID] = r
	return nil
}

func (s *fakeStore) GetReportByIncident(_ context.Context, incidentID string) (*models.Report, error) {
	for _, r := range s.reports {
		if r.IncidentID == incidentID {
			return r, nil
		}
	}
	return nil, nil
}

type fakePublisher struct {
	events []string
}

func (p *fakePublisher) Publish(event string, _ any, _ ...string) {
	p.events = append(p.events, event)
}

func newTestEngine(t *testing.T) (*Engine, *fakeStore, *fakePublisher) {
	t.Helper()
	store := newFakeStore()
	pub := &fakePublisher{}
	eng := NewEngine(store, pub, models.Location{Lat: 51.2879, Lng: 7.2954})
	eng.now = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }
	return eng, store, pub
}

func officer() *models.User {
	return &models.User{ID: "u-1", Username: "wagner", Role: models.RolePolice}
}

func TestCreateDefaultsLocation(t *testing.T) {
	eng, store, _ := newTestEngine(t)

	inc, err := eng.Create(context.Background(), officer(), models.IncidentCreate{
		Title:    "Ruhestörung",
		Priority: "medium",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inc.Location.Lat != 51.2879 || inc.Location.Lng != 7.2954 {
		t.Errorf("location = %+v, want default coordinates", inc.Location)
	}
	if inc.Status != models.IncidentOpen {
		t.Errorf("status = %q, want %q", inc.Status, models.IncidentOpen)
	}
	if inc.Images == nil {
		t.Error("images should be an empty slice, not nil")
	}
	if _, ok := store.incidents[inc.ID]; !ok {
		t.Error("incident not persisted")
	}
}

func TestCreateKeepsSuppliedLocation(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	loc := &models.Location{Lat: 51.3, Lng: 7.31}
	inc, err := eng.Create(context.Background(), officer(), models.IncidentCreate{
		Title:    "Unfall",
		Priority: "high",
		Location: loc,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inc.Location != *loc {
		t.Errorf("location = %+v, want %+v", inc.Location, *loc)
	}
}

func TestAssignOverwritesPreviousClaim(t *testing.T) {
	eng, store, pub := newTestEngine(t)

	inc, err := eng.Create(context.Background(), officer(), models.IncidentCreate{Title: "Einbruch", Priority: "high"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first := &models.User{ID: "u-2", Username: "meier", Role: models.RolePolice}
	second := &models.User{ID: "u-3", Username: "schulz", Role: models.RolePolice}

	if _, err := eng.Assign(context.Background(), first, inc.ID); err != nil {
		t.Fatalf("first Assign: %v", err)
	}
	got, err := eng.Assign(context.Background(), second, inc.ID)
	if err != nil {
		t.Fatalf("second Assign: %v", err)
	}

	if got.AssignedTo != second.ID || got.AssignedToName != second.Username {
		t.Errorf("assignment = %s/%s, want second claimant", got.AssignedTo, got.AssignedToName)
	}
	if got.Status != models.IncidentInProgress {
		t.Errorf("status = %q, want %q", got.Status, models.IncidentInProgress)
	}
	if got.AssignedAt == nil {
		t.Error("assigned_at not stamped")
	}
	if stored := store.incidents[inc.ID]; stored.AssignedTo != second.ID {
		t.Errorf("stored assignment = %s, want second claimant", stored.AssignedTo)
	}

	assigned := 0
	for _, ev := range pub.events {
		if ev == "incident_assigned" {
			assigned++
		}
	}
	if assigned != 2 {
		t.Errorf("incident_assigned emitted %d times, want 2", assigned)
	}
}

func TestUpdateAppliesPatch(t *testing.T) {
	eng, _, pub := newTestEngine(t)

	inc, err := eng.Create(context.Background(), officer(), models.IncidentCreate{
		Title:       "Vandalismus",
		Description: "Graffiti am Bahnhof",
		Priority:    "low",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	status := models.IncidentInProgress
	desc := "Graffiti am Bahnhof, Täter flüchtig"
	got, err := eng.Update(context.Background(), inc.ID, models.IncidentUpdate{
		Status:      &status,
		Description: &desc,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if got.Status != models.IncidentInProgress {
		t.Errorf("status = %q, want %q", got.Status, models.IncidentInProgress)
	}
	if got.Description != desc {
		t.Errorf("description not patched: %q", got.Description)
	}
	if got.Title != "Vandalismus" {
		t.Errorf("unset field changed: title = %q", got.Title)
	}

	found := false
	for _, ev := range pub.events {
		if ev == "incident_updated" {
			found = true
		}
	}
	if !found {
		t.Error("incident_updated not emitted")
	}
}

func TestCompleteArchivesIntoReport(t *testing.T) {
	eng, store, pub := newTestEngine(t)

	inc, err := eng.Create(context.Background(), officer(), models.IncidentCreate{
		Title:    "Ladendiebstahl",
		Priority: "medium",
		Images:   []string{"img-1"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	reportID, err := eng.Complete(context.Background(), officer(), inc.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if _, ok := store.incidents[inc.ID]; ok {
		t.Error("incident still present after completion")
	}
	report := store.reports[reportID]
	if report == nil {
		t.Fatal("archive report not created")
	}
	if report.Title != "Archiv: Ladendiebstahl" {
		t.Errorf("report title = %q", report.Title)
	}
	if report.IncidentID != inc.ID {
		t.Errorf("report incident_id = %q, want %q", report.IncidentID, inc.ID)
	}
	if len(report.Images) != 1 || report.Images[0] != "img-1" {
		t.Errorf("report images = %v, want inherited", report.Images)
	}
	if report.Status != "archived" {
		t.Errorf("report status = %q", report.Status)
	}

	found := false
	for _, ev := range pub.events {
		if ev == "incident_completed" {
			found = true
		}
	}
	if !found {
		t.Error("incident_completed not emitted")
	}
}

func TestCompletePartialFailureThenRetry(t *testing.T) {
	eng, store, _ := newTestEngine(t)

	inc, err := eng.Create(context.Background(), officer(), models.IncidentCreate{Title: "Brandstiftung", Priority: "high"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	store.failDelete = true
	reportID, err := eng.Complete(context.Background(), officer(), inc.ID)
	if !errors.Is(err, ErrArchiveIncomplete) {
		t.Fatalf("err = %v, want ErrArchiveIncomplete", err)
	}
	if reportID == "" {
		t.Fatal("partial failure must still return the report id")
	}
	if store.incidents[inc.ID].Status != models.IncidentArchiving {
		t.Errorf("incident status = %q, want %q", store.incidents[inc.ID].Status, models.IncidentArchiving)
	}

	store.failDelete = false
	retryID, err := eng.Complete(context.Background(), officer(), inc.ID)
	if err != nil {
		t.Fatalf("retry Complete: %v", err)
	}
	if retryID != reportID {
		t.Errorf("retry report id = %q, want original %q", retryID, reportID)
	}
	if len(store.reports) != 1 {
		t.Errorf("reports = %d, want exactly one", len(store.reports))
	}
	if _, ok := store.incidents[inc.ID]; ok {
		t.Error("incident still present after retried completion")
	}
}

func TestCompleteReportCreationFailureLeavesIncident(t *testing.T) {
	eng, store, _ := newTestEngine(t)

	inc, err := eng.Create(context.Background(), officer(), models.IncidentCreate{Title: "Sachbeschädigung", Priority: "low"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	store.failReport = true
	if _, err := eng.Complete(context.Background(), officer(), inc.ID); err == nil {
		t.Fatal("Complete should fail when the report cannot be written")
	}
	if _, ok := store.incidents[inc.ID]; !ok {
		t.Error("incident must survive a failed archival")
	}
	if len(store.reports) != 0 {
		t.Error("no report should exist after a failed archival")
	}
}
