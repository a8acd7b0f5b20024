package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stadtwache/models"
)

func TestDecodeStrictRejectsUnknownFields(t *testing.T) {
	body := `{"title":"Test","priority":"high","severity":"extreme"}`
	req := httptest.NewRequest(http.MethodPost, "/api/incidents", strings.NewReader(body))

	var payload models.IncidentCreate
	if err := decodeStrict(req, &payload); err == nil {
		t.Fatal("unknown field should be rejected")
	}
}

func TestDecodeStrictAcceptsKnownFields(t *testing.T) {
	body := `{"title":"Test","priority":"high","location":{"lat":51.3,"lng":7.3}}`
	req := httptest.NewRequest(http.MethodPost, "/api/incidents", strings.NewReader(body))

	var payload models.IncidentCreate
	if err := decodeStrict(req, &payload); err != nil {
		t.Fatalf("decodeStrict: %v", err)
	}
	if payload.Location == nil || payload.Location.Lat != 51.3 {
		t.Errorf("location = %+v", payload.Location)
	}
}

func TestWriteErrorIncludesKind(t *testing.T) {
	cases := []struct {
		status int
		kind   string
	}{
		{http.StatusNotFound, "not_found"},
		{http.StatusForbidden, "forbidden"},
		{http.StatusConflict, "conflict"},
		{http.StatusBadRequest, "invalid_input"},
		{http.StatusServiceUnavailable, "upstream_unavailable"},
		{http.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, "boom", tc.status)

		if rec.Code != tc.status {
			t.Errorf("status = %d, want %d", rec.Code, tc.status)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		if body["kind"] != tc.kind {
			t.Errorf("kind for %d = %q, want %q", tc.status, body["kind"], tc.kind)
		}
		if body["error"] != "boom" {
			t.Errorf("error = %q", body["error"])
		}
	}
}

func TestDeriveTeamStatus(t *testing.T) {
	cases := []struct {
		name   string
		active int
		total  int
		want   string
	}{
		{"empty team", 0, 0, models.TeamUnavailable},
		{"nobody active", 0, 4, models.TeamUnavailable},
		{"fully staffed", 4, 4, models.TeamReady},
		{"three quarters", 3, 4, models.TeamReady},
		{"half staffed", 2, 4, models.TeamDeployed},
		{"quarter staffed", 1, 4, models.TeamBreak},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := deriveTeamStatus(tc.active, tc.total); got != tc.want {
				t.Errorf("deriveTeamStatus(%d, %d) = %q, want %q", tc.active, tc.total, got, tc.want)
			}
		})
	}
}

func TestTeamViewReportsMemberCount(t *testing.T) {
	district := models.District{ID: "d-1", Name: "Mitte"}
	team := models.Team{
		ID:         "team-1",
		Name:       "Team1",
		DistrictID: district.ID,
		MaxMembers: 6,
		Status:     models.TeamReady,
	}

	// Assigning a user appends them to the roster.
	team.Members = append(team.Members, "u-1")

	view := buildTeamView(team, map[string]bool{"u-1": true})
	if view.MemberCount != 1 {
		t.Errorf("MemberCount = %d, want 1", view.MemberCount)
	}
	if view.ActiveMembers != 1 {
		t.Errorf("ActiveMembers = %d, want 1", view.ActiveMembers)
	}
	if view.DerivedStatus != models.TeamReady {
		t.Errorf("DerivedStatus = %q, want %q", view.DerivedStatus, models.TeamReady)
	}

	raw, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal view: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal view: %v", err)
	}
	if got, ok := fields["member_count"]; !ok || got != float64(1) {
		t.Errorf("member_count field = %v (present %v), want 1", got, ok)
	}
}

func TestCanSeeReport(t *testing.T) {
	admin := &models.User{ID: "a-1", Role: models.RoleAdmin}
	author := &models.User{ID: "u-1", Role: models.RolePolice}
	other := &models.User{ID: "u-2", Role: models.RolePolice}
	report := &models.Report{ID: "r-1", AuthorID: "u-1"}

	if !canSeeReport(admin, report) {
		t.Error("admin should see every report")
	}
	if !canSeeReport(author, report) {
		t.Error("author should see own report")
	}
	if canSeeReport(other, report) {
		t.Error("unrelated user should not see the report")
	}
}

func TestQueryLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/messages?limit=10", nil)
	if got := queryLimit(req); got != 10 {
		t.Errorf("limit = %d, want 10", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/messages", nil)
	if got := queryLimit(req); got != defaultMessageLimit {
		t.Errorf("default limit = %d, want %d", got, defaultMessageLimit)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/messages?limit=-3", nil)
	if got := queryLimit(req); got != defaultMessageLimit {
		t.Errorf("negative limit = %d, want %d", got, defaultMessageLimit)
	}
}
