package controller_test

import (
	"net/http"
	"testing"

	dto "github.com/vibast-solutions/ms-go-mood-journal/app/dto/http"
	"github.com/vibast-solutions/ms-go-mood-journal/app/entity"
)

func moodBody(color, emotion string) map[string]string {
	return map[string]string{
		"date":    "2026-03-02",
		"time":    "21:40",
		"color":   color,
		"emotion": emotion,
		"trigger": "work",
		"detail":  "long day",
	}
}

func TestMoodRequiresSession(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/moods", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMoodCRUD(t *testing.T) {
	s := newTestServer(t, nil)
	session := s.loginAs(t, "alice")

	rec := s.do(t, http.MethodPost, "/api/moods", moodBody("purple", "odd"), session)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown color, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/api/moods", moodBody("yellow", "tired"), session)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created entity.MoodEntry
	decode(t, rec, &created)

	rec = s.do(t, http.MethodPut, "/api/moods/"+created.ID, moodBody("green", "rested"), session)
	var updated entity.MoodEntry
	decode(t, rec, &updated)
	if rec.Code != http.StatusOK || updated.Color != "green" || updated.UpdatedAt == nil {
		t.Fatalf("unexpected update result: %d %+v", rec.Code, updated)
	}

	rec = s.do(t, http.MethodGet, "/api/moods?color=green", nil, session)
	var list dto.MoodListResponse
	decode(t, rec, &list)
	if rec.Code != http.StatusOK || list.Count != 1 || list.Entries[0].ID != created.ID {
		t.Fatalf("unexpected list: %d %+v", rec.Code, list)
	}

	rec = s.do(t, http.MethodGet, "/api/moods?color=yellow", nil, session)
	decode(t, rec, &list)
	if list.Count != 0 {
		t.Fatalf("expected no yellow entries, got %d", list.Count)
	}

	rec = s.do(t, http.MethodGet, "/api/moods?from=yesterday", nil, session)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date filter, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/api/stats", nil, session)
	var stats struct {
		Total   int            `json:"total"`
		ByColor map[string]int `json:"by_color"`
	}
	decode(t, rec, &stats)
	if rec.Code != http.StatusOK || stats.Total != 1 || stats.ByColor["green"] != 1 {
		t.Fatalf("unexpected stats: %d %+v", rec.Code, stats)
	}

	rec = s.do(t, http.MethodGet, "/api/dashboard", nil, session)
	var dashboard dto.DashboardResponse
	decode(t, rec, &dashboard)
	if rec.Code != http.StatusOK || dashboard.User.Username != "alice" || len(dashboard.Recent) != 1 {
		t.Fatalf("unexpected dashboard: %d %+v", rec.Code, dashboard)
	}

	rec = s.do(t, http.MethodDelete, "/api/moods/"+created.ID, nil, session)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = s.do(t, http.MethodGet, "/api/moods/"+created.ID, nil, session)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestMoodOwnerIsolation(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.loginAs(t, "alice")
	bob := s.loginAs(t, "bob")

	rec := s.do(t, http.MethodPost, "/api/moods", moodBody("blue", "low"), alice)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var entry entity.MoodEntry
	decode(t, rec, &entry)

	missing := s.do(t, http.MethodGet, "/api/moods/does-not-exist", nil, bob)
	foreign := s.do(t, http.MethodGet, "/api/moods/"+entry.ID, nil, bob)
	if foreign.Code != http.StatusNotFound || foreign.Body.String() != missing.Body.String() {
		t.Fatalf("foreign entry must look missing: %d %s", foreign.Code, foreign.Body.String())
	}

	rec = s.do(t, http.MethodPut, "/api/moods/"+entry.ID, moodBody("red", "mine now"), bob)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on foreign update, got %d", rec.Code)
	}
	rec = s.do(t, http.MethodDelete, "/api/moods/"+entry.ID, nil, bob)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on foreign delete, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/api/moods/"+entry.ID, nil, alice)
	var still entity.MoodEntry
	decode(t, rec, &still)
	if rec.Code != http.StatusOK || still.Color != "blue" {
		t.Fatalf("owner entry changed: %d %+v", rec.Code, still)
	}
}
