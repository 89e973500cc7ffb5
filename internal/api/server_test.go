package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"hearthstead/internal/engine"
	"hearthstead/internal/tuning"
	"hearthstead/internal/world"
)

func testServer() *Server {
	cfg := tuning.Default()
	cfg.World.Size = 48
	return &Server{
		Sim:      engine.NewSimulation(42, cfg),
		AdminKey: "test-key",
	}
}

func TestStatusEndpoint(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if body["name"] != "Hearthstead" {
		t.Errorf("name = %v", body["name"])
	}
	if body["population"].(float64) <= 0 {
		t.Error("no founding population reported")
	}
	if _, ok := body["stockpile"]; !ok {
		t.Error("stockpile missing from status")
	}
}

func TestMapEndpointCoversGrid(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	s.handleMap(rec, httptest.NewRequest(http.MethodGet, "/api/v1/map", nil))

	var body struct {
		Size  int              `json:"size"`
		Cells []map[string]any `json:"cells"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if body.Size != 48 {
		t.Errorf("size = %d", body.Size)
	}
	if len(body.Cells) != 48*48 {
		t.Errorf("cells = %d, want %d", len(body.Cells), 48*48)
	}
}

func TestCitizenDetailNotFound(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	s.handleCitizenDetail(rec, httptest.NewRequest(http.MethodGet, "/api/v1/citizen/99999", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.handleCitizenDetail(rec, httptest.NewRequest(http.MethodGet, "/api/v1/citizen/abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d for a non-numeric id, want 400", rec.Code)
	}
}

func TestAdminOnlyAuth(t *testing.T) {
	s := testServer()
	handler := s.adminOnly(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// GET passes through without auth.
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/clock", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("unauthenticated GET = %d, want 200", rec.Code)
	}

	// POST without a token is refused.
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/clock", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated POST = %d, want 401", rec.Code)
	}

	// Wrong token is refused.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clock", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token POST = %d, want 401", rec.Code)
	}

	// Correct token passes.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/clock", nil)
	req.Header.Set("Authorization", "Bearer test-key")
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated POST = %d, want 200", rec.Code)
	}
}

func TestAdminOnlyDisabledWithoutKey(t *testing.T) {
	s := testServer()
	s.AdminKey = ""
	handler := s.adminOnly(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/clock", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("POST with no key configured = %d, want 403", rec.Code)
	}
}

func TestPriorityEndpointSetsMark(t *testing.T) {
	s := testServer()
	x, y := s.Sim.Grid.VillageX+1, s.Sim.Grid.VillageY

	rec := httptest.NewRecorder()
	s.handlePriority(rec, httptest.NewRequest(http.MethodPost, "/api/v1/priority",
		strings.NewReader(`{"x":`+strconv.Itoa(x)+`,"y":`+strconv.Itoa(y)+`,"mark":"defend"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if s.Sim.Grid.At(x, y).Priority != world.PriorityDefend {
		t.Error("mark not applied to the cell")
	}

	// Unknown marks are rejected.
	rec = httptest.NewRecorder()
	s.handlePriority(rec, httptest.NewRequest(http.MethodPost, "/api/v1/priority",
		strings.NewReader(`{"x":1,"y":1,"mark":"bogus"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bogus mark = %d, want 400", rec.Code)
	}
}

func TestConstructionEndpointPlans(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	s.handleConstruction(rec, httptest.NewRequest(http.MethodPost, "/api/v1/construction",
		strings.NewReader(`{"action":"plan","type":"bogus","x":1,"y":1}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bogus type = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.handleConstruction(rec, httptest.NewRequest(http.MethodPost, "/api/v1/construction",
		strings.NewReader(`{"action":"demolish"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bogus action = %d, want 400", rec.Code)
	}
}

func TestPowerSpendEndpoint(t *testing.T) {
	s := testServer()
	s.Sim.Power = 10

	rec := httptest.NewRecorder()
	s.handlePowerSpend(rec, httptest.NewRequest(http.MethodPost, "/api/v1/power/spend",
		strings.NewReader(`{"amount":6}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]int
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["balance"] != 4 {
		t.Errorf("balance = %d, want 4", body["balance"])
	}

	// Overdraft conflicts.
	rec = httptest.NewRecorder()
	s.handlePowerSpend(rec, httptest.NewRequest(http.MethodPost, "/api/v1/power/spend",
		strings.NewReader(`{"amount":100}`)))
	if rec.Code != http.StatusConflict {
		t.Errorf("overdraft = %d, want 409", rec.Code)
	}
}
