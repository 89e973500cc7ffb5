// Package api provides the HTTP surface for the renderer/HUD shell.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (player command plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hearthstead/internal/chronicle"
	"hearthstead/internal/citizen"
	"hearthstead/internal/engine"
	"hearthstead/internal/world"
)

// Server serves simulation state over HTTP and streams events over /ws.
type Server struct {
	Sim      *engine.Simulation
	Journal  *chronicle.Journal
	Hub      *Hub
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	cmdLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/map", s.handleMap)
	mux.HandleFunc("/api/v1/citizens", s.handleCitizens)
	mux.HandleFunc("/api/v1/citizen/", s.handleCitizenDetail)
	mux.HandleFunc("/api/v1/structures", s.handleStructures)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/visuals", s.handleVisuals)

	// Player command endpoints (POST, bearer token).
	mux.HandleFunc("/api/v1/priority", s.adminOnly(RateLimitMiddleware(cmdLimiter, s.handlePriority)))
	mux.HandleFunc("/api/v1/construction", s.adminOnly(RateLimitMiddleware(cmdLimiter, s.handleConstruction)))
	mux.HandleFunc("/api/v1/roles", s.adminOnly(RateLimitMiddleware(cmdLimiter, s.handleRoles)))
	mux.HandleFunc("/api/v1/clock", s.adminOnly(s.handleClock))
	mux.HandleFunc("/api/v1/power/spend", s.adminOnly(s.handlePowerSpend))

	// Websocket event stream.
	if s.Hub != nil {
		mux.HandleFunc("/ws", s.Hub.Handler())
	}

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// checkBearerToken returns true if the request carries the admin token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "command endpoints disabled (no HEARTHSTEAD_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.Sim.Lock()
	defer s.Sim.Unlock()

	climateNames := map[world.Climate]string{
		world.ClimateClear: "Clear", world.ClimateRain: "Rain", world.ClimateDrought: "Drought",
	}
	writeJSON(w, map[string]any{
		"name":       "Hearthstead",
		"tick":       s.Sim.CurrentTick(),
		"sim_hours":  s.Sim.Clock.SimHours(),
		"paused":     s.Sim.Clock.Paused(),
		"climate":    climateNames[s.Sim.Climate.Current()],
		"population": s.Sim.Repo.Population(),
		"power":      s.Sim.Power,
		"extinct":    s.Sim.Extinct,
		"stockpile": map[string]int{
			"food":  s.Sim.Grid.Stockpile.Amount(world.ResourceFood),
			"stone": s.Sim.Grid.Stockpile.Amount(world.ResourceStone),
			"wood":  s.Sim.Grid.Stockpile.Amount(world.ResourceWood),
			"water": s.Sim.Grid.Stockpile.Amount(world.ResourceWater),
		},
		"food_capacity": s.Sim.Grid.Stockpile.Capacity(world.ResourceFood),
	})
}

// handleMap returns a compact snapshot of every cell for the renderer.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	s.Sim.Lock()
	defer s.Sim.Unlock()

	type cellEntry struct {
		X        int      `json:"x"`
		Y        int      `json:"y"`
		Terrain  uint8    `json:"terrain"`
		Resource *string  `json:"resource,omitempty"`
		Amount   *float64 `json:"amount,omitempty"`
		Priority uint8    `json:"priority,omitempty"`
		Crop     int      `json:"crop,omitempty"`
	}

	g := s.Sim.Grid
	cells := make([]cellEntry, 0, len(g.Cells))
	for i := range g.Cells {
		c := &g.Cells[i]
		entry := cellEntry{
			X: c.X, Y: c.Y,
			Terrain:  uint8(c.Terrain),
			Priority: uint8(c.Priority),
			Crop:     c.CropStage,
		}
		if c.Resource != nil {
			name := world.ResourceName(c.Resource.Type)
			amount := c.Resource.Amount
			entry.Resource = &name
			entry.Amount = &amount
		}
		cells = append(cells, entry)
	}

	writeJSON(w, map[string]any{
		"size":      g.Size,
		"village_x": g.VillageX,
		"village_y": g.VillageY,
		"cells":     cells,
	})
}

func (s *Server) handleCitizens(w http.ResponseWriter, r *http.Request) {
	s.Sim.Lock()
	defer s.Sim.Unlock()

	type citizenSummary struct {
		ID      citizen.ID `json:"id"`
		Name    string     `json:"name"`
		X       int        `json:"x"`
		Y       int        `json:"y"`
		Age     float64    `json:"age"`
		TribeID int        `json:"tribe_id"`
		Role    string     `json:"role"`
		Health  float64    `json:"health"`
		Hunger  float64    `json:"hunger"`
		Fatigue float64    `json:"fatigue"`
		Morale  float64    `json:"morale"`
	}

	var result []citizenSummary
	for _, c := range s.Sim.Repo.Citizens() {
		if !c.Alive() {
			continue
		}
		result = append(result, citizenSummary{
			ID:      c.ID,
			Name:    c.Name,
			X:       c.X,
			Y:       c.Y,
			Age:     c.Age,
			TribeID: c.TribeID,
			Role:    citizen.RoleName(c.Role),
			Health:  c.Needs.Health,
			Hunger:  c.Needs.Hunger,
			Fatigue: c.Needs.Fatigue,
			Morale:  c.Needs.Morale,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleCitizenDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 {
		http.Error(w, "missing citizen id", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseUint(parts[4], 10, 64)
	if err != nil {
		http.Error(w, "invalid citizen id", http.StatusBadRequest)
		return
	}

	s.Sim.Lock()
	defer s.Sim.Unlock()

	c := s.Sim.Repo.Get(citizen.ID(id))
	if c == nil {
		http.Error(w, "citizen not found", http.StatusNotFound)
		return
	}

	writeJSON(w, map[string]any{
		"citizen": c,
		"history": c.History,
	})
}

func (s *Server) handleStructures(w http.ResponseWriter, r *http.Request) {
	s.Sim.Lock()
	defer s.Sim.Unlock()

	type structureEntry struct {
		Type string `json:"type"`
		X    int    `json:"x"`
		Y    int    `json:"y"`
	}
	structures := make([]structureEntry, 0, len(s.Sim.Grid.Structures))
	for _, st := range s.Sim.Grid.Structures {
		structures = append(structures, structureEntry{
			Type: world.StructureName(st.Type), X: st.X, Y: st.Y,
		})
	}

	sites := make([]*world.ConstructionSite, 0, len(s.Sim.Grid.Sites))
	for _, site := range s.Sim.Grid.Sites {
		sites = append(sites, site)
	}

	writeJSON(w, map[string]any{
		"structures": structures,
		"sites":      sites,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	if s.Journal == nil {
		writeJSON(w, []engine.Event{})
		return
	}
	events, err := s.Journal.Recent(limit)
	if err != nil {
		slog.Error("event history query failed", "error", err)
		writeJSON(w, []engine.Event{})
		return
	}
	writeJSON(w, events)
}

// handleVisuals drains the one-shot visual queue for the renderer frame.
func (s *Server) handleVisuals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.ConsumeVisualEvents())
}

func (s *Server) handlePriority(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		X     int    `json:"x"`
		Y     int    `json:"y"`
		Mark  string `json:"mark"` // explore, defend, farm, mine, gather
		Clear bool   `json:"clear"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	s.Sim.Lock()
	defer s.Sim.Unlock()

	if req.Clear {
		writeJSON(w, s.Sim.Grid.ClearPriorityAt(req.X, req.Y))
		return
	}

	marks := map[string]world.PriorityMark{
		"explore": world.PriorityExplore,
		"defend":  world.PriorityDefend,
		"farm":    world.PriorityFarm,
		"mine":    world.PriorityMine,
		"gather":  world.PriorityGather,
	}
	mark, ok := marks[req.Mark]
	if !ok {
		http.Error(w, "unknown mark (use: explore, defend, farm, mine, gather)", http.StatusBadRequest)
		return
	}
	s.Sim.Grid.SetPriorityAt(req.X, req.Y, mark)
	writeJSON(w, world.Result{OK: true})
}

func (s *Server) handleConstruction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Action  string `json:"action"` // plan, cancel
		Type    string `json:"type"`
		X       int    `json:"x"`
		Y       int    `json:"y"`
		SiteID  string `json:"site_id"`
		Reclaim bool   `json:"reclaim"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	s.Sim.Lock()
	defer s.Sim.Unlock()

	switch req.Action {
	case "plan":
		types := map[string]world.StructureType{
			"granary":    world.StructureGranary,
			"warehouse":  world.StructureWarehouse,
			"hut":        world.StructureHut,
			"temple":     world.StructureTemple,
			"farmhouse":  world.StructureFarmhouse,
			"wall":       world.StructureWall,
			"watchtower": world.StructureWatchtower,
		}
		t, ok := types[req.Type]
		if !ok {
			http.Error(w, "unknown structure type", http.StatusBadRequest)
			return
		}
		writeJSON(w, s.Sim.Grid.PlanConstruction(t, req.X, req.Y))
	case "cancel":
		writeJSON(w, s.Sim.Grid.CancelConstruction(req.SiteID, req.Reclaim))
	default:
		http.Error(w, "unknown action (use: plan, cancel)", http.StatusBadRequest)
	}
}

func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Workers  int `json:"workers"`
		Farmers  int `json:"farmers"`
		Warriors int `json:"warriors"`
		Scouts   int `json:"scouts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	s.Sim.Lock()
	s.Sim.System.RebalanceRoles(map[citizen.Role]int{
		citizen.RoleWorker:  req.Workers,
		citizen.RoleFarmer:  req.Farmers,
		citizen.RoleWarrior: req.Warriors,
		citizen.RoleScout:   req.Scouts,
	}, 0)
	counts := s.Sim.Repo.RoleCounts(0)
	s.Sim.Unlock()

	named := make(map[string]int, len(counts))
	for role, n := range counts {
		named[citizen.RoleName(role)] = n
	}
	writeJSON(w, named)
}

func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Paused bool `json:"paused"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		s.Sim.Lock()
		if req.Paused {
			s.Sim.Clock.Pause()
		} else {
			s.Sim.Clock.Resume()
		}
		s.Sim.Unlock()
		slog.Info("clock state changed", "paused", req.Paused)
	}

	s.Sim.Lock()
	defer s.Sim.Unlock()
	writeJSON(w, map[string]bool{"paused": s.Sim.Clock.Paused()})
}

// handlePowerSpend is the wallet mutation: deduct from the player's power
// balance. The wallet is opaque beyond balance and spend.
func (s *Server) handlePowerSpend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if !s.Sim.SpendPower(req.Amount) {
		http.Error(w, "insufficient power", http.StatusConflict)
		return
	}
	s.Sim.Lock()
	balance := s.Sim.Power
	s.Sim.Unlock()
	writeJSON(w, map[string]int{"balance": balance})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
