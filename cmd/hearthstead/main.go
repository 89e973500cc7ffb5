// Command hearthstead runs the settlement simulation daemon.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"hearthstead/internal/api"
	"hearthstead/internal/chronicle"
	"hearthstead/internal/engine"
	"hearthstead/internal/tuning"
	"hearthstead/internal/world"
)

const frameInterval = 100 * time.Millisecond

func main() {
	seed := flag.Int64("seed", 42, "world generation seed")
	port := flag.Int("port", 8080, "HTTP API port")
	dbPath := flag.String("db", "data/hearthstead.db", "event journal path")
	tuningPath := flag.String("tuning", "", "optional tuning YAML overriding defaults")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Hearthstead — settlement simulation")

	// ── Tuning ────────────────────────────────────────────────────────
	cfg := tuning.Default()
	if *tuningPath != "" {
		var err error
		cfg, err = tuning.Load(*tuningPath)
		if err != nil {
			slog.Error("failed to load tuning", "path", *tuningPath, "error", err)
			os.Exit(1)
		}
		slog.Info("tuning loaded", "path", *tuningPath)
	}

	// ── Event journal ─────────────────────────────────────────────────
	os.MkdirAll("data", 0755)
	journal, err := chronicle.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open journal", "error", err)
		os.Exit(1)
	}
	defer journal.Close()
	slog.Info("journal opened", "path", *dbPath)

	// ── Simulation ────────────────────────────────────────────────────
	slog.Info("generating world...", "seed", *seed, "size", cfg.World.Size)
	sim := engine.NewSimulation(*seed, cfg)

	// ── HTTP API + event stream ──────────────────────────────────────
	adminKey := os.Getenv("HEARTHSTEAD_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("HEARTHSTEAD_ADMIN_KEY not set — command POST endpoints will be disabled")
	}

	hub := api.NewHub()
	server := &api.Server{
		Sim:      sim,
		Journal:  journal,
		Hub:      hub,
		Port:     *port,
		AdminKey: adminKey,
	}
	server.Start()

	// ── Frame loop ────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("\nHearthstead is alive. API: http://localhost:%d/api/v1/status\n", *port)
	fmt.Println("Running... (Ctrl+C to stop)")

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	last := time.Now()
	var nextSummary uint64 = 48 // roughly one sim-day at default tuning

	for {
		select {
		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now

			events := sim.Advance(elapsed)
			if len(events) > 0 {
				if err := journal.Append(events); err != nil {
					slog.Error("journal append failed", "error", err)
				}
				hub.Broadcast(events)
			}

			if tick := sim.Tick(); tick >= nextSummary {
				nextSummary = tick + 48
				logSummary(sim, tick)
			}
		}
	}
}

// logSummary writes the daily-report line.
func logSummary(sim *engine.Simulation, tick uint64) {
	sim.Lock()
	defer sim.Unlock()

	slog.Info("daily report",
		"tick", humanize.Comma(int64(tick)),
		"population", sim.Repo.Population(),
		"food", sim.Grid.Stockpile.Amount(world.ResourceFood),
		"stone", sim.Grid.Stockpile.Amount(world.ResourceStone),
		"wood", sim.Grid.Stockpile.Amount(world.ResourceWood),
		"structures", len(sim.Grid.Structures),
		"sites", len(sim.Grid.Sites),
		"power", sim.Power,
	)
}
