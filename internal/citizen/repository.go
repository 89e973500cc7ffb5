package citizen

import (
	"fmt"
	"log/slog"
	"math/rand"

	"hearthstead/internal/world"
)

// Repository creates, stores, and looks up citizens, and keeps population
// and role accounting.
type Repository struct {
	citizens []*Citizen
	index    map[ID]*Citizen
	nextID   ID
	rng      *rand.Rand
}

// NewRepository creates an empty repository seeded for name generation.
func NewRepository(seed int64) *Repository {
	return &Repository{
		index:  make(map[ID]*Citizen),
		nextID: 1,
		rng:    rand.New(rand.NewSource(seed + 300)),
	}
}

// Citizens returns the live slice; callers must not retain it across ticks.
func (r *Repository) Citizens() []*Citizen {
	return r.citizens
}

// Get looks up a citizen by id, nil when absent or finalized.
func (r *Repository) Get(id ID) *Citizen {
	return r.index[id]
}

// Population returns the number of living citizens.
func (r *Repository) Population() int {
	n := 0
	for _, c := range r.citizens {
		if c.Alive() {
			n++
		}
	}
	return n
}

// RoleCounts returns living citizen counts per role for a tribe.
func (r *Repository) RoleCounts(tribeID int) map[Role]int {
	counts := make(map[Role]int)
	for _, c := range r.citizens {
		if c.Alive() && c.TribeID == tribeID {
			counts[c.Role]++
		}
	}
	return counts
}

// Spawn creates a citizen at (x, y) and registers its occupancy.
func (r *Repository) Spawn(g *world.Grid, x, y int, tribeID int, role Role) *Citizen {
	c := &Citizen{
		ID:      r.nextID,
		Name:    r.generateName(),
		X:       x,
		Y:       y,
		Age:     16 + r.rng.Float64()*24,
		TribeID: tribeID,
		Role:    role,
		Needs: Needs{
			Hunger:  r.rng.Float64() * 20,
			Fatigue: r.rng.Float64() * 20,
			Morale:  60 + r.rng.Float64()*30,
			Health:  100,
		},
		State: StateAlive,
	}
	if role == RoleChild {
		c.Age = r.rng.Float64() * 10
	}
	r.nextID++
	r.citizens = append(r.citizens, c)
	r.index[c.ID] = c
	g.EnterCell(c.ID, x, y)
	return c
}

// SpawnChild creates a newborn near its parents.
func (r *Repository) SpawnChild(g *world.Grid, x, y int, tribeID int) *Citizen {
	c := r.Spawn(g, x, y, tribeID, RoleChild)
	c.Age = 0
	c.Needs = Needs{Hunger: 10, Fatigue: 0, Morale: 80, Health: 100}
	return c
}

// SpawnBeast creates a hostile beast: a citizen of the wild tribe carrying
// a permanent beast goal and some damage resistance.
func (r *Repository) SpawnBeast(g *world.Grid, x, y int) *Citizen {
	c := r.Spawn(g, x, y, -1, RoleWarrior)
	c.Name = beastNames[r.rng.Intn(len(beastNames))]
	c.Goal = GoalBeast
	c.DamageResist = 3
	return c
}

// SpawnMigrants creates a band of newcomers at the map edge, goal-tagged to
// settle.
func (r *Repository) SpawnMigrants(g *world.Grid, count, tribeID int) []*Citizen {
	var out []*Citizen
	edge := g.Size - 2
	for i := 0; i < count; i++ {
		x, y := 1+r.rng.Intn(edge), 1
		if !g.WalkableAt(x, y) {
			continue
		}
		c := r.Spawn(g, x, y, tribeID, RoleWorker)
		c.Goal = GoalSettle
		out = append(out, c)
	}
	return out
}

// FinalizeDeath is the single death routine: marks the citizen dead, frees
// its cell occupancy, drops the lookup entry, and logs. Idempotent.
func (r *Repository) FinalizeDeath(g *world.Grid, c *Citizen, cause string) {
	if c.State == StateDead {
		return
	}
	c.State = StateDead
	g.LeaveCell(c.ID, c.X, c.Y)
	delete(r.index, c.ID)
	slog.Info("citizen died", "name", c.Name, "id", c.ID, "cause", cause, "age", fmt.Sprintf("%.1f", c.Age))
}

// PruneDead removes dead citizens from the live list. Called once per tick
// after all processing.
func (r *Repository) PruneDead() int {
	pruned := 0
	kept := r.citizens[:0]
	for _, c := range r.citizens {
		if c.Alive() {
			kept = append(kept, c)
		} else {
			pruned++
		}
	}
	r.citizens = kept
	return pruned
}

func (r *Repository) generateName() string {
	return givenNames[r.rng.Intn(len(givenNames))] + " " + kinNames[r.rng.Intn(len(kinNames))]
}

var givenNames = []string{
	"Aldric", "Astrid", "Bram", "Brenna", "Cedric", "Calla", "Doran", "Daria",
	"Erik", "Elara", "Finn", "Freya", "Gareth", "Greta", "Halvard", "Helene",
	"Ivan", "Iris", "Jasper", "Juno", "Kael", "Kira", "Leif", "Lena",
	"Magnus", "Mira", "Nils", "Nessa", "Oswin", "Olwen", "Per", "Petra",
	"Rowan", "Runa", "Stellan", "Senna", "Theron", "Thea", "Ulric", "Una",
}

var kinNames = []string{
	"Voss", "Thornwood", "Blackwood", "Ashford", "Ironhand", "Dunmore",
	"Greenvale", "Stormcrow", "Frostborn", "Hearthstone", "Millward",
	"Copperfield", "Ravenmoor", "Silverdale", "Stoneheart", "Deepwell",
	"Brightwater", "Oakenshield", "Redforge", "Windholm", "Marshwood",
}

var beastNames = []string{
	"Dire Wolf", "Cave Bear", "Marsh Stalker", "Ridge Cat", "Grey Boar",
}
