// Package generation builds the progression graphs players traverse: free-roam
// grid areas and linear multi-lane world paths.
//
// Generators build into a locally owned collection and hand back a finished
// graph; nothing here touches storage.
package generation

import (
	"time"

	"github.com/google/uuid"

	"taskrealm/server/models"
	"taskrealm/server/random"
)

// TypeQuota is how many shuffled non-anchor nodes receive each type, in order.
// Nodes beyond the quota keep the COMBAT default.
type TypeQuota struct {
	Combat   int
	Treasure int
	Event    int
}

// AreaConfig parameterises free-roam generation.
type AreaConfig struct {
	Size           int
	Start          models.Coord
	Boss           models.Coord
	Shop           models.Coord
	MinBranches    int
	MaxBranches    int
	BranchAttempts int
	MaxWalkSteps   int
	Quota          TypeQuota
}

// DefaultAreaConfig is the 7x7 layout with START west, BOSS east and SHOP north.
func DefaultAreaConfig() AreaConfig {
	return AreaConfig{
		Size:           7,
		Start:          models.Coord{X: 0, Y: 3},
		Boss:           models.Coord{X: 6, Y: 3},
		Shop:           models.Coord{X: 3, Y: 0},
		MinBranches:    8,
		MaxBranches:    12,
		BranchAttempts: 50,
		MaxWalkSteps:   200,
		Quota:          TypeQuota{Combat: 30, Treasure: 8, Event: 8},
	}
}

const (
	weightTowardX = 3
	weightTowardY = 2
	weightOpen    = 1
)

// AreaGenerator builds free-roam areas.
type AreaGenerator struct {
	rng random.RNG
	cfg AreaConfig
	now func() time.Time
}

// NewAreaGenerator returns a generator drawing every choice from rng.
func NewAreaGenerator(rng random.RNG, cfg AreaConfig) *AreaGenerator {
	return &AreaGenerator{rng: rng, cfg: cfg, now: time.Now}
}

// Generate builds a new area: a weighted walk from START to BOSS, a walk from
// the nearest main-path node to SHOP, bounded branch growth, then node typing.
// Only START is unlocked.
func (ag *AreaGenerator) Generate(ownerID, themeKey string) *models.Area {
	g := newAreaGraph(ag.cfg.Size)

	mainPath := ag.walk(g, ag.cfg.Start, ag.cfg.Boss)
	ag.walk(g, nearestOnPath(mainPath, ag.cfg.Shop), ag.cfg.Shop)
	ag.growBranches(g)
	ag.assignTypes(g)

	for _, n := range g.nodes {
		models.SortCoords(n.Connections)
	}
	g.nodes[ag.cfg.Start].Unlocked = true

	return &models.Area{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		ThemeKey:    themeKey,
		TargetNodes: models.DefaultTargetNodes,
		Nodes:       g.nodes,
		CreatedAt:   ag.now().UTC(),
	}
}

// Walk runs the weighted walk on an empty grid and returns the visited cells
// in order, endpoints included.
func (ag *AreaGenerator) Walk(from, to models.Coord) []models.Coord {
	return ag.walk(newAreaGraph(ag.cfg.Size), from, to)
}

// walk moves from one cell to another creating nodes and edges along the way.
// Past MaxWalkSteps it stops sampling and steps straight at the target, x
// axis first, so it always terminates.
func (ag *AreaGenerator) walk(g *areaGraph, from, to models.Coord) []models.Coord {
	g.ensure(from)
	path := []models.Coord{from}
	cur := from
	for steps := 0; cur != to; steps++ {
		var next models.Coord
		if steps < ag.cfg.MaxWalkSteps {
			next = ag.weightedStep(g, cur, to)
		} else {
			next = directStep(cur, to)
		}
		g.ensure(next)
		g.connect(cur, next)
		cur = next
		path = append(path, cur)
	}
	return path
}

type weightedCell struct {
	cell   models.Coord
	weight int
}

// weightedStep picks the next cell by cumulative weight: a step closer on x,
// a step closer on y, then every in-bounds neighbour that has no node yet.
func (ag *AreaGenerator) weightedStep(g *areaGraph, cur, to models.Coord) models.Coord {
	var candidates []weightedCell
	if cur.X != to.X {
		candidates = append(candidates, weightedCell{models.Coord{X: cur.X + sign(to.X-cur.X), Y: cur.Y}, weightTowardX})
	}
	if cur.Y != to.Y {
		candidates = append(candidates, weightedCell{models.Coord{X: cur.X, Y: cur.Y + sign(to.Y-cur.Y)}, weightTowardY})
	}
	for _, n := range cur.Neighbors() {
		if g.inBounds(n) && !g.has(n) {
			candidates = append(candidates, weightedCell{n, weightOpen})
		}
	}

	total := 0
	for _, c := range candidates {
		total += c.weight
	}
	roll := ag.rng.Intn(total)
	for _, c := range candidates {
		if roll < c.weight {
			return c.cell
		}
		roll -= c.weight
	}
	return candidates[len(candidates)-1].cell
}

func directStep(cur, to models.Coord) models.Coord {
	if cur.X != to.X {
		return models.Coord{X: cur.X + sign(to.X-cur.X), Y: cur.Y}
	}
	return models.Coord{X: cur.X, Y: cur.Y + sign(to.Y-cur.Y)}
}

// nearestOnPath returns the path cell closest to target; ties keep path order.
func nearestOnPath(path []models.Coord, target models.Coord) models.Coord {
	best := path[0]
	for _, c := range path[1:] {
		if c.Manhattan(target) < best.Manhattan(target) {
			best = c
		}
	}
	return best
}

// growBranches hangs extra nodes off random existing ones. The attempt cap
// bounds the loop even when the grid fills up first; fewer branches than the
// target is a normal outcome.
func (ag *AreaGenerator) growBranches(g *areaGraph) int {
	target := random.Between(ag.rng, ag.cfg.MinBranches, ag.cfg.MaxBranches)
	added := 0
	for attempt := 0; attempt < ag.cfg.BranchAttempts && added < target; attempt++ {
		src := g.order[ag.rng.Intn(len(g.order))]
		var free []models.Coord
		for _, n := range src.Neighbors() {
			if g.inBounds(n) && !g.has(n) {
				free = append(free, n)
			}
		}
		if len(free) == 0 {
			continue
		}
		cell := free[ag.rng.Intn(len(free))]
		g.ensure(cell)
		g.connect(src, cell)
		added++
	}
	return added
}

func (ag *AreaGenerator) assignTypes(g *areaGraph) {
	var rest []*models.Node
	for _, c := range g.order {
		n := g.nodes[c]
		switch c {
		case ag.cfg.Start:
			n.Type = models.NodeStart
		case ag.cfg.Boss:
			n.Type = models.NodeBoss
		case ag.cfg.Shop:
			n.Type = models.NodeShop
		default:
			rest = append(rest, n)
		}
	}

	ag.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })

	q := ag.cfg.Quota
	for i, n := range rest {
		switch {
		case i < q.Combat:
			n.Type = models.NodeCombat
		case i < q.Combat+q.Treasure:
			n.Type = models.NodeTreasure
		case i < q.Combat+q.Treasure+q.Event:
			n.Type = models.NodeEvent
		default:
			n.Type = models.NodeCombat
		}
	}
}

// areaGraph is the exclusively owned node set under construction. order keeps
// creation order so random picks do not depend on map iteration.
type areaGraph struct {
	size  int
	nodes map[models.Coord]*models.Node
	order []models.Coord
}

func newAreaGraph(size int) *areaGraph {
	return &areaGraph{size: size, nodes: make(map[models.Coord]*models.Node)}
}

func (g *areaGraph) inBounds(c models.Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.size && c.Y < g.size
}

func (g *areaGraph) has(c models.Coord) bool {
	_, ok := g.nodes[c]
	return ok
}

func (g *areaGraph) ensure(c models.Coord) *models.Node {
	if n, ok := g.nodes[c]; ok {
		return n
	}
	n := &models.Node{Coord: c, Type: models.NodeCombat}
	g.nodes[c] = n
	g.order = append(g.order, c)
	return n
}

func (g *areaGraph) connect(a, b models.Coord) {
	if a == b {
		return
	}
	na, nb := g.nodes[a], g.nodes[b]
	if !na.ConnectedTo(b) {
		na.Connections = append(na.Connections, b)
	}
	if !nb.ConnectedTo(a) {
		nb.Connections = append(nb.Connections, a)
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
