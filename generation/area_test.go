package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskrealm/server/models"
	"taskrealm/server/random"
)

func TestGeneratedAreasAreConnectedAndSymmetric(t *testing.T) {
	cfg := DefaultAreaConfig()
	for seed := int64(1); seed <= 200; seed++ {
		area := NewAreaGenerator(random.New(seed), cfg).Generate("owner", "stone_age")
		require.NoError(t, VerifyArea(area, cfg.Size), "seed %d", seed)

		assert.Equal(t, models.NodeStart, area.Node(cfg.Start).Type)
		assert.Equal(t, models.NodeBoss, area.Node(cfg.Boss).Type)
		assert.Equal(t, models.NodeShop, area.Node(cfg.Shop).Type)
		assert.LessOrEqual(t, len(area.Nodes), cfg.Size*cfg.Size)
	}
}

func TestOnlyStartIsUnlocked(t *testing.T) {
	area := NewAreaGenerator(random.New(9), DefaultAreaConfig()).Generate("owner", "medieval")
	for c, n := range area.Nodes {
		assert.Equal(t, n.Type == models.NodeStart, n.Unlocked, "node %s", c)
		assert.False(t, n.Completed)
		assert.Nil(t, n.Objective)
	}
	assert.Equal(t, "owner", area.OwnerID)
	assert.Equal(t, "medieval", area.ThemeKey)
	assert.Equal(t, models.DefaultTargetNodes, area.TargetNodes)
	assert.NotEmpty(t, area.ID)
}

func TestConnectionsAreSorted(t *testing.T) {
	area := NewAreaGenerator(random.New(4), DefaultAreaConfig()).Generate("owner", "stone_age")
	for _, n := range area.Nodes {
		assert.IsNonDecreasing(t, coordOrder(n.Connections))
	}
}

func coordOrder(cs []models.Coord) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.Y*100 + c.X
	}
	return out
}

func TestWalkPrefersXAxisWithScriptedRNG(t *testing.T) {
	cfg := DefaultAreaConfig()
	gen := NewAreaGenerator(&random.Scripted{}, cfg)

	path := gen.Walk(models.Coord{X: 0, Y: 3}, models.Coord{X: 6, Y: 3})
	require.Len(t, path, 7)
	for i, c := range path {
		assert.Equal(t, models.Coord{X: i, Y: 3}, c)
	}
}

func TestWalkMovesOnYOnceXIsAligned(t *testing.T) {
	gen := NewAreaGenerator(&random.Scripted{}, DefaultAreaConfig())

	path := gen.Walk(models.Coord{X: 1, Y: 3}, models.Coord{X: 3, Y: 0})
	assert.Equal(t, []models.Coord{
		{X: 1, Y: 3}, {X: 2, Y: 3}, {X: 3, Y: 3}, {X: 3, Y: 2}, {X: 3, Y: 1}, {X: 3, Y: 0},
	}, path)
}

func TestWalkTerminatesPastStepCap(t *testing.T) {
	cfg := DefaultAreaConfig()
	cfg.MaxWalkSteps = 0
	// weights never get sampled once the cap is hit, the walk goes straight
	gen := NewAreaGenerator(&random.Scripted{Ints: []int{4, 4, 4}}, cfg)

	path := gen.Walk(models.Coord{X: 6, Y: 6}, models.Coord{X: 0, Y: 0})
	assert.Len(t, path, 13)
	assert.Equal(t, models.Coord{X: 0, Y: 6}, path[6])
}

func TestStraightAreaWithScriptedRNG(t *testing.T) {
	cfg := DefaultAreaConfig()
	cfg.MinBranches, cfg.MaxBranches = 0, 0
	area := NewAreaGenerator(&random.Scripted{}, cfg).Generate("owner", "stone_age")
	require.NoError(t, VerifyArea(area, cfg.Size))

	// main path (0,3)..(6,3) plus the spur from (3,3) up to the shop at (3,0)
	assert.Len(t, area.Nodes, 10)
	assert.ElementsMatch(t,
		[]models.Coord{{X: 2, Y: 3}, {X: 3, Y: 2}, {X: 4, Y: 3}},
		area.Node(models.Coord{X: 3, Y: 3}).Connections)
}

func TestTypeQuotaAssignsInOrder(t *testing.T) {
	cfg := DefaultAreaConfig()
	cfg.MinBranches, cfg.MaxBranches = 0, 0
	cfg.Quota = TypeQuota{Combat: 2, Treasure: 2, Event: 1}
	area := NewAreaGenerator(&random.Scripted{}, cfg).Generate("owner", "stone_age")

	counts := map[models.NodeType]int{}
	for _, n := range area.Nodes {
		counts[n.Type]++
	}
	// 7 non-anchor nodes: 2 combat, 2 treasure, 1 event, the rest default to combat
	assert.Equal(t, 1, counts[models.NodeStart])
	assert.Equal(t, 1, counts[models.NodeBoss])
	assert.Equal(t, 1, counts[models.NodeShop])
	assert.Equal(t, 2, counts[models.NodeTreasure])
	assert.Equal(t, 1, counts[models.NodeEvent])
	assert.Equal(t, 4, counts[models.NodeCombat])
}

func TestBranchGrowthStaysWithinTarget(t *testing.T) {
	cfg := DefaultAreaConfig()
	for seed := int64(1); seed <= 50; seed++ {
		gen := NewAreaGenerator(random.New(seed), cfg)
		g := newAreaGraph(cfg.Size)
		gen.walk(g, cfg.Start, cfg.Boss)
		before := len(g.nodes)

		added := gen.growBranches(g)
		assert.LessOrEqual(t, added, cfg.MaxBranches)
		assert.Equal(t, before+added, len(g.nodes))
	}
}

func TestBranchGrowthStopsWhenGridIsFull(t *testing.T) {
	cfg := DefaultAreaConfig()
	cfg.Size = 2
	gen := NewAreaGenerator(random.New(1), cfg)
	g := newAreaGraph(cfg.Size)
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			g.ensure(models.Coord{X: x, Y: y})
		}
	}
	assert.Equal(t, 0, gen.growBranches(g))
}

func TestVerifyAreaRejectsBrokenGraphs(t *testing.T) {
	area := NewAreaGenerator(&random.Scripted{}, DefaultAreaConfig()).Generate("owner", "stone_age")
	require.NoError(t, VerifyArea(area, 7))

	// drop the back edge of one connection
	mid := area.Node(models.Coord{X: 1, Y: 3})
	mid.Connections = []models.Coord{{X: 2, Y: 3}}
	assert.Error(t, VerifyArea(area, 7))
}
