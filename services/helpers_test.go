package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskrealm/server/catalog"
	"taskrealm/server/generation"
	"taskrealm/server/metrics"
	"taskrealm/server/models"
	"taskrealm/server/objectives"
	"taskrealm/server/persistence"
	"taskrealm/server/random"
)

const owner = "owner-1"

type fixture struct {
	store      *persistence.JSONStore
	metrics    *metrics.Metrics
	deps       Deps
	objectives *ObjectiveService
	adventure  *AdventureService
	worldPaths *WorldPathService
}

func newFixture(t *testing.T, tasks ...models.Task) *fixture {
	t.Helper()
	store := persistence.NewMemoryStore(zap.NewNop())
	for i := range tasks {
		require.NoError(t, store.SaveTask(context.Background(), &tasks[i]))
	}

	rng := random.NewLocked(random.New(11))
	engine := objectives.NewEngine(rng, time.Now)
	cat := catalog.New()
	m := metrics.New()
	deps := Deps{
		Store:   store,
		Catalog: cat,
		Engine:  engine,
		Locks:   NewLocalOwnerLocks(),
		Metrics: m,
		Logger:  zap.NewNop(),
	}
	objectiveSvc := NewObjectiveService(deps)
	return &fixture{
		store:      store,
		metrics:    m,
		deps:       deps,
		objectives: objectiveSvc,
		adventure:  NewAdventureService(deps, generation.NewAreaGenerator(rng, generation.DefaultAreaConfig()), objectiveSvc),
		worldPaths: NewWorldPathService(deps, generation.NewWorldPathGenerator(rng, engine, cat), objectiveSvc),
	}
}

func openTask(id, category string, priority int) models.Task {
	return models.Task{ID: id, OwnerID: owner, Title: "task " + id, Category: category, Priority: priority}
}

func doneToday(t models.Task) models.Task {
	now := time.Now()
	t.Completed = true
	t.CompletedDate = &now
	return t
}

// clearObjectives strips every node objective so traversal is gated only by
// lock state.
func (f *fixture) clearObjectives(t *testing.T, areaID string) {
	t.Helper()
	ctx := context.Background()
	area, err := f.store.LoadArea(ctx, areaID)
	require.NoError(t, err)
	progress, err := f.store.LoadProgress(ctx, owner)
	require.NoError(t, err)
	nodes := area.SortedNodes()
	for _, n := range nodes {
		n.Objective = nil
	}
	require.NoError(t, f.store.SaveNodeStates(ctx, area, nodes, progress))
}

// shortestPath returns the node coordinates from start to goal, both included.
func shortestPath(area *models.Area, start, goal models.Coord) []models.Coord {
	parent := map[models.Coord]models.Coord{start: start}
	queue := []models.Coord{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == goal {
			break
		}
		for _, next := range area.Nodes[cur].Connections {
			if _, seen := parent[next]; !seen {
				parent[next] = cur
				queue = append(queue, next)
			}
		}
	}
	var path []models.Coord
	for c := goal; ; c = parent[c] {
		path = append([]models.Coord{c}, path...)
		if c == start {
			return path
		}
	}
}
