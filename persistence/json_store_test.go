package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskrealm/server/models"
)

func TestJSONStoreAreaRoundTripThroughFile(t *testing.T) {
	ctx := context.Background()
	file := filepath.Join(t.TempDir(), "realm.json")

	store, err := NewJSONStore(file, zap.NewNop())
	require.NoError(t, err)

	area := sampleArea("o1")
	require.NoError(t, store.SaveAreaGraph(ctx, area, sampleProgress(area)))
	assert.Error(t, store.SaveAreaGraph(ctx, area, sampleProgress(area)), "duplicate area id")

	reopened, err := NewJSONStore(file, zap.NewNop())
	require.NoError(t, err)

	loaded, err := reopened.LoadArea(ctx, area.ID)
	require.NoError(t, err)
	assert.Equal(t, area, loaded)

	progress, err := reopened.LoadProgress(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, area.ID, progress.CurrentAreaID)

	seq, err := reopened.LatestAreaSequence(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 1, seq)
	seq, err = reopened.LatestAreaSequence(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, seq)
}

func TestJSONStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(zap.NewNop())

	area := sampleArea("o1")
	require.NoError(t, store.SaveAreaGraph(ctx, area, sampleProgress(area)))

	area.Nodes[models.Coord{X: 1, Y: 3}].Unlocked = true
	loaded, err := store.LoadArea(ctx, area.ID)
	require.NoError(t, err)
	assert.False(t, loaded.Nodes[models.Coord{X: 1, Y: 3}].Unlocked)

	loaded.Nodes[models.Coord{X: 2, Y: 3}].Completed = true
	again, err := store.LoadArea(ctx, area.ID)
	require.NoError(t, err)
	assert.False(t, again.Nodes[models.Coord{X: 2, Y: 3}].Completed)
}

func TestJSONStoreSaveNodeStates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(zap.NewNop())

	area := sampleArea("o1")
	progress := sampleProgress(area)
	require.NoError(t, store.SaveAreaGraph(ctx, area, progress))

	start := area.Nodes[models.Coord{X: 0, Y: 3}]
	combat := area.Nodes[models.Coord{X: 1, Y: 3}]
	start.Completed = true
	combat.Unlocked = true
	area.NodesExplored = 1
	progress.NodesExplored = 1
	require.NoError(t, store.SaveNodeStates(ctx, area, []*models.Node{start, combat}, progress))

	loaded, err := store.LoadArea(ctx, area.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Nodes[start.Coord].Completed)
	assert.True(t, loaded.Nodes[combat.Coord].Unlocked)
	assert.False(t, loaded.Nodes[models.Coord{X: 2, Y: 3}].Unlocked)
	assert.Equal(t, 1, loaded.NodesExplored)

	p, err := store.LoadProgress(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.NodesExplored)

	// a batch naming an unknown node applies nothing
	ghost := &models.Node{Coord: models.Coord{X: 5, Y: 5}, Completed: true}
	combat.Completed = true
	err = store.SaveNodeStates(ctx, area, []*models.Node{combat, ghost}, progress)
	assert.ErrorIs(t, err, ErrNotFound)
	loaded, err = store.LoadArea(ctx, area.ID)
	require.NoError(t, err)
	assert.False(t, loaded.Nodes[combat.Coord].Completed)
}

func TestJSONStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(zap.NewNop())

	_, err := store.LoadArea(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.LoadProgress(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.LoadWorldPath(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJSONStoreWorldPath(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(zap.NewNop())

	path := samplePath("o1")
	require.NoError(t, store.SaveWorldPath(ctx, path))

	loaded, err := store.LoadWorldPath(ctx, path.ID)
	require.NoError(t, err)
	assert.Equal(t, path, loaded)

	first := loaded.Level("p1-l0")
	boss := loaded.Level("p2-l0")
	first.Status = models.StatusCompleted
	boss.Status = models.StatusUnlocked
	require.NoError(t, store.SaveLevelStates(ctx, loaded, []*models.Level{first, boss}))

	again, err := store.LoadWorldPath(ctx, path.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, again.Level("p1-l0").Status)
	assert.Equal(t, models.StatusUnlocked, again.Level("p2-l0").Status)
	assert.False(t, again.Completed)
}

func TestJSONStoreTasksAndStats(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(zap.NewNop())
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	yesterday := now.AddDate(0, 0, -1)
	tasks := []models.Task{
		{ID: "b", OwnerID: "o1", Title: "Stretch", Completed: true, CompletedDate: &now},
		{ID: "a", OwnerID: "o1", Title: "Walk", Completed: true, CompletedDate: &yesterday},
		{ID: "c", OwnerID: "o1", Title: "Read"},
		{ID: "d", OwnerID: "o2", Title: "Other owner", Completed: true, CompletedDate: &now},
	}
	for i := range tasks {
		require.NoError(t, store.SaveTask(ctx, &tasks[i]))
	}

	got, err := store.Tasks(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[2].ID)

	stats, err := store.Stats(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, models.Stats{CurrentStreak: 2, CompletedToday: 1, CompletedThisWeek: 2}, stats)
}

func TestJSONStoreTaskIDsAreScopedToOwner(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.json")
	store, err := NewJSONStore(path, zap.NewNop())
	require.NoError(t, err)

	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	mine := models.Task{ID: "1", OwnerID: "alice", Title: "Walk"}
	theirs := models.Task{ID: "1", OwnerID: "bob", Title: "Run", Completed: true, CompletedDate: &now}
	require.NoError(t, store.SaveTask(ctx, &mine))
	require.NoError(t, store.SaveTask(ctx, &theirs))

	reopened, err := NewJSONStore(path, zap.NewNop())
	require.NoError(t, err)
	for _, s := range []*JSONStore{store, reopened} {
		alice, err := s.Tasks(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, alice, 1)
		assert.Equal(t, "Walk", alice[0].Title)
		assert.False(t, alice[0].Completed)

		bob, err := s.Tasks(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, bob, 1)
		assert.True(t, bob[0].Completed)
	}
}
