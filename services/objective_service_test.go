package services

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskrealm/server/models"
)

func TestValidateAndCheckObjective(t *testing.T) {
	f := newFixture(t,
		openTask("1", "work", 1),
		doneToday(openTask("2", "home", 2)),
	)
	ctx := context.Background()

	open := models.NewObjective(models.SpecificTask{TaskID: "1"}, "Finish task 1")
	done := models.NewObjective(models.SpecificTask{TaskID: "2"}, "Finish task 2")
	missing := models.NewObjective(models.SpecificTask{TaskID: "nope"}, "Finish a ghost")

	ok, err := f.objectives.ValidateObjective(ctx, owner, open)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.objectives.ValidateObjective(ctx, owner, missing)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.objectives.CheckObjectiveCompletion(ctx, owner, open)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.objectives.CheckObjectiveCompletion(ctx, owner, done)
	require.NoError(t, err)
	assert.True(t, ok)

	daily := models.NewObjective(models.DailyQuantity{Count: 1}, "Complete 1 task today")
	ok, err = f.objectives.CheckObjectiveCompletion(ctx, owner, daily)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestObjectivesAreOwnerScoped(t *testing.T) {
	f := newFixture(t, doneToday(openTask("1", "work", 1)))
	ctx := context.Background()

	o := models.NewObjective(models.SpecificTask{TaskID: "1"}, "Finish task 1")
	ok, err := f.objectives.CheckObjectiveCompletion(ctx, "someone-else", o)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegenerateObjective(t *testing.T) {
	f := newFixture(t,
		openTask("1", "work", 1),
		openTask("2", "health", 2),
	)
	ctx := context.Background()

	valid := models.NewObjective(models.SpecificTask{TaskID: "1"}, "Finish task 1")
	got, err := f.objectives.RegenerateObjective(ctx, owner, valid, "stone_age")
	require.NoError(t, err)
	assert.Equal(t, valid, got)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.ObjectivesRegenerated.WithLabelValues(string(models.KindSpecificTask))))

	stale := models.NewObjective(models.SpecificTask{TaskID: "gone"}, "Finish a deleted task")
	got, err = f.objectives.RegenerateObjective(ctx, owner, stale, "stone_age")
	require.NoError(t, err)
	require.NotNil(t, got.Goal)
	assert.NotEqual(t, stale, got)
	assert.NotEmpty(t, got.Description)

	ok, err := f.objectives.ValidateObjective(ctx, owner, got)
	require.NoError(t, err)
	assert.True(t, ok, "replacement %s should be achievable", got.Kind)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ObjectivesRegenerated.WithLabelValues(string(models.KindSpecificTask))))
}

func TestSyncTask(t *testing.T) {
	f := newFixture(t)
	stamp := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	f.objectives.deps.Now = func() time.Time { return stamp }
	ctx := context.Background()

	_, err := f.objectives.SyncTask(ctx, owner, models.Task{Title: "no id"})
	assert.ErrorIs(t, err, ErrInvalidTask)

	saved, err := f.objectives.SyncTask(ctx, owner, models.Task{ID: "t1", OwnerID: "spoofed", Title: "Dishes", Completed: true})
	require.NoError(t, err)
	assert.Equal(t, owner, saved.OwnerID)
	require.NotNil(t, saved.CompletedDate)
	assert.True(t, stamp.Equal(*saved.CompletedDate))

	reopened, err := f.objectives.SyncTask(ctx, owner, models.Task{ID: "t1", Title: "Dishes", CompletedDate: &stamp})
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedDate)

	tasks, err := f.store.Tasks(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.False(t, tasks[0].Completed)

	other, err := f.store.Tasks(ctx, "spoofed")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSyncTaskKeepsOwnersApart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.objectives.SyncTask(ctx, "alice", models.Task{ID: "1", Title: "Walk"})
	require.NoError(t, err)
	_, err = f.objectives.SyncTask(ctx, "bob", models.Task{ID: "1", Title: "Run", Completed: true})
	require.NoError(t, err)

	alice, err := f.store.Tasks(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alice, 1)
	assert.False(t, alice[0].Completed)

	o := models.NewObjective(models.SpecificTask{TaskID: "1"}, "Finish task 1")
	ok, err := f.objectives.CheckObjectiveCompletion(ctx, "alice", o)
	require.NoError(t, err)
	assert.False(t, ok)
}
