//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"taskrealm/server/models"
)

type PostgresStoreSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	store     *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("taskrealm_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	s.store, err = NewPostgresStore(s.ctx, dsn, PoolConfig{MaxOpenConns: 4}, zap.NewNop())
	require.NoError(s.T(), err)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.store != nil {
		s.store.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresStoreSuite) TestAreaLifecycle() {
	area := sampleArea("pg-area")
	progress := sampleProgress(area)
	s.Require().NoError(s.store.SaveAreaGraph(s.ctx, area, progress))

	loaded, err := s.store.LoadArea(s.ctx, area.ID)
	s.Require().NoError(err)
	s.Equal(area.ThemeKey, loaded.ThemeKey)
	s.Require().Len(loaded.Nodes, len(area.Nodes))
	for c, n := range area.Nodes {
		got := loaded.Nodes[c]
		s.Require().NotNil(got, "node %s", c)
		s.Equal(n.Type, got.Type)
		s.Equal(n.Connections, got.Connections)
		s.Equal(n.Unlocked, got.Unlocked)
		s.Equal(n.Objective, got.Objective)
	}

	seq, err := s.store.LatestAreaSequence(s.ctx, "pg-area")
	s.Require().NoError(err)
	s.Equal(1, seq)

	start := area.Nodes[models.Coord{X: 0, Y: 3}]
	combat := area.Nodes[models.Coord{X: 1, Y: 3}]
	start.Completed = true
	combat.Unlocked = true
	area.NodesExplored = 1
	progress.NodesExplored = 1
	s.Require().NoError(s.store.SaveNodeStates(s.ctx, area, []*models.Node{start, combat}, progress))

	loaded, err = s.store.LoadArea(s.ctx, area.ID)
	s.Require().NoError(err)
	s.True(loaded.Nodes[start.Coord].Completed)
	s.True(loaded.Nodes[combat.Coord].Unlocked)
	s.Equal(1, loaded.NodesExplored)

	// unknown node rolls the whole batch back
	combat.Completed = true
	ghost := &models.Node{Coord: models.Coord{X: 6, Y: 6}}
	err = s.store.SaveNodeStates(s.ctx, area, []*models.Node{combat, ghost}, progress)
	s.ErrorIs(err, ErrNotFound)
	loaded, err = s.store.LoadArea(s.ctx, area.ID)
	s.Require().NoError(err)
	s.False(loaded.Nodes[combat.Coord].Completed)

	p, err := s.store.LoadProgress(s.ctx, "pg-area")
	s.Require().NoError(err)
	s.Equal(area.ID, p.CurrentAreaID)
	s.Equal(1, p.NodesExplored)
}

func (s *PostgresStoreSuite) TestWorldPathLifecycle() {
	path := samplePath("pg-path")
	s.Require().NoError(s.store.SaveWorldPath(s.ctx, path))

	loaded, err := s.store.LoadWorldPath(s.ctx, path.ID)
	s.Require().NoError(err)
	s.Equal(path.Connections, loaded.Connections)
	s.Require().Len(loaded.Levels, 2)
	s.Equal(path.Levels[0].Enemy, loaded.Levels[0].Enemy)
	s.Nil(loaded.Levels[1].Enemy)
	s.Equal(path.Levels[0].Objectives, loaded.Levels[0].Objectives)

	boss := loaded.Level("p2-l0")
	boss.Status = models.StatusCompleted
	loaded.Completed = true
	s.Require().NoError(s.store.SaveLevelStates(s.ctx, loaded, []*models.Level{boss}))

	again, err := s.store.LoadWorldPath(s.ctx, path.ID)
	s.Require().NoError(err)
	s.True(again.Completed)
	s.Equal(models.StatusCompleted, again.Level("p2-l0").Status)
}

func (s *PostgresStoreSuite) TestTasksAndStats() {
	now := time.Now().UTC()
	due := now.Add(-48 * time.Hour)
	tasks := []models.Task{
		{ID: "pg-t1", OwnerID: "pg-tasks", Title: "Walk", Category: "health", Priority: 2, Completed: true, CompletedDate: &now},
		{ID: "pg-t2", OwnerID: "pg-tasks", Title: "File taxes", Category: "finance", Priority: 4, DueDate: &due},
	}
	for i := range tasks {
		s.Require().NoError(s.store.SaveTask(s.ctx, &tasks[i]))
	}

	got, err := s.store.Tasks(s.ctx, "pg-tasks")
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("pg-t1", got[0].ID)
	s.NotNil(got[0].CompletedDate)
	s.Nil(got[1].CompletedDate)
	s.NotNil(got[1].DueDate)

	stats, err := s.store.Stats(s.ctx, "pg-tasks")
	s.Require().NoError(err)
	s.Equal(1, stats.CompletedToday)
	s.Equal(1, stats.CurrentStreak)
}

func (s *PostgresStoreSuite) TestTaskIDsAreScopedToOwner() {
	mine := models.Task{ID: "shared", OwnerID: "pg-alice", Title: "Walk"}
	theirs := models.Task{ID: "shared", OwnerID: "pg-bob", Title: "Run", Completed: true}
	now := time.Now().UTC()
	theirs.CompletedDate = &now
	s.Require().NoError(s.store.SaveTask(s.ctx, &mine))
	s.Require().NoError(s.store.SaveTask(s.ctx, &theirs))

	alice, err := s.store.Tasks(s.ctx, "pg-alice")
	s.Require().NoError(err)
	s.Require().Len(alice, 1)
	s.Equal("Walk", alice[0].Title)
	s.False(alice[0].Completed)

	bob, err := s.store.Tasks(s.ctx, "pg-bob")
	s.Require().NoError(err)
	s.Require().Len(bob, 1)
	s.True(bob[0].Completed)
}

func (s *PostgresStoreSuite) TestNotFound() {
	_, err := s.store.LoadArea(s.ctx, "missing")
	s.ErrorIs(err, ErrNotFound)
	_, err = s.store.LoadProgress(s.ctx, "missing")
	s.ErrorIs(err, ErrNotFound)
	_, err = s.store.LoadWorldPath(s.ctx, "missing")
	s.ErrorIs(err, ErrNotFound)
}
