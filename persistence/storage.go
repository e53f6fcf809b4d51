package persistence

import (
	"context"
	"errors"

	"taskrealm/server/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// TaskProvider supplies an owner's to-do items. The core only reads them.
type TaskProvider interface {
	Tasks(ctx context.Context, ownerID string) ([]models.Task, error)
}

// StatsProvider supplies an owner's aggregate completion counters.
type StatsProvider interface {
	Stats(ctx context.Context, ownerID string) (models.Stats, error)
}

// Storage defines the interface for data persistence. Writes that touch more
// than one record are applied as one batch: either all of them land or none.
type Storage interface {
	TaskProvider
	StatsProvider

	// SaveAreaGraph inserts a generated area with all its nodes and upserts
	// the owner's progress.
	SaveAreaGraph(ctx context.Context, area *models.Area, progress *models.Progress) error
	LoadArea(ctx context.Context, areaID string) (*models.Area, error)
	// LatestAreaSequence returns the highest area sequence for the owner, 0 if none.
	LatestAreaSequence(ctx context.Context, ownerID string) (int, error)
	// SaveNodeStates writes the given nodes' flags and objectives, the area
	// counters and the progress record.
	SaveNodeStates(ctx context.Context, area *models.Area, nodes []*models.Node, progress *models.Progress) error

	SaveProgress(ctx context.Context, progress *models.Progress) error
	LoadProgress(ctx context.Context, ownerID string) (*models.Progress, error)

	SaveWorldPath(ctx context.Context, path *models.WorldPath) error
	LoadWorldPath(ctx context.Context, pathID string) (*models.WorldPath, error)
	// SaveLevelStates writes the given levels' status and objectives and the
	// path's completed flag.
	SaveLevelStates(ctx context.Context, path *models.WorldPath, levels []*models.Level) error

	SaveTask(ctx context.Context, task *models.Task) error

	Close() error
}
