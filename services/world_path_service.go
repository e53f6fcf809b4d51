package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"taskrealm/server/catalog"
	"taskrealm/server/events"
	"taskrealm/server/generation"
	"taskrealm/server/models"
	"taskrealm/server/persistence"
)

// WorldPathService generates world paths and walks owners through them level
// by level.
type WorldPathService struct {
	deps       Deps
	generator  *generation.WorldPathGenerator
	objectives *ObjectiveService
	logger     *zap.Logger
}

// LevelCompletion describes a level completion.
type LevelCompletion struct {
	Path           *models.WorldPath `json:"path"`
	Level          *models.Level     `json:"level"`
	Unlocked       []string          `json:"unlocked"`
	WorldCompleted bool              `json:"world_completed"`
}

// NewWorldPathService creates a new world path service
func NewWorldPathService(deps Deps, generator *generation.WorldPathGenerator, objectives *ObjectiveService) *WorldPathService {
	deps = deps.withDefaults()
	return &WorldPathService{
		deps:       deps,
		generator:  generator,
		objectives: objectives,
		logger:     deps.Logger.Named("WorldPathService"),
	}
}

// Worlds lists the fixed world definitions.
func (s *WorldPathService) Worlds() []catalog.World {
	return s.deps.Catalog.Worlds()
}

// GenerateWorldPath lays out a new path for the world with the given
// sequence. Unknown sequences fall back to the first world.
func (s *WorldPathService) GenerateWorldPath(ctx context.Context, ownerID string, worldSequence int) (*models.WorldPath, error) {
	unlock, err := s.deps.Locks.Lock(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock owner: %w", err)
	}
	defer unlock()

	snap, err := s.objectives.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	world := s.deps.Catalog.World(worldSequence)

	start := time.Now()
	path := s.generator.Generate(world, snap.tasks)
	s.deps.Metrics.ObserveGeneration("world_path", start)
	path.OwnerID = ownerID

	if err := s.deps.Store.SaveWorldPath(ctx, path); err != nil {
		return nil, fmt.Errorf("failed to save world path: %w", err)
	}

	s.deps.Metrics.WorldPathsGenerated.Inc()
	s.logger.Info("World path generated",
		zap.String("ownerID", ownerID),
		zap.String("pathID", path.ID),
		zap.Int("world", world.Sequence),
		zap.Int("levels", path.LevelCount),
		zap.Int("miniBoss", path.MiniBossPosition))
	publish(ctx, s.deps.Publisher, s.logger, events.Event{
		Type:       events.TypeWorldPathGenerated,
		OwnerID:    ownerID,
		PathID:     path.ID,
		Payload:    map[string]any{"world": world.Sequence, "levels": path.LevelCount},
		OccurredAt: s.deps.Now().UTC(),
	})
	return path, nil
}

// GetWorldPath returns one of the owner's paths with stale objectives replaced.
func (s *WorldPathService) GetWorldPath(ctx context.Context, ownerID, pathID string) (*models.WorldPath, error) {
	unlock, err := s.deps.Locks.Lock(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock owner: %w", err)
	}
	defer unlock()

	path, err := s.loadOwnedPath(ctx, ownerID, pathID)
	if err != nil {
		return nil, err
	}
	snap, err := s.objectives.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var changed []*models.Level
	for _, l := range path.Levels {
		if l.Status == models.StatusCompleted {
			continue
		}
		if _, regenerated := s.resolveLevel(ownerID, path, l, snap); regenerated {
			changed = append(changed, l)
		}
	}
	if len(changed) > 0 {
		if err := s.deps.Store.SaveLevelStates(ctx, path, changed); err != nil {
			return nil, fmt.Errorf("failed to save regenerated objectives: %w", err)
		}
	}
	return path, nil
}

// CompleteLevel completes an unlocked level whose objectives are all met and
// unlocks every level at the next position. Completing the boss level
// completes the world.
func (s *WorldPathService) CompleteLevel(ctx context.Context, ownerID, pathID, levelID string) (*LevelCompletion, error) {
	unlock, err := s.deps.Locks.Lock(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock owner: %w", err)
	}
	defer unlock()

	path, err := s.loadOwnedPath(ctx, ownerID, pathID)
	if err != nil {
		return nil, err
	}

	level := path.Level(levelID)
	switch {
	case level == nil:
		return nil, s.rejected(ownerID, reject(ErrUnknownLevel, CodeUnknownLevel, "unknown level %q", levelID))
	case level.Status == models.StatusLocked:
		return nil, s.rejected(ownerID, reject(ErrLevelLocked, CodeLevelLocked, "level %s is still locked", levelID))
	case level.Status == models.StatusCompleted:
		return nil, s.rejected(ownerID, reject(ErrAlreadyCompleted, CodeAlreadyCompleted, "level %s is already completed", levelID))
	}

	snap, err := s.objectives.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	met, regenerated := s.resolveLevel(ownerID, path, level, snap)
	if !met {
		if regenerated {
			if err := s.deps.Store.SaveLevelStates(ctx, path, []*models.Level{level}); err != nil {
				return nil, fmt.Errorf("failed to save regenerated objectives: %w", err)
			}
		}
		return nil, s.rejected(ownerID, reject(ErrObjectiveIncomplete, CodeObjectiveIncomplete,
			"objectives of level %s are not met", levelID))
	}

	level.Status = models.StatusCompleted
	changed := []*models.Level{level}
	var unlocked []string
	for _, next := range path.LevelsAt(level.Position + 1) {
		if next.Status != models.StatusLocked {
			continue
		}
		next.Status = models.StatusUnlocked
		changed = append(changed, next)
		unlocked = append(unlocked, next.ID)
	}
	if level.Type == models.LevelBoss {
		path.Completed = true
	}

	if err := s.deps.Store.SaveLevelStates(ctx, path, changed); err != nil {
		return nil, fmt.Errorf("failed to save level completion: %w", err)
	}

	now := s.deps.Now().UTC()
	s.deps.Metrics.LevelsCompleted.WithLabelValues(string(level.Type)).Inc()
	s.logger.Info("Level completed",
		zap.String("ownerID", ownerID),
		zap.String("pathID", path.ID),
		zap.String("level", level.ID),
		zap.String("type", string(level.Type)),
		zap.Int("reward", level.Reward))
	publish(ctx, s.deps.Publisher, s.logger, events.Event{
		Type:       events.TypeLevelCompleted,
		OwnerID:    ownerID,
		PathID:     path.ID,
		LevelID:    level.ID,
		Payload:    map[string]any{"reward": level.Reward, "type": string(level.Type)},
		OccurredAt: now,
	})
	if path.Completed {
		publish(ctx, s.deps.Publisher, s.logger, events.Event{
			Type:       events.TypeWorldCompleted,
			OwnerID:    ownerID,
			PathID:     path.ID,
			Payload:    map[string]any{"world": path.WorldSequence},
			OccurredAt: now,
		})
	}

	return &LevelCompletion{
		Path:           path,
		Level:          level,
		Unlocked:       unlocked,
		WorldCompleted: path.Completed,
	}, nil
}

// resolveLevel resolves every objective of level in place and reports
// whether all are met and whether any was replaced.
func (s *WorldPathService) resolveLevel(ownerID string, path *models.WorldPath, level *models.Level, snap ownerSnapshot) (met, regenerated bool) {
	world := s.deps.Catalog.World(path.WorldSequence)
	met = true
	for i, o := range level.Objectives {
		res := s.objectives.resolve(ownerID, o, snap, world.Affinity, world.Difficulty)
		if res.Regenerated {
			level.Objectives[i] = res.Objective
			regenerated = true
		}
		if !res.Completed {
			met = false
		}
	}
	return met, regenerated
}

func (s *WorldPathService) loadOwnedPath(ctx context.Context, ownerID, pathID string) (*models.WorldPath, error) {
	path, err := s.deps.Store.LoadWorldPath(ctx, pathID)
	if err != nil {
		return nil, fmt.Errorf("failed to load world path: %w", err)
	}
	if path.OwnerID != ownerID {
		return nil, fmt.Errorf("world path %s: %w", pathID, persistence.ErrNotFound)
	}
	return path, nil
}

func (s *WorldPathService) rejected(ownerID string, rej *RejectionError) error {
	s.deps.Metrics.Rejections.WithLabelValues("level", rej.Code).Inc()
	s.logger.Debug("Request rejected", zap.String("ownerID", ownerID), zap.String("code", rej.Code), zap.String("reason", rej.Reason))
	return rej
}
