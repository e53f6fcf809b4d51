package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"taskrealm/server/models"
	"taskrealm/server/objectives"
)

// ObjectiveService evaluates objectives against an owner's tasks and stats.
type ObjectiveService struct {
	deps   Deps
	logger *zap.Logger
}

// NewObjectiveService creates a new objective service
func NewObjectiveService(deps Deps) *ObjectiveService {
	deps = deps.withDefaults()
	return &ObjectiveService{deps: deps, logger: deps.Logger.Named("ObjectiveService")}
}

// ownerSnapshot is the task list and stats an evaluation runs against.
type ownerSnapshot struct {
	tasks []models.Task
	stats models.Stats
}

func (s *ObjectiveService) snapshot(ctx context.Context, ownerID string) (ownerSnapshot, error) {
	tasks, err := s.deps.Store.Tasks(ctx, ownerID)
	if err != nil {
		return ownerSnapshot{}, fmt.Errorf("failed to load tasks: %w", err)
	}
	stats, err := s.deps.Store.Stats(ctx, ownerID)
	if err != nil {
		return ownerSnapshot{}, fmt.Errorf("failed to load stats: %w", err)
	}
	return ownerSnapshot{tasks: tasks, stats: stats}, nil
}

// ValidateObjective reports whether o is still achievable for the owner.
func (s *ObjectiveService) ValidateObjective(ctx context.Context, ownerID string, o models.Objective) (bool, error) {
	snap, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return s.deps.Engine.Validate(o, snap.tasks, snap.stats), nil
}

// CheckObjectiveCompletion reports whether the owner has met o.
func (s *ObjectiveService) CheckObjectiveCompletion(ctx context.Context, ownerID string, o models.Objective) (bool, error) {
	snap, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return s.deps.Engine.CheckCompletion(o, snap.tasks, snap.stats), nil
}

// RegenerateObjective returns o while it is achievable, otherwise a
// replacement scaled by the theme's difficulty.
func (s *ObjectiveService) RegenerateObjective(ctx context.Context, ownerID string, o models.Objective, themeKey string) (models.Objective, error) {
	snap, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return models.Objective{}, err
	}
	if s.deps.Engine.Validate(o, snap.tasks, snap.stats) {
		return o, nil
	}
	theme := s.deps.Catalog.Theme(themeKey)
	next := s.deps.Engine.Regenerate(o, snap.tasks, theme.Affinity, theme.Difficulty)
	s.countRegeneration(ownerID, o, next)
	return next, nil
}

// resolve is the read-path evaluation shared by the traversal services.
func (s *ObjectiveService) resolve(ownerID string, o models.Objective, snap ownerSnapshot, themeTag string, difficulty float64) objectives.Resolution {
	res := s.deps.Engine.Resolve(o, snap.tasks, snap.stats, themeTag, difficulty)
	if res.Regenerated {
		s.countRegeneration(ownerID, o, res.Objective)
	}
	return res
}

func (s *ObjectiveService) countRegeneration(ownerID string, from, to models.Objective) {
	s.deps.Metrics.ObjectivesRegenerated.WithLabelValues(string(from.Kind)).Inc()
	s.logger.Debug("Objective regenerated",
		zap.String("ownerID", ownerID),
		zap.String("from", string(from.Kind)),
		zap.String("to", string(to.Kind)))
}

// SyncTask stores a task mirrored from the owner's to-do list. The owner
// always comes from the caller, never from the payload.
func (s *ObjectiveService) SyncTask(ctx context.Context, ownerID string, task models.Task) (*models.Task, error) {
	if task.ID == "" {
		return nil, ErrInvalidTask
	}
	task.OwnerID = ownerID
	if task.Completed && task.CompletedDate == nil {
		now := s.deps.Now()
		task.CompletedDate = &now
	}
	if !task.Completed {
		task.CompletedDate = nil
	}
	if err := s.deps.Store.SaveTask(ctx, &task); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}
	return &task, nil
}
