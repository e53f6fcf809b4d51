package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"taskrealm/server/catalog"
	"taskrealm/server/events"
	"taskrealm/server/generation"
	"taskrealm/server/models"
	"taskrealm/server/persistence"
)

// AdventureService runs free-roam areas: generation, movement and node
// completion with its unlock cascade.
type AdventureService struct {
	deps       Deps
	generator  *generation.AreaGenerator
	objectives *ObjectiveService
	logger     *zap.Logger
}

// CompletionResult describes a node completion.
type CompletionResult struct {
	Area          *models.Area     `json:"area"`
	Node          *models.Node     `json:"node"`
	Unlocked      []models.Coord   `json:"unlocked"`
	AreaCompleted bool             `json:"area_completed"`
	Progress      *models.Progress `json:"progress"`
}

// NewAdventureService creates a new adventure service
func NewAdventureService(deps Deps, generator *generation.AreaGenerator, objectives *ObjectiveService) *AdventureService {
	deps = deps.withDefaults()
	return &AdventureService{
		deps:       deps,
		generator:  generator,
		objectives: objectives,
		logger:     deps.Logger.Named("AdventureService"),
	}
}

// GenerateArea creates the owner's next area. An empty theme key picks the
// theme unlocked by the owner's completed area count.
func (s *AdventureService) GenerateArea(ctx context.Context, ownerID, themeKey string) (*models.Area, error) {
	unlock, err := s.deps.Locks.Lock(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock owner: %w", err)
	}
	defer unlock()

	return s.generateArea(ctx, ownerID, themeKey)
}

func (s *AdventureService) generateArea(ctx context.Context, ownerID, themeKey string) (*models.Area, error) {
	progress, err := s.loadOrNewProgress(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var theme catalog.Theme
	if themeKey == "" {
		theme = s.deps.Catalog.ThemeForLevel(progress.AreasCompleted + 1)
	} else {
		theme = s.deps.Catalog.Theme(themeKey)
	}

	latest, err := s.deps.Store.LatestAreaSequence(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read area sequence: %w", err)
	}
	snap, err := s.objectives.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	area := s.generator.Generate(ownerID, theme.Key)
	s.deps.Metrics.ObserveGeneration("area", start)
	area.Sequence = latest + 1
	s.attachObjectives(area, theme, snap.tasks)

	startNode := area.NodeOfType(models.NodeStart)
	progress.CurrentAreaID = area.ID
	progress.CurrentNode = startNode.Coord
	progress.UpdatedAt = s.deps.Now().UTC()

	if err := s.deps.Store.SaveAreaGraph(ctx, area, progress); err != nil {
		return nil, fmt.Errorf("failed to save area: %w", err)
	}

	s.deps.Metrics.AreasGenerated.Inc()
	s.logger.Info("Area generated",
		zap.String("ownerID", ownerID),
		zap.String("areaID", area.ID),
		zap.Int("sequence", area.Sequence),
		zap.String("theme", theme.Key),
		zap.Int("nodes", len(area.Nodes)))
	publish(ctx, s.deps.Publisher, s.logger, events.Event{
		Type:       events.TypeAreaGenerated,
		OwnerID:    ownerID,
		AreaID:     area.ID,
		Payload:    map[string]any{"sequence": area.Sequence, "theme": theme.Key},
		OccurredAt: progress.UpdatedAt,
	})
	return area, nil
}

// attachObjectives gives COMBAT nodes a task objective, preferring tasks
// that match the theme, and the BOSS node a master challenge.
func (s *AdventureService) attachObjectives(area *models.Area, theme catalog.Theme, tasks []models.Task) {
	for _, n := range area.SortedNodes() {
		var kind models.ObjectiveKind
		switch n.Type {
		case models.NodeCombat:
			kind = models.KindSpecificTask
		case models.NodeBoss:
			kind = models.KindMasterChallenge
		default:
			continue
		}
		o := s.deps.Engine.Build(kind, tasks, theme.Affinity, theme.Difficulty)
		n.Objective = &o
	}
}

// GetArea returns one of the owner's areas with stale objectives replaced.
func (s *AdventureService) GetArea(ctx context.Context, ownerID, areaID string) (*models.Area, error) {
	unlock, err := s.deps.Locks.Lock(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock owner: %w", err)
	}
	defer unlock()

	area, err := s.loadOwnedArea(ctx, ownerID, areaID)
	if err != nil {
		return nil, err
	}
	if err := s.healObjectives(ctx, ownerID, area); err != nil {
		return nil, err
	}
	return area, nil
}

// CurrentArea returns the area the owner is in, generating the next one when
// there is none or the current one is finished.
func (s *AdventureService) CurrentArea(ctx context.Context, ownerID string) (*models.Area, error) {
	unlock, err := s.deps.Locks.Lock(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock owner: %w", err)
	}
	defer unlock()

	progress, err := s.deps.Store.LoadProgress(ctx, ownerID)
	if errors.Is(err, persistence.ErrNotFound) || (err == nil && progress.CurrentAreaID == "") {
		return s.generateArea(ctx, ownerID, "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	area, err := s.loadOwnedArea(ctx, ownerID, progress.CurrentAreaID)
	if err != nil {
		return nil, err
	}
	if area.Completed {
		return s.generateArea(ctx, ownerID, "")
	}
	if err := s.healObjectives(ctx, ownerID, area); err != nil {
		return nil, err
	}
	return area, nil
}

// healObjectives replaces objectives on incomplete nodes that can no longer
// be met and persists the replacements.
func (s *AdventureService) healObjectives(ctx context.Context, ownerID string, area *models.Area) error {
	snap, err := s.objectives.snapshot(ctx, ownerID)
	if err != nil {
		return err
	}
	theme := s.deps.Catalog.Theme(area.ThemeKey)

	var changed []*models.Node
	for _, n := range area.SortedNodes() {
		if n.Completed || n.Objective == nil {
			continue
		}
		res := s.objectives.resolve(ownerID, *n.Objective, snap, theme.Affinity, theme.Difficulty)
		if res.Regenerated {
			o := res.Objective
			n.Objective = &o
			changed = append(changed, n)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	progress, err := s.deps.Store.LoadProgress(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	if err := s.deps.Store.SaveNodeStates(ctx, area, changed, progress); err != nil {
		return fmt.Errorf("failed to save regenerated objectives: %w", err)
	}
	return nil
}

// MoveToNode moves the owner to an unlocked node connected to the current
// one. Rejections leave all state untouched.
func (s *AdventureService) MoveToNode(ctx context.Context, ownerID, nodeKey string) (*models.Progress, error) {
	unlock, err := s.deps.Locks.Lock(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock owner: %w", err)
	}
	defer unlock()

	progress, area, err := s.loadPosition(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	target, rejection := s.lookupNode(area, nodeKey)
	if rejection != nil {
		return nil, s.rejected(ownerID, rejection)
	}
	current := area.Node(progress.CurrentNode)
	if current == nil || !current.ConnectedTo(target.Coord) {
		return nil, s.rejected(ownerID, reject(ErrNodeNotConnected, CodeNotConnected,
			"node %s is not connected to %s", target.Coord, progress.CurrentNode))
	}
	if !target.Unlocked {
		return nil, s.rejected(ownerID, reject(ErrNodeLocked, CodeNodeLocked,
			"node %s is still locked", target.Coord))
	}

	progress.CurrentNode = target.Coord
	progress.UpdatedAt = s.deps.Now().UTC()
	if err := s.deps.Store.SaveProgress(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}
	return progress, nil
}

// CompleteNode resolves the owner's current node once its objective is met,
// then unlocks every neighbour. Completing the BOSS completes the area.
func (s *AdventureService) CompleteNode(ctx context.Context, ownerID, nodeKey string) (*CompletionResult, error) {
	unlock, err := s.deps.Locks.Lock(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock owner: %w", err)
	}
	defer unlock()

	progress, area, err := s.loadPosition(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	node, rejection := s.lookupNode(area, nodeKey)
	if rejection != nil {
		return nil, s.rejected(ownerID, rejection)
	}
	switch {
	case node.Coord != progress.CurrentNode:
		return nil, s.rejected(ownerID, reject(ErrNotCurrentNode, CodeNotCurrentNode,
			"node %s is not the current node %s", node.Coord, progress.CurrentNode))
	case !node.Unlocked:
		return nil, s.rejected(ownerID, reject(ErrNodeLocked, CodeNodeLocked,
			"node %s is still locked", node.Coord))
	case node.Completed:
		return nil, s.rejected(ownerID, reject(ErrAlreadyCompleted, CodeAlreadyCompleted,
			"node %s is already completed", node.Coord))
	}

	if node.Objective != nil {
		snap, err := s.objectives.snapshot(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		theme := s.deps.Catalog.Theme(area.ThemeKey)
		res := s.objectives.resolve(ownerID, *node.Objective, snap, theme.Affinity, theme.Difficulty)
		if res.Regenerated {
			o := res.Objective
			node.Objective = &o
		}
		if !res.Completed {
			if res.Regenerated {
				if err := s.deps.Store.SaveNodeStates(ctx, area, []*models.Node{node}, progress); err != nil {
					return nil, fmt.Errorf("failed to save regenerated objective: %w", err)
				}
			}
			return nil, s.rejected(ownerID, reject(ErrObjectiveIncomplete, CodeObjectiveIncomplete,
				"objective not met: %s", node.Objective.Description))
		}
	}

	node.Completed = true
	changed := []*models.Node{node}
	var unlocked []models.Coord
	for _, c := range node.Connections {
		neighbour := area.Node(c)
		if neighbour == nil || neighbour.Unlocked {
			continue
		}
		neighbour.Unlocked = true
		changed = append(changed, neighbour)
		unlocked = append(unlocked, c)
	}

	area.NodesExplored++
	progress.NodesExplored++
	if node.Type == models.NodeBoss {
		area.Completed = true
		progress.AreasCompleted++
		progress.BossesDefeated++
	}
	progress.UpdatedAt = s.deps.Now().UTC()

	if err := s.deps.Store.SaveNodeStates(ctx, area, changed, progress); err != nil {
		return nil, fmt.Errorf("failed to save node completion: %w", err)
	}

	s.deps.Metrics.NodesCompleted.WithLabelValues(string(node.Type)).Inc()
	s.logger.Info("Node completed",
		zap.String("ownerID", ownerID),
		zap.String("areaID", area.ID),
		zap.String("node", node.Key()),
		zap.String("type", string(node.Type)),
		zap.Int("unlocked", len(unlocked)))

	publish(ctx, s.deps.Publisher, s.logger, events.Event{
		Type:       events.TypeNodeCompleted,
		OwnerID:    ownerID,
		AreaID:     area.ID,
		NodeKey:    node.Key(),
		NodeType:   string(node.Type),
		OccurredAt: progress.UpdatedAt,
	})
	if area.Completed {
		publish(ctx, s.deps.Publisher, s.logger, events.Event{
			Type:       events.TypeAreaCompleted,
			OwnerID:    ownerID,
			AreaID:     area.ID,
			Payload:    map[string]any{"areas_completed": progress.AreasCompleted},
			OccurredAt: progress.UpdatedAt,
		})
	}

	return &CompletionResult{
		Area:          area,
		Node:          node,
		Unlocked:      unlocked,
		AreaCompleted: area.Completed,
		Progress:      progress,
	}, nil
}

// Progress returns the owner's progress record.
func (s *AdventureService) Progress(ctx context.Context, ownerID string) (*models.Progress, error) {
	progress, err := s.deps.Store.LoadProgress(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	return progress, nil
}

func (s *AdventureService) loadOrNewProgress(ctx context.Context, ownerID string) (*models.Progress, error) {
	progress, err := s.deps.Store.LoadProgress(ctx, ownerID)
	if errors.Is(err, persistence.ErrNotFound) {
		return &models.Progress{OwnerID: ownerID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	return progress, nil
}

func (s *AdventureService) loadPosition(ctx context.Context, ownerID string) (*models.Progress, *models.Area, error) {
	progress, err := s.deps.Store.LoadProgress(ctx, ownerID)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, nil, ErrNoArea
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load progress: %w", err)
	}
	if progress.CurrentAreaID == "" {
		return nil, nil, ErrNoArea
	}
	area, err := s.loadOwnedArea(ctx, ownerID, progress.CurrentAreaID)
	if err != nil {
		return nil, nil, err
	}
	return progress, area, nil
}

func (s *AdventureService) loadOwnedArea(ctx context.Context, ownerID, areaID string) (*models.Area, error) {
	area, err := s.deps.Store.LoadArea(ctx, areaID)
	if err != nil {
		return nil, fmt.Errorf("failed to load area: %w", err)
	}
	if area.OwnerID != ownerID {
		return nil, fmt.Errorf("area %s: %w", areaID, persistence.ErrNotFound)
	}
	return area, nil
}

func (s *AdventureService) lookupNode(area *models.Area, nodeKey string) (*models.Node, *RejectionError) {
	c, err := models.ParseCoord(nodeKey)
	if err != nil {
		return nil, reject(ErrUnknownNode, CodeUnknownNode, "unknown node %q", nodeKey)
	}
	node := area.Node(c)
	if node == nil {
		return nil, reject(ErrUnknownNode, CodeUnknownNode, "unknown node %q", nodeKey)
	}
	return node, nil
}

func (s *AdventureService) rejected(ownerID string, rej *RejectionError) error {
	s.deps.Metrics.Rejections.WithLabelValues("node", rej.Code).Inc()
	s.logger.Debug("Request rejected", zap.String("ownerID", ownerID), zap.String("code", rej.Code), zap.String("reason", rej.Reason))
	return rej
}
