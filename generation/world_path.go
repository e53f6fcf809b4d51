package generation

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"taskrealm/server/catalog"
	"taskrealm/server/models"
	"taskrealm/server/objectives"
	"taskrealm/server/random"
)

const (
	MinLevels = 8
	MaxLevels = 12
	MaxLanes  = 4

	// earliest mini-boss position; it also never sits in the last two
	earliestMiniBoss = 4
)

// Base rewards per level type before the world difficulty multiplier.
const (
	RewardRegular  = 50
	RewardMiniBoss = 150
	RewardBoss     = 400
)

// WorldPathGenerator builds linear multi-lane ("diamond") world paths.
type WorldPathGenerator struct {
	rng     random.RNG
	engine  *objectives.Engine
	catalog *catalog.Catalog
	now     func() time.Time
}

func NewWorldPathGenerator(rng random.RNG, engine *objectives.Engine, cat *catalog.Catalog) *WorldPathGenerator {
	return &WorldPathGenerator{rng: rng, engine: engine, catalog: cat, now: time.Now}
}

// Generate lays out a path for world. Lanes fully converge at the mini-boss
// and at the boss; every position is fully joined to the next.
func (wg *WorldPathGenerator) Generate(world catalog.World, tasks []models.Task) *models.WorldPath {
	levelCount := random.Between(wg.rng, MinLevels, MaxLevels)
	miniBoss := random.Between(wg.rng, earliestMiniBoss, levelCount-2)

	path := &models.WorldPath{
		ID:               uuid.NewString(),
		WorldSequence:    world.Sequence,
		ThemeKey:         world.ThemeKey,
		LevelCount:       levelCount,
		MiniBossPosition: miniBoss,
		CreatedAt:        wg.now().UTC(),
	}

	pool := objectives.FilterByTheme(tasks, world.Affinity)
	var prev []*models.Level
	for pos := 1; pos <= levelCount; pos++ {
		lanes := LaneCount(wg.rng, pos, levelCount, miniBoss)
		current := make([]*models.Level, 0, lanes)
		for lane := 0; lane < lanes; lane++ {
			level := &models.Level{
				ID:        fmt.Sprintf("p%d-l%d", pos, lane),
				Position:  pos,
				Lane:      lane,
				LaneCount: lanes,
				Offset:    float64(lane) - float64(lanes-1)/2,
				Status:    models.StatusLocked,
			}
			if lanes > 1 {
				level.BranchID = fmt.Sprintf("p%d", pos)
			}
			if pos == 1 {
				level.Status = models.StatusUnlocked
			}
			wg.populate(level, path, world, pool, tasks)
			current = append(current, level)
		}

		for _, a := range prev {
			for _, b := range current {
				path.Connections = append(path.Connections, models.Connection{From: a.ID, To: b.ID})
			}
		}
		path.Levels = append(path.Levels, current...)
		prev = current
	}
	return path
}

// LaneCount returns the number of parallel lanes at position. The first two
// positions, the position before the mini-boss, the mini-boss itself and the
// last two positions are single-lane; elsewhere the width depends on how far
// through the world the position sits.
func LaneCount(rng random.RNG, position, levelCount, miniBoss int) int {
	switch {
	case position <= 2,
		position == miniBoss-1,
		position == miniBoss,
		position >= levelCount-1:
		return 1
	}

	progress := float64(position) / float64(levelCount)
	if position < miniBoss {
		switch {
		case progress <= 0.3:
			return random.Between(rng, 2, 3)
		case progress <= 0.6:
			return random.Between(rng, 2, MaxLanes)
		}
	}
	return random.Between(rng, 2, 3)
}

// populate types a level and attaches its enemy, reward and objectives.
// Regular levels draw from the theme pool; the checkpoint challenges span
// categories, so they draw from every task.
func (wg *WorldPathGenerator) populate(level *models.Level, path *models.WorldPath, world catalog.World, pool, tasks []models.Task) {
	difficulty := math.Max(world.Difficulty, 1)

	switch level.Position {
	case path.LevelCount:
		level.Type = models.LevelBoss
		boss := world.Boss.Scaled(difficulty)
		level.Enemy = &boss
		level.Reward = reward(RewardBoss, difficulty)
		level.Objectives = []models.Objective{wg.build(models.KindMasterChallenge, tasks, world)}
	case path.MiniBossPosition:
		level.Type = models.LevelMiniBoss
		templates := wg.catalog.MiniBossTemplates()
		scale := difficulty * (1 + float64(level.Position)/float64(path.LevelCount))
		enemy := templates[wg.rng.Intn(len(templates))].Scaled(scale)
		level.Enemy = &enemy
		level.Reward = reward(RewardMiniBoss, difficulty)
		level.Objectives = []models.Objective{wg.build(models.KindQuantityInWindow, tasks, world)}
	default:
		level.Type = models.LevelRegular
		level.Reward = reward(RewardRegular, difficulty)
		level.Objectives = wg.regularObjectives(level.LaneCount, pool, world)
	}
}

// extraKinds are the objective kinds a regular level may stack on top of its
// primary task objective.
var extraKinds = []models.ObjectiveKind{
	models.KindDailyQuantity,
	models.KindCategoryDiversity,
	models.KindPriorityClear,
	models.KindQuantityInWindow,
	models.KindStreak,
}

// regularObjectives yields one objective, or two to three with a chance that
// grows with lane count and world difficulty.
func (wg *WorldPathGenerator) regularObjectives(lanes int, pool []models.Task, world catalog.World) []models.Objective {
	if len(pool) == 0 {
		return []models.Objective{objectives.Fallback()}
	}

	out := []models.Objective{wg.build(models.KindSpecificTask, pool, world)}
	if !random.Chance(wg.rng, MultiObjectiveChance(lanes, world.Difficulty)) {
		return out
	}

	n := random.Between(wg.rng, 2, 3)
	kinds := append([]models.ObjectiveKind(nil), extraKinds...)
	wg.rng.Shuffle(len(kinds), func(i, j int) { kinds[i], kinds[j] = kinds[j], kinds[i] })
	for _, kind := range kinds[:n-1] {
		out = append(out, wg.build(kind, pool, world))
	}
	return out
}

func (wg *WorldPathGenerator) build(kind models.ObjectiveKind, pool []models.Task, world catalog.World) models.Objective {
	if len(pool) == 0 {
		return objectives.Fallback()
	}
	return wg.engine.Build(kind, pool, world.Affinity, world.Difficulty)
}

// MultiObjectiveChance is the probability that a regular level carries more
// than one objective.
func MultiObjectiveChance(lanes int, difficulty float64) float64 {
	p := 0.1 + 0.15*float64(lanes-1) + 0.25*(difficulty-1)
	return math.Min(math.Max(p, 0), 0.75)
}

func reward(base int, difficulty float64) int {
	return int(math.Round(float64(base) * difficulty))
}
