package objectives

import (
	"math"

	"taskrealm/server/models"
	"taskrealm/server/random"
)

// Fallback is the generic objective used whenever nothing better can be built.
func Fallback() models.Objective {
	goal := models.DailyQuantity{Count: 1}
	return models.NewObjective(goal, Describe(goal))
}

// Regenerate returns o unchanged while it is achievable; otherwise it builds a
// replacement of the same kind where the task pool allows, falling back to
// simpler kinds and finally to Fallback.
func (e *Engine) Regenerate(o models.Objective, tasks []models.Task, themeTag string, difficulty float64) models.Objective {
	if e.Validate(o, tasks, models.Stats{}) {
		return o
	}

	difficulty = normalizeDifficulty(difficulty)
	switch g := o.Goal.(type) {
	case models.SpecificTask:
		return e.specificTask(tasks, themeTag, g.TaskID)
	case models.DailyQuantity:
		return e.dailyQuantity(tasks, difficulty)
	case models.CategoryDiversity:
		return e.categoryDiversity(tasks, difficulty)
	case models.PriorityClear:
		return e.priorityClear(tasks, difficulty)
	case models.Streak:
		return e.streak(difficulty)
	case models.QuantityInWindow:
		return e.quantityInWindow(tasks, difficulty)
	case models.OverdueClear:
		return e.dailyQuantity(tasks, difficulty)
	case models.MasterChallenge:
		return e.masterChallenge(tasks, difficulty)
	default:
		return Fallback()
	}
}

// Build constructs a fresh objective of kind from the task pool. Kinds the
// pool cannot support degrade the same way Regenerate does.
func (e *Engine) Build(kind models.ObjectiveKind, tasks []models.Task, themeTag string, difficulty float64) models.Objective {
	difficulty = normalizeDifficulty(difficulty)
	switch kind {
	case models.KindSpecificTask:
		return e.specificTask(tasks, themeTag, "")
	case models.KindDailyQuantity:
		return e.dailyQuantity(tasks, difficulty)
	case models.KindCategoryDiversity:
		return e.categoryDiversity(tasks, difficulty)
	case models.KindPriorityClear:
		return e.priorityClear(tasks, difficulty)
	case models.KindStreak:
		return e.streak(difficulty)
	case models.KindQuantityInWindow:
		return e.quantityInWindow(tasks, difficulty)
	case models.KindOverdueClear:
		if count(tasks, func(t models.Task) bool { return overdue(t, e.now()) && !t.Completed }) > 0 {
			goal := models.OverdueClear{}
			return models.NewObjective(goal, Describe(goal))
		}
		return e.dailyQuantity(tasks, difficulty)
	case models.KindMasterChallenge:
		return e.masterChallenge(tasks, difficulty)
	default:
		return Fallback()
	}
}

// specificTask prefers an open theme-matching task, then any open task,
// never the excluded id.
func (e *Engine) specificTask(tasks []models.Task, themeTag, exclude string) models.Objective {
	var open, themed []models.Task
	for _, t := range incomplete(tasks) {
		if t.ID == exclude {
			continue
		}
		open = append(open, t)
		if themeTag != "" && MatchesTheme(t, themeTag) {
			themed = append(themed, t)
		}
	}

	candidates := themed
	if len(candidates) == 0 {
		candidates = open
	}
	if len(candidates) == 0 {
		return Fallback()
	}
	task := candidates[e.rng.Intn(len(candidates))]
	goal := models.SpecificTask{TaskID: task.ID}
	return models.NewObjective(goal, describeTask(task))
}

func (e *Engine) dailyQuantity(tasks []models.Task, difficulty float64) models.Objective {
	open := len(incomplete(tasks))
	if open == 0 {
		return Fallback()
	}
	n := clamp(scale(random.Between(e.rng, 1, 3), difficulty), 1, 10)
	n = min(n, open)
	goal := models.DailyQuantity{Count: n}
	return models.NewObjective(goal, Describe(goal))
}

func (e *Engine) categoryDiversity(tasks []models.Task, difficulty float64) models.Objective {
	available := distinctCategories(tasks, func(t models.Task) bool { return !t.Completed })
	if available < 2 {
		return e.dailyQuantity(tasks, difficulty)
	}
	n := clamp(scale(2, difficulty)+e.rng.Intn(2), 2, 4)
	n = min(n, available)
	goal := models.CategoryDiversity{Categories: n}
	return models.NewObjective(goal, Describe(goal))
}

func (e *Engine) priorityClear(tasks []models.Task, difficulty float64) models.Objective {
	best := 0
	for _, t := range incomplete(tasks) {
		if t.Priority > best {
			best = t.Priority
		}
	}
	if best == 0 {
		return e.dailyQuantity(tasks, difficulty)
	}
	goal := models.PriorityClear{Priority: best}
	return models.NewObjective(goal, Describe(goal))
}

func (e *Engine) streak(difficulty float64) models.Objective {
	goal := models.Streak{Days: clamp(scale(random.Between(e.rng, 2, 4), difficulty), 2, 14)}
	return models.NewObjective(goal, Describe(goal))
}

func (e *Engine) quantityInWindow(tasks []models.Task, difficulty float64) models.Objective {
	now := e.now()
	days := random.Between(e.rng, 3, 7)
	achievable := count(tasks, func(t models.Task) bool { return !t.Completed || completedWithin(t, days, now) })
	if achievable < 2 {
		return e.dailyQuantity(tasks, difficulty)
	}
	n := clamp(scale(random.Between(e.rng, 3, 5), difficulty), 2, 15)
	n = min(n, achievable)
	goal := models.QuantityInWindow{Count: n, Days: days}
	return models.NewObjective(goal, Describe(goal))
}

func (e *Engine) masterChallenge(tasks []models.Task, difficulty float64) models.Objective {
	now := e.now()
	const days = 7
	inPlay := func(t models.Task) bool { return !t.Completed || completedWithin(t, days, now) }
	achievable := count(tasks, inPlay)
	categories := distinctCategories(tasks, inPlay)
	if achievable < 3 || categories < 2 {
		return e.quantityInWindow(tasks, difficulty)
	}
	goal := models.MasterChallenge{
		Count:      min(clamp(scale(5, difficulty), 3, 20), achievable),
		Categories: min(clamp(scale(2, difficulty), 2, 4), categories),
		Days:       days,
	}
	return models.NewObjective(goal, Describe(goal))
}

func normalizeDifficulty(d float64) float64 {
	if d < 1 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 1
	}
	return d
}

func scale(base int, difficulty float64) int {
	return int(math.Round(float64(base) * difficulty))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
