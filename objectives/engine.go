// Package objectives implements the rules behind task objectives: whether an
// objective can still be achieved, whether it has been met, and how to build a
// structurally similar replacement when it cannot.
//
// Every operation is a pure function of its inputs plus the injected clock and
// random source. None of them fail: an unknown objective kind is simply
// invalid and incomplete, and regeneration always yields an objective.
package objectives

import (
	"time"

	"taskrealm/server/models"
	"taskrealm/server/random"
)

// Engine evaluates and builds objectives.
type Engine struct {
	now func() time.Time
	rng random.RNG
}

// NewEngine returns an engine using rng for regeneration choices and now as
// the clock. A nil now uses time.Now.
func NewEngine(rng random.RNG, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now, rng: rng}
}

// Validate reports whether o is still achievable with the given task pool.
func (e *Engine) Validate(o models.Objective, tasks []models.Task, stats models.Stats) bool {
	now := e.now()
	open := func(t models.Task) bool { return !t.Completed }

	switch g := o.Goal.(type) {
	case models.SpecificTask:
		t, ok := findTask(tasks, g.TaskID)
		return ok && !t.Completed
	case models.DailyQuantity:
		if g.Count < 1 {
			return false
		}
		return count(tasks, func(t models.Task) bool { return open(t) || completedToday(t, now) }) >= g.Count
	case models.CategoryDiversity:
		if g.Categories < 1 {
			return false
		}
		return distinctCategories(tasks, func(t models.Task) bool { return open(t) || completedToday(t, now) }) >= g.Categories
	case models.PriorityClear:
		return count(tasks, func(t models.Task) bool { return open(t) && t.Priority == g.Priority }) > 0
	case models.Streak:
		return g.Days > 0
	case models.QuantityInWindow:
		if g.Count < 1 || g.Days < 1 {
			return false
		}
		return count(tasks, func(t models.Task) bool { return open(t) || completedWithin(t, g.Days, now) }) >= g.Count
	case models.OverdueClear:
		return count(tasks, func(t models.Task) bool { return overdue(t, now) }) > 0
	case models.MasterChallenge:
		if g.Count < 1 || g.Days < 1 {
			return false
		}
		inPlay := func(t models.Task) bool { return open(t) || completedWithin(t, g.Days, now) }
		return count(tasks, inPlay) >= g.Count && distinctCategories(tasks, inPlay) >= g.Categories
	default:
		return false
	}
}

// CheckCompletion reports whether o has been met.
func (e *Engine) CheckCompletion(o models.Objective, tasks []models.Task, stats models.Stats) bool {
	now := e.now()

	switch g := o.Goal.(type) {
	case models.SpecificTask:
		t, ok := findTask(tasks, g.TaskID)
		return ok && t.Completed
	case models.DailyQuantity:
		return g.Count > 0 && count(tasks, func(t models.Task) bool { return completedToday(t, now) }) >= g.Count
	case models.CategoryDiversity:
		return g.Categories > 0 && distinctCategories(tasks, func(t models.Task) bool { return completedToday(t, now) }) >= g.Categories
	case models.PriorityClear:
		atPriority := func(t models.Task) bool { return t.Priority == g.Priority }
		remaining := count(tasks, func(t models.Task) bool { return atPriority(t) && !t.Completed })
		done := count(tasks, func(t models.Task) bool { return atPriority(t) && t.Completed })
		return remaining == 0 && done > 0
	case models.Streak:
		return g.Days > 0 && stats.CurrentStreak >= g.Days
	case models.QuantityInWindow:
		return g.Count > 0 && count(tasks, func(t models.Task) bool { return completedWithin(t, g.Days, now) }) >= g.Count
	case models.OverdueClear:
		due := count(tasks, func(t models.Task) bool { return overdue(t, now) })
		pending := count(tasks, func(t models.Task) bool { return overdue(t, now) && !t.Completed })
		return due > 0 && pending == 0
	case models.MasterChallenge:
		inWindow := func(t models.Task) bool { return completedWithin(t, g.Days, now) }
		return g.Count > 0 && count(tasks, inWindow) >= g.Count && distinctCategories(tasks, inWindow) >= g.Categories
	default:
		return false
	}
}

// Resolution is the outcome of resolving an objective on a read path.
type Resolution struct {
	Objective   models.Objective
	Completed   bool
	Regenerated bool
}

// Resolve checks completion first, then validity, and regenerates only an
// objective that is both unmet and no longer achievable.
func (e *Engine) Resolve(o models.Objective, tasks []models.Task, stats models.Stats, themeTag string, difficulty float64) Resolution {
	if e.CheckCompletion(o, tasks, stats) {
		return Resolution{Objective: o, Completed: true}
	}
	if e.Validate(o, tasks, stats) {
		return Resolution{Objective: o}
	}
	next := e.Regenerate(o, tasks, themeTag, difficulty)
	return Resolution{
		Objective:   next,
		Completed:   e.CheckCompletion(next, tasks, stats),
		Regenerated: true,
	}
}
