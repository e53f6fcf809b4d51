package objectives

import (
	"fmt"

	"taskrealm/server/models"
)

// Describe renders a goal as player-facing text.
func Describe(goal models.Goal) string {
	switch g := goal.(type) {
	case models.SpecificTask:
		return fmt.Sprintf("Complete task %s", g.TaskID)
	case models.DailyQuantity:
		return fmt.Sprintf("Complete %d %s today", g.Count, plural(g.Count, "task", "tasks"))
	case models.CategoryDiversity:
		return fmt.Sprintf("Complete tasks in %d different categories today", g.Categories)
	case models.PriorityClear:
		return fmt.Sprintf("Clear every %s priority task", PriorityName(g.Priority))
	case models.Streak:
		return fmt.Sprintf("Keep a %d-day completion streak", g.Days)
	case models.QuantityInWindow:
		return fmt.Sprintf("Complete %d tasks within %d days", g.Count, g.Days)
	case models.OverdueClear:
		return "Clear all overdue tasks"
	case models.MasterChallenge:
		return fmt.Sprintf("Master challenge: complete %d tasks across %d categories within %d days", g.Count, g.Categories, g.Days)
	default:
		return "Unknown objective"
	}
}

func describeTask(t models.Task) string {
	if t.Title == "" {
		return Describe(models.SpecificTask{TaskID: t.ID})
	}
	return fmt.Sprintf("Complete %q", t.Title)
}

// PriorityName returns the display name of a task priority.
func PriorityName(p int) string {
	switch p {
	case models.PriorityLow:
		return "low"
	case models.PriorityMedium:
		return "medium"
	case models.PriorityHigh:
		return "high"
	case models.PriorityUrgent:
		return "urgent"
	default:
		return fmt.Sprintf("level-%d", p)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
