package objectives

import (
	"strings"
	"time"

	"taskrealm/server/models"
)

// MatchesTheme reports whether a task fits a theme affinity tag: its category
// equals the tag or its title mentions it. An empty tag matches everything.
func MatchesTheme(task models.Task, tag string) bool {
	tag = strings.TrimSpace(strings.ToLower(tag))
	if tag == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(task.Category), tag) {
		return true
	}
	return strings.Contains(strings.ToLower(task.Title), tag)
}

// FilterByTheme returns the tasks matching tag, or the whole pool when none do.
func FilterByTheme(tasks []models.Task, tag string) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if MatchesTheme(t, tag) {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return tasks
	}
	return out
}

func findTask(tasks []models.Task, id string) (models.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

func incomplete(tasks []models.Task) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

func startOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// completedWithin reports whether t was completed in the last days calendar
// days, today included.
func completedWithin(t models.Task, days int, now time.Time) bool {
	if !t.Completed || t.CompletedDate == nil || days < 1 {
		return false
	}
	from := startOfDay(now).AddDate(0, 0, -(days - 1))
	until := startOfDay(now).AddDate(0, 0, 1)
	cd := t.CompletedDate.In(now.Location())
	return !cd.Before(from) && cd.Before(until)
}

func completedToday(t models.Task, now time.Time) bool {
	return completedWithin(t, 1, now)
}

// overdue reports whether t was due before today.
func overdue(t models.Task, now time.Time) bool {
	return t.DueDate != nil && t.DueDate.In(now.Location()).Before(startOfDay(now))
}

func count(tasks []models.Task, keep func(models.Task) bool) int {
	n := 0
	for _, t := range tasks {
		if keep(t) {
			n++
		}
	}
	return n
}

func distinctCategories(tasks []models.Task, keep func(models.Task) bool) int {
	seen := make(map[string]struct{})
	for _, t := range tasks {
		if !keep(t) {
			continue
		}
		c := strings.ToLower(strings.TrimSpace(t.Category))
		if c == "" {
			continue
		}
		seen[c] = struct{}{}
	}
	return len(seen)
}
