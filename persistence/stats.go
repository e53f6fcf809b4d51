package persistence

import (
	"time"

	"taskrealm/server/models"
)

// SummarizeCompletions derives the stats counters from completion timestamps.
// The streak counts consecutive days with at least one completion, ending
// today, or yesterday when nothing has been completed yet today.
func SummarizeCompletions(completions []time.Time, now time.Time) models.Stats {
	today := dayOf(now)
	weekStart := today.AddDate(0, 0, -6)

	var stats models.Stats
	days := make(map[time.Time]bool, len(completions))
	for _, c := range completions {
		d := dayOf(c.In(now.Location()))
		days[d] = true
		if d.Equal(today) {
			stats.CompletedToday++
		}
		if !d.Before(weekStart) && !d.After(today) {
			stats.CompletedThisWeek++
		}
	}

	cursor := today
	if !days[cursor] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	for days[cursor] {
		stats.CurrentStreak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return stats
}

func completionTimes(tasks []models.Task) []time.Time {
	var out []time.Time
	for _, t := range tasks {
		if t.Completed && t.CompletedDate != nil {
			out = append(out, *t.CompletedDate)
		}
	}
	return out
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
