package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"taskrealm/server/models"
)

func TestSummarizeCompletions(t *testing.T) {
	now := time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)
	day := func(offset int, hour int) time.Time {
		return time.Date(2025, 3, 12+offset, hour, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name        string
		completions []time.Time
		want        models.Stats
	}{
		{"nothing", nil, models.Stats{}},
		{
			"streak through today",
			[]time.Time{day(0, 9), day(0, 11), day(-1, 8), day(-2, 20)},
			models.Stats{CurrentStreak: 3, CompletedToday: 2, CompletedThisWeek: 4},
		},
		{
			"streak ending yesterday still counts",
			[]time.Time{day(-1, 8), day(-2, 8)},
			models.Stats{CurrentStreak: 2, CompletedThisWeek: 2},
		},
		{
			"gap breaks streak",
			[]time.Time{day(0, 8), day(-2, 8), day(-3, 8)},
			models.Stats{CurrentStreak: 1, CompletedToday: 1, CompletedThisWeek: 3},
		},
		{
			"week window is seven calendar days",
			[]time.Time{day(-6, 1), day(-7, 23)},
			models.Stats{CompletedThisWeek: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SummarizeCompletions(tt.completions, now))
		})
	}
}

func TestCompletionTimesSkipsOpenTasks(t *testing.T) {
	at := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		{ID: "1", Completed: true, CompletedDate: &at},
		{ID: "2", Completed: false, CompletedDate: &at},
		{ID: "3", Completed: true},
	}
	assert.Equal(t, []time.Time{at}, completionTimes(tasks))
}
