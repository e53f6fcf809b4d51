package models

import "time"

// LevelType classifies a world-path level.
type LevelType string

const (
	LevelRegular  LevelType = "regular"
	LevelMiniBoss LevelType = "mini_boss"
	LevelBoss     LevelType = "boss"
)

// LevelStatus is the traversal state of a level: locked -> unlocked -> completed.
type LevelStatus string

const (
	StatusLocked    LevelStatus = "locked"
	StatusUnlocked  LevelStatus = "unlocked"
	StatusCompleted LevelStatus = "completed"
)

// Enemy is the encounter attached to checkpoint levels.
type Enemy struct {
	Name    string `json:"name"`
	HP      int    `json:"hp"`
	Attack  int    `json:"attack"`
	Defense int    `json:"defense"`
}

// Level is one lane entry at one position of a world path.
type Level struct {
	ID         string      `json:"id"`
	Position   int         `json:"position"`
	Lane       int         `json:"lane"`
	LaneCount  int         `json:"lane_count"`
	Offset     float64     `json:"offset"`
	BranchID   string      `json:"branch_id,omitempty"`
	Type       LevelType   `json:"type"`
	Objectives []Objective `json:"objectives"`
	Reward     int         `json:"reward"`
	Status     LevelStatus `json:"status"`
	Enemy      *Enemy      `json:"enemy,omitempty"`
}

// Connection is a directed edge from a level to a level at the next position.
type Connection struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WorldPath is the generated linear, multi-lane graph of one world for one owner.
type WorldPath struct {
	ID               string       `json:"id"`
	OwnerID          string       `json:"owner_id"`
	WorldSequence    int          `json:"world_sequence"`
	ThemeKey         string       `json:"theme_key"`
	LevelCount       int          `json:"level_count"`
	MiniBossPosition int          `json:"mini_boss_position"`
	Levels           []*Level     `json:"levels"`
	Connections      []Connection `json:"connections"`
	Completed        bool         `json:"completed"`
	CreatedAt        time.Time    `json:"created_at"`
}

// Level returns the level with the given id, or nil.
func (w *WorldPath) Level(id string) *Level {
	for _, l := range w.Levels {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// LevelsAt returns the levels at a position ordered by lane.
func (w *WorldPath) LevelsAt(position int) []*Level {
	var out []*Level
	for _, l := range w.Levels {
		if l.Position == position {
			out = append(out, l)
		}
	}
	return out
}

// LaneCounts returns the lane count per position, indexed from 1.
func (w *WorldPath) LaneCounts() []int {
	counts := make([]int, w.LevelCount+1)
	for _, l := range w.Levels {
		if l.Position >= 1 && l.Position <= w.LevelCount {
			counts[l.Position]++
		}
	}
	return counts
}

// BranchPoints are positions with more than one lane.
func (w *WorldPath) BranchPoints() []int {
	counts := w.LaneCounts()
	var out []int
	for pos := 1; pos <= w.LevelCount; pos++ {
		if counts[pos] > 1 {
			out = append(out, pos)
		}
	}
	return out
}

// ConvergencePoints are positions with fewer lanes than the position before.
func (w *WorldPath) ConvergencePoints() []int {
	counts := w.LaneCounts()
	var out []int
	for pos := 2; pos <= w.LevelCount; pos++ {
		if counts[pos] < counts[pos-1] {
			out = append(out, pos)
		}
	}
	return out
}
