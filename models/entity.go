package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Coord is a cell on an area grid. It is the node identity inside an Area.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Key encodes the coordinate for storage and the wire.
func (c Coord) Key() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

func (c Coord) String() string {
	return c.Key()
}

// Manhattan returns the grid distance between two coordinates.
func (c Coord) Manhattan(o Coord) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

// Neighbors returns the four orthogonal cells in a fixed order, bounds unchecked.
func (c Coord) Neighbors() []Coord {
	return []Coord{
		{X: c.X + 1, Y: c.Y},
		{X: c.X - 1, Y: c.Y},
		{X: c.X, Y: c.Y + 1},
		{X: c.X, Y: c.Y - 1},
	}
}

// ParseCoord decodes a key produced by Coord.Key.
func ParseCoord(key string) (Coord, error) {
	parts := strings.Split(key, ",")
	if len(parts) != 2 {
		return Coord{}, fmt.Errorf("invalid node key %q", key)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Coord{}, fmt.Errorf("invalid node key %q: %w", key, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Coord{}, fmt.Errorf("invalid node key %q: %w", key, err)
	}
	return Coord{X: x, Y: y}, nil
}

// Progress is the per-owner free-roam state.
type Progress struct {
	OwnerID        string    `json:"owner_id"`
	CurrentAreaID  string    `json:"current_area_id"`
	CurrentNode    Coord     `json:"current_node"`
	AreasCompleted int       `json:"areas_completed"`
	NodesExplored  int       `json:"nodes_explored"`
	BossesDefeated int       `json:"bosses_defeated"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Task priorities, lowest first.
const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
	PriorityUrgent = 4
)

// Task is a to-do item supplied by the task provider. The core only reads tasks.
type Task struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Title         string     `json:"title"`
	Category      string     `json:"category"`
	Priority      int        `json:"priority"`
	Completed     bool       `json:"completed"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
}

// Stats holds aggregate counters from the stats provider.
type Stats struct {
	CurrentStreak     int `json:"current_streak"`
	CompletedToday    int `json:"completed_today"`
	CompletedThisWeek int `json:"completed_this_week"`
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
