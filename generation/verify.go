package generation

import (
	"errors"
	"fmt"

	"taskrealm/server/models"
)

// VerifyArea checks the structural invariants of a generated area: one START
// and one BOSS, in-bounds unique cells, symmetric edges, and every node
// reachable from START (BOSS included).
func VerifyArea(area *models.Area, size int) error {
	var start, boss *models.Node
	for c, n := range area.Nodes {
		if c != n.Coord {
			return fmt.Errorf("node %s stored under key %s", n.Coord, c)
		}
		if c.X < 0 || c.Y < 0 || c.X >= size || c.Y >= size {
			return fmt.Errorf("node %s out of bounds", c)
		}
		switch n.Type {
		case models.NodeStart:
			if start != nil {
				return errors.New("more than one START node")
			}
			start = n
		case models.NodeBoss:
			if boss != nil {
				return errors.New("more than one BOSS node")
			}
			boss = n
		}
		for _, other := range n.Connections {
			peer := area.Nodes[other]
			if peer == nil {
				return fmt.Errorf("node %s connects to missing node %s", c, other)
			}
			if !peer.ConnectedTo(c) {
				return fmt.Errorf("edge %s -> %s is not symmetric", c, other)
			}
		}
	}
	if start == nil || boss == nil {
		return errors.New("area needs exactly one START and one BOSS")
	}

	reached := Reachable(area, start.Coord)
	if !reached[boss.Coord] {
		return errors.New("BOSS is not reachable from START")
	}
	if len(reached) != len(area.Nodes) {
		return fmt.Errorf("%d of %d nodes reachable from START", len(reached), len(area.Nodes))
	}
	return nil
}

// Reachable returns every node reachable from origin by breadth-first search.
func Reachable(area *models.Area, origin models.Coord) map[models.Coord]bool {
	seen := map[models.Coord]bool{}
	if area.Node(origin) == nil {
		return seen
	}
	seen[origin] = true
	queue := []models.Coord{origin}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range area.Nodes[cur].Connections {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}

// VerifyWorldPath checks lane bounds, convergence at the mini-boss and final
// positions, full joins between consecutive positions and that every level
// carries an objective.
func VerifyWorldPath(path *models.WorldPath) error {
	if path.LevelCount < 1 || path.MiniBossPosition < 1 || path.MiniBossPosition > path.LevelCount {
		return fmt.Errorf("invalid layout: %d levels, mini-boss at %d", path.LevelCount, path.MiniBossPosition)
	}
	counts := path.LaneCounts()
	for pos := 1; pos <= path.LevelCount; pos++ {
		if counts[pos] < 1 || counts[pos] > MaxLanes {
			return fmt.Errorf("position %d has %d lanes", pos, counts[pos])
		}
	}
	if counts[path.MiniBossPosition] != 1 {
		return fmt.Errorf("mini-boss position %d has %d lanes", path.MiniBossPosition, counts[path.MiniBossPosition])
	}
	if counts[path.LevelCount] != 1 {
		return fmt.Errorf("final position has %d lanes", counts[path.LevelCount])
	}

	edges := make(map[models.Connection]bool, len(path.Connections))
	for _, c := range path.Connections {
		edges[c] = true
	}
	for pos := 1; pos < path.LevelCount; pos++ {
		for _, a := range path.LevelsAt(pos) {
			for _, b := range path.LevelsAt(pos + 1) {
				if !edges[models.Connection{From: a.ID, To: b.ID}] {
					return fmt.Errorf("missing connection %s -> %s", a.ID, b.ID)
				}
			}
		}
	}
	if want := expectedEdges(counts, path.LevelCount); want != len(path.Connections) {
		return fmt.Errorf("expected %d connections, got %d", want, len(path.Connections))
	}

	for _, l := range path.Levels {
		if len(l.Objectives) == 0 {
			return fmt.Errorf("level %s has no objectives", l.ID)
		}
	}
	return nil
}

func expectedEdges(counts []int, levelCount int) int {
	n := 0
	for pos := 1; pos < levelCount; pos++ {
		n += counts[pos] * counts[pos+1]
	}
	return n
}
