package root

import (
	"fmt"
	"io"
	"strings"

	"taskrealm/server/models"
	"taskrealm/server/objectives"
)

// renderArea draws the grid with node glyphs and "-" / "|" for edges.
// Row 0 is printed first.
func renderArea(w io.Writer, area *models.Area, size int) {
	for y := 0; y < size; y++ {
		var cells, links strings.Builder
		for x := 0; x < size; x++ {
			c := models.Coord{X: x, Y: y}
			node := area.Node(c)
			if node == nil {
				cells.WriteString(Muted.Render("."))
			} else {
				cells.WriteString(nodeGlyph(node.Type))
			}
			if x < size-1 {
				if node != nil && node.ConnectedTo(models.Coord{X: x + 1, Y: y}) {
					cells.WriteString("-")
				} else {
					cells.WriteString(" ")
				}
			}
			if node != nil && node.ConnectedTo(models.Coord{X: x, Y: y + 1}) {
				links.WriteString("|")
			} else {
				links.WriteString(" ")
			}
			if x < size-1 {
				links.WriteString(" ")
			}
		}
		fmt.Fprintln(w, cells.String())
		if y < size-1 {
			fmt.Fprintln(w, strings.TrimRight(links.String(), " "))
		}
	}
}

// renderNodeCounts prints how many nodes of each type the area holds.
func renderNodeCounts(w io.Writer, area *models.Area) {
	counts := map[models.NodeType]int{}
	for _, n := range area.Nodes {
		counts[n.Type]++
	}
	order := []models.NodeType{
		models.NodeStart, models.NodeBoss, models.NodeShop,
		models.NodeCombat, models.NodeTreasure, models.NodeEvent,
	}
	parts := make([]string, 0, len(order))
	for _, t := range order {
		parts = append(parts, fmt.Sprintf("%s %d", t, counts[t]))
	}
	fmt.Fprintf(w, "%d nodes: %s\n", len(area.Nodes), strings.Join(parts, ", "))
}

// renderWorldPath prints one line per position with its lanes.
func renderWorldPath(w io.Writer, path *models.WorldPath) {
	for pos := 1; pos <= path.LevelCount; pos++ {
		levels := path.LevelsAt(pos)
		fmt.Fprintf(w, "%2d ", pos)
		for i, l := range levels {
			if i > 0 {
				fmt.Fprint(w, "  ")
			}
			fmt.Fprint(w, levelGlyph(l.Type))
		}
		fmt.Fprintln(w)
		for _, l := range levels {
			descs := make([]string, 0, len(l.Objectives))
			for _, o := range l.Objectives {
				descs = append(descs, objectives.Describe(o.Goal))
			}
			line := fmt.Sprintf("     %s %s reward %d: %s", l.ID, l.Status, l.Reward, strings.Join(descs, "; "))
			if l.Enemy != nil {
				line += fmt.Sprintf(" (vs %s, %d hp)", l.Enemy.Name, l.Enemy.HP)
			}
			fmt.Fprintln(w, Muted.Render(line))
		}
	}
}
