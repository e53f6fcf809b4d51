package root

import (
	"github.com/charmbracelet/lipgloss"

	"taskrealm/server/models"
)

var (
	cGood  = lipgloss.Color("42")
	cBad   = lipgloss.Color("196")
	cMuted = lipgloss.Color("244")
	cGold  = lipgloss.Color("220")
	cWarn  = lipgloss.Color("214")
)

var (
	Title = lipgloss.NewStyle().Bold(true)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
)

// themeTitle renders s in a theme's primary colour.
func themeTitle(s, color string) string {
	return Title.Foreground(lipgloss.Color(color)).Render(s)
}

var nodeGlyphs = map[models.NodeType]string{
	models.NodeStart:    "S",
	models.NodeBoss:     "B",
	models.NodeShop:     "$",
	models.NodeCombat:   "C",
	models.NodeTreasure: "T",
	models.NodeEvent:    "E",
}

func nodeGlyph(t models.NodeType) string {
	g := nodeGlyphs[t]
	switch t {
	case models.NodeStart:
		return Good.Render(g)
	case models.NodeBoss:
		return Bad.Render(g)
	case models.NodeShop, models.NodeTreasure:
		return Gold.Render(g)
	case models.NodeEvent:
		return Warn.Render(g)
	default:
		return g
	}
}

func levelGlyph(t models.LevelType) string {
	switch t {
	case models.LevelBoss:
		return Bad.Render("[B]")
	case models.LevelMiniBoss:
		return Warn.Render("[M]")
	default:
		return "[ ]"
	}
}
