// Package catalog holds the static thematic data consumed by the generators:
// themes (ages), worlds, enemy and boss templates, reward pools.
//
// Every lookup is fail-soft. An unknown key resolves to a default entry so
// content resolution never blocks progression.
package catalog

import (
	"math"

	"taskrealm/server/models"
)

// DefaultThemeKey is returned for unknown theme keys.
const DefaultThemeKey = "stone_age"

// Colors is the display color pair of a theme.
type Colors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// EnemyTemplate is an unscaled enemy definition.
type EnemyTemplate struct {
	Name    string `json:"name"`
	HP      int    `json:"hp"`
	Attack  int    `json:"attack"`
	Defense int    `json:"defense"`
}

// Scaled returns the template as a concrete enemy with stats multiplied by factor.
func (t EnemyTemplate) Scaled(factor float64) models.Enemy {
	if factor < 1 {
		factor = 1
	}
	return models.Enemy{
		Name:    t.Name,
		HP:      int(math.Round(float64(t.HP) * factor)),
		Attack:  int(math.Round(float64(t.Attack) * factor)),
		Defense: int(math.Round(float64(t.Defense) * factor)),
	}
}

// Theme is the immutable thematic record of one age.
type Theme struct {
	Key        string          `json:"key"`
	Name       string          `json:"name"`
	Colors     Colors          `json:"colors"`
	Difficulty float64         `json:"difficulty"`
	Enemies    []EnemyTemplate `json:"enemies"`
	Boss       EnemyTemplate   `json:"boss"`
	RewardPool []string        `json:"reward_pool"`
	Affinity   string          `json:"affinity"`
	MinLevel   int             `json:"min_level"`
}

// World is one of the fixed world definitions a world path is generated from.
type World struct {
	Sequence   int           `json:"sequence"`
	ThemeKey   string        `json:"theme_key"`
	Name       string        `json:"name"`
	Difficulty float64       `json:"difficulty"`
	Boss       EnemyTemplate `json:"boss"`
	Affinity   string        `json:"affinity"`
}

// Catalog serves read-only lookups over the static tables.
type Catalog struct {
	themes   []Theme
	byKey    map[string]int
	worlds   []World
	miniBoss []EnemyTemplate
}

// New returns the built-in catalog.
func New() *Catalog {
	c := &Catalog{
		themes:   themes,
		byKey:    make(map[string]int, len(themes)),
		worlds:   worlds,
		miniBoss: miniBosses,
	}
	for i, t := range themes {
		c.byKey[t.Key] = i
	}
	return c
}

// Theme returns the theme for key, or the default theme for unknown keys.
func (c *Catalog) Theme(key string) Theme {
	if i, ok := c.byKey[key]; ok {
		return cloneTheme(c.themes[i])
	}
	return cloneTheme(c.themes[c.byKey[DefaultThemeKey]])
}

// HasTheme reports whether key names a catalog theme.
func (c *Catalog) HasTheme(key string) bool {
	_, ok := c.byKey[key]
	return ok
}

// ThemeForLevel maps a player level onto its age. Ranges are contiguous and
// ordered, so the mapping is monotonic.
func (c *Catalog) ThemeForLevel(level int) Theme {
	chosen := c.themes[0]
	for _, t := range c.themes {
		if level >= t.MinLevel {
			chosen = t
		}
	}
	return cloneTheme(chosen)
}

// Themes returns every theme in level order.
func (c *Catalog) Themes() []Theme {
	out := make([]Theme, len(c.themes))
	for i, t := range c.themes {
		out[i] = cloneTheme(t)
	}
	return out
}

// World returns the world with the given sequence, or the first world.
func (c *Catalog) World(sequence int) World {
	for _, w := range c.worlds {
		if w.Sequence == sequence {
			return w
		}
	}
	return c.worlds[0]
}

// Worlds returns every world in sequence order.
func (c *Catalog) Worlds() []World {
	out := make([]World, len(c.worlds))
	copy(out, c.worlds)
	return out
}

// MiniBossTemplates returns the fixed mini-boss set.
func (c *Catalog) MiniBossTemplates() []EnemyTemplate {
	out := make([]EnemyTemplate, len(c.miniBoss))
	copy(out, c.miniBoss)
	return out
}

func cloneTheme(t Theme) Theme {
	t.Enemies = append([]EnemyTemplate(nil), t.Enemies...)
	t.RewardPool = append([]string(nil), t.RewardPool...)
	return t
}
