package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeLookupFailsSoft(t *testing.T) {
	c := New()

	medieval := c.Theme("medieval")
	assert.Equal(t, "Medieval", medieval.Name)
	assert.True(t, c.HasTheme("medieval"))

	unknown := c.Theme("atlantis")
	assert.Equal(t, DefaultThemeKey, unknown.Key)
	assert.False(t, c.HasTheme("atlantis"))
}

func TestThemesAreWellFormed(t *testing.T) {
	themes := New().Themes()
	require.Len(t, themes, 8)
	for _, th := range themes {
		assert.NotEmpty(t, th.Name, th.Key)
		assert.GreaterOrEqual(t, th.Difficulty, 1.0, th.Key)
		assert.NotEmpty(t, th.Enemies, th.Key)
		assert.NotEmpty(t, th.Boss.Name, th.Key)
		assert.NotEmpty(t, th.RewardPool, th.Key)
		assert.NotEmpty(t, th.Affinity, th.Key)
		assert.NotEmpty(t, th.Colors.Primary, th.Key)
	}
}

func TestThemeForLevelIsMonotonic(t *testing.T) {
	c := New()
	themes := c.Themes()
	index := map[string]int{}
	for i, th := range themes {
		index[th.Key] = i
	}

	prev := 0
	for level := -3; level <= 100; level++ {
		i := index[c.ThemeForLevel(level).Key]
		assert.GreaterOrEqual(t, i, prev, "level %d", level)
		prev = i
	}

	assert.Equal(t, "stone_age", c.ThemeForLevel(0).Key)
	assert.Equal(t, "stone_age", c.ThemeForLevel(4).Key)
	assert.Equal(t, "bronze_age", c.ThemeForLevel(5).Key)
	assert.Equal(t, "future", c.ThemeForLevel(1000).Key)
}

func TestWorlds(t *testing.T) {
	c := New()
	worlds := c.Worlds()
	require.Len(t, worlds, 8)
	for i, w := range worlds {
		assert.Equal(t, i+1, w.Sequence)
		assert.True(t, c.HasTheme(w.ThemeKey), w.ThemeKey)
		assert.GreaterOrEqual(t, w.Difficulty, 1.0)
		assert.NotEmpty(t, w.Boss.Name)
	}

	assert.Equal(t, "iron_age", c.World(3).ThemeKey)
	assert.Equal(t, 1, c.World(99).Sequence)
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := New()

	th := c.Theme("stone_age")
	th.Enemies[0].Name = "changed"
	th.RewardPool[0] = "changed"
	fresh := c.Theme("stone_age")
	assert.NotEqual(t, "changed", fresh.Enemies[0].Name)
	assert.NotEqual(t, "changed", fresh.RewardPool[0])

	worlds := c.Worlds()
	worlds[0].Name = "changed"
	assert.NotEqual(t, "changed", c.World(1).Name)

	minis := c.MiniBossTemplates()
	require.NotEmpty(t, minis)
	minis[0].HP = 0
	assert.NotZero(t, c.MiniBossTemplates()[0].HP)
}

func TestScaledTemplate(t *testing.T) {
	tpl := EnemyTemplate{Name: "Imp", HP: 100, Attack: 10, Defense: 5}

	e := tpl.Scaled(1.5)
	assert.Equal(t, "Imp", e.Name)
	assert.Equal(t, 150, e.HP)
	assert.Equal(t, 15, e.Attack)
	assert.Equal(t, 8, e.Defense)

	// never weaker than the template
	assert.Equal(t, 100, tpl.Scaled(0.5).HP)
}
