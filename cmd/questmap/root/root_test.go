package root

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestAreaCommandDrawsVerifiedGrid(t *testing.T) {
	out := run(t, "area", "--seed", "7", "--theme", "medieval")

	assert.Contains(t, out, "seed 7")
	assert.Contains(t, out, "S")
	assert.Contains(t, out, "B")
	assert.Contains(t, out, "START 1, BOSS 1, SHOP 1")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "ok"))
}

func TestAreaCommandIsReproducible(t *testing.T) {
	assert.Equal(t, run(t, "area", "--seed", "42"), run(t, "area", "--seed", "42"))
}

func TestWorldCommandListsEveryPosition(t *testing.T) {
	out := run(t, "world", "--seed", "3", "--sequence", "3")

	assert.Contains(t, out, "World 3")
	assert.Contains(t, out, "[B]")
	assert.Contains(t, out, "[M]")
	assert.Contains(t, out, "branch points")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "ok"))
}

func TestWorldsCommand(t *testing.T) {
	out := run(t, "worlds")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 8)
}
