package root

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"taskrealm/server/catalog"
	"taskrealm/server/generation"
	"taskrealm/server/objectives"
	"taskrealm/server/random"
)

func newWorldCmd() *cobra.Command {
	var seed int64
	var sequence int

	cmd := &cobra.Command{
		Use:   "world",
		Short: "Generate a world path and list its lanes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed == 0 {
				seed = random.NewSeed()
			}
			rng := random.New(seed)
			cat := catalog.New()
			world := cat.World(sequence)

			// no task list here, so every objective comes from the fallbacks
			engine := objectives.NewEngine(rng, time.Now)
			path := generation.NewWorldPathGenerator(rng, engine, cat).Generate(world, nil)

			out := cmd.OutOrStdout()
			theme := cat.Theme(world.ThemeKey)
			fmt.Fprintln(out, themeTitle(fmt.Sprintf("World %d: %s", world.Sequence, world.Name), theme.Colors.Primary)+
				" "+Muted.Render(fmt.Sprintf("seed %d, %d levels, mini-boss at %d", seed, path.LevelCount, path.MiniBossPosition)))
			renderWorldPath(out, path)
			fmt.Fprintf(out, "branch points %v, convergence points %v\n", path.BranchPoints(), path.ConvergencePoints())

			if err := generation.VerifyWorldPath(path); err != nil {
				return fmt.Errorf("world path failed verification: %w", err)
			}
			fmt.Fprintln(out, Good.Render("ok"))
			return nil
		},
	}

	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "RNG seed (0 picks a random one)")
	cmd.Flags().IntVarP(&sequence, "sequence", "n", 1, "World sequence (1-8)")

	return cmd
}

func newWorldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worlds",
		Short: "List the fixed worlds",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cat := catalog.New()
			for _, w := range cat.Worlds() {
				theme := cat.Theme(w.ThemeKey)
				fmt.Fprintf(out, "%d  %s  %s  difficulty %.1f  boss %s\n",
					w.Sequence, themeTitle(w.Name, theme.Colors.Primary), Muted.Render(w.Affinity), w.Difficulty, w.Boss.Name)
			}
			return nil
		},
	}
}
