package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskrealm/server/catalog"
	"taskrealm/server/generation"
	"taskrealm/server/random"
)

func newAreaCmd() *cobra.Command {
	var seed int64
	var themeKey string

	cmd := &cobra.Command{
		Use:   "area",
		Short: "Generate a free-roam area and draw its grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed == 0 {
				seed = random.NewSeed()
			}
			cat := catalog.New()
			theme := cat.Theme(themeKey)

			cfg := generation.DefaultAreaConfig()
			area := generation.NewAreaGenerator(random.New(seed), cfg).Generate("questmap", theme.Key)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, themeTitle(theme.Name, theme.Colors.Primary)+" "+Muted.Render(fmt.Sprintf("seed %d", seed)))
			renderArea(out, area, cfg.Size)
			renderNodeCounts(out, area)

			if err := generation.VerifyArea(area, cfg.Size); err != nil {
				return fmt.Errorf("area failed verification: %w", err)
			}
			fmt.Fprintln(out, Good.Render("ok"))
			return nil
		},
	}

	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "RNG seed (0 picks a random one)")
	cmd.Flags().StringVarP(&themeKey, "theme", "t", "stone_age", "Theme key")

	return cmd
}
