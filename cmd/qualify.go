package cmd

import (
	"github.com/NoahAizen44/SmarterTips/core"
	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/spf13/cobra"
)

// qualifyCmd lists the players of a team who pass the qualification thresholds.
var qualifyCmd = &cobra.Command{
	Use:   "qualify",
	Short: "List the players who qualify as regression targets for a team.",
	Long: `Apply the qualification thresholds to the recorded games of --team.

A player qualifies when:
- average minutes in played games is at least --min-mpg
- games missed is strictly greater than --min-games-missed
- games played is at least --min-games-played (0 disables the check)

Examples:
  smartertips qualify --team boston_celtics
  smartertips qualify --team NYK --min-mpg 25 --output csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteQualify(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot list qualifying players", err)
		}
	},
}
