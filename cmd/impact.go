package cmd

import (
	"github.com/NoahAizen44/SmarterTips/core"
	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/spf13/cobra"
)

// impactCmd ranks teammates by how their usage changes when one player sits out.
var impactCmd = &cobra.Command{
	Use:   "impact",
	Short: "Rank teammates by usage change when one player is absent.",
	Long: `Compare every player's average usage in games with and without the player
named in --absent, and rank them by relative change.

Only games each teammate played are counted, and a teammate needs games on
both sides of the split to be ranked.

Examples:
  smartertips impact --team boston_celtics --absent "Jayson Tatum"
  smartertips impact --team LAL --absent lebron_james --limit 5`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteImpact(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot compute teammate impact", err)
		}
	},
}
