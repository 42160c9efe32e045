package cmd

import (
	"github.com/NoahAizen44/SmarterTips/core"
	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/spf13/cobra"
)

// teamsCmd prints the franchise reference table.
var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List the 30 franchises with their keys and recorded games.",
	Long: `Print every franchise with its NBA id, canonical key, abbreviation and the
number of games recorded for it. Any of key, abbreviation or full name is
accepted by --team.

Examples:
  smartertips teams
  smartertips teams --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTeams(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot list teams", err)
		}
	},
}
