package cmd

import (
	"github.com/NoahAizen44/SmarterTips/core"
	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/spf13/cobra"
)

// predictCmd predicts a player's usage for a hypothetical set of absences.
var predictCmd = &cobra.Command{
	Use:   "predict PLAYER",
	Short: "Predict a player's usage rate with teammates sitting out.",
	Long: `Predict the usage rate of PLAYER when the teammates named in --absent miss the game.

The prediction is the player's baseline usage plus the fitted delta of every
absent teammate. Teammates without a stored coefficient contribute nothing and
are flagged "no data" in the breakdown.

The confidence label is:
- High: every matched delta has p < 0.05 and the model used enough games
- Medium: every matched delta has p < 0.10
- Low: anything else, or no teammate matched

Examples:
  # Jaylen Brown without Jayson Tatum
  smartertips predict "Jaylen Brown" --absent "Jayson Tatum"

  # Several absences, checked against the team
  smartertips predict jaylen_brown --team BOS --absent jayson_tatum,jrue_holiday

  # Machine-readable output
  smartertips predict "Jaylen Brown" --absent "Jayson Tatum" --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePredict(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot predict usage", err)
		}
	},
}
