package cmd

import (
	"github.com/NoahAizen44/SmarterTips/core"
	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/spf13/cobra"
)

// trainCmd refits the usage models of one team or the whole league.
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit usage models for every qualifying player.",
	Long: `Retrain the additive usage models.

For every qualifying player, regress their per-game usage on the absence of
each qualifying teammate and replace their stored coefficients atomically.
Players with too few played games are skipped; one failing player never
aborts the batch.

Without --team every team with recorded games is retrained. When a runs
backend is configured, the run and each per-player outcome are recorded.

Examples:
  # Retrain the whole league
  smartertips train

  # Retrain one team under a new version tag
  smartertips train --team boston_celtics --model-version additive_v2

  # Track runs in a separate SQLite file
  smartertips train --runs-backend sqlite`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTrain(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot retrain models", err)
		}
	},
}
