package cmd

import (
	"github.com/NoahAizen44/SmarterTips/core"
	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/spf13/cobra"
)

// modelsCmd groups the model browser subcommands.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Browse the stored usage models",
	Long: `Inspect the fitted usage models.

Subcommands:
  list - Players with a stored model, optionally for one team
  show - Baseline, fit statistics and teammate deltas for one player

Examples:
  smartertips models list --team boston_celtics
  smartertips models show "Jaylen Brown"`,
}

// modelsListCmd lists stored models.
var modelsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List players with a stored model",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteModelsList(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot list models", err)
		}
	},
}

// modelsShowCmd prints one stored model.
var modelsShowCmd = &cobra.Command{
	Use:   "show PLAYER",
	Short: "Show a player's baseline and teammate deltas",
	Long: `Print the stored model of PLAYER: baseline usage, R², games used and
teammate deltas ordered by magnitude. Deltas with p < 0.05 are marked with *.

Use --model-version latest to pick the most recently fitted version.

Examples:
  smartertips models show "Jaylen Brown"
  smartertips models show jaylen_brown --model-version latest --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteModelsShow(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot show model", err)
		}
	},
}
