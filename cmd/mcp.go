package cmd

import (
	"github.com/NoahAizen44/SmarterTips/core"
	"github.com/NoahAizen44/SmarterTips/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the SmarterTips MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents predict usage and
browse models through the predict_usage, get_player_model,
list_qualifying_players and list_models tools.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		// Stdio carries the protocol, so progress headers must stay off
		return mcp.StartMCPServer(core.WithSuppressHeader(rootCtx), cfg, storeManager)
	},
}
