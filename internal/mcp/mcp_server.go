// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the SmarterTips MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"SmarterTips Usage Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: predict_usage ---
	s.AddTool(mcp.NewTool("predict_usage",
		mcp.WithDescription("Predict a player's usage rate given a set of absent teammates, using the stored additive model."),
		mcp.WithString("player", mcp.Description("Target player name or key (e.g. 'Jayson Tatum' or 'jayson_tatum')."), mcp.Required()),
		mcp.WithArray("absent", mcp.Description("Teammates sitting out."), mcp.WithStringItems()),
		mcp.WithString("team", mcp.Description("Team key, abbreviation or name. The model must belong to this team.")),
		mcp.WithString("model_version", mcp.Description("Model version tag. Defaults to the configured version; 'latest' picks the newest.")),
	), h.handlePredictUsage)

	// --- 2. Tool: get_player_model ---
	s.AddTool(mcp.NewTool("get_player_model",
		mcp.WithDescription("Show a player's stored usage model: baseline, fit statistics and teammate deltas ordered by magnitude."),
		mcp.WithString("player", mcp.Description("Target player name or key."), mcp.Required()),
		mcp.WithString("team", mcp.Description("Team key, abbreviation or name.")),
		mcp.WithString("model_version", mcp.Description("Model version tag.")),
	), h.handleGetPlayerModel)

	// --- 3. Tool: list_qualifying_players ---
	s.AddTool(mcp.NewTool("list_qualifying_players",
		mcp.WithDescription("List the players of a team who pass the minutes and games-missed thresholds."),
		mcp.WithString("team", mcp.Description("Team key, abbreviation or name."), mcp.Required()),
	), h.handleListQualifyingPlayers)

	// --- 4. Tool: list_models ---
	s.AddTool(mcp.NewTool("list_models",
		mcp.WithDescription("List the stored usage models, optionally for a single team."),
		mcp.WithString("team", mcp.Description("Team key, abbreviation or name.")),
	), h.handleListModels)

	return s
}

// StartMCPServer starts the SmarterTips MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
