package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/NoahAizen44/SmarterTips/core"
	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// requestConfig clones the base config and applies the shared player, team,
// absent and model_version arguments.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	cfg.Player = schema.NormalizeName(request.GetString("player", ""))
	if v := strings.TrimSpace(request.GetString("model_version", "")); v != "" {
		cfg.ModelVersion = v
	}
	absent := strings.Join(request.GetStringSlice("absent", nil), ",")
	if err := contract.RevalidateSelection(cfg, request.GetString("team", ""), absent); err != nil {
		return nil, err
	}
	return cfg, nil
}

// toolResultJSON renders a result as indented JSON text.
func toolResultJSON(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handlePredictUsage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid prediction parameters: %v", err)), nil
	}

	pred, _, err := core.GetPredictionResult(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("prediction failed: %v", err)), nil
	}
	return toolResultJSON(pred.Rounded()), nil
}

func (h *toolHandler) handleGetPlayerModel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid model parameters: %v", err)), nil
	}

	model, err := core.GetPlayerModel(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("model lookup failed: %v", err)), nil
	}
	return toolResultJSON(struct {
		schema.FitRecord
		Coefficients []schema.TeammateCoefficient `json:"coefficients"`
	}{model.Fit, model.SortedCoefficients()}), nil
}

func (h *toolHandler) handleListQualifyingPlayers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid team: %v", err)), nil
	}

	players, _, err := core.GetQualifyingResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("qualification failed: %v", err)), nil
	}
	if players == nil {
		players = []schema.QualifyingPlayer{}
	}
	return toolResultJSON(players), nil
}

func (h *toolHandler) handleListModels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid team: %v", err)), nil
	}

	models, err := h.mgr.GetCoefficientStore().ListModels(ctx, cfg.Team)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing models failed: %v", err)), nil
	}
	if models == nil {
		models = []schema.ModelSummary{}
	}
	return toolResultJSON(models), nil
}
