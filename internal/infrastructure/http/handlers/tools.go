package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/gin-gonic/gin"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
	"github.com/alchemorsel/nutriplan/internal/ports/inbound"
	apperrors "github.com/alchemorsel/nutriplan/pkg/errors"
)

// Tool names
const (
	ToolComputeBudget = "compute_budget"
	ToolComputePlan   = "compute_plan"
)

// PlanToolParams are the arguments of compute_plan
type PlanToolParams struct {
	nutrition.ProfileInput
	Seed *uint64 `json:"seed,omitempty"`
}

type toolFunc func(c *gin.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

// ToolHandler exposes the planner as MCP tools over plain HTTP
type ToolHandler struct {
	planner inbound.PlanningService
	catalog *food.Catalog
	tools   map[string]toolFunc
}

// NewToolHandler creates the tool handler
func NewToolHandler(planner inbound.PlanningService, catalog *food.Catalog) *ToolHandler {
	h := &ToolHandler{planner: planner, catalog: catalog}
	h.tools = map[string]toolFunc{
		ToolComputeBudget: h.computeBudget,
		ToolComputePlan:   h.computePlan,
	}
	return h
}

// Register mounts POST /mcp/tools/call
func (h *ToolHandler) Register(r gin.IRouter) {
	r.POST("/tools/call", h.Call)
}

// Names lists the registered tools
func (h *ToolHandler) Names() []string {
	names := make([]string, 0, len(h.tools))
	for name := range h.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call dispatches one CallToolRequest
func (h *ToolHandler) Call(c *gin.Context) {
	var req protocol.CallToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewValidationError(fmt.Sprintf("invalid tool request: %v", err)))
		return
	}

	tool, ok := h.tools[req.Name]
	if !ok {
		_ = c.Error(apperrors.NewNotFoundError(fmt.Sprintf("Tool %q", req.Name)).
			WithMetadata("tools", h.Names()))
		return
	}

	result, err := tool(c, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ToolHandler) computeBudget(c *gin.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params nutrition.ProfileInput
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	profile, err := params.Profile()
	if err != nil {
		return nil, apperrors.NewInvalidProfileError(err)
	}

	budget, err := h.planner.ComputeBudget(c.Request.Context(), profile)
	if err != nil {
		return nil, err
	}
	return jsonResult(newBudgetResponse(budget))
}

func (h *ToolHandler) computePlan(c *gin.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params PlanToolParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	profile, err := params.Profile()
	if err != nil {
		return nil, apperrors.NewInvalidProfileError(err)
	}

	result, err := h.planner.ComputePlan(c.Request.Context(), inbound.ComputePlanCommand{
		Profile: profile,
		Catalog: h.catalog,
		Seed:    params.Seed,
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(newPlanResponse(result, profile.Goal))
}

// extractParams decodes the free-form argument map into a typed struct
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	data, err := json.Marshal(req.Arguments)
	if err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("invalid arguments: %v", err))
	}
	if err := json.Unmarshal(data, target); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("invalid arguments: %v", err))
	}
	return nil
}

func jsonResult(v interface{}) (*protocol.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode tool result")
	}
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(data),
			},
		},
	}, nil
}
