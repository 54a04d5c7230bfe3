package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/ports/inbound"
	apperrors "github.com/alchemorsel/nutriplan/pkg/errors"
)

// PlanningHandler serves budget and plan computation
type PlanningHandler struct {
	planner inbound.PlanningService
	catalog *food.Catalog
	logger  *zap.Logger
}

// NewPlanningHandler creates a planning handler over the loaded catalog
func NewPlanningHandler(planner inbound.PlanningService, catalog *food.Catalog, logger *zap.Logger) *PlanningHandler {
	return &PlanningHandler{planner: planner, catalog: catalog, logger: logger}
}

// Register mounts the planning routes
func (h *PlanningHandler) Register(r gin.IRouter) {
	r.POST("/budget", h.ComputeBudget)
	r.POST("/plans", h.ComputePlan)
}

// ComputeBudget handles POST /api/v1/budget
func (h *PlanningHandler) ComputeBudget(c *gin.Context) {
	var req ProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := req.Input().Profile()
	if err != nil {
		_ = c.Error(apperrors.NewInvalidProfileError(err))
		return
	}

	budget, err := h.planner.ComputeBudget(c.Request.Context(), profile)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, newBudgetResponse(budget))
}

// ComputePlan handles POST /api/v1/plans
func (h *PlanningHandler) ComputePlan(c *gin.Context) {
	var req PlanRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := req.Input().Profile()
	if err != nil {
		_ = c.Error(apperrors.NewInvalidProfileError(err))
		return
	}

	result, err := h.planner.ComputePlan(c.Request.Context(), inbound.ComputePlanCommand{
		Profile: profile,
		Catalog: h.catalog,
		Seed:    req.Seed,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, newPlanResponse(result, profile.Goal))
}
