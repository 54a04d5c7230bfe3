package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
	apperrors "github.com/alchemorsel/nutriplan/pkg/errors"
)

// FoodHandler exposes the read-only catalog
type FoodHandler struct {
	catalog  *food.Catalog
	validate *validator.Validate
}

// NewFoodHandler creates a catalog handler
func NewFoodHandler(catalog *food.Catalog) *FoodHandler {
	return &FoodHandler{catalog: catalog, validate: NewValidator()}
}

// Register mounts the catalog routes
func (h *FoodHandler) Register(r gin.IRouter) {
	r.GET("/foods", h.ListFoods)
	r.GET("/foods/:id", h.GetFood)
}

// ListFoods handles GET /api/v1/foods. category narrows to one category,
// diet drops records the diet forbids and exclude is a comma separated
// allergen list.
func (h *FoodHandler) ListFoods(c *gin.Context) {
	var q FoodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(validationError(err))
		return
	}
	if err := h.validate.Struct(q); err != nil {
		_ = c.Error(validationError(err))
		return
	}

	profile := nutrition.Profile{Diet: nutrition.DietNonVegetarian}
	if q.Diet != "" {
		diet, err := nutrition.ParseDiet(q.Diet)
		if err != nil {
			_ = c.Error(apperrors.NewValidationError(err.Error()))
			return
		}
		profile.Diet = diet
	}
	if q.Exclude != "" {
		allergens, err := nutrition.ParseAllergens(strings.Split(q.Exclude, ","))
		if err != nil {
			_ = c.Error(apperrors.NewValidationError(err.Error()))
			return
		}
		profile.Allergens = allergens
	}

	exclusions := food.ExclusionsFor(profile)
	foods := h.catalog.Filter(func(r food.Record) bool {
		if q.Category != "" && r.Category != food.Category(q.Category) {
			return false
		}
		return exclusions.Permits(r)
	})
	if foods == nil {
		foods = []food.Record{}
	}

	c.JSON(http.StatusOK, FoodsResponse{
		Version: h.catalog.Version(),
		Count:   len(foods),
		Foods:   foods,
	})
}

// GetFood handles GET /api/v1/foods/:id
func (h *FoodHandler) GetFood(c *gin.Context) {
	id := c.Param("id")

	record, err := h.catalog.Get(id)
	if errors.Is(err, food.ErrFoodNotFound) {
		_ = c.Error(apperrors.NewFoodNotFoundError(id))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, record)
}
